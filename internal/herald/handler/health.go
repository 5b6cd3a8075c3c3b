package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Healthz reports liveness. The payload shape is relied on by the deploy
// probes, keep it stable.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
