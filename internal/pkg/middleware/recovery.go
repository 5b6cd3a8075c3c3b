package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/herald/pkg/errors"
	"github.com/kart-io/herald/pkg/utils/response"
)

// Recovery converts panics into a 500 envelope instead of a dropped
// connection, logging the stack for operators.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorw("Panic recovered",
					"error", r,
					"path", c.Request.URL.Path,
					"request_id", RequestIDFromContext(c),
					"stack", string(debug.Stack()),
				)

				resp := response.Err(errors.ErrInternal)
				resp.WithRequestID(RequestIDFromContext(c))
				defer response.Release(resp)
				c.AbortWithStatusJSON(resp.HTTPStatus(), resp)
			}
		}()
		c.Next()
	}
}
