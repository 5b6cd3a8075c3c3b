// Package router provides Herald HTTP routing.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/herald/internal/herald/biz"
	"github.com/kart-io/herald/internal/herald/handler"
	"github.com/kart-io/herald/internal/pkg/middleware"
)

// Deps carries the wired services the routes depend on.
type Deps struct {
	Ingest     *biz.IngestService
	Bard       *biz.BardService
	Lorekeeper *biz.LorekeeperService
	Webhook    *biz.WebhookService

	// LineChannelSecret verifies webhook signatures.
	LineChannelSecret string
}

// New builds the gin engine with all Herald routes registered.
func New(deps Deps) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.AccessLog(), middleware.Recovery())

	engine.GET("/healthz", handler.Healthz)

	ingestHandler := handler.NewIngestHandler(deps.Ingest)
	agentHandler := handler.NewAgentHandler(deps.Bard, deps.Lorekeeper)
	webhookHandler := handler.NewWebhookHandler(deps.LineChannelSecret, deps.Webhook)

	v1 := engine.Group("/v1")
	{
		rss := v1.Group("/rss")
		{
			rss.POST("/ingest/rawitem", ingestHandler.IngestRawItem)
		}

		agents := v1.Group("/agents")
		{
			agents.POST("/bard/push", agentHandler.BardPush)
			agents.POST("/lorekeeper/ask", agentHandler.LorekeeperAsk)
		}

		// The webhook route answers LINE's delivery retries itself, so it
		// bypasses the envelope response format.
		line := v1.Group("/line")
		{
			line.POST("/webhook", webhookHandler.Handle)
		}
	}

	logger.Info("HTTP routes registered")
	return engine
}
