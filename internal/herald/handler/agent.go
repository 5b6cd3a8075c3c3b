package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/kart-io/herald/internal/herald/biz"
	"github.com/kart-io/herald/internal/pkg/httputils"
	"github.com/kart-io/herald/pkg/errors"
)

// AgentHandler handles the Bard push and Lorekeeper ask endpoints.
type AgentHandler struct {
	bard       *biz.BardService
	lorekeeper *biz.LorekeeperService
}

// NewAgentHandler creates a new AgentHandler.
func NewAgentHandler(bard *biz.BardService, lorekeeper *biz.LorekeeperService) *AgentHandler {
	return &AgentHandler{bard: bard, lorekeeper: lorekeeper}
}

// BardPush handles POST /v1/agents/bard/push.
func (h *AgentHandler) BardPush(c *gin.Context) {
	var req biz.BardPushRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	result, err := h.bard.PushItem(c.Request.Context(), &req)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, result)
}

// LorekeeperAsk handles POST /v1/agents/lorekeeper/ask.
func (h *AgentHandler) LorekeeperAsk(c *gin.Context) {
	var req biz.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}

	result, err := h.lorekeeper.Ask(c.Request.Context(), &req)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteResponse(c, nil, result)
}
