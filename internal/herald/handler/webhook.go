package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/herald/internal/herald/biz"
	"github.com/kart-io/herald/internal/pkg/httputils"
	"github.com/kart-io/herald/pkg/errors"
	"github.com/kart-io/herald/pkg/line"
	"github.com/kart-io/herald/pkg/utils/json"
)

// lineSignatureHeader is the header LINE uses to carry the HMAC signature
// of the raw webhook body.
const lineSignatureHeader = "X-Line-Signature"

// WebhookHandler verifies LINE webhook signatures and dispatches event
// batches to the webhook service.
type WebhookHandler struct {
	channelSecret string
	svc           *biz.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(channelSecret string, svc *biz.WebhookService) *WebhookHandler {
	return &WebhookHandler{channelSecret: channelSecret, svc: svc}
}

// Handle handles POST /v1/line/webhook.
//
// The signature must be verified against the raw request body before any
// parsing, so the body is read in full first.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage("failed to read request body"), nil)
		return
	}

	signature := c.GetHeader(lineSignatureHeader)
	if !line.VerifySignature(h.channelSecret, body, signature) {
		httputils.WriteResponse(c, errors.ErrInvalidSignature, nil)
		return
	}

	var payload biz.WebhookBody
	if err := json.Unmarshal(body, &payload); err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage("malformed webhook body"), nil)
		return
	}

	summary, err := h.svc.HandleBody(c.Request.Context(), &payload)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}
	httputils.WriteRaw(c, summary)
}
