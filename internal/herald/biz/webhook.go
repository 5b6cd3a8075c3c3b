package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	stdjson "encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/herald/internal/herald/store"
	"github.com/kart-io/herald/pkg/line"
)

// User-facing reply texts.
const (
	welcomeReply      = "歡迎加入，之後我會推播重點新聞，也可以直接提問。"
	unanswerableReply = "目前無法回答，請稍後再試。"
)

// WebhookBody is the LINE webhook delivery envelope. Events stay untyped:
// the platform adds event kinds over time and unknown ones must pass the
// dedup bookkeeping untouched.
type WebhookBody struct {
	Destination string           `json:"destination"`
	Events      []map[string]any `json:"events"`
}

// WebhookSummary reports how a delivery batch was handled.
type WebhookSummary struct {
	OK           bool `json:"ok"`
	Processed    int  `json:"processed"`
	DedupSkipped int  `json:"dedup_skipped"`
	TotalEvents  int  `json:"total_events"`
}

// WebhookService dispatches LINE webhook events: follow/unfollow maintain
// user activation, text messages go to the Lorekeeper. Every event is
// deduplicated by id before any side effect runs, so platform redeliveries
// are harmless.
type WebhookService struct {
	store      store.Factory
	lorekeeper *LorekeeperService
	messenger  line.Messenger
	now        func() time.Time
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(store store.Factory, lorekeeper *LorekeeperService, messenger line.Messenger) *WebhookService {
	return &WebhookService{
		store:      store,
		lorekeeper: lorekeeper,
		messenger:  messenger,
		now:        time.Now,
	}
}

// HandleBody processes one delivery batch. Each event is handled
// independently; a failing event does not stop the rest of the batch.
func (s *WebhookService) HandleBody(ctx context.Context, body *WebhookBody) (*WebhookSummary, error) {
	summary := &WebhookSummary{OK: true, TotalEvents: len(body.Events)}

	for _, event := range body.Events {
		eventID := EventID(event)
		eventType, _ := event["type"].(string)
		if eventType == "" {
			eventType = "unknown"
		}
		lineUserID := eventUserID(event)

		inserted, err := s.store.WebhookEvents().MarkProcessed(ctx, eventID, eventType, lineUserID, event, s.now().UTC())
		if err != nil {
			logger.Errorw("Recording webhook event failed", "event_id", eventID, "error", err)
			continue
		}
		if !inserted {
			summary.DedupSkipped++
			continue
		}
		summary.Processed++

		switch eventType {
		case "follow":
			s.onFollow(ctx, event, lineUserID)
		case "unfollow":
			s.onUnfollow(ctx, lineUserID)
		case "message":
			s.onMessage(ctx, event, lineUserID)
		}
	}

	return summary, nil
}

func (s *WebhookService) onFollow(ctx context.Context, event map[string]any, lineUserID string) {
	if lineUserID == "" {
		return
	}
	if _, err := s.store.Users().Activate(ctx, lineUserID); err != nil {
		logger.Errorw("Activating follower failed", "line_user_id", lineUserID, "error", err)
		return
	}
	s.reply(ctx, event, welcomeReply)
}

func (s *WebhookService) onUnfollow(ctx context.Context, lineUserID string) {
	if lineUserID == "" {
		return
	}
	if err := s.store.Users().Deactivate(ctx, lineUserID); err != nil {
		logger.Errorw("Deactivating follower failed", "line_user_id", lineUserID, "error", err)
	}
}

func (s *WebhookService) onMessage(ctx context.Context, event map[string]any, lineUserID string) {
	if lineUserID == "" {
		return
	}
	message, _ := event["message"].(map[string]any)
	if msgType, _ := message["type"].(string); msgType != "text" {
		return
	}
	text, _ := message["text"].(string)
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	result, err := s.lorekeeper.Ask(ctx, &AskRequest{
		LineUserID:  lineUserID,
		Question:    text,
		RAGSpaceKey: "default",
	})
	if err != nil {
		logger.Errorw("Lorekeeper ask failed", "line_user_id", lineUserID, "error", err)
		s.reply(ctx, event, unanswerableReply)
		return
	}

	replyText := unanswerableReply
	switch {
	case result.Answer != nil && *result.Answer != "":
		replyText = *result.Answer
	case result.RejectedReason != nil && *result.RejectedReason != "":
		replyText = *result.RejectedReason
	}
	s.reply(ctx, event, replyText)
}

func (s *WebhookService) reply(ctx context.Context, event map[string]any, text string) {
	replyToken, _ := event["replyToken"].(string)
	if replyToken == "" {
		return
	}
	if _, err := s.messenger.Reply(ctx, replyToken, []line.Message{line.NewTextMessage(text)}); err != nil {
		logger.Warnw("Webhook reply failed", "error", err)
	}
}

// EventID returns the platform event id, or a content hash when the
// platform omits one. The hash uses encoding/json on purpose: it marshals
// map keys in sorted order, which makes the fallback id deterministic
// across deliveries of the same event.
func EventID(event map[string]any) string {
	if id, ok := event["webhookEventId"].(string); ok && id != "" {
		return id
	}
	encoded, err := stdjson.Marshal(event)
	if err != nil {
		encoded = []byte(fmt.Sprintf("%v", event))
	}
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

func eventUserID(event map[string]any) string {
	source, _ := event["source"].(map[string]any)
	userID, _ := source["userId"].(string)
	return userID
}
