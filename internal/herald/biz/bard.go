package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/herald/internal/herald/store"
	"github.com/kart-io/herald/internal/model"
	"github.com/kart-io/herald/pkg/errors"
	"github.com/kart-io/herald/pkg/line"
	"github.com/kart-io/herald/pkg/llm"
)

const bardPromptVersion = "bard-v1"

const bardPrompt = "你是 LINE 官方帳號新聞推播編輯 Bard。" +
	"請以繁體中文輸出 JSON，key 僅有 title, message_body。" +
	"message_body 最多 220 字，保留重點，不誇大，不加入不存在資訊。"

const bardTitleMaxRunes = 120

// BardPushRequest asks Bard to compose and deliver one item to a follower.
type BardPushRequest struct {
	LineUserID  string  `json:"line_user_id" binding:"required"`
	ItemID      string  `json:"item_id" binding:"required"`
	DisplayName *string `json:"display_name"`
	Send        *bool   `json:"send"`
}

// BardPushResult reports what was generated, logged and delivered.
type BardPushResult struct {
	UserID         uint64  `json:"user_id"`
	AgentRunID     uint64  `json:"agent_run_id"`
	PushMessageID  uint64  `json:"push_message_id"`
	DeliveryStatus string  `json:"delivery_status"`
	LineRequestID  *string `json:"line_request_id,omitempty"`
	MessagePreview string  `json:"message_preview"`
}

// BardService composes push messages for ingested items and delivers them
// through the messaging channel. Generation failure never blocks delivery:
// the service falls back to a templated message built from the stored
// summary and URL.
type BardService struct {
	store      store.Factory
	gateway    ChatGateway
	messenger  line.Messenger
	tenantID   string
	targetLang string
	now        func() time.Time
}

// NewBardService creates a new BardService.
func NewBardService(store store.Factory, gateway ChatGateway, messenger line.Messenger, tenantID string) *BardService {
	if tenantID == "" {
		tenantID = DefaultTenantID
	}
	return &BardService{
		store:      store,
		gateway:    gateway,
		messenger:  messenger,
		tenantID:   tenantID,
		targetLang: "zh-TW",
		now:        time.Now,
	}
}

// PushItem generates a push message for the item, records the agent run and
// the push row, and delivers unless the request opts out.
func (s *BardService) PushItem(ctx context.Context, req *BardPushRequest) (*BardPushResult, error) {
	user, err := s.ensureUser(ctx, req.LineUserID, req.DisplayName)
	if err != nil {
		return nil, err
	}

	item, err := s.store.Items().GetByItemID(ctx, req.ItemID)
	if err != nil {
		return nil, errors.ErrItemNotFound.WithMessagef("item %s not found", req.ItemID)
	}

	title, summary, translationID := s.pushSource(ctx, item)
	started := s.now()

	finalTitle, finalBody, usage, genErr := s.generate(ctx, title, summary, item.URL)
	fallbackUsed := genErr != nil
	if fallbackUsed {
		logger.Warnw("Bard generation failed, using fallback", "item_id", item.ItemID, "error", genErr)
		finalTitle = truncateRunes(title, bardTitleMaxRunes)
		finalBody = strings.TrimSpace(summary + "\n\n" + item.URL)
	}

	run := s.recordRun(ctx, user, item, usage, genErr, s.now().Sub(started))

	deliveryStatus := model.PushStatusPending
	var lineRequestID, deliveryError *string
	if req.Send == nil || *req.Send {
		result, err := s.messenger.Push(ctx, req.LineUserID, []line.Message{line.NewTextMessage(finalBody)})
		if err != nil {
			deliveryStatus = model.PushStatusFailed
			deliveryError = strptr(err.Error())
		} else {
			deliveryStatus = model.PushStatusSent
			lineRequestID = strptr(result.RequestID)
		}
	}

	push := &model.PushMessage{
		UserID:        &user.ID,
		ItemID:        &item.ItemID,
		TranslationID: translationID,
		AgentRunID:    &run.ID,
		RecipientID:   req.LineUserID,
		Title:         finalTitle,
		Body:          finalBody,
		Payload: model.JSONMap{
			"messages": []any{map[string]any{"type": "text", "text": finalBody}},
		},
		Status:        deliveryStatus,
		LineRequestID: lineRequestID,
		Error:         deliveryError,
	}
	if err := s.store.Pushes().Create(ctx, push); err != nil {
		return nil, err
	}

	return &BardPushResult{
		UserID:         user.ID,
		AgentRunID:     run.ID,
		PushMessageID:  push.ID,
		DeliveryStatus: deliveryStatus,
		LineRequestID:  lineRequestID,
		MessagePreview: finalBody,
	}, nil
}

// ensureUser upserts the recipient and refreshes the display name when one
// is supplied.
func (s *BardService) ensureUser(ctx context.Context, lineUserID string, displayName *string) (*model.User, error) {
	user, err := s.store.Users().Activate(ctx, lineUserID)
	if err != nil {
		return nil, err
	}
	if displayName != nil && (user.DisplayName == nil || *user.DisplayName != *displayName) {
		user.DisplayName = displayName
		if err := s.store.Users().Update(ctx, user); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// pushSource prefers the newest successful translation over the raw feed
// text and reports which translation row was used.
func (s *BardService) pushSource(ctx context.Context, item *model.RawItem) (title, summary string, translationID *uint64) {
	title, summary = item.Title, item.Summary
	tr, err := s.store.Translations().GetLatestDone(ctx, item.ItemID, s.targetLang)
	if err != nil {
		return title, summary, nil
	}
	return firstNonEmpty(tr.TranslatedTitle, title), firstNonEmpty(tr.TranslatedSummary, summary), &tr.ID
}

func (s *BardService) generate(ctx context.Context, title, summary, url string) (finalTitle, finalBody string, usage *llm.TokenUsage, err error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: bardPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("title:\n%s\n\nsummary:\n%s\n\nurl:\n%s", title, summary, url)},
	}

	resp, err := s.gateway.Chat(ctx, s.tenantID, messages)
	if err != nil {
		return "", "", nil, err
	}

	parsed := parseModelJSON(resp.Content)
	outTitle, _ := parsed["title"].(string)
	outBody, _ := parsed["message_body"].(string)

	finalTitle = truncateRunes(strings.TrimSpace(firstNonEmpty(outTitle, title)), bardTitleMaxRunes)
	finalBody = strings.TrimSpace(firstNonEmpty(outBody, summary+"\n\n"+url))
	return finalTitle, finalBody, resp.Usage, nil
}

func (s *BardService) recordRun(ctx context.Context, user *model.User, item *model.RawItem, usage *llm.TokenUsage, genErr error, latency time.Duration) *model.AgentRun {
	cfg, _ := s.gateway.Tenant(s.tenantID)

	status := model.AgentRunStatusDone
	var errMsg *string
	if genErr != nil {
		status = model.AgentRunStatusFailed
		errMsg = strptr(genErr.Error())
	}

	meta := model.JSONMap{
		"fallback_used": genErr != nil,
		"user_id":       user.ID,
		"latency_ms":    latency.Milliseconds(),
	}
	if usage != nil {
		meta["usage"] = map[string]any{
			"input_tokens":  usage.PromptTokens,
			"output_tokens": usage.CompletionTokens,
			"total_tokens":  usage.TotalTokens,
		}
	}

	run := &model.AgentRun{
		AgentName:     model.AgentBard,
		TenantID:      s.tenantID,
		SubjectID:     item.ItemID,
		PromptVersion: bardPromptVersion,
		Provider:      cfg.Provider,
		Model:         cfg.Model,
		Status:        status,
		Error:         errMsg,
		Meta:          meta,
	}
	if err := s.store.AgentRuns().Create(ctx, run); err != nil {
		logger.Errorw("Recording bard run failed", "item_id", item.ItemID, "error", err)
	}
	return run
}
