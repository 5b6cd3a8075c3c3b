package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/kart-io/herald/internal/herald/store"
	"github.com/kart-io/herald/internal/model"
	"github.com/kart-io/herald/pkg/llm"
	"github.com/kart-io/herald/pkg/utils/json"
)

const translationPromptVersion = "v1"

const translationPrompt = "You are a precise news translator. " +
	"Translate input to Traditional Chinese (zh-TW). " +
	"Keep facts, names, numbers unchanged when needed. " +
	"Return only translated text fields."

// TranslationOut is the structured shape the model must return.
type TranslationOut struct {
	TranslatedTitle   string  `json:"translated_title"`
	TranslatedSummary string  `json:"translated_summary"`
	TranslatedContent *string `json:"translated_content,omitempty"`
}

// translationSchema is the JSON Schema handed to providers with structured
// output support.
var translationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"translated_title":   map[string]any{"type": "string"},
		"translated_summary": map[string]any{"type": "string"},
		"translated_content": map[string]any{"type": []string{"string", "null"}},
	},
	"required":             []string{"translated_title", "translated_summary"},
	"additionalProperties": false,
}

// TranslationOutcome summarizes what the translation stage did with one
// ingested item.
type TranslationOutcome struct {
	TranslationID uint64
	Status        string
	TargetLang    string
	Error         string
}

// TranslationService translates freshly inserted items and records every
// attempt, failed ones included.
type TranslationService struct {
	store      store.Factory
	gateway    ChatGateway
	tenantID   string
	targetLang string
}

var _ IngestStage = (*TranslationService)(nil)

// NewTranslationService creates a new TranslationService targeting zh-TW.
func NewTranslationService(store store.Factory, gateway ChatGateway, tenantID string) *TranslationService {
	if tenantID == "" {
		tenantID = DefaultTenantID
	}
	return &TranslationService{
		store:      store,
		gateway:    gateway,
		tenantID:   tenantID,
		targetLang: "zh-TW",
	}
}

// Run translates the item when this ingestion inserted it. Re-fetches of an
// already-seen item never re-trigger translation. Failures are recorded on
// the translation row and never propagate to the ingestion caller.
func (s *TranslationService) Run(ctx context.Context, res *IngestResult) {
	if !res.Inserted || res.Item == nil {
		return
	}

	item := res.Item
	content := extractSourceContent(item.Raw)
	sourceHash := sourceTextHash(item.Title, item.Summary, content)
	provider, modelName := s.tenantBackend()

	translated, err := s.translate(ctx, item.Title, item.Summary, content)
	if err != nil {
		logger.Errorw("Item translation failed", "item_id", item.ItemID, "error", err)
		errMsg := truncateRunes(err.Error(), 2000)
		row := &model.ItemTranslation{
			ItemID:         item.ItemID,
			TargetLang:     s.targetLang,
			SourceTextHash: sourceHash,
			Provider:       provider,
			Model:          modelName,
			PromptVersion:  translationPromptVersion,
			Status:         model.TranslationStatusFailed,
			Error:          &errMsg,
		}
		if err := s.store.Translations().Create(ctx, row); err != nil {
			logger.Errorw("Recording failed translation failed", "item_id", item.ItemID, "error", err)
			return
		}
		_ = s.store.Items().UpdateStatus(ctx, item.ItemID, model.ItemStatusFailed)
		res.Translation = &TranslationOutcome{
			TranslationID: row.ID,
			Status:        model.TranslationStatusFailed,
			TargetLang:    s.targetLang,
			Error:         errMsg,
		}
		return
	}

	row := &model.ItemTranslation{
		ItemID:            item.ItemID,
		TargetLang:        s.targetLang,
		TranslatedTitle:   translated.TranslatedTitle,
		TranslatedSummary: translated.TranslatedSummary,
		TranslatedContent: translated.TranslatedContent,
		SourceTextHash:    sourceHash,
		Provider:          provider,
		Model:             modelName,
		PromptVersion:     translationPromptVersion,
		Status:            model.TranslationStatusDone,
	}
	if err := s.store.Translations().Create(ctx, row); err != nil {
		logger.Errorw("Recording translation failed", "item_id", item.ItemID, "error", err)
		return
	}
	_ = s.store.Items().UpdateStatus(ctx, item.ItemID, model.ItemStatusTranslated)
	res.Translation = &TranslationOutcome{
		TranslationID: row.ID,
		Status:        model.TranslationStatusDone,
		TargetLang:    s.targetLang,
	}
}

func (s *TranslationService) translate(ctx context.Context, title, summary, content string) (*TranslationOut, error) {
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: translationPrompt},
		{Role: llm.RoleUser, Content: fmt.Sprintf("title:\n%s\n\nsummary:\n%s\n\ncontent:\n%s", title, summary, content)},
	}

	resp, err := s.gateway.ChatStructured(ctx, s.tenantID, messages, "translation", translationSchema)
	if err != nil {
		return nil, err
	}

	var out TranslationOut
	if err := json.Unmarshal([]byte(resp.Content), &out); err != nil {
		return nil, fmt.Errorf("decode translation output: %w", err)
	}
	return &out, nil
}

func (s *TranslationService) tenantBackend() (provider, modelName string) {
	cfg, ok := s.gateway.Tenant(s.tenantID)
	if !ok {
		return "", ""
	}
	return cfg.Provider, cfg.Model
}

// extractSourceContent pulls the article body out of the opaque feed
// payload, trying the common RSS field spellings in order.
func extractSourceContent(raw model.JSONMap) string {
	for _, key := range []string{"content", "content:encoded", "description"} {
		if v, ok := raw[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// sourceTextHash addresses the exact source text fed to the model, so a
// retry against changed content is distinguishable from a plain retry.
func sourceTextHash(title, summary, content string) string {
	sum := sha256.Sum256([]byte(title + "\n" + summary + "\n" + content))
	return hex.EncodeToString(sum[:])
}
