// Package handler exposes the Herald services over HTTP.
package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/herald/internal/herald/biz"
	"github.com/kart-io/herald/internal/model"
	"github.com/kart-io/herald/internal/pkg/httputils"
	"github.com/kart-io/herald/pkg/errors"
)

// IngestHandler handles raw item ingestion requests.
type IngestHandler struct {
	svc *biz.IngestService
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(svc *biz.IngestService) *IngestHandler {
	return &IngestHandler{svc: svc}
}

// RawItemResponse mirrors the canonical record plus the upsert outcome.
type RawItemResponse struct {
	ItemID      string         `json:"item_id"`
	SourceID    string         `json:"source_id"`
	SourceKey   string         `json:"source_key"`
	URL         string         `json:"url"`
	Title       string         `json:"title"`
	Summary     string         `json:"summary"`
	PublishedAt *string        `json:"published_at"`
	FetchedAt   string         `json:"fetched_at"`
	Lang        string         `json:"lang"`
	DedupKey    string         `json:"dedup_key"`
	Rights      string         `json:"rights"`
	Raw         model.JSONMap  `json:"raw"`
	Status      string         `json:"status"`
	Inserted    bool           `json:"inserted"`
	Translation *TranslationIn `json:"translation,omitempty"`
}

// TranslationIn summarizes the translation stage outcome inside the ingest
// response.
type TranslationIn struct {
	ID         uint64 `json:"id"`
	Status     string `json:"status"`
	TargetLang string `json:"target_lang"`
	Error      string `json:"error,omitempty"`
}

// IngestRawItem handles POST /v1/rss/ingest/rawitem.
func (h *IngestHandler) IngestRawItem(c *gin.Context) {
	var req biz.IngestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputils.WriteResponse(c, errors.ErrBadRequest.WithMessage(err.Error()), nil)
		return
	}
	if req.Source.SourceKey == "" {
		httputils.WriteResponse(c, errors.ErrMissingParam.WithMessage("source.source_key is required"), nil)
		return
	}

	result, err := h.svc.IngestRawItem(c.Request.Context(), &req)
	if err != nil {
		httputils.WriteResponse(c, err, nil)
		return
	}

	httputils.WriteResponse(c, nil, toRawItemResponse(result))
}

func toRawItemResponse(result *biz.IngestResult) *RawItemResponse {
	item := result.Item
	resp := &RawItemResponse{
		ItemID:      item.ItemID,
		SourceID:    item.SourceID,
		SourceKey:   item.SourceKey,
		URL:         item.URL,
		Title:       item.Title,
		Summary:     item.Summary,
		PublishedAt: item.PublishedAt,
		FetchedAt:   item.FetchedAt.UTC().Format(time.RFC3339),
		Lang:        item.Lang,
		DedupKey:    item.DedupKey,
		Rights:      item.Rights,
		Raw:         item.Raw,
		Status:      item.Status,
		Inserted:    result.Inserted,
	}
	if result.Translation != nil {
		resp.Translation = &TranslationIn{
			ID:         result.Translation.TranslationID,
			Status:     result.Translation.Status,
			TargetLang: result.Translation.TargetLang,
			Error:      result.Translation.Error,
		}
	}
	return resp
}
