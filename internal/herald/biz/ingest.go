package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/kart-io/herald/internal/herald/store"
	"github.com/kart-io/herald/internal/model"
	"github.com/kart-io/herald/pkg/errors"
	"github.com/kart-io/herald/pkg/utils/json"
)

// SourceRef identifies the registered feed a payload came from.
type SourceRef struct {
	SourceID  string `json:"source_id" binding:"required"`
	SourceKey string `json:"source_key" binding:"required"`
}

// FeedItem is one entry as feed parsers hand it over. Parsers disagree on
// field names, so every alternative spelling is kept optional here and
// resolved by the canonicalizer.
type FeedItem struct {
	Link           string `json:"link"`
	URL            string `json:"url"`
	GUID           string `json:"guid"`
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	ContentSnippet string `json:"contentSnippet"`
	Content        string `json:"content"`
	ISODate        string `json:"isoDate"`
	PubDate        string `json:"pubDate"`
	Creator        string `json:"creator"`
	Rights         any    `json:"rights"`
	Raw            any    `json:"raw"`
}

// IngestRequest is the payload of one raw item ingestion call.
type IngestRequest struct {
	Source SourceRef `json:"source" binding:"required"`
	Item   FeedItem  `json:"item" binding:"required"`
}

// IngestResult is the outcome of one ingestion: the canonical row, whether
// this was the first-ever insert for its dedup key, and what the attached
// pipeline stages did.
type IngestResult struct {
	Item        *model.RawItem
	Inserted    bool
	Translation *TranslationOutcome
}

// IngestStage runs after a successful upsert. Stages handle their own
// failures; a stage error never fails the ingestion.
type IngestStage interface {
	Run(ctx context.Context, res *IngestResult)
}

// defaultRights is the usage policy applied when the feed carries none.
const defaultRights = `{"store_fulltext": false, "mode": "rss_summary_link_only"}`

// IngestService canonicalizes feed entries and writes them through the
// dedup-keyed item store.
type IngestService struct {
	store  store.Factory
	stages []IngestStage
	now    func() time.Time
}

// NewIngestService creates a new IngestService. Stages run in order after
// each upsert.
func NewIngestService(store store.Factory, stages ...IngestStage) *IngestService {
	return &IngestService{store: store, stages: stages, now: time.Now}
}

// IngestRawItem validates the source, canonicalizes the entry, upserts it by
// dedup key and runs the attached pipeline stages.
func (s *IngestService) IngestRawItem(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	ok, err := s.store.Sources().ValidateRef(ctx, req.Source.SourceID, req.Source.SourceKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.ErrSourceInvalid
	}

	item := Canonicalize(req.Source, req.Item, s.now().UTC())
	upsert, err := s.store.Items().Upsert(ctx, item)
	if err != nil {
		return nil, err
	}

	result := &IngestResult{Item: item, Inserted: upsert.Inserted}
	for _, stage := range s.stages {
		stage.Run(ctx, result)
	}
	return result, nil
}

// Canonicalize normalizes one feed entry into a RawItem. The dedup key is
// the content address: SHA-256 over source key, guid, url, title and the
// published date joined with literal "||" separators, missing parts
// substituted with the empty string. This exact composition is the dedup
// contract; changing it orphans every previously stored item.
func Canonicalize(source SourceRef, item FeedItem, fetchedAt time.Time) *model.RawItem {
	url := firstNonEmpty(item.Link, item.URL)
	summary := firstNonEmpty(item.Summary, item.ContentSnippet, item.Content)
	published := firstNonEmpty(item.ISODate, item.PubDate)

	dedupInput := fmt.Sprintf("%s||%s||%s||%s||%s", source.SourceKey, item.GUID, url, item.Title, published)
	sum := sha256.Sum256([]byte(dedupInput))
	dedupKey := hex.EncodeToString(sum[:])

	return &model.RawItem{
		ItemID:      source.SourceKey + ":sha256:" + dedupKey,
		SourceID:    source.SourceID,
		SourceKey:   source.SourceKey,
		URL:         url,
		Title:       item.Title,
		Summary:     summary,
		PublishedAt: strptr(published),
		FetchedAt:   fetchedAt,
		Lang:        "en",
		DedupKey:    dedupKey,
		Rights:      normalizeRights(item.Rights),
		Raw:         normalizeRaw(item.Raw),
		Status:      model.ItemStatusRaw,
	}
}

// normalizeRaw keeps the opaque payload as a JSON object: maps pass through,
// JSON-object strings parse, everything else collapses to an empty map.
func normalizeRaw(value any) model.JSONMap {
	switch v := value.(type) {
	case nil:
		return model.JSONMap{}
	case model.JSONMap:
		return v
	case map[string]any:
		return v
	case string:
		var parsed map[string]any
		if err := json.Unmarshal([]byte(v), &parsed); err != nil || parsed == nil {
			return model.JSONMap{}
		}
		return parsed
	default:
		return model.JSONMap{}
	}
}

// normalizeRights stringifies the usage policy: strings pass through, other
// values JSON-encode, and anything unencodable falls back to fmt printing.
func normalizeRights(value any) string {
	switch v := value.(type) {
	case nil:
		return defaultRights
	case string:
		return v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(encoded)
	}
}
