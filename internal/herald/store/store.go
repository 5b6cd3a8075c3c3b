package store

import (
	"context"
	"time"

	"github.com/kart-io/herald/internal/model"
)

// Factory defines the factory interface for creating stores.
type Factory interface {
	Items() ItemStore
	Sources() SourceStore
	Translations() TranslationStore
	Users() UserStore
	Quotas() QuotaStore
	Queries() QueryStore
	Pushes() PushStore
	WebhookEvents() WebhookEventStore
	AgentRuns() AgentRunStore
	RAGSpaces() RAGSpaceStore
	Close() error
}

// UpsertResult reports the outcome of a dedup-keyed item upsert.
type UpsertResult struct {
	ItemID   string
	DedupKey string
	Inserted bool
}

// ItemStore defines the raw item storage interface.
type ItemStore interface {
	// Upsert inserts the item or, when the dedup key already exists, only
	// refreshes fetched_at on the existing row. Inserted reports which
	// branch ran.
	Upsert(ctx context.Context, item *model.RawItem) (*UpsertResult, error)
	GetByDedupKey(ctx context.Context, dedupKey string) (*model.RawItem, error)
	GetByItemID(ctx context.Context, itemID string) (*model.RawItem, error)
	UpdateStatus(ctx context.Context, itemID, status string) error
	ListByStatus(ctx context.Context, status string, limit int) ([]*model.RawItem, error)
}

// SourceStore defines the feed source storage interface.
type SourceStore interface {
	Create(ctx context.Context, source *model.Source) error
	Get(ctx context.Context, sourceKey string) (*model.Source, error)
	// ValidateRef checks id and key together against an enabled source.
	ValidateRef(ctx context.Context, sourceID, sourceKey string) (bool, error)
	List(ctx context.Context, activeOnly bool) ([]*model.Source, error)
}

// TranslationStore defines the translation record storage interface.
type TranslationStore interface {
	Create(ctx context.Context, tr *model.ItemTranslation) error
	GetLatest(ctx context.Context, itemID, targetLang string) (*model.ItemTranslation, error)
	// GetLatestDone returns the newest DONE row only, so failed retries
	// never shadow a usable translation.
	GetLatestDone(ctx context.Context, itemID, targetLang string) (*model.ItemTranslation, error)
}

// UserStore defines the LINE user storage interface.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
	GetByLineUserID(ctx context.Context, lineUserID string) (*model.User, error)
	GetByUserID(ctx context.Context, userID uint64) (*model.User, error)
	// Activate upserts by LINE user id and marks the row active.
	Activate(ctx context.Context, lineUserID string) (*model.User, error)
	Deactivate(ctx context.Context, lineUserID string) error
	ListActive(ctx context.Context) ([]*model.User, error)
}

// QuotaDecision is the result of a quota consumption attempt. Remaining is
// the units left for the day after this attempt, never negative.
type QuotaDecision struct {
	Allowed    bool `json:"allowed"`
	UsedCount  int  `json:"used_count"`
	LimitCount int  `json:"limit_count"`
	Remaining  int  `json:"remaining"`
}

// QuotaStore defines the daily quota storage interface.
type QuotaStore interface {
	// Consume atomically takes one unit of the user's quota for the given
	// local date. It never exceeds the limit under concurrency; on a
	// storage failure it returns a denial rather than an error.
	Consume(ctx context.Context, userID uint64, usageDate string, limitCount int) (*QuotaDecision, error)
	Get(ctx context.Context, userID uint64, usageDate string) (*model.DailyQuotaUsage, error)
}

// QueryStore defines the user query storage interface.
type QueryStore interface {
	Create(ctx context.Context, q *model.UserQuery) error
	ListByUser(ctx context.Context, userID uint64, limit int) ([]*model.UserQuery, error)
}

// PushStore defines the push message storage interface.
type PushStore interface {
	Create(ctx context.Context, p *model.PushMessage) error
	ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*model.PushMessage, error)
}

// WebhookEventStore defines the webhook event storage interface.
type WebhookEventStore interface {
	// MarkProcessed records the event id. It returns false without error
	// when the id was already recorded, so replays can be skipped.
	MarkProcessed(ctx context.Context, eventID, eventType, lineUserID string, payload model.JSONMap, processedAt time.Time) (bool, error)
}

// AgentRunStore defines the agent run audit storage interface.
type AgentRunStore interface {
	Create(ctx context.Context, run *model.AgentRun) error
	ListByAgent(ctx context.Context, agentName string, limit int) ([]*model.AgentRun, error)
}

// RAGSpaceStore defines the tenant retrieval space storage interface.
type RAGSpaceStore interface {
	Get(ctx context.Context, tenantID string) (*model.RAGSpace, error)
	Save(ctx context.Context, space *model.RAGSpace) error
}
