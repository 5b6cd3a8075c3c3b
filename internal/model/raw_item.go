package model

import "time"

// Raw item lifecycle statuses.
const (
	ItemStatusRaw        = "RAW"
	ItemStatusTranslated = "TRANSLATED"
	ItemStatusFailed     = "FAILED"
)

// RawItem is one canonicalized feed entry. DedupKey carries the content
// identity; the surrogate ID only orders rows.
type RawItem struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	ItemID      string    `json:"item_id" gorm:"size:128;not null;index;column:item_id"`
	SourceID    string    `json:"source_id" gorm:"size:128;column:source_id"`
	SourceKey   string    `json:"source_key" gorm:"size:128;not null;index;column:source_key"`
	URL         string    `json:"url" gorm:"size:2048;column:url"`
	Title       string    `json:"title" gorm:"size:1024;column:title"`
	Summary     string    `json:"summary" gorm:"type:text;column:summary"`
	PublishedAt *string   `json:"published_at" gorm:"size:64;column:published_at"`
	FetchedAt   time.Time `json:"fetched_at" gorm:"not null;column:fetched_at"`
	Lang        string    `json:"lang" gorm:"size:16;not null;default:en;column:lang"`
	DedupKey    string    `json:"dedup_key" gorm:"size:64;not null;uniqueIndex:uk_raw_items_dedup_key;column:dedup_key"`
	Rights      string    `json:"rights" gorm:"type:text;column:rights"`
	Raw         JSONMap   `json:"raw" gorm:"type:text;column:raw"`
	Status      string    `json:"status" gorm:"size:32;not null;default:RAW;column:status"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime;column:updated_at"`
}

// TableName returns the table name of the RawItem model.
func (RawItem) TableName() string {
	return "raw_items"
}
