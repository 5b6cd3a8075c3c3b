package model

import "time"

// Source is a registered upstream feed.
type Source struct {
	ID        uint64    `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	SourceKey string    `json:"source_key" gorm:"size:128;not null;uniqueIndex:uk_sources_source_key;column:source_key"`
	Name      string    `json:"name" gorm:"size:256;column:name"`
	FeedURL   string    `json:"feed_url" gorm:"size:2048;column:feed_url"`
	Lang      string    `json:"lang" gorm:"size:16;not null;default:en;column:lang"`
	Rights    string    `json:"rights" gorm:"type:text;column:rights"`
	IsActive  bool      `json:"is_active" gorm:"not null;default:true;column:is_active"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime;column:updated_at"`
}

// TableName returns the table name of the Source model.
func (Source) TableName() string {
	return "sources"
}
