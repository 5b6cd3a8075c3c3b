package model

import "time"

// WebhookEvent is a processed LINE webhook event. The unique LineEventID
// makes replayed deliveries insert-conflict instead of double-processing.
type WebhookEvent struct {
	ID          uint64    `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	LineEventID string    `json:"line_event_id" gorm:"size:128;not null;uniqueIndex:uk_webhook_events_event_id;column:line_event_id"`
	EventType   string    `json:"event_type" gorm:"size:64;not null;column:event_type"`
	LineUserID  string    `json:"line_user_id" gorm:"size:128;index;column:line_user_id"`
	Payload     JSONMap   `json:"payload" gorm:"type:text;column:payload"`
	ProcessedAt time.Time `json:"processed_at" gorm:"not null;column:processed_at"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
}

// TableName returns the table name of the WebhookEvent model.
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
