package model

import "time"

// Push message statuses.
const (
	PushStatusPending = "PENDING"
	PushStatusSent    = "SENT"
	PushStatusFailed  = "FAILED"
)

// PushMessage records one broadcast attempt to a LINE recipient, including
// the exact payload handed to the messaging API.
type PushMessage struct {
	ID            uint64    `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	UserID        *uint64   `json:"user_id" gorm:"index;column:user_id"`
	ItemID        *string   `json:"item_id" gorm:"size:128;index;column:item_id"`
	TranslationID *uint64   `json:"translation_id" gorm:"column:translation_id"`
	AgentRunID    *uint64   `json:"agent_run_id" gorm:"column:agent_run_id"`
	RecipientID   string    `json:"recipient_id" gorm:"size:128;not null;index;column:recipient_id"`
	Title         string    `json:"title" gorm:"size:1024;column:title"`
	Body          string    `json:"body" gorm:"type:text;column:body"`
	Payload       JSONMap   `json:"payload" gorm:"type:text;column:payload"`
	Status        string    `json:"status" gorm:"size:32;not null;column:status"`
	LineRequestID *string   `json:"line_request_id" gorm:"size:128;column:line_request_id"`
	Error         *string   `json:"error" gorm:"type:text;column:error"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
}

// TableName returns the table name of the PushMessage model.
func (PushMessage) TableName() string {
	return "push_messages"
}
