package model

import "time"

// User query statuses.
const (
	QueryStatusAnswered = "ANSWERED"
	QueryStatusRejected = "REJECTED"
	QueryStatusFailed   = "FAILED"
)

// UserQuery is one question asked through the bot, with the retrieval
// evidence and the graph execution plan recorded next to the answer.
type UserQuery struct {
	ID             uint64    `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	UserID         uint64    `json:"user_id" gorm:"not null;index;column:user_id"`
	Question       string    `json:"question" gorm:"type:text;not null;column:question"`
	Answer         *string   `json:"answer" gorm:"type:text;column:answer"`
	Status         string    `json:"status" gorm:"size:32;not null;column:status"`
	RejectedReason *string   `json:"rejected_reason" gorm:"size:128;column:rejected_reason"`
	RAGProvider    string    `json:"rag_provider" gorm:"size:64;column:rag_provider"`
	RAGSpaceKey    string    `json:"rag_space_key" gorm:"size:128;column:rag_space_key"`
	RAGMode        string    `json:"rag_mode" gorm:"size:32;column:rag_mode"`
	RAGRefs        JSONArray `json:"rag_refs" gorm:"type:text;column:rag_refs"`
	GraphPlan      JSONMap   `json:"graph_plan" gorm:"type:text;column:graph_plan"`
	PromptVersion  string    `json:"prompt_version" gorm:"size:32;column:prompt_version"`
	Error          *string   `json:"error" gorm:"type:text;column:error"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
}

// TableName returns the table name of the UserQuery model.
func (UserQuery) TableName() string {
	return "user_queries"
}
