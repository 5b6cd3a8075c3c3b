package model

import "time"

// Agent run statuses.
const (
	AgentRunStatusDone     = "DONE"
	AgentRunStatusFailed   = "FAILED"
	AgentRunStatusRejected = "REJECTED"
)

// Agent names.
const (
	AgentBard       = "bard"
	AgentLorekeeper = "lorekeeper"
	AgentTranslator = "translator"
)

// AgentRun is an append-only audit record of one agent invocation.
// Rows are never updated after insert.
type AgentRun struct {
	ID            uint64    `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	AgentName     string    `json:"agent_name" gorm:"size:64;not null;index;column:agent_name"`
	TenantID      string    `json:"tenant_id" gorm:"size:128;column:tenant_id"`
	SubjectID     string    `json:"subject_id" gorm:"size:128;index;column:subject_id"`
	PromptVersion string    `json:"prompt_version" gorm:"size:32;column:prompt_version"`
	Provider      string    `json:"provider" gorm:"size:64;column:provider"`
	Model         string    `json:"model" gorm:"size:128;column:model"`
	Status        string    `json:"status" gorm:"size:32;not null;column:status"`
	Error         *string   `json:"error" gorm:"type:text;column:error"`
	Meta          JSONMap   `json:"meta" gorm:"type:text;column:meta"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
}

// TableName returns the table name of the AgentRun model.
func (AgentRun) TableName() string {
	return "agent_runs"
}
