package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/herald/internal/model"
)

type agentRuns struct {
	db *gorm.DB
}

func newAgentRuns(db *gorm.DB) *agentRuns {
	return &agentRuns{db}
}

// Create appends an agent run record.
func (a *agentRuns) Create(ctx context.Context, run *model.AgentRun) error {
	return a.db.WithContext(ctx).Create(run).Error
}

// ListByAgent lists runs of one agent, newest first.
func (a *agentRuns) ListByAgent(ctx context.Context, agentName string, limit int) ([]*model.AgentRun, error) {
	var list []*model.AgentRun
	if err := a.db.WithContext(ctx).
		Where("agent_name = ?", agentName).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
