package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/herald/internal/model"
)

type pushes struct {
	db *gorm.DB
}

func newPushes(db *gorm.DB) *pushes {
	return &pushes{db}
}

// Create records a push attempt.
func (p *pushes) Create(ctx context.Context, msg *model.PushMessage) error {
	return p.db.WithContext(ctx).Create(msg).Error
}

// ListByRecipient lists pushes to one recipient, newest first.
func (p *pushes) ListByRecipient(ctx context.Context, recipientID string, limit int) ([]*model.PushMessage, error) {
	var list []*model.PushMessage
	if err := p.db.WithContext(ctx).
		Where("recipient_id = ?", recipientID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
