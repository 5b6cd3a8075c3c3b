package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/herald/internal/model"
)

type queries struct {
	db *gorm.DB
}

func newQueries(db *gorm.DB) *queries {
	return &queries{db}
}

// Create records a user question and its outcome.
func (q *queries) Create(ctx context.Context, query *model.UserQuery) error {
	return q.db.WithContext(ctx).Create(query).Error
}

// ListByUser lists a user's questions, newest first.
func (q *queries) ListByUser(ctx context.Context, userID uint64, limit int) ([]*model.UserQuery, error) {
	var list []*model.UserQuery
	if err := q.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
