package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/herald/internal/model"
)

type ragSpaces struct {
	db *gorm.DB
}

func newRAGSpaces(db *gorm.DB) *ragSpaces {
	return &ragSpaces{db}
}

// Get retrieves the retrieval space for a tenant.
func (r *ragSpaces) Get(ctx context.Context, tenantID string) (*model.RAGSpace, error) {
	var space model.RAGSpace
	if err := r.db.WithContext(ctx).Where("tenant_id = ?", tenantID).First(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

// Save creates or updates a tenant retrieval space.
func (r *ragSpaces) Save(ctx context.Context, space *model.RAGSpace) error {
	return r.db.WithContext(ctx).Save(space).Error
}
