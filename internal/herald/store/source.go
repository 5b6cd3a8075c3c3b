package store

import (
	"context"
	"strconv"

	"gorm.io/gorm"

	"github.com/kart-io/herald/internal/model"
)

type sources struct {
	db *gorm.DB
}

func newSources(db *gorm.DB) *sources {
	return &sources{db}
}

// Create registers a new feed source.
func (s *sources) Create(ctx context.Context, source *model.Source) error {
	return s.db.WithContext(ctx).Create(source).Error
}

// Get retrieves a source by its source key.
func (s *sources) Get(ctx context.Context, sourceKey string) (*model.Source, error) {
	var source model.Source
	if err := s.db.WithContext(ctx).Where("source_key = ?", sourceKey).First(&source).Error; err != nil {
		return nil, err
	}
	return &source, nil
}

// ValidateRef reports whether an enabled source matches both identifiers.
// The id travels as a string on the wire; a non-numeric id never matches.
func (s *sources) ValidateRef(ctx context.Context, sourceID, sourceKey string) (bool, error) {
	id, err := strconv.ParseUint(sourceID, 10, 64)
	if err != nil {
		return false, nil
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Source{}).
		Where("id = ? AND source_key = ? AND is_active = ?", id, sourceKey, true).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count == 1, nil
}

// List lists sources, optionally only active ones.
func (s *sources) List(ctx context.Context, activeOnly bool) ([]*model.Source, error) {
	var list []*model.Source
	tx := s.db.WithContext(ctx)
	if activeOnly {
		tx = tx.Where("is_active = ?", true)
	}
	if err := tx.Order("id ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
