package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/herald/internal/model"
)

type items struct {
	db *gorm.DB
}

func newItems(db *gorm.DB) *items {
	return &items{db}
}

// Upsert inserts a new item keyed by dedup_key. On conflict only fetched_at
// is refreshed; every other column of the existing row is kept.
func (i *items) Upsert(ctx context.Context, item *model.RawItem) (*UpsertResult, error) {
	res := i.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "dedup_key"}},
		DoNothing: true,
	}).Create(item)
	if res.Error != nil {
		return nil, res.Error
	}

	if res.RowsAffected == 1 {
		return &UpsertResult{
			ItemID:   item.ItemID,
			DedupKey: item.DedupKey,
			Inserted: true,
		}, nil
	}

	// Conflict path: touch fetched_at on the surviving row and report its
	// item id, which may differ from the one we just computed only in
	// pathological hash collisions.
	if err := i.db.WithContext(ctx).Model(&model.RawItem{}).
		Where("dedup_key = ?", item.DedupKey).
		UpdateColumn("fetched_at", item.FetchedAt).Error; err != nil {
		return nil, err
	}

	existing, err := i.GetByDedupKey(ctx, item.DedupKey)
	if err != nil {
		return nil, err
	}
	return &UpsertResult{
		ItemID:   existing.ItemID,
		DedupKey: existing.DedupKey,
		Inserted: false,
	}, nil
}

// GetByDedupKey retrieves an item by its dedup key.
func (i *items) GetByDedupKey(ctx context.Context, dedupKey string) (*model.RawItem, error) {
	var item model.RawItem
	if err := i.db.WithContext(ctx).Where("dedup_key = ?", dedupKey).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// GetByItemID retrieves an item by its stable item id.
func (i *items) GetByItemID(ctx context.Context, itemID string) (*model.RawItem, error) {
	var item model.RawItem
	if err := i.db.WithContext(ctx).Where("item_id = ?", itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateStatus sets the lifecycle status of an item.
func (i *items) UpdateStatus(ctx context.Context, itemID, status string) error {
	return i.db.WithContext(ctx).Model(&model.RawItem{}).
		Where("item_id = ?", itemID).
		UpdateColumn("status", status).Error
}

// ListByStatus lists items in a given lifecycle status, oldest first.
func (i *items) ListByStatus(ctx context.Context, status string, limit int) ([]*model.RawItem, error) {
	var list []*model.RawItem
	if err := i.db.WithContext(ctx).
		Where("status = ?", status).
		Order("id ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
