package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/kart-io/herald/internal/model"
)

type translations struct {
	db *gorm.DB
}

func newTranslations(db *gorm.DB) *translations {
	return &translations{db}
}

// Create records a translation attempt.
func (t *translations) Create(ctx context.Context, tr *model.ItemTranslation) error {
	return t.db.WithContext(ctx).Create(tr).Error
}

// GetLatest retrieves the most recent translation for an item and target
// language, whatever its status.
func (t *translations) GetLatest(ctx context.Context, itemID, targetLang string) (*model.ItemTranslation, error) {
	var tr model.ItemTranslation
	if err := t.db.WithContext(ctx).
		Where("item_id = ? AND target_lang = ?", itemID, targetLang).
		Order("id DESC").
		First(&tr).Error; err != nil {
		return nil, err
	}
	return &tr, nil
}

// GetLatestDone retrieves the most recent successful translation for an item
// and target language. A later failed retry never masks it.
func (t *translations) GetLatestDone(ctx context.Context, itemID, targetLang string) (*model.ItemTranslation, error) {
	var tr model.ItemTranslation
	if err := t.db.WithContext(ctx).
		Where("item_id = ? AND target_lang = ? AND status = ?", itemID, targetLang, model.TranslationStatusDone).
		Order("id DESC").
		First(&tr).Error; err != nil {
		return nil, err
	}
	return &tr, nil
}
