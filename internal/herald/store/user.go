package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kart-io/herald/internal/model"
)

type users struct {
	db *gorm.DB
}

func newUsers(db *gorm.DB) *users {
	return &users{db}
}

// Create creates a new user.
func (u *users) Create(ctx context.Context, user *model.User) error {
	return u.db.WithContext(ctx).Create(user).Error
}

// Update updates an existing user.
func (u *users) Update(ctx context.Context, user *model.User) error {
	return u.db.WithContext(ctx).Save(user).Error
}

// GetByLineUserID retrieves a user by LINE user id.
func (u *users) GetByLineUserID(ctx context.Context, lineUserID string) (*model.User, error) {
	var user model.User
	if err := u.db.WithContext(ctx).Where("line_user_id = ?", lineUserID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByUserID retrieves a user by internal id.
func (u *users) GetByUserID(ctx context.Context, userID uint64) (*model.User, error) {
	var user model.User
	if err := u.db.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Activate upserts the user by LINE user id and marks the row active.
func (u *users) Activate(ctx context.Context, lineUserID string) (*model.User, error) {
	existing, err := u.GetByLineUserID(ctx, lineUserID)
	if err == nil {
		if !existing.IsActive {
			existing.IsActive = true
			if err := u.db.WithContext(ctx).Save(existing).Error; err != nil {
				return nil, err
			}
		}
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := &model.User{
		LineUserID:         lineUserID,
		PreferredLang:      "zh-TW",
		Timezone:           "UTC",
		DailyQuestionLimit: 5,
		IsActive:           true,
	}
	if err := u.db.WithContext(ctx).Create(user).Error; err != nil {
		// Lost a creation race against a concurrent follow event.
		return u.GetByLineUserID(ctx, lineUserID)
	}
	return user, nil
}

// Deactivate marks the user inactive. Unknown users are a no-op.
func (u *users) Deactivate(ctx context.Context, lineUserID string) error {
	return u.db.WithContext(ctx).Model(&model.User{}).
		Where("line_user_id = ?", lineUserID).
		UpdateColumn("is_active", false).Error
}

// ListActive lists all active users.
func (u *users) ListActive(ctx context.Context) ([]*model.User, error) {
	var list []*model.User
	if err := u.db.WithContext(ctx).Where("is_active = ?", true).Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
