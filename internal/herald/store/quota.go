package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/herald/internal/model"
)

type quotas struct {
	db *gorm.DB
}

func newQuotas(db *gorm.DB) *quotas {
	return &quotas{db}
}

func quotaDecision(allowed bool, used, limit int) *QuotaDecision {
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return &QuotaDecision{Allowed: allowed, UsedCount: used, LimitCount: limit, Remaining: remaining}
}

// Consume takes one unit of quota for (userID, usageDate). The increment is a
// single conditional UPDATE so concurrent callers can never push used_count
// past limit_count. Storage errors degrade to a denial with the caller's
// limit instead of surfacing as failures.
func (q *quotas) Consume(ctx context.Context, userID uint64, usageDate string, limitCount int) (*QuotaDecision, error) {
	res := q.db.WithContext(ctx).Model(&model.DailyQuotaUsage{}).
		Where("user_id = ? AND usage_date = ? AND used_count < limit_count", userID, usageDate).
		UpdateColumn("used_count", gorm.Expr("used_count + 1"))
	if res.Error == nil && res.RowsAffected == 1 {
		row, err := q.Get(ctx, userID, usageDate)
		if err != nil {
			return quotaDecision(true, 1, limitCount), nil
		}
		return quotaDecision(true, row.UsedCount, row.LimitCount), nil
	}
	if res.Error != nil {
		return quotaDecision(false, limitCount, limitCount), nil
	}

	// No row updated: either the day has no counter yet or the counter is
	// exhausted. Try to create the first-use row; the unique index resolves
	// the race with other first users.
	row := &model.DailyQuotaUsage{
		UserID:     userID,
		UsageDate:  usageDate,
		UsedCount:  1,
		LimitCount: limitCount,
	}
	cres := q.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "usage_date"}},
		DoNothing: true,
	}).Create(row)
	if cres.Error == nil && cres.RowsAffected == 1 {
		return quotaDecision(true, 1, limitCount), nil
	}

	if cres.Error == nil {
		// Lost the insert race: one more conditional increment before
		// reporting exhaustion.
		res = q.db.WithContext(ctx).Model(&model.DailyQuotaUsage{}).
			Where("user_id = ? AND usage_date = ? AND used_count < limit_count", userID, usageDate).
			UpdateColumn("used_count", gorm.Expr("used_count + 1"))
		if res.Error == nil && res.RowsAffected == 1 {
			current, err := q.Get(ctx, userID, usageDate)
			if err != nil {
				return quotaDecision(true, 1, limitCount), nil
			}
			return quotaDecision(true, current.UsedCount, current.LimitCount), nil
		}
	}

	current, err := q.Get(ctx, userID, usageDate)
	if err != nil {
		return quotaDecision(false, limitCount, limitCount), nil
	}
	return quotaDecision(false, current.UsedCount, current.LimitCount), nil
}

// Get retrieves the quota counter for a user and local date.
func (q *quotas) Get(ctx context.Context, userID uint64, usageDate string) (*model.DailyQuotaUsage, error) {
	var row model.DailyQuotaUsage
	if err := q.db.WithContext(ctx).
		Where("user_id = ? AND usage_date = ?", userID, usageDate).
		First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}
