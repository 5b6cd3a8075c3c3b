package model

import "time"

// DailyQuotaUsage counts a user's questions for one local day. UsageDate is
// the user's local date rendered as YYYY-MM-DD, so the (UserID, UsageDate)
// pair is the whole identity of a counter row.
type DailyQuotaUsage struct {
	ID         uint64    `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	UserID     uint64    `json:"user_id" gorm:"not null;uniqueIndex:uk_quota_user_date;column:user_id"`
	UsageDate  string    `json:"usage_date" gorm:"size:10;not null;uniqueIndex:uk_quota_user_date;column:usage_date"`
	UsedCount  int       `json:"used_count" gorm:"not null;default:0;column:used_count"`
	LimitCount int       `json:"limit_count" gorm:"not null;default:5;column:limit_count"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime;column:updated_at"`
}

// TableName returns the table name of the DailyQuotaUsage model.
func (DailyQuotaUsage) TableName() string {
	return "daily_quota_usage"
}
