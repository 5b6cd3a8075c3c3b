package model

import "time"

// User is a LINE follower of the bot. LineUserID is the identity handed to us
// by the platform; activation flips on follow/unfollow events.
type User struct {
	ID                 uint64    `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	LineUserID         string    `json:"line_user_id" gorm:"size:128;not null;uniqueIndex:uk_users_line_user_id;column:line_user_id"`
	DisplayName        *string   `json:"display_name" gorm:"size:256;column:display_name"`
	PreferredLang      string    `json:"preferred_lang" gorm:"size:16;not null;default:zh-TW;column:preferred_lang"`
	Timezone           string    `json:"timezone" gorm:"size:64;not null;default:UTC;column:timezone"`
	DailyQuestionLimit int       `json:"daily_question_limit" gorm:"not null;default:5;column:daily_question_limit"`
	IsActive           bool      `json:"is_active" gorm:"not null;default:true;column:is_active"`
	CreatedAt          time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
	UpdatedAt          time.Time `json:"updated_at" gorm:"autoUpdateTime;column:updated_at"`
}

// TableName returns the table name of the User model.
func (User) TableName() string {
	return "users"
}
