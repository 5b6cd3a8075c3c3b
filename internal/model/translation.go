package model

import "time"

// Translation statuses.
const (
	TranslationStatusDone   = "DONE"
	TranslationStatusFailed = "FAILED"
)

// ItemTranslation records one translation attempt for a raw item.
// SourceTextHash covers the exact source text fed to the model so retries
// against changed content are distinguishable.
type ItemTranslation struct {
	ID                uint64    `json:"id" gorm:"primaryKey;autoIncrement;column:id"`
	ItemID            string    `json:"item_id" gorm:"size:128;not null;index;column:item_id"`
	TargetLang        string    `json:"target_lang" gorm:"size:16;not null;column:target_lang"`
	TranslatedTitle   string    `json:"translated_title" gorm:"size:1024;column:translated_title"`
	TranslatedSummary string    `json:"translated_summary" gorm:"type:text;column:translated_summary"`
	TranslatedContent *string   `json:"translated_content" gorm:"type:text;column:translated_content"`
	SourceTextHash    string    `json:"source_text_hash" gorm:"size:64;not null;column:source_text_hash"`
	Provider          string    `json:"provider" gorm:"size:64;column:provider"`
	Model             string    `json:"model" gorm:"size:128;column:model"`
	PromptVersion     string    `json:"prompt_version" gorm:"size:32;not null;column:prompt_version"`
	Status            string    `json:"status" gorm:"size:32;not null;column:status"`
	Error             *string   `json:"error" gorm:"type:text;column:error"`
	CreatedAt         time.Time `json:"created_at" gorm:"autoCreateTime;column:created_at"`
}

// TableName returns the table name of the ItemTranslation model.
func (ItemTranslation) TableName() string {
	return "item_translations"
}
