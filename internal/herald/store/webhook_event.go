package store

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/herald/internal/model"
)

type webhookEvents struct {
	db *gorm.DB
}

func newWebhookEvents(db *gorm.DB) *webhookEvents {
	return &webhookEvents{db}
}

// MarkProcessed inserts the event id. A conflict on the unique event id
// means the event was already handled; that case reports false, nil.
func (w *webhookEvents) MarkProcessed(ctx context.Context, eventID, eventType, lineUserID string, payload model.JSONMap, processedAt time.Time) (bool, error) {
	event := &model.WebhookEvent{
		LineEventID: eventID,
		EventType:   eventType,
		LineUserID:  lineUserID,
		Payload:     payload,
		ProcessedAt: processedAt,
	}
	res := w.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "line_event_id"}},
		DoNothing: true,
	}).Create(event)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
