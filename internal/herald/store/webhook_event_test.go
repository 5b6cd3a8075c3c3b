package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/herald/internal/model"
)

func TestWebhookEventMarkProcessedFirstTime(t *testing.T) {
	f := newTestFactory(t)

	ok, err := f.WebhookEvents().MarkProcessed(context.Background(),
		"evt-1", "message", "U1", model.JSONMap{"type": "message"}, time.Now().UTC())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWebhookEventMarkProcessedReplayIsSkipped(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()
	now := time.Now().UTC()

	ok, err := f.WebhookEvents().MarkProcessed(ctx, "evt-2", "follow", "U1", nil, now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = f.WebhookEvents().MarkProcessed(ctx, "evt-2", "follow", "U1", nil, now)
	require.NoError(t, err)
	assert.False(t, ok)
}
