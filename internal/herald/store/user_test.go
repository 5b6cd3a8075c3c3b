package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserActivateCreatesWithDefaults(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()

	user, err := f.Users().Activate(ctx, "U1234")
	require.NoError(t, err)
	assert.Equal(t, "U1234", user.LineUserID)
	assert.Equal(t, "zh-TW", user.PreferredLang)
	assert.Equal(t, "UTC", user.Timezone)
	assert.Equal(t, 5, user.DailyQuestionLimit)
	assert.True(t, user.IsActive)
}

func TestUserActivateReactivatesExisting(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()

	first, err := f.Users().Activate(ctx, "U5678")
	require.NoError(t, err)

	require.NoError(t, f.Users().Deactivate(ctx, "U5678"))
	got, err := f.Users().GetByLineUserID(ctx, "U5678")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	again, err := f.Users().Activate(ctx, "U5678")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.IsActive)
}

func TestUserDeactivateUnknownIsNoop(t *testing.T) {
	f := newTestFactory(t)

	assert.NoError(t, f.Users().Deactivate(context.Background(), "Unope"))
}

func TestUserListActive(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()

	_, err := f.Users().Activate(ctx, "Ua")
	require.NoError(t, err)
	_, err = f.Users().Activate(ctx, "Ub")
	require.NoError(t, err)
	require.NoError(t, f.Users().Deactivate(ctx, "Ub"))

	active, err := f.Users().ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Ua", active[0].LineUserID)
}
