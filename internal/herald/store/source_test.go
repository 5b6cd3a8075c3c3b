package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/herald/internal/model"
)

func TestSourceValidateRef(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()

	require.NoError(t, f.Sources().Create(ctx, &model.Source{SourceKey: "rss:bbc", Name: "BBC", IsActive: true}))
	require.NoError(t, f.Sources().Create(ctx, &model.Source{SourceKey: "rss:old", Name: "Old", IsActive: false}))

	src, err := f.Sources().Get(ctx, "rss:bbc")
	require.NoError(t, err)

	ok, err := f.Sources().ValidateRef(ctx, "1", "rss:bbc")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(1), src.ID)

	// id and key must match the same row
	ok, err = f.Sources().ValidateRef(ctx, "2", "rss:bbc")
	require.NoError(t, err)
	assert.False(t, ok)

	// disabled source never validates
	ok, err = f.Sources().ValidateRef(ctx, "2", "rss:old")
	require.NoError(t, err)
	assert.False(t, ok)

	// non-numeric id never matches
	ok, err = f.Sources().ValidateRef(ctx, "rss:bbc", "rss:bbc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTranslationGetLatestDoneSkipsFailed(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()

	done := &model.ItemTranslation{
		ItemID:            "item-1",
		TargetLang:        "zh-TW",
		TranslatedTitle:   "標題",
		TranslatedSummary: "摘要",
		SourceTextHash:    "a",
		PromptVersion:     "v1",
		Status:            model.TranslationStatusDone,
	}
	require.NoError(t, f.Translations().Create(ctx, done))
	require.NoError(t, f.Translations().Create(ctx, &model.ItemTranslation{
		ItemID:         "item-1",
		TargetLang:     "zh-TW",
		SourceTextHash: "b",
		PromptVersion:  "v1",
		Status:         model.TranslationStatusFailed,
	}))

	latest, err := f.Translations().GetLatest(ctx, "item-1", "zh-TW")
	require.NoError(t, err)
	assert.Equal(t, model.TranslationStatusFailed, latest.Status)

	got, err := f.Translations().GetLatestDone(ctx, "item-1", "zh-TW")
	require.NoError(t, err)
	assert.Equal(t, done.ID, got.ID)
	assert.Equal(t, "標題", got.TranslatedTitle)
}
