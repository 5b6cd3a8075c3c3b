package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/herald/internal/model"
)

func sampleItem(dedupKey string) *model.RawItem {
	return &model.RawItem{
		ItemID:    "rss:bbc:sha256:" + dedupKey,
		SourceKey: "rss:bbc",
		URL:       "https://example.com/1",
		Title:     "Sample headline",
		Summary:   "Sample summary",
		FetchedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Lang:      "en",
		DedupKey:  dedupKey,
		Rights:    `{"store_fulltext": false, "mode": "rss_summary_link_only"}`,
		Raw:       model.JSONMap{"guid": "g1"},
		Status:    model.ItemStatusRaw,
	}
}

func TestItemUpsertInsertsNewRow(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()

	res, err := f.Items().Upsert(ctx, sampleItem("aaaa"))
	require.NoError(t, err)
	assert.True(t, res.Inserted)
	assert.Equal(t, "rss:bbc:sha256:aaaa", res.ItemID)

	got, err := f.Items().GetByDedupKey(ctx, "aaaa")
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusRaw, got.Status)
}

func TestItemUpsertDuplicateRefreshesFetchedAtOnly(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()

	first, err := f.Items().Upsert(ctx, sampleItem("bbbb"))
	require.NoError(t, err)
	require.True(t, first.Inserted)

	dup := sampleItem("bbbb")
	dup.Title = "Changed title should not overwrite"
	dup.FetchedAt = time.Date(2026, 8, 2, 8, 0, 0, 0, time.UTC)

	second, err := f.Items().Upsert(ctx, dup)
	require.NoError(t, err)
	assert.False(t, second.Inserted)
	assert.Equal(t, first.ItemID, second.ItemID)

	got, err := f.Items().GetByDedupKey(ctx, "bbbb")
	require.NoError(t, err)
	assert.Equal(t, "Sample headline", got.Title)
	assert.Equal(t, dup.FetchedAt.UTC(), got.FetchedAt.UTC())
}

func TestItemUpsertRepeatedIsIdempotent(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := f.Items().Upsert(ctx, sampleItem("cccc"))
		require.NoError(t, err)
		assert.Equal(t, i == 0, res.Inserted)
	}

	var count int64
	ds := f.(*datastore)
	require.NoError(t, ds.db.Model(&model.RawItem{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestItemUpdateStatusAndListByStatus(t *testing.T) {
	f := newTestFactory(t)
	ctx := context.Background()

	_, err := f.Items().Upsert(ctx, sampleItem("dddd"))
	require.NoError(t, err)

	require.NoError(t, f.Items().UpdateStatus(ctx, "rss:bbc:sha256:dddd", model.ItemStatusTranslated))

	raw, err := f.Items().ListByStatus(ctx, model.ItemStatusRaw, 10)
	require.NoError(t, err)
	assert.Empty(t, raw)

	done, err := f.Items().ListByStatus(ctx, model.ItemStatusTranslated, 10)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "rss:bbc:sha256:dddd", done[0].ItemID)
}
