package biz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/herald/internal/model"
)

func ingestOne(t *testing.T, svc *IngestService, sourceKey, guid string) *IngestResult {
	t.Helper()
	res, err := svc.IngestRawItem(context.Background(), &IngestRequest{
		Source: SourceRef{SourceID: "1", SourceKey: sourceKey},
		Item: FeedItem{
			GUID:    guid,
			Link:    "https://x/" + guid,
			Title:   "Title " + guid,
			Summary: "Summary " + guid,
			Raw:     map[string]any{"content": "Body " + guid},
		},
	})
	require.NoError(t, err)
	return res
}

// TestTranslationService_Success 成功翻译写入 DONE 记录
func TestTranslationService_Success(t *testing.T) {
	ctx := context.Background()
	factory := newTestStore(t)
	seedSource(t, factory, "rss:bbc", true)

	gateway := &fakeGateway{structuredContent: `{"translated_title":"標題","translated_summary":"摘要","translated_content":"內文"}`}
	translator := NewTranslationService(factory, gateway, "")
	svc := NewIngestService(factory, translator)

	res := ingestOne(t, svc, "rss:bbc", "g1")
	require.NotNil(t, res.Translation)
	assert.Equal(t, model.TranslationStatusDone, res.Translation.Status)
	assert.Equal(t, "zh-TW", res.Translation.TargetLang)

	tr, err := factory.Translations().GetLatest(ctx, res.Item.ItemID, "zh-TW")
	require.NoError(t, err)
	assert.Equal(t, "標題", tr.TranslatedTitle)
	assert.Equal(t, "摘要", tr.TranslatedSummary)
	require.NotNil(t, tr.TranslatedContent)
	assert.Equal(t, "內文", *tr.TranslatedContent)
	assert.Equal(t, "openai", tr.Provider)
	assert.Equal(t, "gpt-4o-mini", tr.Model)
	assert.Equal(t, "v1", tr.PromptVersion)
	assert.Len(t, tr.SourceTextHash, 64)

	item, err := factory.Items().GetByItemID(ctx, res.Item.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusTranslated, item.Status)
}

// TestTranslationService_Failure 翻译失败写入 FAILED 记录且不影响摄取
func TestTranslationService_Failure(t *testing.T) {
	ctx := context.Background()
	factory := newTestStore(t)
	seedSource(t, factory, "rss:bbc", true)

	gateway := &fakeGateway{err: errors.New("upstream timeout")}
	translator := NewTranslationService(factory, gateway, "")
	svc := NewIngestService(factory, translator)

	res := ingestOne(t, svc, "rss:bbc", "g1")
	require.NotNil(t, res.Translation)
	assert.Equal(t, model.TranslationStatusFailed, res.Translation.Status)
	assert.Contains(t, res.Translation.Error, "upstream timeout")

	tr, err := factory.Translations().GetLatest(ctx, res.Item.ItemID, "zh-TW")
	require.NoError(t, err)
	assert.Equal(t, model.TranslationStatusFailed, tr.Status)
	require.NotNil(t, tr.Error)
	assert.Contains(t, *tr.Error, "upstream timeout")

	item, err := factory.Items().GetByItemID(ctx, res.Item.ItemID)
	require.NoError(t, err)
	assert.Equal(t, model.ItemStatusFailed, item.Status)
}

// TestTranslationService_MalformedOutput 模型输出无法解码时按失败处理
func TestTranslationService_MalformedOutput(t *testing.T) {
	factory := newTestStore(t)
	seedSource(t, factory, "rss:bbc", true)

	gateway := &fakeGateway{structuredContent: "not json at all"}
	translator := NewTranslationService(factory, gateway, "")
	svc := NewIngestService(factory, translator)

	res := ingestOne(t, svc, "rss:bbc", "g1")
	require.NotNil(t, res.Translation)
	assert.Equal(t, model.TranslationStatusFailed, res.Translation.Status)
}

// TestTranslationService_SkipsWhenNotInserted 翻译阶段跳过未插入的结果
func TestTranslationService_SkipsWhenNotInserted(t *testing.T) {
	factory := newTestStore(t)
	gateway := &fakeGateway{structuredContent: `{"translated_title":"t","translated_summary":"s"}`}
	translator := NewTranslationService(factory, gateway, "")

	res := &IngestResult{Item: &model.RawItem{ItemID: "x"}, Inserted: false}
	translator.Run(context.Background(), res)

	assert.Nil(t, res.Translation)
	assert.Equal(t, 0, gateway.structuredCalls)
}

// TestSourceTextHash 源文本哈希覆盖标题、摘要与正文
func TestSourceTextHash(t *testing.T) {
	a := sourceTextHash("t", "s", "c")
	b := sourceTextHash("t", "s", "c")
	c := sourceTextHash("t", "s", "changed")
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

// TestExtractSourceContent 正文字段按固定顺序提取
func TestExtractSourceContent(t *testing.T) {
	tests := []struct {
		name string
		raw  model.JSONMap
		want string
	}{
		{name: "content 优先", raw: model.JSONMap{"content": "a", "description": "b"}, want: "a"},
		{name: "content:encoded 次之", raw: model.JSONMap{"content:encoded": "enc", "description": "b"}, want: "enc"},
		{name: "description 兜底", raw: model.JSONMap{"description": "b"}, want: "b"},
		{name: "全部缺失为空", raw: model.JSONMap{}, want: ""},
		{name: "非字符串值跳过", raw: model.JSONMap{"content": 42, "description": "b"}, want: "b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractSourceContent(tt.raw))
		})
	}
}
