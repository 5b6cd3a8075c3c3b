package handler_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/herald/internal/herald/biz"
	"github.com/kart-io/herald/internal/herald/router"
	"github.com/kart-io/herald/internal/herald/store"
	"github.com/kart-io/herald/internal/model"
	"github.com/kart-io/herald/pkg/line"
	"github.com/kart-io/herald/pkg/llm"
	"github.com/kart-io/herald/pkg/utils/json"
)

const testChannelSecret = "test-channel-secret"

// fakeGateway 返回固定内容的网关替身
type fakeGateway struct {
	content           string
	structuredContent string
	err               error
}

func (f *fakeGateway) Chat(_ context.Context, _ string, _ []llm.Message, _ ...llm.CallOption) (*llm.GenerateResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Content: f.content}, nil
}

func (f *fakeGateway) ChatStructured(_ context.Context, _ string, _ []llm.Message, _ string, _ map[string]any, _ ...llm.CallOption) (*llm.GenerateResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Content: f.structuredContent}, nil
}

func (f *fakeGateway) Tenant(_ string) (llm.TenantConfig, bool) {
	return llm.TenantConfig{TenantID: biz.DefaultTenantID, Provider: "openai", Model: "gpt-4o-mini"}, true
}

// fakeMessenger 记录投递请求的信道替身
type fakeMessenger struct {
	pushedTexts []string
	replyTexts  []string
}

func (f *fakeMessenger) Push(_ context.Context, _ string, messages []line.Message) (*line.Result, error) {
	for _, m := range messages {
		f.pushedTexts = append(f.pushedTexts, m.Text)
	}
	return &line.Result{RequestID: "req-123"}, nil
}

func (f *fakeMessenger) Reply(_ context.Context, _ string, messages []line.Message) (*line.Result, error) {
	for _, m := range messages {
		f.replyTexts = append(f.replyTexts, m.Text)
	}
	return &line.Result{RequestID: "req-456"}, nil
}

type testEnv struct {
	engine    *gin.Engine
	store     store.Factory
	gateway   *fakeGateway
	messenger *fakeMessenger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Source{},
		&model.RawItem{},
		&model.ItemTranslation{},
		&model.User{},
		&model.DailyQuotaUsage{},
		&model.UserQuery{},
		&model.PushMessage{},
		&model.WebhookEvent{},
		&model.AgentRun{},
		&model.RAGSpace{},
	))

	factory := store.NewFactory(db)
	gateway := &fakeGateway{
		content:           "模型回答",
		structuredContent: `{"title":"譯文標題","summary":"譯文摘要"}`,
	}
	messenger := &fakeMessenger{}

	ingestService := biz.NewIngestService(factory, biz.NewTranslationService(factory, gateway, ""))
	bardService := biz.NewBardService(factory, gateway, messenger, "")
	lorekeeperService := biz.NewLorekeeperService(factory, gateway, nil, "")
	webhookService := biz.NewWebhookService(factory, lorekeeperService, messenger)

	engine := router.New(router.Deps{
		Ingest:            ingestService,
		Bard:              bardService,
		Lorekeeper:        lorekeeperService,
		Webhook:           webhookService,
		LineChannelSecret: testChannelSecret,
	})

	return &testEnv{engine: engine, store: factory, gateway: gateway, messenger: messenger}
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthz(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/healthz", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["ok"])
}

func TestIngestRawItem(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Sources().Create(context.Background(), &model.Source{
		SourceKey: "rss:bbc",
		Name:      "BBC",
		IsActive:  true,
	}))

	payload := []byte(`{
		"source": {"source_id": "1", "source_key": "rss:bbc"},
		"item": {"guid": "g1", "link": "https://example.com/1", "title": "Hello", "summary": "World"}
	}`)

	w := env.do(t, http.MethodPost, "/v1/rss/ingest/rawitem", payload, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.EqualValues(t, 0, body["code"])

	data, ok := body["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "rss:bbc", data["source_key"])
	assert.Equal(t, true, data["inserted"])
	assert.NotEmpty(t, data["item_id"])
	assert.NotEmpty(t, data["dedup_key"])

	// 同一条目再次提交时去重，不再插入
	w = env.do(t, http.MethodPost, "/v1/rss/ingest/rawitem", payload, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, false, data["inserted"])
}

func TestIngestRawItem_MissingSourceKey(t *testing.T) {
	env := newTestEnv(t)

	payload := []byte(`{"source": {"source_id": "1", "source_key": ""}, "item": {"title": "x"}}`)
	w := env.do(t, http.MethodPost, "/v1/rss/ingest/rawitem", payload, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestRawItem_UnknownSource(t *testing.T) {
	env := newTestEnv(t)

	payload := []byte(`{"source": {"source_id": "1", "source_key": "rss:none"}, "item": {"title": "x"}}`)
	w := env.do(t, http.MethodPost, "/v1/rss/ingest/rawitem", payload, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIngestRawItem_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/rss/ingest/rawitem", []byte(`{not json`), nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBardPush_ItemNotFound(t *testing.T) {
	env := newTestEnv(t)

	payload := []byte(`{"line_user_id": "U1", "item_id": "rss:bbc:sha256:missing"}`)
	w := env.do(t, http.MethodPost, "/v1/agents/bard/push", payload, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBardPush_Success(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.store.Sources().Create(context.Background(), &model.Source{
		SourceKey: "rss:bbc",
		Name:      "BBC",
		IsActive:  true,
	}))

	ingestPayload := []byte(`{
		"source": {"source_id": "1", "source_key": "rss:bbc"},
		"item": {"guid": "g1", "link": "https://example.com/1", "title": "Hello", "summary": "World"}
	}`)
	w := env.do(t, http.MethodPost, "/v1/rss/ingest/rawitem", ingestPayload, nil)
	require.Equal(t, http.StatusOK, w.Code)
	itemID := decodeBody(t, w)["data"].(map[string]any)["item_id"].(string)

	env.gateway.content = `{"title": "推播標題", "message_body": "推播內容"}`

	pushPayload, err := json.Marshal(map[string]any{"line_user_id": "U1", "item_id": itemID})
	require.NoError(t, err)
	w = env.do(t, http.MethodPost, "/v1/agents/bard/push", pushPayload, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "SENT", data["delivery_status"])
	assert.Equal(t, []string{"推播內容"}, env.messenger.pushedTexts)
}

func TestLorekeeperAsk(t *testing.T) {
	env := newTestEnv(t)

	payload := []byte(`{"line_user_id": "U1", "question": "今天有什麼新聞？"}`)
	w := env.do(t, http.MethodPost, "/v1/agents/lorekeeper/ask", payload, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeBody(t, w)["data"].(map[string]any)
	assert.Equal(t, "ANSWERED", data["status"])
	assert.Equal(t, "模型回答", data["answer"])
}

func TestLorekeeperAsk_EmptyQuestion(t *testing.T) {
	env := newTestEnv(t)

	payload := []byte(`{"line_user_id": "U1", "question": ""}`)
	w := env.do(t, http.MethodPost, "/v1/agents/lorekeeper/ask", payload, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_InvalidSignature(t *testing.T) {
	env := newTestEnv(t)

	body := []byte(`{"destination": "d1", "events": []}`)
	w := env.do(t, http.MethodPost, "/v1/line/webhook", body, map[string]string{
		"X-Line-Signature": "bogus",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_MissingSignature(t *testing.T) {
	env := newTestEnv(t)

	body := []byte(`{"destination": "d1", "events": []}`)
	w := env.do(t, http.MethodPost, "/v1/line/webhook", body, nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWebhook_Processed(t *testing.T) {
	env := newTestEnv(t)

	body := []byte(`{
		"destination": "d1",
		"events": [
			{"webhookEventId": "evt-1", "type": "follow", "replyToken": "rt-1", "source": {"userId": "U1"}}
		]
	}`)
	w := env.do(t, http.MethodPost, "/v1/line/webhook", body, map[string]string{
		"X-Line-Signature": line.Sign(testChannelSecret, body),
	})

	assert.Equal(t, http.StatusOK, w.Code)
	summary := decodeBody(t, w)
	assert.Equal(t, true, summary["ok"])
	assert.EqualValues(t, 1, summary["processed"])
	assert.EqualValues(t, 0, summary["dedup_skipped"])
	assert.EqualValues(t, 1, summary["total_events"])
	require.Len(t, env.messenger.replyTexts, 1)
}

func TestWebhook_MalformedBody(t *testing.T) {
	env := newTestEnv(t)

	body := []byte(`{not json`)
	w := env.do(t, http.MethodPost, "/v1/line/webhook", body, map[string]string{
		"X-Line-Signature": line.Sign(testChannelSecret, body),
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
