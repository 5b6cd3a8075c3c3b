package biz

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kart-io/herald/internal/herald/store"
	"github.com/kart-io/herald/internal/model"
	"github.com/kart-io/herald/pkg/line"
	"github.com/kart-io/herald/pkg/llm"
)

func newTestStore(t *testing.T) store.Factory {
	t.Helper()

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

	return store.NewFactory(db)
}

func seedSource(t *testing.T, s store.Factory, key string, active bool) {
	t.Helper()
	require.NoError(t, s.Sources().Create(context.Background(), &model.Source{
		SourceKey: key,
		Name:      key,
		IsActive:  active,
	}))
}

// fakeGateway 返回固定内容的网关替身
type fakeGateway struct {
	content           string
	structuredContent string
	err               error
	chatCalls         int
	structuredCalls   int
	lastMessages      []llm.Message
}

func (f *fakeGateway) Chat(_ context.Context, _ string, messages []llm.Message, _ ...llm.CallOption) (*llm.GenerateResponse, error) {
	f.chatCalls++
	f.lastMessages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{
		Content: f.content,
		Usage:   &llm.TokenUsage{PromptTokens: 10, CompletionTokens: 20, TotalTokens: 30},
	}, nil
}

func (f *fakeGateway) ChatStructured(_ context.Context, _ string, messages []llm.Message, _ string, _ map[string]any, _ ...llm.CallOption) (*llm.GenerateResponse, error) {
	f.structuredCalls++
	f.lastMessages = messages
	if f.err != nil {
		return nil, f.err
	}
	return &llm.GenerateResponse{Content: f.structuredContent}, nil
}

func (f *fakeGateway) Tenant(_ string) (llm.TenantConfig, bool) {
	return llm.TenantConfig{TenantID: DefaultTenantID, Provider: "openai", Model: "gpt-4o-mini"}, true
}

// fakeMessenger 记录投递请求的信道替身
type fakeMessenger struct {
	pushErr  error
	replyErr error

	pushedTo    []string
	pushedTexts []string
	replyTokens []string
	replyTexts  []string
}

func (f *fakeMessenger) Push(_ context.Context, to string, messages []line.Message) (*line.Result, error) {
	if f.pushErr != nil {
		return nil, f.pushErr
	}
	f.pushedTo = append(f.pushedTo, to)
	for _, m := range messages {
		f.pushedTexts = append(f.pushedTexts, m.Text)
	}
	return &line.Result{RequestID: "req-123"}, nil
}

func (f *fakeMessenger) Reply(_ context.Context, replyToken string, messages []line.Message) (*line.Result, error) {
	if f.replyErr != nil {
		return nil, f.replyErr
	}
	f.replyTokens = append(f.replyTokens, replyToken)
	for _, m := range messages {
		f.replyTexts = append(f.replyTexts, m.Text)
	}
	return &line.Result{RequestID: "req-456"}, nil
}
