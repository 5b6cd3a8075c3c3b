// Package llm 提供统一的 LLM 供应商抽象层与多租户网关。
// 各智能体通过网关按租户解析 Chat 供应商，不直接依赖具体实现。
package llm

import (
	"context"
	"fmt"
	"sync"
)

// ChatProvider 定义 Chat 供应商接口。
type ChatProvider interface {
	// Chat 进行多轮对话，opts 为单次调用的参数覆盖。
	Chat(ctx context.Context, messages []Message, opts ...CallOption) (*GenerateResponse, error)

	// Name 返回供应商名称。
	Name() string
}

// StructuredChatProvider 支持结构化 JSON 输出的供应商可实现此接口。
// 不支持的供应商由调用方回退到文本解析。
type StructuredChatProvider interface {
	ChatProvider

	// ChatStructured 要求模型按给定 JSON Schema 输出。
	ChatStructured(ctx context.Context, messages []Message, schemaName string, schema map[string]any, opts ...CallOption) (*GenerateResponse, error)
}

// StreamingChatProvider 支持增量流式输出的供应商可实现此接口。
type StreamingChatProvider interface {
	ChatProvider

	// ChatStream 发起一次流式对话，增量内容通过返回的 ChatStream 读取。
	ChatStream(ctx context.Context, messages []Message, opts ...CallOption) (ChatStream, error)
}

// ChatStream 是一次流式对话的消费端。
// Recv 在流正常结束时返回 io.EOF；流不可重放。
type ChatStream interface {
	Recv() (*StreamChunk, error)
	Close() error
}

// StreamChunk 是流式响应中的一个增量片段。
type StreamChunk struct {
	Content string `json:"content"`
}

// Message 表示对话中的一条消息。
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Role 定义消息角色。
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// TokenUsage 记录一次调用的 token 消耗。
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// GenerateResponse 是一次 Chat 调用的结果。
type GenerateResponse struct {
	Content string      `json:"content"`
	Usage   *TokenUsage `json:"usage,omitempty"`
}

// CallOptions 是单次调用级别的生成参数覆盖。
// 仅影响当前调用，不参与供应商缓存键。
type CallOptions struct {
	Temperature *float64
	TopP        *float64
	MaxTokens   int
}

// CallOption 配置 CallOptions。
type CallOption func(*CallOptions)

// WithTemperature 覆盖本次调用的 temperature。
func WithTemperature(t float64) CallOption {
	return func(o *CallOptions) { o.Temperature = &t }
}

// WithTopP 覆盖本次调用的 top_p。
func WithTopP(p float64) CallOption {
	return func(o *CallOptions) { o.TopP = &p }
}

// WithMaxTokens 覆盖本次调用的最大生成 token 数。
func WithMaxTokens(n int) CallOption {
	return func(o *CallOptions) { o.MaxTokens = n }
}

// ApplyCallOptions 合并调用选项。
func ApplyCallOptions(opts []CallOption) *CallOptions {
	o := &CallOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ChatProviderFactory Chat 供应商工厂函数类型。
type ChatProviderFactory func(config map[string]any) (ChatProvider, error)

// registry 供应商注册表。
var registry = &providerRegistry{
	chatProviders: make(map[string]ChatProviderFactory),
}

type providerRegistry struct {
	mu            sync.RWMutex
	chatProviders map[string]ChatProviderFactory
}

// RegisterChatProvider 注册 Chat 供应商工厂。
func RegisterChatProvider(name string, factory ChatProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.chatProviders[name] = factory
}

// NewChatProvider 根据名称创建 Chat 供应商实例。
func NewChatProvider(name string, config map[string]any) (ChatProvider, error) {
	registry.mu.RLock()
	factory, ok := registry.chatProviders[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown chat provider: %s", name)
	}

	return factory(config)
}

// HasChatProvider 查询供应商是否已注册。
func HasChatProvider(name string) bool {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	_, ok := registry.chatProviders[name]
	return ok
}

// ListProviders 列出所有已注册的供应商名称。
func ListProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.chatProviders))
	for name := range registry.chatProviders {
		names = append(names, name)
	}
	return names
}
