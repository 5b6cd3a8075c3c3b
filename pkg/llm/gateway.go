package llm

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kart-io/herald/pkg/errors"
)

// 网关支持的供应商类型。custom 按 OpenAI 兼容协议访问，必须配置 base_url。
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderCustom = "custom"
)

// TenantConfig 定义单一租户的模型接入配置。
type TenantConfig struct {
	TenantID      string         `json:"tenant_id"`
	Provider      string         `json:"provider"`
	Model         string         `json:"model"`
	APIKey        string         `json:"api_key,omitempty"`
	BaseURL       string         `json:"base_url,omitempty"`
	Organization  string         `json:"organization,omitempty"`
	DefaultParams map[string]any `json:"default_params,omitempty"`
	Tags          []string       `json:"tags,omitempty"`
}

// Gateway 是多租户模型网关。按租户解析供应商实例并缓存，
// 重新注册租户会使其缓存条目失效。
type Gateway struct {
	mu            sync.RWMutex
	tenants       map[string]TenantConfig
	providers     map[string]ChatProvider
	defaultAPIKey string
	timeout       time.Duration
}

// GatewayOption 配置 Gateway。
type GatewayOption func(*Gateway)

// WithDefaultAPIKey 设置网关级默认 API 密钥。
func WithDefaultAPIKey(key string) GatewayOption {
	return func(g *Gateway) { g.defaultAPIKey = key }
}

// WithTimeout 设置供应商请求超时。
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

// NewGateway 创建模型网关。
func NewGateway(opts ...GatewayOption) *Gateway {
	g := &Gateway{
		tenants:   make(map[string]TenantConfig),
		providers: make(map[string]ChatProvider),
		timeout:   120 * time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Register 注册或更新租户配置，并使该租户的缓存供应商失效。
// 未设置 default_params 时填充 {"temperature": 0.2}。
func (g *Gateway) Register(cfg TenantConfig) error {
	if cfg.TenantID == "" {
		return errors.ErrInvalidParam.WithMessage("tenant_id is required")
	}
	if cfg.Provider == "" || cfg.Model == "" {
		return errors.ErrInvalidParam.WithMessagef("tenant %q: provider and model are required", cfg.TenantID)
	}
	if cfg.DefaultParams == nil {
		cfg.DefaultParams = map[string]any{"temperature": 0.2}
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.tenants[cfg.TenantID] = cfg

	prefix := cfg.TenantID + "::"
	for key := range g.providers {
		if strings.HasPrefix(key, prefix) {
			delete(g.providers, key)
		}
	}
	return nil
}

// Tenant 返回租户配置。
func (g *Gateway) Tenant(tenantID string) (TenantConfig, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	cfg, ok := g.tenants[tenantID]
	return cfg, ok
}

// Tenants 返回已注册的租户 ID。
func (g *Gateway) Tenants() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	ids := make([]string, 0, len(g.tenants))
	for id := range g.tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Provider 按租户解析 Chat 供应商。配置错误在任何网络调用前返回。
func (g *Gateway) Provider(tenantID string) (ChatProvider, error) {
	g.mu.RLock()
	cfg, ok := g.tenants[tenantID]
	g.mu.RUnlock()
	if !ok {
		return nil, errors.ErrTenantNotFound.WithMessagef("tenant %q is not registered", tenantID)
	}

	apiKey, err := g.resolveAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	key := cacheKey(cfg, apiKey)

	g.mu.RLock()
	provider, ok := g.providers[key]
	g.mu.RUnlock()
	if ok {
		return provider, nil
	}

	provider, err = g.buildProvider(cfg, apiKey)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.providers[key] = provider
	g.mu.Unlock()
	return provider, nil
}

// Chat 按租户发起一次对话调用。
func (g *Gateway) Chat(ctx context.Context, tenantID string, messages []Message, opts ...CallOption) (*GenerateResponse, error) {
	provider, err := g.Provider(tenantID)
	if err != nil {
		return nil, err
	}
	resp, err := provider.Chat(ctx, messages, opts...)
	if err != nil {
		return nil, errors.ErrUpstreamLLM.WithCause(err)
	}
	return resp, nil
}

// ChatStream 按租户发起一次流式对话调用。
// 供应商不支持流式输出时返回配置错误，不发起任何网络请求。
func (g *Gateway) ChatStream(ctx context.Context, tenantID string, messages []Message, opts ...CallOption) (ChatStream, error) {
	provider, err := g.Provider(tenantID)
	if err != nil {
		return nil, err
	}
	sp, ok := provider.(StreamingChatProvider)
	if !ok {
		return nil, errors.ErrProviderConfig.WithMessagef("provider %q does not support streaming", provider.Name())
	}
	stream, err := sp.ChatStream(ctx, messages, opts...)
	if err != nil {
		return nil, errors.ErrUpstreamLLM.WithCause(err)
	}
	return stream, nil
}

// ChatStructured 按租户发起一次结构化输出调用，模型按给定 JSON Schema 返回。
func (g *Gateway) ChatStructured(ctx context.Context, tenantID string, messages []Message, schemaName string, schema map[string]any, opts ...CallOption) (*GenerateResponse, error) {
	provider, err := g.Provider(tenantID)
	if err != nil {
		return nil, err
	}
	sp, ok := provider.(StructuredChatProvider)
	if !ok {
		return nil, errors.ErrProviderConfig.WithMessagef("provider %q does not support structured output", provider.Name())
	}
	resp, err := sp.ChatStructured(ctx, messages, schemaName, schema, opts...)
	if err != nil {
		return nil, errors.ErrUpstreamLLM.WithCause(err)
	}
	return resp, nil
}

// StructuredRunner 绑定租户与输出 Schema 的调用器。
type StructuredRunner struct {
	gateway    *Gateway
	tenantID   string
	schemaName string
	schema     map[string]any
}

// WithStructuredOutput 返回固定按 schema 解码响应的调用器。
func (g *Gateway) WithStructuredOutput(tenantID, schemaName string, schema map[string]any) *StructuredRunner {
	return &StructuredRunner{gateway: g, tenantID: tenantID, schemaName: schemaName, schema: schema}
}

// Invoke 以绑定的租户与 Schema 发起一次调用。
func (r *StructuredRunner) Invoke(ctx context.Context, messages []Message, opts ...CallOption) (*GenerateResponse, error) {
	return r.gateway.ChatStructured(ctx, r.tenantID, messages, r.schemaName, r.schema, opts...)
}

// resolveAPIKey 解析租户的 API 密钥。
// 顺序：租户配置 → 网关默认 → OPENAI_API_KEY__<租户大写> → OPENAI_API_KEY。
// ollama 供应商不需要密钥。
func (g *Gateway) resolveAPIKey(cfg TenantConfig) (string, error) {
	if cfg.Provider == ProviderOllama {
		return "", nil
	}

	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}
	if g.defaultAPIKey != "" {
		return g.defaultAPIKey, nil
	}
	if key := os.Getenv("OPENAI_API_KEY__" + tenantEnvSuffix(cfg.TenantID)); key != "" {
		return key, nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key, nil
	}
	return "", errors.ErrAPIKeyMissing.WithMessagef("no API key for tenant %q", cfg.TenantID)
}

// tenantEnvSuffix 将租户 ID 规整为环境变量后缀：大写，非字母数字替换为下划线。
func tenantEnvSuffix(tenantID string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(tenantID) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// cacheKey 构造供应商缓存键。
// 单次调用级别的参数覆盖不参与缓存键。
func cacheKey(cfg TenantConfig, apiKey string) string {
	hasKey := "k0"
	if apiKey != "" {
		hasKey = "k1"
	}

	params := make([]string, 0, len(cfg.DefaultParams))
	for k, v := range cfg.DefaultParams {
		params = append(params, fmt.Sprintf("%s=%v", k, v))
	}
	sort.Strings(params)

	return strings.Join([]string{
		cfg.TenantID, cfg.Provider, cfg.Model, cfg.BaseURL, hasKey, strings.Join(params, ","),
	}, "::")
}

// buildProvider 按租户配置构造供应商实例。
func (g *Gateway) buildProvider(cfg TenantConfig, apiKey string) (ChatProvider, error) {
	configMap := map[string]any{
		"chat_model": cfg.Model,
		"timeout":    g.timeout,
	}
	if cfg.BaseURL != "" {
		configMap["base_url"] = cfg.BaseURL
	}
	if apiKey != "" {
		configMap["api_key"] = apiKey
	}
	if cfg.Organization != "" {
		configMap["organization"] = cfg.Organization
	}
	for k, v := range cfg.DefaultParams {
		configMap[k] = v
	}

	providerName := cfg.Provider
	switch cfg.Provider {
	case ProviderOpenAI, ProviderOllama:
	case ProviderCustom:
		// custom 走 OpenAI 兼容协议，base_url 必填。
		if cfg.BaseURL == "" {
			return nil, errors.ErrProviderConfig.WithMessagef("tenant %q: custom provider requires base_url", cfg.TenantID)
		}
		providerName = ProviderOpenAI
	default:
		// 非内建名称回落到注册表，未注册才算配置错误。
		if !HasChatProvider(cfg.Provider) {
			return nil, errors.ErrProviderConfig.WithMessagef("tenant %q: unsupported provider %q", cfg.TenantID, cfg.Provider)
		}
	}

	provider, err := NewChatProvider(providerName, configMap)
	if err != nil {
		return nil, errors.ErrProviderConfig.WithCause(err)
	}
	return provider, nil
}
