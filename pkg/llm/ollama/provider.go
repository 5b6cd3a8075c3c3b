// Package ollama 提供 Ollama Chat 供应商实现。
package ollama

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kart-io/herald/pkg/llm"
	"github.com/kart-io/herald/pkg/utils/json"
)

const ProviderName = "ollama"

func init() {
	llm.RegisterChatProvider(ProviderName, NewProvider)
}

// Config Ollama 供应商配置。
type Config struct {
	BaseURL     string        `json:"base_url" mapstructure:"base_url"`
	ChatModel   string        `json:"chat_model" mapstructure:"chat_model"`
	Timeout     time.Duration `json:"timeout" mapstructure:"timeout"`
	Temperature float64       `json:"temperature" mapstructure:"temperature"`
	TopP        float64       `json:"top_p" mapstructure:"top_p"`
	MaxTokens   int           `json:"max_tokens" mapstructure:"max_tokens"`
}

// DefaultConfig 返回默认配置。
func DefaultConfig() *Config {
	return &Config{
		BaseURL:   "http://localhost:11434",
		ChatModel: "llama3.1",
		Timeout:   120 * time.Second,
	}
}

// Provider Ollama 供应商实现。
type Provider struct {
	config     *Config
	httpClient *http.Client
}

var (
	_ llm.ChatProvider          = (*Provider)(nil)
	_ llm.StreamingChatProvider = (*Provider)(nil)
)

// NewProvider 从配置 map 创建 Ollama 供应商。
func NewProvider(configMap map[string]any) (llm.ChatProvider, error) {
	cfg := DefaultConfig()

	if v, ok := configMap["base_url"].(string); ok && v != "" {
		cfg.BaseURL = v
	}
	if v, ok := configMap["chat_model"].(string); ok && v != "" {
		cfg.ChatModel = v
	}
	if v, ok := configMap["timeout"].(time.Duration); ok && v > 0 {
		cfg.Timeout = v
	}
	if v, ok := configMap["temperature"].(float64); ok {
		cfg.Temperature = v
	}
	if v, ok := configMap["top_p"].(float64); ok {
		cfg.TopP = v
	}
	if v, ok := configMap["max_tokens"].(int); ok {
		cfg.MaxTokens = v
	}

	return NewProviderWithConfig(cfg), nil
}

// NewProviderWithConfig 使用结构化配置创建 Ollama 供应商。
func NewProviderWithConfig(cfg *Config) *Provider {
	return &Provider{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Name 返回供应商名称。
func (p *Provider) Name() string {
	return ProviderName
}

// chatRequest Ollama chat API 请求体。
type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse Ollama chat API 响应体。
type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`

	PromptEvalCount int `json:"prompt_eval_count"`
	EvalCount       int `json:"eval_count"`
}

// buildOptions 组装生成参数，配置级参数先生效，调用级覆盖其后。
func (p *Provider) buildOptions(call *llm.CallOptions) map[string]any {
	options := map[string]any{}
	if p.config.Temperature > 0 {
		options["temperature"] = p.config.Temperature
	}
	if p.config.TopP > 0 {
		options["top_p"] = p.config.TopP
	}
	if p.config.MaxTokens > 0 {
		options["num_predict"] = p.config.MaxTokens
	}
	if call.Temperature != nil {
		options["temperature"] = *call.Temperature
	}
	if call.TopP != nil {
		options["top_p"] = *call.TopP
	}
	if call.MaxTokens > 0 {
		options["num_predict"] = call.MaxTokens
	}
	if len(options) == 0 {
		return nil
	}
	return options
}

// doChat 发起 /api/chat 请求并返回响应体，调用方负责关闭。
func (p *Provider) doChat(ctx context.Context, messages []llm.Message, call *llm.CallOptions, stream bool) (*http.Response, error) {
	chatMessages := make([]chatMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		}
	}

	reqBody := chatRequest{
		Model:    p.config.ChatModel,
		Messages: chatMessages,
		Stream:   stream,
		Options:  p.buildOptions(call),
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("序列化请求失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求失败: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("请求失败，状态码 %d: %s", resp.StatusCode, string(bodyBytes))
	}
	return resp, nil
}

// Chat 进行多轮对话。
func (p *Provider) Chat(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (*llm.GenerateResponse, error) {
	resp, err := p.doChat(ctx, messages, llm.ApplyCallOptions(opts), false)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取响应失败: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBytes, &chatResp); err != nil {
		return nil, fmt.Errorf("解析响应失败: %w", err)
	}

	return &llm.GenerateResponse{
		Content: chatResp.Message.Content,
		Usage: &llm.TokenUsage{
			PromptTokens:     chatResp.PromptEvalCount,
			CompletionTokens: chatResp.EvalCount,
			TotalTokens:      chatResp.PromptEvalCount + chatResp.EvalCount,
		},
	}, nil
}

// ChatStream 发起一次流式对话，Ollama 按 JSON 行增量返回。
func (p *Provider) ChatStream(ctx context.Context, messages []llm.Message, opts ...llm.CallOption) (llm.ChatStream, error) {
	resp, err := p.doChat(ctx, messages, llm.ApplyCallOptions(opts), true)
	if err != nil {
		return nil, err
	}
	return &chatStream{body: resp.Body, decoder: json.NewDecoder(resp.Body)}, nil
}

// chatStream 逐行解码流式响应，done 标记流结束。
type chatStream struct {
	body    io.ReadCloser
	decoder json.Decoder
	done    bool
}

func (s *chatStream) Recv() (*llm.StreamChunk, error) {
	if s.done {
		return nil, io.EOF
	}

	var event chatResponse
	if err := s.decoder.Decode(&event); err != nil {
		s.done = true
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("解析流式响应失败: %w", err)
	}
	if event.Done {
		s.done = true
		if event.Message.Content == "" {
			return nil, io.EOF
		}
	}
	return &llm.StreamChunk{Content: event.Message.Content}, nil
}

func (s *chatStream) Close() error {
	s.done = true
	return s.body.Close()
}

// Ping 检查 Ollama 服务是否可达。
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama 服务不可达: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama 服务异常，状态码 %d", resp.StatusCode)
	}
	return nil
}
