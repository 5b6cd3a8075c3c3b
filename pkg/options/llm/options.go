// Package llm provides LLM gateway configuration options.
package llm

import (
	"fmt"
	"time"

	"github.com/kart-io/herald/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*GatewayOptions)(nil)

// TenantOptions 定义单一租户的模型配置。
type TenantOptions struct {
	// TenantID 租户标识。
	TenantID string `json:"tenant-id" mapstructure:"tenant-id"`

	// Provider 供应商名称（openai, ollama, custom）。
	Provider string `json:"provider" mapstructure:"provider"`

	// Model 使用的模型名称。
	Model string `json:"model" mapstructure:"model"`

	// APIKey API 密钥（可留空，由网关按环境变量解析）。
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// BaseURL API 基础地址（可选，覆盖供应商默认值）。
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// Organization 组织 ID（OpenAI 可选）。
	Organization string `json:"organization" mapstructure:"organization"`

	// DefaultParams 默认生成参数（temperature 等）。
	DefaultParams map[string]any `json:"default-params" mapstructure:"default-params"`

	// Tags 租户标签。
	Tags []string `json:"tags" mapstructure:"tags"`
}

// GatewayOptions 定义多租户模型网关配置。
type GatewayOptions struct {
	// DefaultAPIKey 网关级默认 API 密钥，租户未配置时使用。
	DefaultAPIKey string `json:"default-api-key" mapstructure:"default-api-key"`

	// Timeout 请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// Tenants 启动时注册的租户配置。
	Tenants []TenantOptions `json:"tenants" mapstructure:"tenants"`
}

// NewGatewayOptions 创建默认网关配置。
func NewGatewayOptions() *GatewayOptions {
	return &GatewayOptions{
		Timeout: 120 * time.Second,
	}
}

// AddFlags adds flags for LLM gateway options to the specified FlagSet.
// Tenants are file-only configuration and have no flag form.
func (o *GatewayOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.DefaultAPIKey, options.Join(prefixes...)+"llm.default-api-key", o.DefaultAPIKey, "Gateway level default API key.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"llm.timeout", o.Timeout, "LLM request timeout.")
}

// Validate validates the LLM gateway options.
func (o *GatewayOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	for _, t := range o.Tenants {
		if t.TenantID == "" {
			errs = append(errs, fmt.Errorf("tenant-id is required"))
		}
		if t.Provider == "" {
			errs = append(errs, fmt.Errorf("provider is required for tenant %q", t.TenantID))
		}
		if t.Model == "" {
			errs = append(errs, fmt.Errorf("model is required for tenant %q", t.TenantID))
		}
	}
	return errs
}

// Complete completes the LLM gateway options with defaults.
func (o *GatewayOptions) Complete() error {
	if o.Timeout <= 0 {
		o.Timeout = 120 * time.Second
	}
	return nil
}
