package errors

import (
	"net/http"

	"google.golang.org/grpc/codes"
)

// ============================================================================
// Ingestion Errors (Service: 20)
// ============================================================================

var (
	// ErrItemNotFound indicates the raw item was not found.
	ErrItemNotFound = Register(&Errno{
		Code:      MakeCode(ServiceIngest, CategoryResource, 0),
		HTTP:      http.StatusNotFound,
		GRPCCode:  codes.NotFound,
		MessageEN: "Item not found",
		MessageZH: "条目不存在",
	})

	// ErrSourceInvalid indicates the feed source is unregistered or disabled.
	// Rejected as a validation failure before any write.
	ErrSourceInvalid = Register(&Errno{
		Code:      MakeCode(ServiceIngest, CategoryRequest, 1),
		HTTP:      http.StatusBadRequest,
		GRPCCode:  codes.InvalidArgument,
		MessageEN: "Invalid or disabled source",
		MessageZH: "来源无效或已停用",
	})
)

// ============================================================================
// Agent Errors (Service: 21)
// ============================================================================

var (
	// ErrDailyQuotaExceeded indicates the user's daily question quota is
	// used up.
	ErrDailyQuotaExceeded = Register(&Errno{
		Code:      MakeCode(ServiceAgent, CategoryRateLimit, 0),
		HTTP:      http.StatusTooManyRequests,
		GRPCCode:  codes.ResourceExhausted,
		MessageEN: "Daily question quota exceeded",
		MessageZH: "每日提问配额已用尽",
	})

	// ErrAgentRun indicates an agent invocation failed.
	ErrAgentRun = Register(&Errno{
		Code:      MakeCode(ServiceAgent, CategoryInternal, 0),
		HTTP:      http.StatusInternalServerError,
		GRPCCode:  codes.Internal,
		MessageEN: "Agent run failed",
		MessageZH: "代理执行失败",
	})
)

// ============================================================================
// LINE Errors (Service: 22)
// ============================================================================

var (
	// ErrInvalidSignature indicates the webhook signature check failed.
	ErrInvalidSignature = Register(&Errno{
		Code:      MakeCode(ServiceLine, CategoryAuth, 0),
		HTTP:      http.StatusUnauthorized,
		GRPCCode:  codes.Unauthenticated,
		MessageEN: "Invalid webhook signature",
		MessageZH: "签名校验失败",
	})

	// ErrLineDelivery indicates the messaging API rejected a delivery.
	ErrLineDelivery = Register(&Errno{
		Code:      MakeCode(ServiceLine, CategoryNetwork, 0),
		HTTP:      http.StatusBadGateway,
		GRPCCode:  codes.Unavailable,
		MessageEN: "Message delivery failed",
		MessageZH: "消息投递失败",
	})
)

// ============================================================================
// LLM Gateway Errors (Service: 23)
// ============================================================================

var (
	// ErrTenantNotFound indicates no configuration is registered for the
	// tenant.
	ErrTenantNotFound = Register(&Errno{
		Code:      MakeCode(ServiceLLM, CategoryResource, 0),
		HTTP:      http.StatusNotFound,
		GRPCCode:  codes.NotFound,
		MessageEN: "Tenant configuration not found",
		MessageZH: "租户配置不存在",
	})

	// ErrProviderConfig indicates the tenant's provider configuration is
	// unusable. Raised before any network call.
	ErrProviderConfig = Register(&Errno{
		Code:      MakeCode(ServiceLLM, CategoryConfig, 0),
		HTTP:      http.StatusInternalServerError,
		GRPCCode:  codes.Internal,
		MessageEN: "Provider configuration error",
		MessageZH: "模型提供商配置错误",
	})

	// ErrAPIKeyMissing indicates no API key could be resolved for the
	// tenant.
	ErrAPIKeyMissing = Register(&Errno{
		Code:      MakeCode(ServiceLLM, CategoryConfig, 1),
		HTTP:      http.StatusInternalServerError,
		GRPCCode:  codes.Internal,
		MessageEN: "API key missing",
		MessageZH: "缺少 API 密钥",
	})

	// ErrUpstreamLLM indicates the model provider call failed.
	ErrUpstreamLLM = Register(&Errno{
		Code:      MakeCode(ServiceLLM, CategoryNetwork, 0),
		HTTP:      http.StatusBadGateway,
		GRPCCode:  codes.Unavailable,
		MessageEN: "Upstream model call failed",
		MessageZH: "上游模型调用失败",
	})
)
