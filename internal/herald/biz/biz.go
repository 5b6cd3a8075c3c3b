// Package biz implements the Herald business services: feed ingestion,
// translation, the Bard push agent, the Lorekeeper Q&A agent and the LINE
// webhook dispatcher.
package biz

import (
	"context"

	"github.com/kart-io/herald/pkg/llm"
)

// ChatGateway is the surface the agents need from the model gateway.
type ChatGateway interface {
	Chat(ctx context.Context, tenantID string, messages []llm.Message, opts ...llm.CallOption) (*llm.GenerateResponse, error)
	ChatStructured(ctx context.Context, tenantID string, messages []llm.Message, schemaName string, schema map[string]any, opts ...llm.CallOption) (*llm.GenerateResponse, error)
	Tenant(tenantID string) (llm.TenantConfig, bool)
}

// DefaultTenantID is the tenant the agents run under unless configured
// otherwise.
const DefaultTenantID = "default"

// truncateRunes shortens s to at most n runes.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// firstNonEmpty returns the first non-empty candidate.
func firstNonEmpty(candidates ...string) string {
	for _, c := range candidates {
		if c != "" {
			return c
		}
	}
	return ""
}

// strptr returns a pointer to s, or nil for the empty string.
func strptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
