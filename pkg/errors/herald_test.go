package errors

import (
	"net/http"
	"testing"
)

func TestHeraldCodesAreUnique(t *testing.T) {
	codes := []*Errno{
		ErrItemNotFound, ErrSourceInvalid,
		ErrDailyQuotaExceeded, ErrAgentRun,
		ErrInvalidSignature, ErrLineDelivery,
		ErrTenantNotFound, ErrProviderConfig, ErrAPIKeyMissing, ErrUpstreamLLM,
	}
	seen := make(map[int]bool, len(codes))
	for _, e := range codes {
		if seen[e.Code] {
			t.Errorf("duplicate code %d (%s)", e.Code, e.MessageEN)
		}
		seen[e.Code] = true
	}
}

func TestHeraldCodeMapping(t *testing.T) {
	if got := ErrTenantNotFound.HTTPStatus(); got != http.StatusNotFound {
		t.Errorf("ErrTenantNotFound HTTP = %d, want %d", got, http.StatusNotFound)
	}
	if got := ErrDailyQuotaExceeded.HTTPStatus(); got != http.StatusTooManyRequests {
		t.Errorf("ErrDailyQuotaExceeded HTTP = %d, want %d", got, http.StatusTooManyRequests)
	}
	if service, category, _ := ParseCode(ErrProviderConfig.Code); service != ServiceLLM || category != CategoryConfig {
		t.Errorf("ErrProviderConfig code %d parsed to service %d category %d", ErrProviderConfig.Code, service, category)
	}
	if !IsClientError(ErrInvalidSignature.Code) {
		t.Error("ErrInvalidSignature should be a client error")
	}
	if !IsServerError(ErrUpstreamLLM.Code) {
		t.Error("ErrUpstreamLLM should be a server error")
	}
}
