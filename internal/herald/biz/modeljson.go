package biz

import (
	"strings"

	"github.com/kart-io/herald/pkg/utils/json"
)

// parseModelJSON decodes a JSON object from model output, tolerating the
// markdown code fences models like to wrap it in. Anything that is not a
// JSON object decodes to an empty map so callers fall through to their
// fallbacks.
func parseModelJSON(text string) map[string]any {
	payload := strings.TrimSpace(text)
	if strings.HasPrefix(payload, "```") {
		payload = strings.Trim(payload, "`")
		payload = strings.TrimSpace(strings.TrimPrefix(payload, "json"))
	}

	var value map[string]any
	if err := json.Unmarshal([]byte(payload), &value); err != nil || value == nil {
		return map[string]any{}
	}
	return value
}
