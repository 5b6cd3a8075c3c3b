// Package model provides data models for the Herald edge service.
package model

import (
	"database/sql/driver"
	"fmt"

	"github.com/kart-io/herald/pkg/utils/json"
)

// JSONMap is a JSON object column. It keeps ingestion schema-agnostic while
// still round-tripping through gorm as a single value.
type JSONMap map[string]any

// Value implements driver.Valuer.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner.
func (m *JSONMap) Scan(value any) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONMap source type %T", value)
	}
	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(data, m)
}

// JSONArray is a JSON array column.
type JSONArray []any

// Value implements driver.Valuer.
func (a JSONArray) Value() (driver.Value, error) {
	if a == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *JSONArray) Scan(value any) error {
	if value == nil {
		*a = JSONArray{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONArray source type %T", value)
	}
	if len(data) == 0 {
		*a = JSONArray{}
		return nil
	}
	return json.Unmarshal(data, a)
}
