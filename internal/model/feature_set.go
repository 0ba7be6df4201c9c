package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FeatureSet is the set of capability names enabled for a tenant, stored
// as a jsonb array.
type FeatureSet []string

// Value implements driver.Valuer for jsonb storage.
func (f FeatureSet) Value() (driver.Value, error) {
	if f == nil {
		return "[]", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for jsonb storage.
func (f *FeatureSet) Scan(value interface{}) error {
	if value == nil {
		*f = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	default:
		return fmt.Errorf("model: cannot scan %T into FeatureSet", value)
	}
}
