package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a []string persisted as a JSON text column. A portable
// encoding is used instead of a postgres array so the same models run on
// the sqlite driver in tests.
type StringList []string

// Value implements driver.Valuer
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	return scanJSON(value, l, "StringList")
}

// Contains reports whether the list holds the given value.
func (l StringList) Contains(v string) bool {
	for _, item := range l {
		if item == v {
			return true
		}
	}
	return false
}

// OverrideMap maps option ids to their per-engagement overrides,
// persisted as a JSON text column. Keys are expected to be a subset of
// the engagement's selected option ids; stray keys are ignored by the
// pricing engine rather than rejected.
type OverrideMap map[string]OptionOverride

// Value implements driver.Valuer
func (m OverrideMap) Value() (driver.Value, error) {
	if m == nil {
		m = OverrideMap{}
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (m *OverrideMap) Scan(value interface{}) error {
	if value == nil {
		*m = OverrideMap{}
		return nil
	}
	return scanJSON(value, m, "OverrideMap")
}

// Clone returns an independent copy of the map. Used when freezing an
// engagement's pricing inputs into a new record.
func (m OverrideMap) Clone() OverrideMap {
	out := make(OverrideMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SendHistoryList is the engagement send history in send order, persisted
// as a JSON text column.
type SendHistoryList []SendRecord

// Value implements driver.Valuer
func (h SendHistoryList) Value() (driver.Value, error) {
	if h == nil {
		h = SendHistoryList{}
	}
	b, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (h *SendHistoryList) Scan(value interface{}) error {
	if value == nil {
		*h = SendHistoryList{}
		return nil
	}
	return scanJSON(value, h, "SendHistoryList")
}

func scanJSON(value, target interface{}, typeName string) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, target)
	case string:
		return json.Unmarshal([]byte(v), target)
	default:
		return fmt.Errorf("cannot scan %T into %s", value, typeName)
	}
}
