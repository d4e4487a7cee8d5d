package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// NullInt64 is a nullable integer column that marshals to JSON null when unset
type NullInt64 struct {
	sql.NullInt64
}

// MarshalJSON implements the json.Marshaler interface
func (n NullInt64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Int64)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (n *NullInt64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &n.Int64); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// NullFloat64 is a nullable numeric column that marshals to JSON null when unset
type NullFloat64 struct {
	sql.NullFloat64
}

// MarshalJSON implements the json.Marshaler interface
func (n NullFloat64) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON implements the json.Unmarshaler interface
func (n *NullFloat64) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		n.Valid = false
		return nil
	}
	if err := json.Unmarshal(data, &n.Float64); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// ItemList is a JSONB column holding a list of free-form item objects
// (baggage or vehicle entries). It is never null externally: a missing or
// empty list is always [].
type ItemList []map[string]interface{}

// Value implements the driver.Valuer interface
func (l ItemList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *ItemList) Scan(src interface{}) error {
	if src == nil {
		*l = ItemList{}
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into ItemList", src)
	}

	if len(data) == 0 {
		*l = ItemList{}
		return nil
	}

	return json.Unmarshal(data, l)
}

// OrEmpty returns the list, substituting an empty one for nil
func (l ItemList) OrEmpty() ItemList {
	if l == nil {
		return ItemList{}
	}
	return l
}
