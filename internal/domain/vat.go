package domain

import (
	"bytes"
	"database/sql/driver"
	"fmt"
)

// VatOverride is the engagement-level VAT treatment. It is a three-value
// enumeration rather than a nullable boolean so that resetting to the
// company default ("inherit") is a distinct, type-checked operation from
// forcing VAT off. The stored and wire representation remains a nullable
// boolean: null means inherit.
type VatOverride string

const (
	VatInherit  VatOverride = "inherit"
	VatEnabled  VatOverride = "enabled"
	VatDisabled VatOverride = "disabled"
)

// IsValid checks if the VatOverride is a valid enum value
func (v VatOverride) IsValid() bool {
	switch v {
	case VatInherit, VatEnabled, VatDisabled:
		return true
	}
	return false
}

// VatOverrideFromBool maps a nullable boolean to the enum: nil is inherit.
func VatOverrideFromBool(b *bool) VatOverride {
	switch {
	case b == nil:
		return VatInherit
	case *b:
		return VatEnabled
	default:
		return VatDisabled
	}
}

// Bool returns the nullable-boolean representation: nil for inherit.
func (v VatOverride) Bool() *bool {
	switch v {
	case VatEnabled:
		t := true
		return &t
	case VatDisabled:
		f := false
		return &f
	}
	return nil
}

// MarshalJSON encodes inherit as null, the forced states as booleans.
func (v VatOverride) MarshalJSON() ([]byte, error) {
	switch v {
	case VatEnabled:
		return []byte("true"), nil
	case VatDisabled:
		return []byte("false"), nil
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts null, true and false. Anything else is rejected so
// a malformed override cannot be silently read as inherit.
func (v *VatOverride) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = VatInherit
	case bytes.Equal(data, []byte("true")):
		*v = VatEnabled
	case bytes.Equal(data, []byte("false")):
		*v = VatDisabled
	default:
		return fmt.Errorf("invalid VAT override value: %s", data)
	}
	return nil
}

// Value implements driver.Valuer; the column is a nullable boolean.
func (v VatOverride) Value() (driver.Value, error) {
	b := v.Bool()
	if b == nil {
		return nil, nil
	}
	return *b, nil
}

// Scan implements sql.Scanner
func (v *VatOverride) Scan(value interface{}) error {
	if value == nil {
		*v = VatInherit
		return nil
	}
	switch b := value.(type) {
	case bool:
		*v = VatOverrideFromBool(&b)
	case int64:
		t := b != 0
		*v = VatOverrideFromBool(&t)
	default:
		return fmt.Errorf("cannot scan %T into VatOverride", value)
	}
	return nil
}
