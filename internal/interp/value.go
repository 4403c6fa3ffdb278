package interp

import "fmt"

// Kind discriminates the runtime value variants.
type Kind int

const (
	KindVoid Kind = iota
	KindInt
	KindBool
)

// Value is a runtime value. The zero value is the void value.
type Value struct {
	Kind Kind
	Int  int32
	Bool bool
}

// Void is the unit value produced by functions that fall through
// without returning.
var Void = Value{Kind: KindVoid}

// IntValue wraps an integer as a runtime value.
func IntValue(v int32) Value { return Value{Kind: KindInt, Int: v} }

// BoolValue wraps a boolean as a runtime value.
func BoolValue(v bool) Value { return Value{Kind: KindBool, Bool: v} }

// AsInt coerces the value to an integer or reports a coercion error.
func (v Value) AsInt() (int32, error) {
	if v.Kind != KindInt {
		return 0, fmt.Errorf("Expected Int, found %s", v)
	}
	return v.Int, nil
}

// AsBool coerces the value to a boolean or reports a coercion error.
func (v Value) AsBool() (bool, error) {
	if v.Kind != KindBool {
		return false, fmt.Errorf("Expected Bool, found %s", v)
	}
	return v.Bool, nil
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("Int(%d)", v.Int)
	case KindBool:
		return fmt.Sprintf("Bool(%t)", v.Bool)
	default:
		return "Void"
	}
}
