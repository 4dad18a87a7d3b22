// Package evaluator implements the taco tree-walking interpreter.
package evaluator

import "strconv"

// Value is the interface for all taco runtime values.
// The sealed marker method restricts implementations to this package.
type Value interface {
	value() // sealed marker
}

// Nil represents the absence of a value.
type Nil struct{}

func (Nil) value() {}

// Boolean represents true or false.
type Boolean struct {
	Value bool
}

func (Boolean) value() {}

// Integer represents a 64-bit signed integer.
type Integer struct {
	Value int64
}

func (Integer) value() {}

// Float represents a 64-bit floating point number.
type Float struct {
	Value float64
}

func (Float) value() {}

// String represents a string value.
type String struct {
	Value string
}

func (String) value() {}

// NewNil creates a nil value.
func NewNil() Value {
	return Nil{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Boolean{Value: b}
}

// NewInt creates an integer value.
func NewInt(n int64) Value {
	return Integer{Value: n}
}

// NewFloat creates a float value.
func NewFloat(f float64) Value {
	return Float{Value: f}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// Truthiness returns the boolean interpretation of a value.
// Only nil and false are falsy; 0 and "" are truthy.
func Truthiness(v Value) bool {
	switch val := v.(type) {
	case nil, Nil:
		return false
	case Boolean:
		return val.Value
	default:
		return true
	}
}

// KindOf names the kind of v as it appears in error messages.
func KindOf(v Value) string {
	switch v.(type) {
	case Integer:
		return "Integer"
	case Float:
		return "Float"
	case String:
		return "String"
	case Boolean:
		return "Boolean"
	case nil, Nil:
		return "Nil"
	}
	return "Unknown"
}

// Stringify renders v the way print shows it.
func Stringify(v Value) string {
	switch val := v.(type) {
	case Integer:
		return strconv.FormatInt(val.Value, 10)
	case Float:
		return strconv.FormatFloat(val.Value, 'f', -1, 64)
	case String:
		return val.Value
	case Boolean:
		if val.Value {
			return "true"
		}
		return "false"
	}
	return "nil"
}
