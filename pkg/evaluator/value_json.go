package evaluator

import (
	"encoding/json"
	"math"
)

// ValueToJSON marshals a Value to JSON bytes.
// Non-finite floats have no JSON number form and are written as strings.
func ValueToJSON(v Value) ([]byte, error) {
	return json.Marshal(valueToRaw(v))
}

func valueToRaw(v Value) any {
	switch val := v.(type) {
	case Boolean:
		return val.Value
	case Integer:
		return val.Value
	case Float:
		switch {
		case math.IsNaN(val.Value):
			return "NaN"
		case math.IsInf(val.Value, 1):
			return "+Inf"
		case math.IsInf(val.Value, -1):
			return "-Inf"
		}
		return val.Value
	case String:
		return val.Value
	}
	return nil
}

// ValueToJSONString is a convenience that returns a string.
func ValueToJSONString(v Value) string {
	b, err := ValueToJSON(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// ValueFromJSON converts a decoded JSON scalar back into a Value. Whole
// numbers become Integers. Arrays and objects have no taco counterpart and
// yield Nil.
func ValueFromJSON(raw any) Value {
	switch val := raw.(type) {
	case bool:
		return NewBool(val)
	case string:
		return NewString(val)
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < 1<<53 {
			return NewInt(int64(val))
		}
		return NewFloat(val)
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return NewInt(i)
		}
		if f, err := val.Float64(); err == nil {
			return NewFloat(f)
		}
	}
	return NewNil()
}
