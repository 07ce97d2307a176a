package expression

import (
	"strconv"
)

// ValueType tags the dynamic type of a Value.
type ValueType int

const (
	TypeInvalid ValueType = iota
	TypeBool
	TypeInt
	TypeFloat
)

func (t ValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	default:
		return "invalid"
	}
}

// Value is the result of evaluating a node: a bool, an int or a float.
// The zero Value is invalid.
type Value struct {
	typ ValueType
	b   bool
	i   int64
	f   float64
}

func BoolValue(b bool) Value     { return Value{typ: TypeBool, b: b} }
func IntValue(i int64) Value     { return Value{typ: TypeInt, i: i} }
func FloatValue(f float64) Value { return Value{typ: TypeFloat, f: f} }

// Type returns the dynamic type.
func (v Value) Type() ValueType { return v.typ }

// IsNumeric reports whether v is an int or a float.
func (v Value) IsNumeric() bool {
	return v.typ == TypeInt || v.typ == TypeFloat
}

// Bool returns the boolean payload. ok is false for non-bool values.
func (v Value) Bool() (b, ok bool) {
	return v.b, v.typ == TypeBool
}

// Int returns the value truncated towards zero. Only meaningful for numerics.
func (v Value) Int() int64 {
	if v.typ == TypeFloat {
		return int64(v.f)
	}
	return v.i
}

// Float returns the value as float64. Only meaningful for numerics.
func (v Value) Float() float64 {
	if v.typ == TypeInt {
		return float64(v.i)
	}
	return v.f
}

func (v Value) String() string {
	switch v.typ {
	case TypeBool:
		return strconv.FormatBool(v.b)
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return "<invalid>"
	}
}
