package model

import (
	"fmt"
	"strconv"
)

// ValueKind identifies the declared type carried by a Value.
type ValueKind int

const (
	KindInt ValueKind = iota + 1
	KindFloat
	KindString
)

// String returns the lowercase name of the kind.
func (k ValueKind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// Value is a single cell of a feature vector. It keeps the declared kind of
// the field it came from so no coercion happens before the preprocessing
// stage. A missing Value has a kind but no payload.
type Value struct {
	str     string
	num     float64
	kind    ValueKind
	missing bool
}

// IntValue wraps an integer field.
func IntValue(v int) Value {
	return Value{kind: KindInt, num: float64(v)}
}

// FloatValue wraps a float field.
func FloatValue(v float64) Value {
	return Value{kind: KindFloat, num: v}
}

// StringValue wraps a categorical field.
func StringValue(v string) Value {
	return Value{kind: KindString, str: v}
}

// MissingValue is an absent cell of the given kind, left for the imputers.
func MissingValue(kind ValueKind) Value {
	return Value{kind: kind, missing: true}
}

func (v Value) Kind() ValueKind  { return v.kind }
func (v Value) IsMissing() bool  { return v.missing }
func (v Value) IsNumeric() bool  { return v.kind == KindInt || v.kind == KindFloat }
func (v Value) Float() float64   { return v.num }
func (v Value) Int() int         { return int(v.num) }
func (v Value) Category() string { return v.str }

// Equal reports whether two values have the same kind and payload.
func (v Value) Equal(other Value) bool {
	return v == other
}

// String renders the value for logs and error messages.
func (v Value) String() string {
	if v.missing {
		return "<missing>"
	}
	switch v.kind {
	case KindInt:
		return strconv.Itoa(int(v.num))
	case KindFloat:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.str)
	default:
		return fmt.Sprintf("<%s>", v.kind)
	}
}
