package data

import (
	"math"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
)

// ValueKind tags the variant held by a TableValue.
type ValueKind uint8

const (
	KindNull ValueKind = iota
	KindString
	KindInt64
	KindBoolean
	KindFloat64
	KindList
	KindTimestamp
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindString:
		return "String"
	case KindInt64:
		return "Int64"
	case KindBoolean:
		return "Boolean"
	case KindFloat64:
		return "Float64"
	case KindList:
		return "List"
	case KindTimestamp:
		return "Timestamp"
	default:
		return "Unknown"
	}
}

// nullText is the rendering of a null cell or list element.
const nullText = "NULL"

// TableValue is a single cell. The zero value is Null.
//
// There is no unsigned variant: every Arrow integer type is carried as
// Int64. List values reference Arrow memory; see DataFrame.Release.
type TableValue struct {
	kind ValueKind
	str  string
	i64  int64 // Int64 payload, or normalized nanoseconds for Timestamp
	f64  float64
	b    bool
	list arrow.Array
}

func NullValue() TableValue                   { return TableValue{} }
func StringValue(v string) TableValue         { return TableValue{kind: KindString, str: v} }
func Int64Value(v int64) TableValue           { return TableValue{kind: KindInt64, i64: v} }
func BooleanValue(v bool) TableValue          { return TableValue{kind: KindBoolean, b: v} }
func Float64Value(v float64) TableValue       { return TableValue{kind: KindFloat64, f64: v} }
func TimestampOf(v TimestampValue) TableValue { return TableValue{kind: KindTimestamp, i64: v.unixNano} }

// ListValue wraps a nested Arrow array without copying it. The caller's
// reference is handed over to the value.
func ListValue(v arrow.Array) TableValue {
	if v == nil {
		return NullValue()
	}
	return TableValue{kind: KindList, list: v}
}

func (v TableValue) Kind() ValueKind { return v.kind }
func (v TableValue) IsNull() bool    { return v.kind == KindNull }

func (v TableValue) AsString() (string, bool)    { return v.str, v.kind == KindString }
func (v TableValue) AsInt64() (int64, bool)      { return v.i64, v.kind == KindInt64 }
func (v TableValue) AsBoolean() (bool, bool)     { return v.b, v.kind == KindBoolean }
func (v TableValue) AsFloat64() (float64, bool)  { return v.f64, v.kind == KindFloat64 }
func (v TableValue) AsList() (arrow.Array, bool) { return v.list, v.kind == KindList }

func (v TableValue) AsTimestamp() (TimestampValue, bool) {
	if v.kind != KindTimestamp {
		return TimestampValue{}, false
	}
	return TimestampValue{unixNano: v.i64}, true
}

// Text returns the display form of the value. It fails only for lists whose
// element type has no text form.
func (v TableValue) Text() (string, error) {
	switch v.kind {
	case KindNull:
		return nullText, nil
	case KindString:
		return v.str, nil
	case KindInt64:
		return strconv.FormatInt(v.i64, 10), nil
	case KindBoolean:
		return strconv.FormatBool(v.b), nil
	case KindFloat64:
		return formatFloat(v.f64, 64), nil
	case KindTimestamp:
		return TimestampValue{unixNano: v.i64}.String(), nil
	case KindList:
		return listText(v.list)
	default:
		panic("data: unknown value kind " + strconv.Itoa(int(v.kind)))
	}
}

// String implements fmt.Stringer. It panics where Text would fail.
func (v TableValue) String() string {
	s, err := v.Text()
	if err != nil {
		panic("data: " + err.Error())
	}
	return s
}

// Native returns the value as a plain Go value suitable for encoders:
// nil, string, int64, bool, float64, the timestamp text, or []any for lists.
// NaN and infinities come back as their text form.
func (v TableValue) Native() (any, error) {
	switch v.kind {
	case KindNull:
		return nil, nil
	case KindString:
		return v.str, nil
	case KindInt64:
		return v.i64, nil
	case KindBoolean:
		return v.b, nil
	case KindFloat64:
		return nativeFloat(v.f64), nil
	case KindTimestamp:
		return TimestampValue{unixNano: v.i64}.String(), nil
	case KindList:
		return listNative(v.list)
	default:
		panic("data: unknown value kind " + strconv.Itoa(int(v.kind)))
	}
}

func listText(list arrow.Array) (string, error) {
	elems, err := listNative(list)
	if err != nil {
		return "", err
	}

	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = nativeText(e)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

func formatFloat(f float64, bitSize int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	return strconv.FormatFloat(f, 'f', -1, bitSize)
}

// nativeFloat keeps finite floats; JSON has no spelling for the others.
func nativeFloat[T float32 | float64](v T) any {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return formatFloat(f, 64)
	}
	return v
}
