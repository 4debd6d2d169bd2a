package data

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/float16"
)

// valueArray is the capability set shared by the typed Arrow arrays:
// length, null check and an indexed native accessor.
type valueArray[T any] interface {
	arrow.Array
	Value(int) T
}

// collect reads every position of arr, leaving nil for nulls.
func collect[T any](arr valueArray[T], conv func(T) any) []any {
	out := make([]any, arr.Len())
	for i := range out {
		if arr.IsNull(i) {
			continue
		}
		out[i] = conv(arr.Value(i))
	}
	return out
}

func same[T any](v T) any { return v }

// listNative materializes the elements of a nested list array. Only flat
// numeric, boolean and string element types are supported.
func listNative(list arrow.Array) ([]any, error) {
	switch a := list.(type) {
	case *array.Float16:
		return collect(a, func(v float16.Num) any { return nativeFloat(v.Float32()) }), nil
	case *array.Float32:
		return collect(a, nativeFloat[float32]), nil
	case *array.Float64:
		return collect(a, nativeFloat[float64]), nil
	case *array.Int8:
		return collect(a, same[int8]), nil
	case *array.Int16:
		return collect(a, same[int16]), nil
	case *array.Int32:
		return collect(a, same[int32]), nil
	case *array.Int64:
		return collect(a, same[int64]), nil
	case *array.Uint8:
		return collect(a, same[uint8]), nil
	case *array.Uint16:
		return collect(a, same[uint16]), nil
	case *array.Uint32:
		return collect(a, same[uint32]), nil
	case *array.Uint64:
		return collect(a, same[uint64]), nil
	case *array.Boolean:
		return collect(a, same[bool]), nil
	case *array.String:
		return collect(a, func(v string) any { return strings.Clone(v) }), nil
	case *array.LargeString:
		return collect(a, func(v string) any { return strings.Clone(v) }), nil
	default:
		return nil, &UnsupportedTypeError{Type: list.DataType()}
	}
}

func nativeText(v any) string {
	switch x := v.(type) {
	case nil:
		return nullText
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	default:
		return fmt.Sprint(x)
	}
}
