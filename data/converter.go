package data

import (
	"fmt"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/float16"
	"golang.org/x/exp/constraints"
)

// BatchToDataFrame converts record batches into a single DataFrame.
//
// Columns are derived from the first batch that has rows, or from the first
// batch when all are empty. Empty batches contribute no rows. Rows keep
// batch order and intra-batch order.
//
// A cell of an Arrow type outside the supported set fails the whole
// conversion with an UnsupportedTypeError; no partial frame is returned.
func BatchToDataFrame(batches []arrow.Record) (*DataFrame, error) {
	columns, err := deriveColumns(batches)
	if err != nil {
		return nil, err
	}

	var all []Row
	for _, batch := range batches {
		if batch.NumRows() == 0 {
			continue
		}

		rows, err := convertBatch(batch)
		if err != nil {
			for _, r := range all {
				r.release()
			}
			return nil, err
		}
		all = append(all, rows...)
	}

	return NewDataFrame(columns, all), nil
}

func deriveColumns(batches []arrow.Record) ([]Column, error) {
	if len(batches) == 0 {
		return []Column{}, nil
	}

	source := batches[0]
	for _, batch := range batches {
		if batch.NumRows() > 0 {
			source = batch
			break
		}
	}

	schema := source.Schema()
	columns := make([]Column, 0, schema.NumFields())
	for _, field := range schema.Fields() {
		columnType, err := ArrowToColumnType(field.Type)
		if err != nil {
			return nil, withColumn(err, field.Name)
		}
		columns = append(columns, NewColumn(field.Name, columnType, 0))
	}
	return columns, nil
}

func convertBatch(batch arrow.Record) ([]Row, error) {
	numRows := int(batch.NumRows())
	numCols := int(batch.NumCols())

	rows := make([]Row, numRows)
	for i := range rows {
		rows[i] = NewRow(make([]TableValue, 0, numCols))
	}

	for c := 0; c < numCols; c++ {
		if err := decodeColumn(batch.Column(c), rows); err != nil {
			for _, r := range rows {
				r.release()
			}
			return nil, withColumn(err, batch.ColumnName(c))
		}
	}
	return rows, nil
}

// decodeColumn appends one value per row decoded from arr.
func decodeColumn(arr arrow.Array, rows []Row) error {
	switch a := arr.(type) {
	case *array.Int8:
		decodeInto(rows, a, intValue[int8])
	case *array.Int16:
		decodeInto(rows, a, intValue[int16])
	case *array.Int32:
		decodeInto(rows, a, intValue[int32])
	case *array.Int64:
		decodeInto(rows, a, intValue[int64])
	case *array.Uint8:
		decodeInto(rows, a, intValue[uint8])
	case *array.Uint16:
		decodeInto(rows, a, intValue[uint16])
	case *array.Uint32:
		decodeInto(rows, a, intValue[uint32])
	case *array.Uint64:
		decodeInto(rows, a, intValue[uint64])
	case *array.Float16:
		decodeInto(rows, a, func(v float16.Num) TableValue { return Float64Value(float64(v.Float32())) })
	case *array.Float64:
		decodeInto(rows, a, Float64Value)
	case *array.String:
		decodeInto(rows, a, stringValue)
	case *array.LargeString:
		decodeInto(rows, a, stringValue)
	case *array.Boolean:
		decodeInto(rows, a, BooleanValue)
	case *array.Timestamp:
		tt := a.DataType().(*arrow.TimestampType)
		if tt.TimeZone != "" {
			return &UnsupportedTypeError{Type: tt}
		}
		switch tt.Unit {
		case arrow.Microsecond:
			decodeInto(rows, a, func(v arrow.Timestamp) TableValue {
				return TimestampOf(NewTimestampValue(int64(v) * 1000))
			})
		case arrow.Nanosecond:
			decodeInto(rows, a, func(v arrow.Timestamp) TableValue {
				return TimestampOf(NewTimestampValue(int64(v)))
			})
		default:
			return &UnsupportedTypeError{Type: tt}
		}
	case *array.DayTimeInterval:
		decodeInto(rows, a, func(v arrow.DayTimeInterval) TableValue {
			return StringValue(FormatDayTimeInterval(v))
		})
	case *array.MonthInterval:
		decodeInto(rows, a, func(v arrow.MonthInterval) TableValue {
			return StringValue(FormatYearMonthInterval(v))
		})
	case *array.List:
		values := a.ListValues()
		for i := range rows {
			if a.IsNull(i) {
				rows[i].Push(NullValue())
				continue
			}
			start, end := a.ValueOffsets(i)
			rows[i].Push(ListValue(array.NewSlice(values, start, end)))
		}
	default:
		return &UnsupportedTypeError{Type: arr.DataType()}
	}
	return nil
}

// decodeInto converts every position of arr, mapping nulls to Null.
func decodeInto[T any](rows []Row, arr valueArray[T], conv func(T) TableValue) {
	for i := range rows {
		if arr.IsNull(i) {
			rows[i].Push(NullValue())
			continue
		}
		rows[i].Push(conv(arr.Value(i)))
	}
}

// intValue narrows or widens any integer to Int64. Values above
// math.MaxInt64 wrap.
func intValue[T constraints.Integer](v T) TableValue {
	return Int64Value(int64(v))
}

// stringValue copies v off the Arrow buffer it points into.
func stringValue(v string) TableValue {
	return StringValue(strings.Clone(v))
}

func withColumn(err error, column string) error {
	if ute, ok := err.(*UnsupportedTypeError); ok && ute.Column == "" {
		return &UnsupportedTypeError{Type: ute.Type, Column: column}
	}
	return fmt.Errorf("column %q: %w", column, err)
}
