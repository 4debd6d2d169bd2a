package data

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
)

func TestArrowToColumnType(t *testing.T) {
	tests := []struct {
		name string
		in   arrow.DataType
		want ColumnKind
	}{
		{"binary", arrow.BinaryTypes.Binary, ColumnBlob},
		{"utf8", arrow.BinaryTypes.String, ColumnString},
		{"large utf8", arrow.BinaryTypes.LargeString, ColumnString},
		{"timestamp us", &arrow.TimestampType{Unit: arrow.Microsecond}, ColumnString},
		{"timestamp s zoned", &arrow.TimestampType{Unit: arrow.Second, TimeZone: "UTC"}, ColumnString},
		{"interval day time", arrow.FixedWidthTypes.DayTimeInterval, ColumnString},
		{"interval months", arrow.FixedWidthTypes.MonthInterval, ColumnString},
		{"interval month day nano", arrow.FixedWidthTypes.MonthDayNanoInterval, ColumnString},
		{"float16", arrow.FixedWidthTypes.Float16, ColumnDouble},
		{"float64", arrow.PrimitiveTypes.Float64, ColumnDouble},
		{"bool", arrow.FixedWidthTypes.Boolean, ColumnBoolean},
		{"list", arrow.ListOf(arrow.BinaryTypes.String), ColumnList},
		{"int8", arrow.PrimitiveTypes.Int8, ColumnInt64},
		{"int16", arrow.PrimitiveTypes.Int16, ColumnInt64},
		{"int32", arrow.PrimitiveTypes.Int32, ColumnInt64},
		{"int64", arrow.PrimitiveTypes.Int64, ColumnInt64},
		{"uint8", arrow.PrimitiveTypes.Uint8, ColumnInt64},
		{"uint16", arrow.PrimitiveTypes.Uint16, ColumnInt64},
		{"uint32", arrow.PrimitiveTypes.Uint32, ColumnInt64},
		{"uint64", arrow.PrimitiveTypes.Uint64, ColumnInt64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ArrowToColumnType(tt.in)
			if err != nil {
				t.Fatalf("ArrowToColumnType(%s) error: %v", tt.in, err)
			}
			if got.Kind != tt.want {
				t.Errorf("ArrowToColumnType(%s) = %s, want %s", tt.in, got.Kind, tt.want)
			}
		})
	}
}

func TestArrowToColumnTypeListElement(t *testing.T) {
	got, err := ArrowToColumnType(arrow.ListOf(arrow.PrimitiveTypes.Int32))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(ListOf(arrow.PrimitiveTypes.Int32)) {
		t.Errorf("Expected List(int32), got %s", got)
	}
	if got.Equal(ListOf(arrow.PrimitiveTypes.Int64)) {
		t.Error("List(int32) should not equal List(int64)")
	}
	if got.String() != "List(int32)" {
		t.Errorf("Expected String() 'List(int32)', got %s", got.String())
	}
}

func TestArrowToColumnTypeUnsupported(t *testing.T) {
	unsupported := []arrow.DataType{
		arrow.PrimitiveTypes.Float32,
		arrow.PrimitiveTypes.Date32,
		arrow.LargeListOf(arrow.PrimitiveTypes.Int64),
		arrow.StructOf(arrow.Field{Name: "x", Type: arrow.PrimitiveTypes.Int64}),
		arrow.MapOf(arrow.BinaryTypes.String, arrow.BinaryTypes.String),
		nil,
	}

	for _, dt := range unsupported {
		_, err := ArrowToColumnType(dt)
		if err == nil {
			t.Errorf("Expected error for %v", dt)
			continue
		}
		ute, ok := err.(*UnsupportedTypeError)
		if !ok {
			t.Errorf("Expected *UnsupportedTypeError for %v, got %T", dt, err)
			continue
		}
		if ute.Type != dt {
			t.Errorf("Error should carry the offending type %v, got %v", dt, ute.Type)
		}
	}
}
