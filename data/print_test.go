package data

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/require"
)

func TestDataFramePrint(t *testing.T) {
	frame := NewDataFrame(
		[]Column{NewColumn("test", ColumnType{Kind: ColumnString}, 0)},
		[]Row{NewRow([]TableValue{StringValue("simple_str")})},
	)

	got, err := frame.Print()
	require.NoError(t, err)
	require.Equal(t, "+------------+\n"+
		"| test       |\n"+
		"+------------+\n"+
		"| simple_str |\n"+
		"+------------+", got)
}

func TestDataFramePrintMixedValues(t *testing.T) {
	frame := NewDataFrame(
		[]Column{
			NewColumn("id", ColumnType{Kind: ColumnInt64}, 0),
			NewColumn("name", ColumnType{Kind: ColumnString}, 0),
			NewColumn("ok", ColumnType{Kind: ColumnBoolean}, 0),
		},
		[]Row{
			NewRow([]TableValue{Int64Value(1), StringValue("alice"), BooleanValue(true)}),
			NewRow([]TableValue{Int64Value(22), NullValue(), BooleanValue(false)}),
		},
	)

	got, err := frame.Print()
	require.NoError(t, err)
	require.Equal(t, "+----+-------+-------+\n"+
		"| id | name  | ok    |\n"+
		"+----+-------+-------+\n"+
		"| 1  | alice | true  |\n"+
		"| 22 | NULL  | false |\n"+
		"+----+-------+-------+", got)

	again, err := frame.Print()
	require.NoError(t, err)
	require.Equal(t, got, again)
}

func TestDataFramePrintHeaderOnly(t *testing.T) {
	frame := NewDataFrame([]Column{NewColumn("empty", ColumnType{Kind: ColumnString}, 0)}, nil)

	got, err := frame.Print()
	require.NoError(t, err)
	require.Equal(t, "+-------+\n"+
		"| empty |\n"+
		"+-------+", got)
}

func TestDataFramePrintEmptyBatch(t *testing.T) {
	mem := newCheckedAllocator(t)
	rec := buildRecord(t, mem, []arrow.Field{
		{Name: "i", Type: arrow.PrimitiveTypes.Int64},
		{Name: "l", Type: arrow.ListOf(arrow.PrimitiveTypes.Int32)},
	}, func(b *array.RecordBuilder) {
		b.Field(0).(*array.Int64Builder).Append(1)
		b.Field(1).(*array.ListBuilder).Append(true)
	})
	empty := rec.NewSlice(0, 0)
	defer empty.Release()

	df, err := BatchToDataFrame([]arrow.Record{empty})
	require.NoError(t, err)
	defer df.Release()

	got, err := df.Print()
	require.NoError(t, err)
	require.Equal(t, "+---+---+\n"+
		"| i | l |\n"+
		"+---+---+", got)
}

func TestDataFramePrintNoColumns(t *testing.T) {
	got, err := NewDataFrame(nil, nil).Print()
	require.NoError(t, err)
	require.Equal(t, "", got)
}

func TestDataFramePrintFromBatch(t *testing.T) {
	mem := newCheckedAllocator(t)
	fields := []arrow.Field{
		{Name: "ts", Type: &arrow.TimestampType{Unit: arrow.Microsecond}, Nullable: true},
		{Name: "tags", Type: arrow.ListOf(arrow.PrimitiveTypes.Int32), Nullable: true},
	}
	rec := buildRecord(t, mem, fields, func(b *array.RecordBuilder) {
		b.Field(0).(*array.TimestampBuilder).Append(arrow.Timestamp(1_600_000_000_123_456))
		lb := b.Field(1).(*array.ListBuilder)
		lb.Append(true)
		lb.ValueBuilder().(*array.Int32Builder).AppendValues([]int32{10, 0, 30}, []bool{true, false, true})
	})

	df, err := BatchToDataFrame([]arrow.Record{rec})
	require.NoError(t, err)
	defer df.Release()

	got, err := df.Print()
	require.NoError(t, err)
	require.Equal(t, "+-------------------------+--------------+\n"+
		"| ts                      | tags         |\n"+
		"+-------------------------+--------------+\n"+
		"| 2020-09-13T12:26:40.123 | {10,NULL,30} |\n"+
		"+-------------------------+--------------+", got)
}

func TestDataFramePrintUnsupportedListElement(t *testing.T) {
	mem := newCheckedAllocator(t)
	b := array.NewDate32Builder(mem)
	defer b.Release()
	b.Append(arrow.Date32(1))

	df := NewDataFrame(
		[]Column{NewColumn("d", ListOf(arrow.PrimitiveTypes.Date32), 0)},
		[]Row{NewRow([]TableValue{ListValue(b.NewArray())})},
	)
	defer df.Release()

	_, err := df.Print()
	require.ErrorIs(t, err, ErrUnsupportedType)
}
