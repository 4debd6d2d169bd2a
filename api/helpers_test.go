package api

import (
	"testing"

	arrowipc "github.com/VanDung-dev/hierachain-frame/arrow"
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/require"
)

// samplePayload returns an IPC stream with one batch of (id, name) rows.
func samplePayload(t testing.TB) []byte {
	t.Helper()

	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, []bool{true, true, false})
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"a", "b", "c"}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	payload, err := arrowipc.NewCodecWithAllocator(mem).Serialize(rec)
	require.NoError(t, err)
	return payload
}

// unsupportedPayload returns an IPC stream whose only column has no
// column type mapping.
func unsupportedPayload(t testing.TB) []byte {
	t.Helper()

	mem := memory.NewGoAllocator()
	schema := arrow.NewSchema([]arrow.Field{
		{Name: "f", Type: arrow.PrimitiveTypes.Float32},
	}, nil)

	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	b.Field(0).(*array.Float32Builder).AppendValues([]float32{1.5}, nil)
	rec := b.NewRecord()
	defer rec.Release()

	payload, err := arrowipc.NewCodecWithAllocator(mem).Serialize(rec)
	require.NoError(t, err)
	return payload
}

const sampleTable = "+------+------+\n" +
	"| id   | name |\n" +
	"+------+------+\n" +
	"| 1    | a    |\n" +
	"| 2    | b    |\n" +
	"| NULL | c    |\n" +
	"+------+------+"
