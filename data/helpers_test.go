package data

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// newCheckedAllocator returns an allocator that fails the test if any
// Arrow memory is still referenced when the test ends.
func newCheckedAllocator(t *testing.T) *memory.CheckedAllocator {
	t.Helper()
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	t.Cleanup(func() { mem.AssertSize(t, 0) })
	return mem
}

// buildRecord creates a record with the given fields and lets fill append
// values through the record builder.
func buildRecord(t *testing.T, mem memory.Allocator, fields []arrow.Field, fill func(b *array.RecordBuilder)) arrow.Record {
	t.Helper()
	b := array.NewRecordBuilder(mem, arrow.NewSchema(fields, nil))
	defer b.Release()

	fill(b)
	rec := b.NewRecord()
	t.Cleanup(rec.Release)
	return rec
}

func int64Record(t *testing.T, mem memory.Allocator, name string, values []int64, valid []bool) arrow.Record {
	t.Helper()
	return buildRecord(t, mem,
		[]arrow.Field{{Name: name, Type: arrow.PrimitiveTypes.Int64, Nullable: true}},
		func(b *array.RecordBuilder) {
			b.Field(0).(*array.Int64Builder).AppendValues(values, valid)
		})
}

func texts(t *testing.T, r Row) []string {
	t.Helper()
	out := make([]string, r.Len())
	for i, v := range r.Values() {
		s, err := v.Text()
		if err != nil {
			t.Fatalf("Text() for value %d: %v", i, err)
		}
		out[i] = s
	}
	return out
}
