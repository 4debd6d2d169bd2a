package arrow

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ErrNoRecords is returned when there is nothing to serialize.
var ErrNoRecords = errors.New("no records to serialize")

// Codec reads and writes record batches as Arrow IPC streams.
type Codec struct {
	allocator memory.Allocator
}

// NewCodec creates a Codec backed by the default allocator.
func NewCodec() *Codec {
	return NewCodecWithAllocator(memory.DefaultAllocator)
}

// NewCodecWithAllocator creates a Codec that allocates decoded batches from mem.
func NewCodecWithAllocator(mem memory.Allocator) *Codec {
	return &Codec{allocator: mem}
}

// Serialize writes records into a single IPC stream using the schema of the
// first record.
func (c *Codec) Serialize(records ...arrow.Record) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.WriteTo(&buf, records...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteTo streams records to w.
func (c *Codec) WriteTo(w io.Writer, records ...arrow.Record) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	writer := ipc.NewWriter(w, ipc.WithSchema(records[0].Schema()), ipc.WithAllocator(c.allocator))
	defer writer.Close()

	for i, record := range records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

// Deserialize decodes every record in an IPC stream. Each returned record is
// retained and must be released by the caller, see ReleaseAll.
func (c *Codec) Deserialize(data []byte) ([]arrow.Record, error) {
	if len(data) == 0 {
		return nil, errors.New("empty IPC payload")
	}
	return c.ReadFrom(bytes.NewReader(data))
}

// ReadFrom decodes every record available on r.
func (c *Codec) ReadFrom(r io.Reader) ([]arrow.Record, error) {
	reader, err := ipc.NewReader(r, ipc.WithAllocator(c.allocator))
	if err != nil {
		return nil, fmt.Errorf("failed to create reader: %w", err)
	}
	defer reader.Release()

	var records []arrow.Record
	for reader.Next() {
		record := reader.Record()
		record.Retain()
		records = append(records, record)
	}

	if err := reader.Err(); err != nil {
		// Release any records we've already retained
		ReleaseAll(records)
		return nil, fmt.Errorf("failed to read records: %w", err)
	}

	return records, nil
}

// ReleaseAll releases every record.
func ReleaseAll(records []arrow.Record) {
	for _, r := range records {
		r.Release()
	}
}
