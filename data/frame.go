package data

import (
	"fmt"
)

// DataFrame is a materialized result set: an ordered list of columns plus
// the rows holding their values.
//
// Every row has exactly len(Columns()) values and the i-th value is either
// Null or of a kind compatible with the i-th column type. Rows may be
// modified in place for post-processing as long as that holds.
type DataFrame struct {
	columns []Column
	rows    []Row
}

// NewDataFrame creates a DataFrame. It does not check the row invariant;
// use Validate for that.
func NewDataFrame(columns []Column, rows []Row) *DataFrame {
	return &DataFrame{
		columns: columns,
		rows:    rows,
	}
}

// Len returns the number of rows.
func (df *DataFrame) Len() int {
	return len(df.rows)
}

func (df *DataFrame) Columns() []Column {
	return df.columns
}

// Rows returns the rows. The slice is shared with the frame, so
// Rows()[i].Set mutates the frame.
func (df *DataFrame) Rows() []Row {
	return df.rows
}

// IntoRows hands the rows over to the caller and leaves the frame empty.
// Ownership of any list values moves with them.
func (df *DataFrame) IntoRows() []Row {
	rows := df.rows
	df.rows = nil
	return rows
}

// Release drops the references held by list values. The frame must not be
// used afterwards.
func (df *DataFrame) Release() {
	for _, r := range df.rows {
		r.release()
	}
	df.rows = nil
}

// Validate checks row widths and value kinds against the columns.
func (df *DataFrame) Validate() error {
	for i, r := range df.rows {
		if r.Len() != len(df.columns) {
			return fmt.Errorf("row %d has %d values, expected %d", i, r.Len(), len(df.columns))
		}
		for j, v := range r.values {
			if !kindMatches(df.columns[j].columnType, v.kind) {
				return fmt.Errorf("row %d column %q: %s value in %s column",
					i, df.columns[j].name, v.kind, df.columns[j].columnType)
			}
		}
	}
	return nil
}

// kindMatches reports whether a value kind may appear in a column type.
// Timestamp and interval columns are declared String, so String columns
// accept timestamps too.
func kindMatches(t ColumnType, k ValueKind) bool {
	if k == KindNull {
		return true
	}
	switch t.Kind {
	case ColumnString:
		return k == KindString || k == KindTimestamp
	case ColumnInt64:
		return k == KindInt64
	case ColumnDouble:
		return k == KindFloat64
	case ColumnBoolean:
		return k == KindBoolean
	case ColumnList:
		return k == KindList
	default:
		return false
	}
}
