package data

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// ArrowToColumnType maps an Arrow type to its semantic column type.
//
// Timestamps and intervals are declared String even though the converter
// emits Timestamp values for timestamp cells; the column type is advisory.
// Float32 is deliberately left unmapped.
func ArrowToColumnType(dt arrow.DataType) (ColumnType, error) {
	if dt == nil {
		return ColumnType{}, &UnsupportedTypeError{}
	}

	switch dt.ID() {
	case arrow.BINARY:
		return ColumnType{Kind: ColumnBlob}, nil
	case arrow.STRING, arrow.LARGE_STRING:
		return ColumnType{Kind: ColumnString}, nil
	case arrow.TIMESTAMP:
		return ColumnType{Kind: ColumnString}, nil
	case arrow.INTERVAL_MONTHS, arrow.INTERVAL_DAY_TIME, arrow.INTERVAL_MONTH_DAY_NANO:
		return ColumnType{Kind: ColumnString}, nil
	case arrow.FLOAT16, arrow.FLOAT64:
		return ColumnType{Kind: ColumnDouble}, nil
	case arrow.BOOL:
		return ColumnType{Kind: ColumnBoolean}, nil
	case arrow.LIST:
		return ListOf(dt.(*arrow.ListType).Elem()), nil
	case arrow.INT8, arrow.INT16, arrow.INT32, arrow.INT64,
		arrow.UINT8, arrow.UINT16, arrow.UINT32, arrow.UINT64:
		return ColumnType{Kind: ColumnInt64}, nil
	default:
		return ColumnType{}, &UnsupportedTypeError{Type: dt}
	}
}
