package data

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// ColumnKind is the coarse, display-oriented type of a column.
type ColumnKind uint8

const (
	ColumnString ColumnKind = iota
	ColumnInt64
	ColumnDouble
	ColumnBoolean
	ColumnBlob
	ColumnList
)

func (k ColumnKind) String() string {
	switch k {
	case ColumnString:
		return "String"
	case ColumnInt64:
		return "Int64"
	case ColumnDouble:
		return "Double"
	case ColumnBoolean:
		return "Boolean"
	case ColumnBlob:
		return "Blob"
	case ColumnList:
		return "List"
	default:
		return "Unknown"
	}
}

// ColumnType is a semantic column type. Elem is set only for ColumnList and
// holds the Arrow type of the list elements.
type ColumnType struct {
	Kind ColumnKind
	Elem arrow.DataType
}

// ListOf returns the List column type for the given element type.
func ListOf(elem arrow.DataType) ColumnType {
	return ColumnType{Kind: ColumnList, Elem: elem}
}

func (t ColumnType) String() string {
	if t.Kind == ColumnList && t.Elem != nil {
		return "List(" + t.Elem.String() + ")"
	}
	return t.Kind.String()
}

// Equal compares kinds and, for lists, element types.
func (t ColumnType) Equal(other ColumnType) bool {
	if t.Kind != other.Kind {
		return false
	}
	if t.Kind != ColumnList {
		return true
	}
	if t.Elem == nil || other.Elem == nil {
		return t.Elem == nil && other.Elem == nil
	}
	return arrow.TypeEqual(t.Elem, other.Elem)
}

// ColumnFlags is a bitset of column attributes.
type ColumnFlags uint32

const (
	ColumnFlagNotNull ColumnFlags = 1 << iota
	ColumnFlagPrimaryKey
)

// Has reports whether every bit of flag is set.
func (f ColumnFlags) Has(flag ColumnFlags) bool {
	return f&flag == flag
}

// Column describes one result column. It is immutable once built.
type Column struct {
	name       string
	columnType ColumnType
	flags      ColumnFlags
}

// NewColumn creates a Column.
func NewColumn(name string, columnType ColumnType, flags ColumnFlags) Column {
	return Column{
		name:       name,
		columnType: columnType,
		flags:      flags,
	}
}

func (c Column) Name() string       { return c.name }
func (c Column) Type() ColumnType   { return c.columnType }
func (c Column) Flags() ColumnFlags { return c.flags }
