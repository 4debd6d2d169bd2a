package data

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// ErrUnsupportedType is matched by every UnsupportedTypeError.
var ErrUnsupportedType = errors.New("unsupported type")

// UnsupportedTypeError reports an Arrow type that has no mapping in the
// value model. Column is empty when the type was not tied to a column, as
// for list elements.
type UnsupportedTypeError struct {
	Type   arrow.DataType
	Column string
}

func (e *UnsupportedTypeError) Error() string {
	typ := "<nil>"
	if e.Type != nil {
		typ = e.Type.String()
	}
	if e.Column == "" {
		return fmt.Sprintf("unsupported type %s", typ)
	}
	return fmt.Sprintf("unsupported type %s for column %q", typ, e.Column)
}

// Is makes errors.Is(err, ErrUnsupportedType) hold.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}
