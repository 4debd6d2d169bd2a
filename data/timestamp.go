package data

import (
	"time"
)

const timestampLayout = "2006-01-02T15:04:05.000"

// TimestampValue is a UTC instant stored as nanoseconds since the Unix epoch.
//
// The constructor zeroes the low three decimal digits of the nanosecond
// count so that values read back from millisecond-resolution storage compare
// equal to their in-memory nanosecond counterparts. Callers must not rely on
// sub-millisecond precision surviving a round trip.
type TimestampValue struct {
	unixNano int64
}

// NewTimestampValue normalizes unixNano and wraps it.
func NewTimestampValue(unixNano int64) TimestampValue {
	unixNano -= unixNano % 1000
	return TimestampValue{unixNano: unixNano}
}

// UnixNano returns the normalized nanosecond count.
func (t TimestampValue) UnixNano() int64 {
	return t.unixNano
}

// Time returns the instant in UTC.
func (t TimestampValue) Time() time.Time {
	return time.Unix(0, t.unixNano).UTC()
}

// Compare returns -1, 0 or 1 ordering t against other.
func (t TimestampValue) Compare(other TimestampValue) int {
	switch {
	case t.unixNano < other.unixNano:
		return -1
	case t.unixNano > other.unixNano:
		return 1
	default:
		return 0
	}
}

func (t TimestampValue) Equal(other TimestampValue) bool {
	return t.unixNano == other.unixNano
}

// String formats as YYYY-MM-DDTHH:MM:SS.mmm with no zone suffix.
func (t TimestampValue) String() string {
	return t.Time().Format(timestampLayout)
}
