package data

import (
	"math/rand"
	"strconv"
	"testing"
)

func TestNewTimestampValueTruncates(t *testing.T) {
	ts := NewTimestampValue(1_600_000_000_123_456_789)
	if ts.UnixNano() != 1_600_000_000_123_456_000 {
		t.Errorf("Expected low digits zeroed, got %d", ts.UnixNano())
	}
	if !ts.Equal(NewTimestampValue(1_600_000_000_123_456_001)) {
		t.Error("Values differing below the normalization step should be equal")
	}
	if ts.Compare(NewTimestampValue(1_600_000_000_123_457_000)) != -1 {
		t.Error("Expected earlier timestamp to compare less")
	}
	if NewTimestampValue(1_600_000_000_123_457_000).Compare(ts) != 1 {
		t.Error("Expected later timestamp to compare greater")
	}
}

func TestTimestampValueString(t *testing.T) {
	tests := []struct {
		nanos int64
		want  string
	}{
		{0, "1970-01-01T00:00:00.000"},
		{1_600_000_000_123_456_000, "2020-09-13T12:26:40.123"},
		{1_704_067_200_000_000_000, "2024-01-01T00:00:00.000"},
		{1_704_067_200_999_999_999, "2024-01-01T00:00:00.999"},
		{-1_000_000, "1969-12-31T23:59:59.999"},
	}

	for _, tt := range tests {
		got := NewTimestampValue(tt.nanos).String()
		if got != tt.want {
			t.Errorf("NewTimestampValue(%d).String() = %s, want %s", tt.nanos, got, tt.want)
		}
	}
}

func TestTimestampValueMillisecondComponent(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		// keep within years 1970..2255 so the layout stays fixed width
		nanos := rng.Int63n(9_000_000_000_000_000_000)

		text := NewTimestampValue(nanos).String()
		if len(text) != len(timestampLayout) {
			t.Fatalf("Unexpected width for %d: %q", nanos, text)
		}

		millis, err := strconv.Atoi(text[len(text)-3:])
		if err != nil {
			t.Fatalf("Bad fractional part in %q: %v", text, err)
		}
		if want := int((nanos / 1_000_000) % 1000); millis != want {
			t.Fatalf("%d: millisecond component %d, want %d", nanos, millis, want)
		}
	}
}
