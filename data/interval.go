package data

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
)

// FormatDayTimeInterval renders a day-time interval in the canonical
// "0 years 0 mons D days H hours M mins S.FF secs" form. The fractional
// part is the millisecond remainder padded to two digits.
func FormatDayTimeInterval(v arrow.DayTimeInterval) string {
	ms := v.Milliseconds

	secs := ms / 1000
	mins := secs / 60
	hours := mins / 60

	secs -= mins * 60
	mins -= hours * 60

	return fmt.Sprintf("0 years 0 mons %d days %d hours %d mins %d.%02d secs",
		v.Days, hours, mins, secs, ms%1000)
}

// FormatYearMonthInterval renders a month count as
// "Y years M mons 0 days 0 hours 0 mins 0.00 secs" with Y floored, so
// M is always in [0, 12).
func FormatYearMonthInterval(v arrow.MonthInterval) string {
	months := int64(v)

	years := months / 12
	if months%12 != 0 && months < 0 {
		years--
	}
	months -= years * 12

	return fmt.Sprintf("%d years %d mons 0 days 0 hours 0 mins 0.00 secs", years, months)
}
