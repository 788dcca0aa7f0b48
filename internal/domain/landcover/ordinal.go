package landcover

import (
	"time"

	"github.com/caustin-usgs/lcmap-gaia/pkg/util"
)

// DateLayout is the calendar date format used on the wire and in storage keys.
const DateLayout = "2006-01-02"

// ordinal of 1970-01-01 when 0001-01-01 is day 1
const unixEpochOrdinal = 719163

const secondsPerDay = 86400

// ToOrdinal converts the UTC calendar date of t to its proleptic Gregorian ordinal.
func ToOrdinal(t time.Time) int {
	return int(util.DateUTC(t).Unix()/secondsPerDay) + unixEpochOrdinal
}

// FromOrdinal is the inverse of ToOrdinal.
func FromOrdinal(ord int) time.Time {
	return time.Unix(int64(ord-unixEpochOrdinal)*secondsPerDay, 0).UTC()
}

// ParseOrdinal parses a YYYY-MM-DD date.
func ParseOrdinal(value string) (int, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return 0, err
	}
	return ToOrdinal(t), nil
}

// FormatOrdinal renders an ordinal as YYYY-MM-DD.
func FormatOrdinal(ord int) string {
	return FromOrdinal(ord).Format(DateLayout)
}

// ShiftYears moves an ordinal by whole calendar years. Feb 29 lands on Feb 28 in non leap years.
func ShiftYears(ord, years int) int {
	t := FromOrdinal(ord)
	year := t.Year() + years
	day := t.Day()
	if t.Month() == time.February && day == 29 && !isLeap(year) {
		day = 28
	}
	return ToOrdinal(time.Date(year, t.Month(), day, 0, 0, 0, 0, time.UTC))
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}
