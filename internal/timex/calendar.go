package timex

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Resolution is the finest timestamp step kept by the ledger store
// (PostgreSQL timestamptz). The inclusive end of a bucket is one Resolution
// before the start of the next bucket.
const Resolution = time.Microsecond

var ErrInvalidDate = errors.New("invalid calendar date")

// Range is a closed interval [Start, End] of absolute instants, both in UTC.
type Range struct {
	Start time.Time
	End   time.Time
}

func newRange(start, next time.Time) Range {
	return Range{Start: start.UTC(), End: next.Add(-Resolution).UTC()}
}

// DayRange covers the whole calendar day in loc.
func DayRange(year, month, day int, loc *time.Location) (Range, error) {
	if err := checkDate(year, month, day); err != nil {
		return Range{}, err
	}
	start := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	return newRange(start, start.AddDate(0, 0, 1)), nil
}

// MonthRange covers the whole calendar month in loc.
func MonthRange(year, month int, loc *time.Location) (Range, error) {
	if err := checkDate(year, month, 1); err != nil {
		return Range{}, err
	}
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	return newRange(start, start.AddDate(0, 1, 0)), nil
}

// YearRange covers the whole calendar year in loc.
func YearRange(year int, loc *time.Location) (Range, error) {
	if err := checkDate(year, 1, 1); err != nil {
		return Range{}, err
	}
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
	return newRange(start, start.AddDate(1, 0, 0)), nil
}

// DaysIn returns the number of days of month in year.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func checkDate(year, month, day int) error {
	if year < 1 || year > 9999 {
		return fmt.Errorf("%w: year %d", ErrInvalidDate, year)
	}
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}
	if day < 1 || day > DaysIn(year, month) {
		return fmt.Errorf("%w: day %d of %04d-%02d", ErrInvalidDate, day, year, month)
	}
	return nil
}

var offsetPattern = regexp.MustCompile(`^([+-])(\d{2}):?(\d{2})$`)

// ParseOffset turns an ISO-8601 UTC offset ("+02:00", "-0530", "Z") into a
// fixed zone. An empty string means UTC.
func ParseOffset(offset string) (*time.Location, error) {
	if offset == "" || offset == "Z" || offset == "z" {
		return time.UTC, nil
	}

	m := offsetPattern.FindStringSubmatch(offset)
	if m == nil {
		return nil, fmt.Errorf("%w: offset %q", ErrInvalidDate, offset)
	}

	hours, _ := strconv.Atoi(m[2])
	minutes, _ := strconv.Atoi(m[3])
	if hours > 18 || minutes > 59 {
		return nil, fmt.Errorf("%w: offset %q", ErrInvalidDate, offset)
	}

	seconds := hours*3600 + minutes*60
	if m[1] == "-" {
		seconds = -seconds
	}
	if seconds == 0 {
		return time.UTC, nil
	}

	return time.FixedZone(offset, seconds), nil
}
