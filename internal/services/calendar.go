package services

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date")

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// DateKey formats the calendar fields of value as YYYY-MM-DD without any zone conversion.
func DateKey(value time.Time) string {
	year, month, day := value.Date()
	var builder strings.Builder
	builder.Grow(10)
	builder.WriteString(padInt(year, 4))
	builder.WriteByte('-')
	builder.WriteString(padInt(int(month), 2))
	builder.WriteByte('-')
	builder.WriteString(padInt(day, 2))
	return builder.String()
}

// ParseLocalDate interprets a YYYY-MM-DD string as midnight in location.
// Out-of-range day numbers roll over the same way time.Date normalizes them.
func ParseLocalDate(raw string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	fields, err := dateFields(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(fields[0], time.Month(fields[1]), fields[2], 0, 0, 0, 0, location), nil
}

// NormalizeDateKey re-renders raw in canonical zero-padded form. Unlike
// ParseLocalDate it rejects days the month does not have.
func NormalizeDateKey(raw string, location *time.Location) (string, error) {
	fields, err := dateFields(raw)
	if err != nil {
		return "", err
	}
	parsed, err := ParseLocalDate(raw, location)
	if err != nil {
		return "", err
	}
	if parsed.Year() != fields[0] || int(parsed.Month()) != fields[1] || parsed.Day() != fields[2] {
		return "", ErrInvalidDate
	}
	return DateKey(parsed), nil
}

func dateFields(raw string) ([3]int, error) {
	fields := [3]int{}
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 3 {
		return fields, ErrInvalidDate
	}
	for index, part := range parts {
		value, err := strconv.Atoi(part)
		if err != nil || value < 0 {
			return fields, ErrInvalidDate
		}
		fields[index] = value
	}
	if fields[1] < 1 || fields[1] > 12 || fields[2] < 1 || fields[2] > 31 {
		return fields, ErrInvalidDate
	}
	return fields, nil
}

// DaysInRange enumerates calendar days from start through end inclusive.
func DaysInRange(start time.Time, end time.Time) []time.Time {
	first := calendarDay(start)
	last := calendarDay(end)
	if last.Before(first) {
		return []time.Time{}
	}

	days := make([]time.Time, 0, CountDaysInclusive(first, last))
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
	}
	return days
}

// CountDaysInclusive counts calendar days between start and end, both included.
// A reversed range counts as zero.
func CountDaysInclusive(start time.Time, end time.Time) int {
	days := calendarDaysBetween(start, end) + 1
	if days < 0 {
		return 0
	}
	return days
}

// calendarDaysBetween counts whole calendar days from a to b, ignoring
// wall-clock length changes caused by daylight saving transitions.
func calendarDaysBetween(a time.Time, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func calendarDay(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, value.Location())
}

func padInt(value int, width int) string {
	raw := strconv.Itoa(value)
	if len(raw) >= width {
		return raw
	}
	return strings.Repeat("0", width-len(raw)) + raw
}
