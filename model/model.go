// Package model holds the external-facing domain types built by the
// HRDF ingestion pipeline: stops, journeys, calendars, catalogs and
// the small value types (Date, Time, Language) they are built from.
package model

import (
	"fmt"
	"time"
)

// Language is one of the four languages HRDF catalog text is carried in.
type Language int

const (
	German Language = iota
	French
	Italian
	English
)

func (l Language) String() string {
	switch l {
	case German:
		return "deu"
	case French:
		return "fra"
	case Italian:
		return "ita"
	case English:
		return "eng"
	default:
		return "unknown"
	}
}

// LanguageFromCode maps the 3-char HRDF language codes to a Language.
func LanguageFromCode(code string) (Language, bool) {
	switch code {
	case "deu":
		return German, true
	case "fra":
		return French, true
	case "ita":
		return Italian, true
	case "eng":
		return English, true
	default:
		return 0, false
	}
}

// Date is an ISO-8601 ("2006-01-02") calendar date. It is a plain
// string so that it sorts lexically and can be used directly as a map
// key, matching the normalized representation the HRDF source format
// is converted to on input (dd.mm.yyyy).
type Date string

// NewDate builds a Date from components.
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format("2006-01-02"))
}

// ParseHRDFDate parses a "dd.mm.yyyy" date as found in HRDF source files.
func ParseHRDFDate(s string) (Date, error) {
	t, err := time.Parse("02.01.2006", s)
	if err != nil {
		return "", fmt.Errorf("parsing date %q: %w", s, err)
	}
	return Date(t.Format("2006-01-02")), nil
}

// Time parses the Date back into a time.Time at midnight UTC.
func (d Date) Time() (time.Time, error) {
	return time.Parse("2006-01-02", string(d))
}

// AddDays returns the date offset by n days (n may be negative).
func (d Date) AddDays(n int) Date {
	t, err := d.Time()
	if err != nil {
		return d
	}
	return Date(t.AddDate(0, 0, n).Format("2006-01-02"))
}

// Before reports whether d is strictly before other.
func (d Date) Before(other Date) bool {
	return d < other
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d > other
}

// Time is a count of minutes since local midnight, in [0, 1440). HRDF
// route times are folded into this range; see ParseHRDFTime.
type Time int

// ParseHRDFTime folds a raw HHMM integer field (values of 2400 and up,
// e.g. 2415, lie past midnight) into minutes since midnight. A negative
// raw value means "no boarding/alighting possible" here; the sign is
// dropped and the absolute value is folded the same way.
func ParseHRDFTime(raw int) (Time, error) {
	if raw < 0 {
		raw = -raw
	}
	h := raw / 100
	m := raw % 100
	if m > 59 {
		return 0, fmt.Errorf("invalid minute in HRDF time %d", raw)
	}
	total := h*60 + m
	total %= 24 * 60
	return Time(total), nil
}

func (t Time) Hour() int   { return int(t) / 60 }
func (t Time) Minute() int { return int(t) % 60 }

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}
