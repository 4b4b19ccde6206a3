// Package timeparsing resolves user-entered date expressions.
//
// Expressions are tried in layers, first match wins:
//  1. Compact duration (+6h, -1d, +2w)
//  2. Absolute date or timestamp (2026-01-15, RFC3339)
//  3. Natural language (tomorrow, next monday, in 3 days)
package timeparsing

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// ErrEmpty is returned for blank expressions.
var ErrEmpty = errors.New("empty date expression")

// compactDurationRe matches [+-]?(\d+)([hdwmy]).
var compactDurationRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmy])$`)

// clockRe matches a 24h clock time like 9:30 or 17:05.
var clockRe = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)

//nolint:gochecknoglobals // Parser is immutable after construction
var nlp = newNLP()

func newNLP() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParseCompactDuration parses compact duration syntax relative to now.
//
// Units: h hours, d days, w weeks, m months, y years. No sign means positive.
func ParseCompactDuration(s string, now time.Time) (time.Time, error) {
	matches := compactDurationRe.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("not a compact duration: %q", s)
	}

	amount, err := strconv.Atoi(matches[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration amount: %q", matches[2])
	}
	if matches[1] == "-" {
		amount = -amount
	}

	return applyDuration(now, amount, matches[3]), nil
}

func applyDuration(base time.Time, amount int, unit string) time.Time {
	switch unit {
	case "h":
		return base.Add(time.Duration(amount) * time.Hour)
	case "d":
		return base.AddDate(0, 0, amount)
	case "w":
		return base.AddDate(0, 0, amount*7)
	case "m":
		return base.AddDate(0, amount, 0)
	case "y":
		return base.AddDate(amount, 0, 0)
	default:
		return base
	}
}

// IsCompactDuration returns true if the string matches compact duration syntax.
func IsCompactDuration(s string) bool {
	return compactDurationRe.MatchString(s)
}

// ParseAbsolute parses date-only and RFC3339 forms. Date-only values land in now's location.
func ParseAbsolute(s string, now time.Time) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, now.Location()); err == nil {
		return t, nil
	}
	for _, layout := range []string{time.RFC3339, time.RFC3339Nano, "2006-01-02T15:04"} {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("not an absolute date: %q", s)
}

// ParseNaturalLanguage parses phrases like "tomorrow" or "next friday" relative to now.
func ParseNaturalLanguage(s string, now time.Time) (time.Time, error) {
	r, err := nlp.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing %q: %w", s, err)
	}
	if r == nil {
		return time.Time{}, fmt.Errorf("unrecognized date expression: %q", s)
	}
	return r.Time, nil
}

// ParseRelativeTime resolves an expression through every layer.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}
	if IsCompactDuration(s) {
		return ParseCompactDuration(s, now)
	}
	if t, err := ParseAbsolute(s, now); err == nil {
		return t, nil
	}
	return ParseNaturalLanguage(strings.ToLower(s), now)
}

// ParseDate resolves an expression and keeps only the calendar date.
func ParseDate(s string, now time.Time) (time.Time, error) {
	t, err := ParseRelativeTime(s, now)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
}

// NormalizeClock validates a 24h clock time and returns it as HH:MM.
func NormalizeClock(s string) (string, error) {
	matches := clockRe.FindStringSubmatch(strings.TrimSpace(s))
	if matches == nil {
		return "", fmt.Errorf("invalid time of day: %q (expected HH:MM)", s)
	}
	hour, _ := strconv.Atoi(matches[1])
	return fmt.Sprintf("%02d:%s", hour, matches[2]), nil
}
