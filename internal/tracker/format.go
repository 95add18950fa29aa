package tracker

import (
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// DateLayout renders dates like "Mon Jan 01 2024".
const DateLayout = "Mon Jan 02 2006"

// dateLayouts are tried in order when reading a client supplied date.
var dateLayouts = []string{
	"2006-1-2",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayout,
	"Mon Jan 2 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2006/1/2",
	"1/2/2006",
}

// FormatDate renders the calendar date of t in UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseDate reads a calendar date and returns it as midnight UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// parseDuration accepts any finite decimal number, surrounding spaces allowed.
func parseDuration(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseLimit reads the leading integer of s the way a browser's parseInt
// does: "5", " 5", "5abc" and "5.9" all yield 5, and a 0x prefix switches
// to hex ("0x10" yields 16). Anything that does not produce a positive
// number yields 0, which means no cap.
func parseLimit(s string) int {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	sign := 1
	if s != "" && (s[0] == '+' || s[0] == '-') {
		if s[0] == '-' {
			sign = -1
		}
		s = s[1:]
	}
	base, isDigit := 10, isDecimal
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base, isDigit = 16, isHex
		s = s[2:]
	}
	end := 0
	for end < len(s) && isDigit(s[end]) {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.ParseInt(s[:end], base, 32)
	if err != nil {
		// overflow; the caller gets everything anyway
		if sign > 0 {
			return math.MaxInt32
		}
		return 0
	}
	if sign < 0 || n <= 0 {
		return 0
	}
	return int(n)
}

func isDecimal(c byte) bool { return c >= '0' && c <= '9' }

func isHex(c byte) bool {
	return isDecimal(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
