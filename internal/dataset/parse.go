package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Accepted order_date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006-1-2 15:04",
	"2006/1/2 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"20060102",
}

// ParseDate parses an order date in any of the layouts seen in exported
// datasets. The result is in UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// ParseNumber parses a numeric cell, tolerating thousands separators.
// The second result is false for an empty cell; err is set for garbage.
func ParseNumber(s string) (float64, bool, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, nil
	}
	return v, true, nil
}

// NormalizeKey canonicalizes an identifier cell. Integral numbers exported
// as floats ("12.0") collapse to their integer spelling so that keys written
// by different tools still join.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, ".") {
		return s
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) || math.Abs(v) >= 1e15 {
		return s
	}
	return strconv.FormatInt(int64(v), 10)
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
