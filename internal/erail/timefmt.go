package erail

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Weekdays are indexed like a running-days mask, Monday first
var Weekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// NormalizeTime turns the upstream "HH.MM" into "HH:MM". Values that already
// contain a colon are returned unchanged, so the function is idempotent.
func NormalizeTime(s string) string {
	if strings.Contains(s, ":") {
		return s
	}
	return strings.Replace(s, ".", ":", 1)
}

// TravelTime formats a raw duration field for display
func TravelTime(raw string) string {
	return NormalizeTime(raw) + " hrs"
}

// MinutesSinceMidnight parses "HH:MM" (or "HH.MM")
func MinutesSinceMidnight(s string) (int, error) {
	parts := strings.Split(NormalizeTime(strings.TrimSpace(s)), ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time format: %q", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid minutes in %q: %w", s, err)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("time out of range: %q", s)
	}
	return hours*60 + minutes, nil
}

// NormalizeMask coerces a running-days field into exactly seven '0'/'1'
// characters. Anything other than '1' counts as not running, short masks are
// padded with '0'.
func NormalizeMask(raw string) string {
	var b strings.Builder
	b.Grow(7)
	for i := 0; i < 7; i++ {
		if i < len(raw) && raw[i] == '1' {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// DaysFromMask converts a mask into per-weekday flags
func DaysFromMask(mask string) ([7]bool, error) {
	var days [7]bool
	if len(mask) != 7 {
		return days, fmt.Errorf("running days mask must have 7 characters, got %d", len(mask))
	}
	for i := 0; i < 7; i++ {
		switch mask[i] {
		case '1':
			days[i] = true
		case '0':
		default:
			return days, fmt.Errorf("invalid character %q in running days mask", mask[i])
		}
	}
	return days, nil
}

// ExpandRunningDays lists the weekday abbreviations a train runs on
func ExpandRunningDays(mask string) []string {
	runs := []string{}
	days, err := DaysFromMask(mask)
	if err != nil {
		return runs
	}
	for i, on := range days {
		if on {
			runs = append(runs, Weekdays[i])
		}
	}
	return runs
}

// RunningDaysLabel renders "Mon _ Wed _ Fri _ _" style labels
func RunningDaysLabel(mask string) string {
	out := make([]string, 7)
	for i := 0; i < 7; i++ {
		if i < len(mask) && mask[i] == '1' {
			out[i] = Weekdays[i]
		} else {
			out[i] = "_"
		}
	}
	return strings.Join(out, " ")
}

// JourneyWeekdayIndex converts Go's Sunday-first weekday into the Monday-first
// index used by the mask.
func JourneyWeekdayIndex(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// RunsOn reports whether the mask includes the weekday of date
func RunsOn(mask string, date time.Time) bool {
	days, err := DaysFromMask(mask)
	if err != nil {
		return false
	}
	return days[JourneyWeekdayIndex(date)]
}
