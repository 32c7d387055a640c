package api

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	stationCodePattern = regexp.MustCompile(`^[A-Z]{1,5}$`)
	trainNumberPattern = regexp.MustCompile(`^[0-9]{5}$`)
	trainQueryPattern  = regexp.MustCompile(`^[A-Za-z0-9]{1,40}$`)
	trainIDPattern     = regexp.MustCompile(`^[0-9]{1,12}$`)
	pnrPattern         = regexp.MustCompile(`^[0-9]{10}$`)
)

// stationCode trims and upper-cases a station code
func stationCode(raw, param string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if code == "" {
		return "", fmt.Errorf("missing required parameter: %s", param)
	}
	if !stationCodePattern.MatchString(code) {
		return "", fmt.Errorf("invalid station code for %s: %q", param, raw)
	}
	return code, nil
}

// atStationCode keeps the letters of raw, upper-cased and cut to four
func atStationCode(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.ToUpper(raw) {
		if r >= 'A' && r <= 'Z' && b.Len() < 4 {
			b.WriteRune(r)
		}
	}
	if b.Len() < 3 {
		return "", fmt.Errorf("station code must have 3 or 4 letters")
	}
	return b.String(), nil
}

func trainNumber(raw string) (string, error) {
	number := strings.TrimSpace(raw)
	if !trainNumberPattern.MatchString(number) {
		return "", fmt.Errorf("enter a valid 5-digit train number")
	}
	return number, nil
}

// trainQuery accepts a number or a name fragment for the by-number lookup
func trainQuery(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	if !trainQueryPattern.MatchString(q) {
		return "", fmt.Errorf("train query must be 1-40 letters or digits")
	}
	return q, nil
}

func pnrNumber(raw string) (string, error) {
	pnr := strings.TrimSpace(raw)
	if !pnrPattern.MatchString(pnr) {
		return "", fmt.Errorf("PNR must be 10 digits")
	}
	return pnr, nil
}

// journeyDate parses YYYY-MM-DD; an empty value is today
func journeyDate(raw string, now time.Time) (time.Time, string, error) {
	if raw == "" {
		return now, now.Format(dateLayout), nil
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("invalid date format (use YYYY-MM-DD)")
	}
	return date, raw, nil
}
