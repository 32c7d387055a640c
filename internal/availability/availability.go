// Package availability maps the per-class seat availability feed onto
// display rows.
package availability

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Status is the display class of an availability string
type Status string

const (
	StatusAvailable   Status = "available"
	StatusWaitlist    Status = "waitlist"
	StatusRAC         Status = "rac"
	StatusUnavailable Status = "unavailable"
)

const (
	tatkalSuffix        = "_TQ"
	defaultAvailability = "Check"
	defaultPrediction   = "--%"
	defaultFare         = "-"
	noChance            = "No Chance"

	// UpstreamDateLayout is the journey date format the feed expects
	UpstreamDateLayout = "02-01-2006"
)

var ErrNoData = errors.New("no availability data found")

var unavailable = map[string]bool{
	"Train Cancelled": true,
	"Train Departed":  true,
	"Regret":          true,
	"Not Available":   true,
}

// Classify maps an availability display name to a status
func Classify(display string) Status {
	switch {
	case unavailable[display]:
		return StatusUnavailable
	case strings.Contains(display, "WL"):
		return StatusWaitlist
	case strings.Contains(display, "RAC"):
		return StatusRAC
	default:
		return StatusAvailable
	}
}

// FormatDuration renders minutes as "Xh Ym"
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// UpstreamDate converts a YYYY-MM-DD journey date to the feed's DD-MM-YYYY
func UpstreamDate(date string) (string, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid journey date %q: %w", date, err)
	}
	return d.Format(UpstreamDateLayout), nil
}

type classCache struct {
	Fare                    interface{} `json:"fare"`
	AvailabilityDisplayName string      `json:"availabilityDisplayName"`
	Prediction              string      `json:"prediction"`
}

type upstreamTrain struct {
	TrainNumber             string                `json:"trainNumber"`
	TrainName               string                `json:"trainName"`
	FromStnCode             string                `json:"fromStnCode"`
	ToStnCode               string                `json:"toStnCode"`
	DepartureTime           string                `json:"departureTime"`
	ArrivalTime             string                `json:"arrivalTime"`
	Duration                int                   `json:"duration"`
	HasPantry               bool                  `json:"hasPantry"`
	AvlClassesSorted        []string              `json:"avlClassesSorted"`
	AvailabilityCache       map[string]classCache `json:"availabilityCache"`
	AvailabilityCacheTatkal map[string]classCache `json:"availabilityCacheTatkal"`
}

type upstreamResponse struct {
	Data *struct {
		TrainList []upstreamTrain `json:"trainList"`
	} `json:"data"`
}

// Class is the availability of one class on one train
type Class struct {
	Code         string `json:"code"`
	Tatkal       bool   `json:"tatkal"`
	Fare         string `json:"fare"`
	Availability string `json:"availability"`
	Prediction   string `json:"prediction"`
	Status       Status `json:"status"`
}

// Train is one train of the availability listing
type Train struct {
	Number        string  `json:"train_no"`
	Name          string  `json:"train_name"`
	FromCode      string  `json:"from_stn_code"`
	ToCode        string  `json:"to_stn_code"`
	DepartureTime string  `json:"from_time"`
	ArrivalTime   string  `json:"to_time"`
	Duration      string  `json:"duration"`
	HasPantry     bool    `json:"has_pantry"`
	Classes       []Class `json:"classes"`
}

// Decode parses a raw feed body
func Decode(body []byte) ([]Train, error) {
	var resp upstreamResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode availability: %w", err)
	}
	if resp.Data == nil || resp.Data.TrainList == nil {
		return nil, ErrNoData
	}

	trains := make([]Train, 0, len(resp.Data.TrainList))
	for _, t := range resp.Data.TrainList {
		trains = append(trains, mapTrain(t))
	}
	return trains, nil
}

func mapTrain(t upstreamTrain) Train {
	codes := t.AvlClassesSorted
	if len(codes) == 0 {
		for code := range t.AvailabilityCache {
			codes = append(codes, code)
		}
		sort.Strings(codes)
	}

	classes := make([]Class, 0, len(codes))
	for _, code := range codes {
		classes = append(classes, mapClass(code, t))
	}

	return Train{
		Number:        t.TrainNumber,
		Name:          t.TrainName,
		FromCode:      t.FromStnCode,
		ToCode:        t.ToStnCode,
		DepartureTime: t.DepartureTime,
		ArrivalTime:   t.ArrivalTime,
		Duration:      FormatDuration(t.Duration),
		HasPantry:     t.HasPantry,
		Classes:       classes,
	}
}

func mapClass(code string, t upstreamTrain) Class {
	tatkal := strings.Contains(code, tatkalSuffix)
	key := strings.Replace(code, tatkalSuffix, "", 1)

	cache := t.AvailabilityCache
	if tatkal {
		cache = t.AvailabilityCacheTatkal
	}
	data := cache[key]

	c := Class{
		Code:         code,
		Tatkal:       tatkal,
		Fare:         formatFare(data.Fare),
		Availability: data.AvailabilityDisplayName,
		Prediction:   data.Prediction,
	}
	if c.Availability == "" {
		c.Availability = defaultAvailability
	}
	c.Status = Classify(c.Availability)

	switch {
	case c.Status == StatusUnavailable:
		c.Prediction = noChance
	case c.Prediction == "":
		c.Prediction = defaultPrediction
	}
	return c
}

func formatFare(v interface{}) string {
	switch f := v.(type) {
	case float64:
		if f == 0 {
			return defaultFare
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	case string:
		if f == "" {
			return defaultFare
		}
		return f
	default:
		return defaultFare
	}
}
