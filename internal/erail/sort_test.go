package erail

import (
	"testing"
	"time"

	"github.com/easyrail/easyrail_core/internal/models"
	"github.com/stretchr/testify/assert"
)

func trainsDeparting(times ...string) []models.TrainRecord {
	trains := make([]models.TrainRecord, len(times))
	for i, tm := range times {
		trains[i] = models.TrainRecord{TrainNumber: string(rune('A' + i)), DepartureTime: tm}
	}
	return trains
}

func numbers(trains []models.TrainRecord) string {
	s := ""
	for _, t := range trains {
		s += t.TrainNumber
	}
	return s
}

func TestSortByDeparture(t *testing.T) {
	tests := []struct {
		name     string
		times    []string
		expected string
	}{
		{
			name:     "Already sorted",
			times:    []string{"00:05", "12:00", "23:59"},
			expected: "ABC",
		},
		{
			name:     "Reversed",
			times:    []string{"23:59", "12:00", "00:05"},
			expected: "CBA",
		},
		{
			name:     "Equal times keep input order",
			times:    []string{"10:00", "09:00", "10:00", "09:00"},
			expected: "BDAC",
		},
		{
			name:     "Unparseable last in input order",
			times:    []string{"-", "18:00", "N/A", "06:00"},
			expected: "DBAC",
		},
		{
			name:     "Hours past the day go last",
			times:    []string{"25:00", "23:59", "24:00"},
			expected: "BAC",
		},
		{
			name:     "Empty",
			times:    []string{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trains := trainsDeparting(tt.times...)
			SortByDeparture(trains)
			assert.Equal(t, tt.expected, numbers(trains))
		})
	}
}

func TestSortByDepartureNonDecreasing(t *testing.T) {
	trains := trainsDeparting("21:15", "05:40", "13:05", "05:39", "00:00", "23:10", "13:05")
	SortByDeparture(trains)

	prev := -1
	for _, tr := range trains {
		m, err := MinutesSinceMidnight(tr.DepartureTime)
		assert.NoError(t, err)
		assert.GreaterOrEqual(t, m, prev)
		prev = m
	}
}

func TestFilterRunningOn(t *testing.T) {
	trains := []models.TrainRecord{
		{TrainNumber: "1", RunningDays: "1000000"},
		{TrainNumber: "2", RunningDays: "0000001"},
		{TrainNumber: "3", RunningDays: "1111111"},
	}

	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)
	wednesday := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "13", numbers(FilterRunningOn(trains, monday)))
	assert.Equal(t, "23", numbers(FilterRunningOn(trains, sunday)))
	assert.Equal(t, "3", numbers(FilterRunningOn(trains, wednesday)))
}

func TestFilterRunningOnSkipsMalformedMask(t *testing.T) {
	trains := []models.TrainRecord{
		{TrainNumber: "1", RunningDays: "1"},
		{TrainNumber: "2", RunningDays: "1x00000"},
		{TrainNumber: "3", RunningDays: "1000000"},
	}

	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "3", numbers(FilterRunningOn(trains, monday)))
}
