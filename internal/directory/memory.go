package directory

import (
	"context"

	"github.com/easyrail/easyrail_core/internal/models"
)

// Default result limits of the autocomplete endpoints
const (
	StationLimit = 10
	TrainLimit   = 20
)

// Memory serves directory searches from lists held in memory
type Memory struct {
	stations []models.Station
	trains   []models.TrainSuggestion
}

// NewMemory normalizes the lists and serves them
func NewMemory(stations []models.Station, trains []models.TrainSuggestion) *Memory {
	return &Memory{
		stations: NormalizeStations(stations),
		trains:   NormalizeTrains(trains),
	}
}

func (m *Memory) SearchStations(ctx context.Context, q string, limit int) ([]models.Station, error) {
	matches := []models.Station{}
	for _, s := range m.stations {
		if MatchStation(s, q) {
			matches = append(matches, s)
		}
	}
	rankStations(matches, q)
	return truncate(matches, limit), nil
}

func (m *Memory) SuggestTrains(ctx context.Context, q string, limit int) ([]models.TrainSuggestion, error) {
	matches := []models.TrainSuggestion{}
	for _, t := range m.trains {
		if MatchTrain(t, q) {
			matches = append(matches, t)
		}
	}
	rankTrains(matches, q)
	return truncate(matches, limit), nil
}

func truncate[T any](items []T, limit int) []T {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}
