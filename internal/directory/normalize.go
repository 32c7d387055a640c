package directory

import (
	"log"
	"regexp"
	"sort"
	"strings"

	"github.com/easyrail/easyrail_core/internal/models"
)

var (
	stationCodePattern = regexp.MustCompile(`^[A-Z]{1,5}$`)
	trainNumberPattern = regexp.MustCompile(`^[0-9]{4,5}$`)
)

// NormalizeStations trims names, upper-cases codes, drops entries without a
// valid code or name and keeps the first entry of each code
func NormalizeStations(stations []models.Station) []models.Station {
	cleaned := []models.Station{}
	seen := make(map[string]bool)

	for _, s := range stations {
		s.Code = strings.ToUpper(strings.TrimSpace(s.Code))
		s.Name = strings.TrimSpace(s.Name)
		s.City = strings.TrimSpace(s.City)

		if !stationCodePattern.MatchString(s.Code) {
			log.Printf("Warning: invalid station code %q (%s), skipping", s.Code, s.Name)
			continue
		}
		if s.Name == "" {
			log.Printf("Warning: station %s has no name, skipping", s.Code)
			continue
		}
		if seen[s.Code] {
			continue
		}

		seen[s.Code] = true
		cleaned = append(cleaned, s)
	}

	if len(cleaned) < len(stations) {
		log.Printf("Cleaned stations: removed %d invalid or duplicate entries", len(stations)-len(cleaned))
	}
	return cleaned
}

// NormalizeTrains trims entries, drops invalid numbers and keeps the first
// entry of each number
func NormalizeTrains(trains []models.TrainSuggestion) []models.TrainSuggestion {
	cleaned := []models.TrainSuggestion{}
	seen := make(map[string]bool)

	for _, t := range trains {
		t.Number = strings.TrimSpace(t.Number)
		t.Name = strings.TrimSpace(t.Name)

		if !trainNumberPattern.MatchString(t.Number) {
			log.Printf("Warning: invalid train number %q (%s), skipping", t.Number, t.Name)
			continue
		}
		if t.Name == "" || seen[t.Number] {
			continue
		}

		seen[t.Number] = true
		cleaned = append(cleaned, t)
	}

	if len(cleaned) < len(trains) {
		log.Printf("Cleaned trains: removed %d invalid or duplicate entries", len(trains)-len(cleaned))
	}
	return cleaned
}

// MatchStation reports whether q is a case-insensitive substring of the
// station name, code or city. An empty query matches nothing.
func MatchStation(s models.Station, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s.Name), q) ||
		strings.Contains(strings.ToLower(s.Code), q) ||
		strings.Contains(strings.ToLower(s.City), q)
}

// MatchTrain reports whether q is a case-insensitive substring of the train
// name or number
func MatchTrain(t models.TrainSuggestion, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(t.Name), q) ||
		strings.Contains(t.Number, q)
}

// rankStations puts an exact code match first, then orders by name
func rankStations(stations []models.Station, q string) {
	code := strings.ToUpper(strings.TrimSpace(q))
	sort.SliceStable(stations, func(i, j int) bool {
		ei, ej := stations[i].Code == code, stations[j].Code == code
		if ei != ej {
			return ei
		}
		return stations[i].Name < stations[j].Name
	})
}

// rankTrains puts an exact number match first, then orders by number
func rankTrains(trains []models.TrainSuggestion, q string) {
	q = strings.TrimSpace(q)
	sort.SliceStable(trains, func(i, j int) bool {
		ei, ej := trains[i].Number == q, trains[j].Number == q
		if ei != ej {
			return ei
		}
		return trains[i].Number < trains[j].Number
	})
}
