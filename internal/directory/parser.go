// Package directory holds the station and train lists used for autocomplete.
// The lists come from JSON exports and are imported into Postgres.
package directory

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/easyrail/easyrail_core/internal/models"
)

// stationEntry accepts the field spellings seen across station exports
type stationEntry struct {
	StnName     models.Text `json:"stnName"`
	Name        models.Text `json:"name"`
	StationName models.Text `json:"station_name"`
	StnCode     models.Text `json:"stnCode"`
	Code        models.Text `json:"code"`
	StationCode models.Text `json:"station_code"`
	StnCity     models.Text `json:"stnCity"`
	City        models.Text `json:"city"`
	District    models.Text `json:"district"`
}

func (e stationEntry) station() models.Station {
	return models.Station{
		Name: e.StnName.Or(e.Name.Or(e.StationName.Or(""))),
		Code: e.StnCode.Or(e.Code.Or(e.StationCode.Or(""))),
		City: e.StnCity.Or(e.City.Or(e.District.Or(""))),
	}
}

type trainEntry struct {
	TrainName models.Text `json:"trainName"`
	Name      models.Text `json:"name"`
	TrainNo   models.Text `json:"trainno"`
	Number    models.Text `json:"number"`
}

func (e trainEntry) train() models.TrainSuggestion {
	return models.TrainSuggestion{
		Name:   e.TrainName.Or(e.Name.Or("")),
		Number: e.TrainNo.Or(e.Number.Or("")),
	}
}

// ParseStationsFile parses a station export
func ParseStationsFile(path string) ([]models.Station, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseStations(file)
}

// ParseStations reads either {"stations": [...]} or a bare array
func ParseStations(r io.Reader) ([]models.Station, error) {
	var entries []stationEntry
	if err := decodeList(r, "stations", &entries); err != nil {
		return nil, fmt.Errorf("failed to parse stations: %w", err)
	}

	stations := make([]models.Station, 0, len(entries))
	for _, e := range entries {
		stations = append(stations, e.station())
	}
	return stations, nil
}

// ParseTrainsFile parses a train export
func ParseTrainsFile(path string) ([]models.TrainSuggestion, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ParseTrains(file)
}

// ParseTrains reads either {"trains": [...]} or a bare array
func ParseTrains(r io.Reader) ([]models.TrainSuggestion, error) {
	var entries []trainEntry
	if err := decodeList(r, "trains", &entries); err != nil {
		return nil, fmt.Errorf("failed to parse trains: %w", err)
	}

	trains := make([]models.TrainSuggestion, 0, len(entries))
	for _, e := range entries {
		trains = append(trains, e.train())
	}
	return trains, nil
}

// decodeList decodes a JSON array that may be wrapped in an object under key
func decodeList(r io.Reader, key string, v interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return err
		}
		list, ok := wrapper[key]
		if !ok {
			return fmt.Errorf("missing %q list", key)
		}
		data = list
	}

	return json.Unmarshal(data, v)
}
