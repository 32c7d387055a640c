// Package livestatus builds running-status summaries of a train and keeps
// watched trains refreshed in the background.
package livestatus

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/easyrail/easyrail_core/internal/models"
)

// ErrNoDetails is returned when the backend knows no stations for the run
var ErrNoDetails = errors.New("no details found for this train")

// Station states
const (
	StateCurrent  = "current"
	StateDeparted = "departed"
	StateUpcoming = "upcoming"
)

// Train states
const (
	StatusRunning   = "Running"
	StatusScheduled = "Scheduled"
)

const onTime = "On Time"

// Row is one station of the backend answer
type Row struct {
	Station   models.Text `json:"station"`
	Code      models.Text `json:"code"`
	Arrival   models.Text `json:"arr"`
	Departure models.Text `json:"dep"`
	Delay     models.Text `json:"delay"`
	Status    models.Text `json:"status"`
	Current   models.Text `json:"current"`
	Platform  models.Text `json:"platform"`
	Distance  models.Text `json:"distance"`
	TrainName models.Text `json:"trainname"`
	Source    models.Text `json:"source"`
	Dest      models.Text `json:"dest"`
}

func (r Row) isCurrent() bool {
	return string(r.Current) == "true"
}

// Station is one stop on the timeline
type Station struct {
	Name          string `json:"name"`
	Code          string `json:"code"`
	ArrivalTime   string `json:"arrivalTime"`
	DepartureTime string `json:"departureTime"`
	Platform      string `json:"platform"`
	State         string `json:"status"`
	Delay         string `json:"delay"`
	Distance      string `json:"distance"`
}

// Summary is the running status of one train run
type Summary struct {
	TrainName          string    `json:"trainName"`
	TrainNumber        string    `json:"trainNumber"`
	Date               string    `json:"date"`
	Source             string    `json:"source"`
	Destination        string    `json:"destination"`
	DepartureTime      string    `json:"departureTime"`
	ArrivalTime        string    `json:"arrivalTime"`
	Status             string    `json:"status"`
	Delay              string    `json:"delay"`
	CurrentStation     string    `json:"currentStation"`
	CurrentStationTime string    `json:"currentStationTime"`
	NextStation        string    `json:"nextStation"`
	NextStationTime    string    `json:"nextStationTime"`
	Stations           []Station `json:"stations"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Decode parses the backend answer
func Decode(body []byte) ([]Row, error) {
	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode live status: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoDetails
	}
	return rows, nil
}

// Summarize builds the summary of a run from its station rows
func Summarize(number, date string, rows []Row) (Summary, error) {
	if len(rows) == 0 {
		return Summary{}, ErrNoDetails
	}

	first, last := rows[0], rows[len(rows)-1]
	current := -1
	for i, r := range rows {
		if r.isCurrent() {
			current = i
			break
		}
	}

	s := Summary{
		TrainName:          first.TrainName.Or("Train " + number),
		TrainNumber:        number,
		Date:               date,
		Source:             first.Source.Or("-"),
		Destination:        last.Dest.Or("-"),
		DepartureTime:      first.Departure.Or("-"),
		ArrivalTime:        last.Arrival.Or("-"),
		Status:             StatusScheduled,
		Delay:              onTime,
		CurrentStation:     first.Station.Or("-"),
		CurrentStationTime: "-",
		NextStation:        "-",
		NextStationTime:    "-",
		Stations:           make([]Station, 0, len(rows)),
	}

	if current >= 0 {
		cur := rows[current]
		s.Status = StatusRunning
		s.Delay = cur.Delay.Or(onTime)
		s.CurrentStation = cur.Station.Or(s.CurrentStation)
		s.CurrentStationTime = cur.Arrival.Or(cur.Departure.Or("-"))
	}
	if next := current + 1; next < len(rows) {
		s.NextStation = rows[next].Station.Or("-")
		s.NextStationTime = rows[next].Arrival.Or("-")
	}

	for _, r := range rows {
		s.Stations = append(s.Stations, Station{
			Name:          string(r.Station),
			Code:          r.Code.Or(""),
			ArrivalTime:   r.Arrival.Or("-"),
			DepartureTime: r.Departure.Or("-"),
			Platform:      r.Platform.Or("-"),
			State:         stationState(r),
			Delay:         r.Delay.Or(onTime),
			Distance:      r.Distance.Or("-"),
		})
	}

	return s, nil
}

func stationState(r Row) string {
	switch {
	case r.isCurrent():
		return StateCurrent
	case string(r.Status) == "crossed":
		return StateDeparted
	default:
		return StateUpcoming
	}
}
