package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// NotAvailable is the placeholder shown for values the upstream did not supply
const NotAvailable = "N/A"

// HaltCount is the number of intermediate stops of a train between the queried
// stations. It is unknown when the upstream did not send the secondary record.
type HaltCount struct {
	Value int
	Known bool
}

// OutOfRange reports a known but negative count
func (h HaltCount) OutOfRange() bool {
	return h.Known && h.Value < 0
}

func (h HaltCount) String() string {
	if !h.Known {
		return NotAvailable
	}
	return strconv.Itoa(h.Value)
}

// MarshalJSON renders a known count as a number and an unknown one as "N/A"
func (h HaltCount) MarshalJSON() ([]byte, error) {
	if !h.Known {
		return json.Marshal(NotAvailable)
	}
	return json.Marshal(h.Value)
}

// TrainRecord is one train returned by a between-stations search.
// Source/Destination are the endpoints of the full run, From/To are the
// queried boarding and alighting points.
type TrainRecord struct {
	TrainNumber            string    `json:"train_no"`
	TrainName              string    `json:"train_name"`
	SourceStationName      string    `json:"source_stn_name"`
	SourceStationCode      string    `json:"source_stn_code"`
	DestinationStationName string    `json:"dstn_stn_name"`
	DestinationStationCode string    `json:"dstn_stn_code"`
	FromStationName        string    `json:"from_stn_name"`
	FromStationCode        string    `json:"from_stn_code"`
	ToStationName          string    `json:"to_stn_name"`
	ToStationCode          string    `json:"to_stn_code"`
	DepartureTime          string    `json:"from_time"`
	ArrivalTime            string    `json:"to_time"`
	TravelTime             string    `json:"travel_time"`
	RunningDays            string    `json:"running_days"`
	RunningDaysLabel       string    `json:"running_days_label"`
	RunsOn                 []string  `json:"runs_on"`
	Distance               string    `json:"distance"`
	Halts                  HaltCount `json:"halts"`
	HaltsOutOfRange        bool      `json:"halts_out_of_range,omitempty"`
}

// TrainDetailRecord is the result of a lookup by train number
type TrainDetailRecord struct {
	TrainNumber      string   `json:"train_no"`
	TrainName        string   `json:"train_name"`
	FromStationName  string   `json:"from_stn_name"`
	FromStationCode  string   `json:"from_stn_code"`
	ToStationName    string   `json:"to_stn_name"`
	ToStationCode    string   `json:"to_stn_code"`
	DepartureTime    string   `json:"from_time"`
	ArrivalTime      string   `json:"to_time"`
	TravelTime       string   `json:"travel_time"`
	RunningDays      string   `json:"running_days"`
	RunningDaysLabel string   `json:"running_days_label"`
	RunsOn           []string `json:"runs_on"`
	TrainType        string   `json:"type"`
	TrainID          string   `json:"train_id"` // opaque, required to fetch the route
}

// RouteStationRecord is one stop of a train's route listing
type RouteStationRecord struct {
	StationName   string `json:"source_stn_name"`
	StationCode   string `json:"source_stn_code"`
	ArrivalTime   string `json:"arrive"`
	DepartureTime string `json:"depart"`
	Distance      string `json:"distance"`
	DayOffset     int    `json:"day"` // 1-based, 0 when missing
	Zone          string `json:"zone"`
	Complete      bool   `json:"complete"`
}

// Station is a directory entry used for autocomplete
type Station struct {
	Code string `json:"code"`
	Name string `json:"name"`
	City string `json:"city"`
}

// TrainSuggestion is a directory entry used for train-number autocomplete
type TrainSuggestion struct {
	Number string `json:"train_no"`
	Name   string `json:"train_name"`
}

// StationTrain is one train listed by the at-station feed
type StationTrain struct {
	TrainName     string `json:"train_name"`
	TrainNumber   string `json:"train_no"`
	From          string `json:"from"`
	To            string `json:"to"`
	ScheduledTime string `json:"scheduled_time"`
	Platform      string `json:"platform"`
}

// PNRPassenger is one passenger on a PNR
type PNRPassenger struct {
	SerialNumber  int    `json:"passengerSerialNumber"`
	BookingStatus string `json:"bookingStatusDetails"`
	CurrentStatus string `json:"currentStatusDetails"`
	Coach         string `json:"coach,omitempty"`
	Berth         int    `json:"berthNo,omitempty"`
}

// PNRStatus is the journey section of a PNR lookup
type PNRStatus struct {
	PNRNumber          string         `json:"pnrNumber"`
	TrainNumber        string         `json:"trainNumber"`
	TrainName          string         `json:"trainName"`
	DateOfJourney      string         `json:"dateOfJourney"`
	SourceStation      string         `json:"sourceStation"`
	DestinationStation string         `json:"destinationStation"`
	BoardingPoint      string         `json:"boardingPoint"`
	JourneyClass       string         `json:"journeyClass"`
	ChartStatus        string         `json:"chartStatus"`
	BookingFare        float64        `json:"bookingFare"`
	Distance           float64        `json:"distance"`
	Passengers         []PNRPassenger `json:"passengerList"`
}

// Text is a JSON string that also accepts a bare number. The JSON backends
// are not consistent about which one they send for train numbers and times.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(data)
	return nil
}

// Or returns the trimmed value, def when it is empty
func (t Text) Or(def string) string {
	if s := strings.TrimSpace(string(t)); s != "" {
		return s
	}
	return def
}
