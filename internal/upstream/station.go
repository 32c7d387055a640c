package upstream

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/easyrail/easyrail_core/internal/erail"
	"github.com/easyrail/easyrail_core/internal/models"
)

// ErrNoTrains is returned when a station has no listed trains
var ErrNoTrains = errors.New("no trains found at station")

type stationRow struct {
	TrainName   models.Text `json:"trainname"`
	TrainNumber models.Text `json:"trainno"`
	Source      models.Text `json:"source"`
	Dest        models.Text `json:"dest"`
	TimeAt      models.Text `json:"timeat"`
	Platform    models.Text `json:"platform"`
}

// DecodeAtStation maps the at-station rows. Missing values become "-".
func DecodeAtStation(body []byte) ([]models.StationTrain, error) {
	var rows []stationRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode station trains: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoTrains
	}

	trains := make([]models.StationTrain, 0, len(rows))
	for _, r := range rows {
		trains = append(trains, models.StationTrain{
			TrainName:     r.TrainName.Or("-"),
			TrainNumber:   r.TrainNumber.Or("-"),
			From:          r.Source.Or("-"),
			To:            r.Dest.Or("-"),
			ScheduledTime: erail.NormalizeTime(r.TimeAt.Or("-")),
			Platform:      r.Platform.Or("-"),
		})
	}
	return trains, nil
}
