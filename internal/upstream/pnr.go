package upstream

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/easyrail/easyrail_core/internal/models"
)

// ErrPNRNotFound is returned when the PNR service has no data for a number
var ErrPNRNotFound = errors.New("invalid PNR number or no data found")

// Chart states of a PNR
const (
	ChartPrepared    = "prepared"
	ChartNotPrepared = "not_prepared"
	ChartUnknown     = "unknown"
)

// DecodePNR unwraps the {success, data} envelope of the PNR service
func DecodePNR(body []byte) (models.PNRStatus, error) {
	var envelope struct {
		Success bool              `json:"success"`
		Data    *models.PNRStatus `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return models.PNRStatus{}, fmt.Errorf("failed to decode PNR status: %w", err)
	}
	if !envelope.Success || envelope.Data == nil {
		return models.PNRStatus{}, ErrPNRNotFound
	}
	return *envelope.Data, nil
}

// ChartState classifies a chart status string
func ChartState(status string) string {
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "CHART PREPARED":
		return ChartPrepared
	case "CHART NOT PREPARED":
		return ChartNotPrepared
	default:
		return ChartUnknown
	}
}
