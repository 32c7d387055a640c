package erail

import (
	"strconv"
	"strings"

	"github.com/easyrail/easyrail_core/internal/models"
)

// DecodeRoute decodes a route listing. A block with too few fields becomes a
// placeholder record so one bad row does not hide the rest of the schedule.
func DecodeRoute(raw string) (res Result[[]models.RouteStationRecord]) {
	defer guard("route", MsgRouteParseError, "error", &res)

	stations := []models.RouteStationRecord{}
	for _, block := range strings.Split(raw, HeaderDelimiter) {
		if strings.TrimSpace(strings.ReplaceAll(block, FieldDelimiter, "")) == "" {
			continue
		}
		stations = append(stations, MapRouteStation(Fields(block)))
	}

	if len(stations) == 0 {
		return fail[[]models.RouteStationRecord](OutcomeParseError, MsgRouteParseError, "error")
	}
	return ok(stations)
}

// MapRouteStation maps the fields of one route block
func MapRouteStation(fields []string) models.RouteStationRecord {
	l := routeLayout
	record := models.RouteStationRecord{
		StationName:   orDefault(field(fields, l.StationName), models.NotAvailable),
		StationCode:   orDefault(field(fields, l.StationCode), models.NotAvailable),
		ArrivalTime:   NormalizeTime(orDefault(field(fields, l.Arrival), models.NotAvailable)),
		DepartureTime: NormalizeTime(orDefault(field(fields, l.Departure), models.NotAvailable)),
		Distance:      orDefault(field(fields, l.Distance), models.NotAvailable),
		Zone:          field(fields, l.Zone),
		Complete:      len(fields) >= l.MinFields,
	}

	if day, err := strconv.Atoi(strings.TrimSpace(field(fields, l.DayOffset))); err == nil && day > 0 {
		record.DayOffset = day
	}

	return record
}
