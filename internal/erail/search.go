package erail

import (
	"log"
	"strconv"
	"strings"

	"github.com/easyrail/easyrail_core/internal/models"
)

// DecodeTrainsBetween decodes a "trains between two stations" response into
// records sorted by departure time.
func DecodeTrainsBetween(raw string) (res Result[[]models.TrainRecord]) {
	defer guard("search", MsgSearchParseError, "", &res)

	blocks := SplitBlocks(raw)
	if len(blocks) == 0 {
		return fail[[]models.TrainRecord](OutcomeParseError, MsgSearchParseError, "")
	}

	if msg, found := DetectSentinel(blocks[0]); found {
		return fail[[]models.TrainRecord](OutcomeUpstream, msg, "")
	}

	trains := []models.TrainRecord{}
	for i, block := range blocks {
		secondary := ""
		if i+1 < len(blocks) {
			secondary = blocks[i+1]
		}

		record, ok := MapSearchRecord(block, secondary)
		if !ok {
			continue
		}
		trains = append(trains, record)
	}

	SortByDeparture(trains)
	return ok(trains)
}

// MapSearchRecord maps a primary block and the block following it onto a
// TrainRecord. An empty secondary means the primary was the last block. It
// returns false when the primary is not a train record.
func MapSearchRecord(primary, secondary string) (models.TrainRecord, bool) {
	parts := SplitHeader(primary)
	if len(parts) != 2 {
		return models.TrainRecord{}, false
	}

	details := primaryFields(parts)
	if details == nil {
		return models.TrainRecord{}, false
	}

	l := searchLayout
	record := models.TrainRecord{
		TrainNumber:            details[l.TrainNumber],
		TrainName:              details[l.TrainName],
		SourceStationName:      details[l.SourceName],
		SourceStationCode:      details[l.SourceCode],
		DestinationStationName: details[l.DestinationName],
		DestinationStationCode: details[l.DestinationCode],
		FromStationName:        details[l.FromName],
		FromStationCode:        details[l.FromCode],
		ToStationName:          details[l.ToName],
		ToStationCode:          details[l.ToCode],
		DepartureTime:          NormalizeTime(details[l.Departure]),
		ArrivalTime:            NormalizeTime(details[l.Arrival]),
		TravelTime:             TravelTime(details[l.Travel]),
		RunningDays:            NormalizeMask(details[l.RunningDays]),
		Distance:               models.NotAvailable,
	}
	record.RunningDaysLabel = RunningDaysLabel(record.RunningDays)
	record.RunsOn = ExpandRunningDays(record.RunningDays)

	if secondary != "" {
		extra := NonBlankFields(SplitHeader(secondary)[0])
		if d := field(extra, secondaryLayout.Distance); d != "" {
			record.Distance = d
		}
		record.Halts = haltCount(extra)
	}

	if record.Halts.OutOfRange() {
		record.HaltsOutOfRange = true
		log.Printf("Warning: train %s has out of range halt count %d", record.TrainNumber, record.Halts.Value)
	}

	return record, true
}

// primaryFields picks the field list of a primary block. Normally the fields
// follow the header delimiter; some records arrive without a header prefix and
// carry their fields before a delimiter with nothing after it.
func primaryFields(parts []string) []string {
	tail := NonBlankFields(parts[1])
	if len(tail) >= searchLayout.MinFields {
		return tail
	}
	if len(tail) > 0 {
		return nil
	}
	if details := NonBlankFields(parts[0]); len(details) >= searchLayout.MinFields {
		return details
	}
	return nil
}

// haltCount reproduces the upstream convention for counting intermediate stops:
// field[7] - field[4] - 1 of the secondary segment.
func haltCount(extra []string) models.HaltCount {
	to, err := strconv.Atoi(strings.TrimSpace(field(extra, secondaryLayout.HaltsTo)))
	if err != nil {
		return models.HaltCount{}
	}
	from, err := strconv.Atoi(strings.TrimSpace(field(extra, secondaryLayout.HaltsFrom)))
	if err != nil {
		return models.HaltCount{}
	}
	return models.HaltCount{Value: to - from - 1, Known: true}
}
