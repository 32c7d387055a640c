package erail

import (
	"strings"

	"github.com/easyrail/easyrail_core/internal/models"
)

// defaults for fields a by-number response may leave out
const (
	defaultTrainType = "Train"
	missingTime      = "-"
)

// DecodeTrainByNumber decodes a "train by number" response
func DecodeTrainByNumber(raw string) (res Result[models.TrainDetailRecord]) {
	defer guard("train", MsgTrainParseError, "", &res)

	blocks := SplitBlocks(raw)
	if len(blocks) == 0 {
		return fail[models.TrainDetailRecord](OutcomeParseError, MsgTrainParseError, "")
	}

	if msg, found := DetectSentinel(blocks[0]); found {
		return fail[models.TrainDetailRecord](OutcomeUpstream, msg, "")
	}

	fields := dropVariantLeadingField(Fields(blocks[0]))
	l := trainLayout
	if len(fields) < l.MinFields {
		return fail[models.TrainDetailRecord](OutcomeParseError, MsgTrainParseError, "")
	}

	record := models.TrainDetailRecord{
		TrainNumber:     strings.Replace(field(fields, l.TrainNumber), "^", "", 1),
		TrainName:       field(fields, l.TrainName),
		FromStationName: field(fields, l.FromName),
		FromStationCode: field(fields, l.FromCode),
		ToStationName:   field(fields, l.ToName),
		ToStationCode:   field(fields, l.ToCode),
		DepartureTime:   NormalizeTime(orDefault(field(fields, l.Departure), missingTime)),
		ArrivalTime:     NormalizeTime(orDefault(field(fields, l.Arrival), missingTime)),
		TravelTime:      TravelTime(orDefault(field(fields, l.Travel), missingTime)),
		RunningDays:     NormalizeMask(field(fields, l.RunningDays)),
		TrainType:       defaultTrainType,
	}
	record.RunningDaysLabel = RunningDaysLabel(record.RunningDays)
	record.RunsOn = ExpandRunningDays(record.RunningDays)

	if len(blocks) > 1 {
		meta := Fields(blocks[1])
		record.TrainType = orDefault(field(meta, trainMetaLayout.TrainType), defaultTrainType)
		record.TrainID = field(meta, trainMetaLayout.TrainID)
	}

	return ok(record)
}

// dropVariantLeadingField removes the extra leading field some responses carry.
// The variant is recognised by the train-number position holding a value
// longer than any train number.
func dropVariantLeadingField(fields []string) []string {
	l := trainLayout
	if len(fields) > l.VariantField && len(fields[l.VariantField]) > l.VariantFieldMaxLen {
		return fields[1:]
	}
	return fields
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
