package erail

// Field positions of each record type, after empty fields are dropped.
// The upstream does not document its column order; these tables are the
// single place that encodes it.

// searchLayout indexes the field list of a primary between-stations block
var searchLayout = struct {
	TrainNumber, TrainName                  int
	SourceName, SourceCode                  int
	DestinationName, DestinationCode        int
	FromName, FromCode                      int
	ToName, ToCode                          int
	Departure, Arrival, Travel, RunningDays int
	MinFields                               int
}{
	TrainNumber: 0, TrainName: 1,
	SourceName: 2, SourceCode: 3,
	DestinationName: 4, DestinationCode: 5,
	FromName: 6, FromCode: 7,
	ToName: 8, ToCode: 9,
	Departure: 10, Arrival: 11, Travel: 12, RunningDays: 13,
	MinFields: 14,
}

// secondaryLayout indexes the first header segment of the block that follows
// a primary between-stations block
var secondaryLayout = struct {
	Distance  int
	HaltsFrom int
	HaltsTo   int
}{
	Distance:  18,
	HaltsFrom: 4,
	HaltsTo:   7,
}

// trainLayout indexes the first block of a by-number lookup
var trainLayout = struct {
	TrainNumber, TrainName                  int
	FromName, FromCode                      int
	ToName, ToCode                          int
	Departure, Arrival, Travel, RunningDays int
	MinFields                               int
	// A variant response carries one extra leading field, detected by the
	// train-number position holding something longer than VariantFieldMaxLen.
	VariantField, VariantFieldMaxLen int
}{
	TrainNumber: 1, TrainName: 2,
	FromName: 3, FromCode: 4,
	ToName: 5, ToCode: 6,
	Departure: 11, Arrival: 12, Travel: 13, RunningDays: 14,
	MinFields:    3,
	VariantField: 1, VariantFieldMaxLen: 6,
}

// trainMetaLayout indexes the second block of a by-number lookup
var trainMetaLayout = struct {
	TrainType, TrainID int
}{
	TrainType: 11,
	TrainID:   12,
}

// routeLayout indexes one "~^" block of the route feed
var routeLayout = struct {
	StationCode, StationName int
	Arrival, Departure       int
	Distance, DayOffset      int
	Zone                     int
	MinFields                int
}{
	StationCode: 1, StationName: 2,
	Arrival: 3, Departure: 4,
	Distance: 6, DayOffset: 7,
	Zone:      9,
	MinFields: 10,
}
