package erail

import (
	"encoding/json"
	"log"
)

// Outcome tags how a decode ended
type Outcome string

const (
	OutcomeOK         Outcome = "ok"
	OutcomeUpstream   Outcome = "upstream_failure" // sentinel phrase matched
	OutcomeParseError Outcome = "parse_error"
)

// Fallback messages used when the raw text cannot be decoded
const (
	MsgSearchParseError = "An error occurred while processing train data."
	MsgTrainParseError  = "Error parsing train data"
	MsgRouteParseError  = "Error parsing train route data"
)

// Result is the tagged value every decoder returns. Callers never see a panic
// or a Go error from a decoder.
type Result[T any] struct {
	Outcome Outcome
	Data    T
	Message string

	// errorKey is the JSON key carrying Message on failure, "data" when empty
	errorKey string
}

// Success reports whether Data holds a decoded value
func (r Result[T]) Success() bool {
	return r.Outcome == OutcomeOK
}

// MarshalJSON renders {success, data} on success and
// {success:false, data|error: message} on failure.
func (r Result[T]) MarshalJSON() ([]byte, error) {
	if r.Success() {
		return json.Marshal(struct {
			Success bool `json:"success"`
			Data    T    `json:"data"`
		}{true, r.Data})
	}

	key := r.errorKey
	if key == "" {
		key = "data"
	}
	return json.Marshal(map[string]interface{}{
		"success": false,
		key:       r.Message,
	})
}

func ok[T any](data T) Result[T] {
	return Result[T]{Outcome: OutcomeOK, Data: data}
}

func fail[T any](outcome Outcome, message, errorKey string) Result[T] {
	return Result[T]{Outcome: outcome, Message: message, errorKey: errorKey}
}

// guard turns a panic raised while decoding into a parse-error result.
// It must be deferred directly by the public decoder.
func guard[T any](name, fallback, errorKey string, res *Result[T]) {
	if r := recover(); r != nil {
		log.Printf("Warning: %s decoder recovered from panic: %v", name, r)
		*res = fail[T](OutcomeParseError, fallback, errorKey)
	}
}
