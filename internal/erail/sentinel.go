package erail

import "strings"

// Phrases the upstream puts in the first block instead of data. Matching is
// case sensitive, the service always uses this casing.
var sentinels = []string{
	"No direct trains found",
	"Please try again after some time",
	"From station not found",
	"To station not found",
	"Train not found",
}

// DetectSentinel reports whether the first block is an upstream failure and
// returns the message with the delimiter tildes stripped.
func DetectSentinel(firstBlock string) (string, bool) {
	for _, phrase := range sentinels {
		if strings.Contains(firstBlock, phrase) {
			return strings.TrimSpace(strings.ReplaceAll(firstBlock, FieldDelimiter, "")), true
		}
	}
	return "", false
}

// Transient reports whether a sentinel message asks the caller to retry later
func Transient(message string) bool {
	return strings.Contains(message, "Please try again")
}
