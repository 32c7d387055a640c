package upstream

import "encoding/json"

// errorMessage extracts {"error": "..."} from an upstream error body
func errorMessage(body string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	return payload.Error
}

// Message is the upstream's own error text, if it sent one
func (e *StatusError) Message() string {
	return errorMessage(e.Body)
}
