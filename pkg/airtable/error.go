package airtable

import (
	"encoding/json"
	"fmt"
)

// APIError is a non-2xx response from Airtable.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	switch {
	case e.Type != "" && e.Message != "":
		return fmt.Sprintf("airtable API error (status %d): %s: %s", e.StatusCode, e.Type, e.Message)
	case e.Type != "":
		return fmt.Sprintf("airtable API error (status %d): %s", e.StatusCode, e.Type)
	case e.Message != "":
		return fmt.Sprintf("airtable API error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("airtable API error (status %d)", e.StatusCode)
}

// newAPIError decodes Airtable's error body, which is either
// {"error": {"type": ..., "message": ...}} or {"error": "TYPE"}.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var structured struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &structured); err == nil && structured.Error.Type != "" {
		apiErr.Type = structured.Error.Type
		apiErr.Message = structured.Error.Message
		return apiErr
	}

	var flat struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &flat); err == nil && flat.Error != "" {
		apiErr.Type = flat.Error
		return apiErr
	}

	apiErr.Message = string(body)
	return apiErr
}
