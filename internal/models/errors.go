package models

// APIError is the error body printed by the CLI in --json mode.
type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	RunID   string            `json:"run_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}
