package model

// APIResponse is the envelope every endpoint answers with. Exactly one
// of Data and Error is set.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Meta annotates collection responses with the item count.
type Meta struct {
	Count int `json:"count"`
}
