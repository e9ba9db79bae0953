package handler

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error          string `json:"error"`
	Status         int    `json:"status"`
	Description    string `json:"description,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
}
