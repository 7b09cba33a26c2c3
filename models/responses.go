package models

// APIResponse is the JSON envelope returned by API routes for both success
// and rejection outcomes. Browser flows receive redirects instead; the gate
// picks the shape based on the route and Accept header.
type APIResponse struct {
	Success bool `json:"success"`

	// Message is a human-readable summary. For security-relevant rejections
	// it is deliberately generic (e.g. "invalid username/email or password")
	// and never echoes back client-supplied payloads.
	Message string `json:"message,omitempty"`

	// Errors carries per-field validation messages keyed by field name.
	// Populated only for validation failures.
	Errors map[string]string `json:"errors,omitempty"`

	// RetryAfter is the whole-second hint attached to rate-limited (429)
	// responses when the bucket's window is known.
	RetryAfter int `json:"retry_after,omitempty"`

	// Data carries the success payload, when any.
	Data any `json:"data,omitempty"`
}

// OK builds a success envelope wrapping data.
func OK(data any) APIResponse {
	return APIResponse{Success: true, Data: data}
}

// Fail builds a rejection envelope with a generic message.
func Fail(message string) APIResponse {
	return APIResponse{Success: false, Message: message}
}

// FailValidation builds a rejection envelope carrying per-field messages.
func FailValidation(message string, fields map[string]string) APIResponse {
	return APIResponse{Success: false, Message: message, Errors: fields}
}
