package api

// CheckRequest is the JSON body for POST /v1/check-input.
type CheckRequest struct {
	Text     string `json:"text"`
	CallerID string `json:"caller_id,omitempty"`
}

// CheckResponse is the JSON body returned by POST /v1/check-input.
// Reason is present exactly when status is "blocked"; Confidence is absent
// for rule-based blocks.
type CheckResponse struct {
	Status     string   `json:"status"`
	Reason     *string  `json:"reason,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
	Reply      string   `json:"reply,omitempty"`
	RequestID  string   `json:"request_id"`
	LatencyMs  float64  `json:"latency_ms"`
}

// ErrorResp is a standard error response body.
type ErrorResp struct {
	Detail string `json:"detail"`
}
