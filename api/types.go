package api

// CreateSessionRequest is the JSON body variant of POST /session. The
// same fields may be sent as form data instead.
type CreateSessionRequest struct {
	Name    string `json:"name"`
	Age     int    `json:"age"`
	Level   string `json:"level,omitempty"`
	Subject string `json:"subject"`
}

// CreateSessionResponse is returned by POST /session.
type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

// InteractResponse is returned by POST /session/{id}/interact. Audio is
// the base64-encoded MP3 rendering of Text.
type InteractResponse struct {
	Text   string `json:"text"`
	Audio  string `json:"audio"`
	Format string `json:"format"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
	Model    string `json:"model"`
}
