package types

// CreateSessionRequest mounts a wizard. ID resumes persisted selections.
type CreateSessionRequest struct {
	ID string `json:"id"`
}

// ToggleToolRequest toggles a catalog tool in the current category
type ToggleToolRequest struct {
	Tool string `json:"tool" binding:"required"`
}

// CustomToolRequest adds or removes a free-text tool in the current category
type CustomToolRequest struct {
	Name string `json:"name"`
}

// UILogEntry is one log line from the browser
type UILogEntry struct {
	ID        string                 `json:"id"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Context   map[string]interface{} `json:"context"`
	Timestamp string                 `json:"timestamp"`
	Priority  int                    `json:"priority"`
}

// UILogStreamRequest is a batch of browser logs
type UILogStreamRequest struct {
	Source    string       `json:"source"`    // "ui"
	Entries   []UILogEntry `json:"entries"`   // Log entries
	Timestamp int64        `json:"timestamp"` // Request timestamp
}
