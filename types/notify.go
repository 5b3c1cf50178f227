package types

const (
	NotifyTypeSelectionChanged  = "selection_changed"
	NotifyTypeSelectionRejected = "selection_rejected"
	NotifyTypePreviewReady      = "preview_ready"
	NotifyTypeSubmissionState   = "submission_state"
	NotifyTypeSubmissionDone    = "submission_done"
	NotifyTypeError             = "error"
)

// Notification represents a notification message structure
type Notification struct {
	Type      string         `json:"type,omitempty"`      // Notification type, e.g. "selection_changed", "submission_done"
	SessionId string         `json:"sessionId,omitempty"` // Intake session the event belongs to
	Title     string         `json:"title,omitempty"`     // Notification title
	Message   string         `json:"message,omitempty"`   // Notification message/content
	Data      map[string]any `json:"data,omitempty"`      // Additional data fields
}

// NotifyHub is implemented by anything that fans notifications out to
// connected clients (the websocket hub).
type NotifyHub interface {
	Broadcast(notification *Notification)
}
