package notification

import "time"

// Template identifies the kind of message a delivery renders.
const (
	TemplateReservationApproved = "reservation_approved"
	TemplateReservationRejected = "reservation_rejected"
	TemplateIssueResolved       = "issue_resolved"
	TemplateDeviceUnavailable   = "device_unavailable"
)

// Details carries everything the delivery collaborator needs to render a
// message without re-querying the entity store.
type Details struct {
	DeviceName string     `json:"device_name,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
	IssueTitle string     `json:"issue_title,omitempty"`
	Resolution string     `json:"resolution,omitempty"`
	Reason     string     `json:"reason,omitempty"`
}

// Intent is one user-facing message produced by an accepted state transition.
// Intents are emitted strictly after the transaction commits; a failed
// delivery never affects the committed state change.
type Intent struct {
	RecipientID string  `json:"recipient_id"`
	Template    string  `json:"template"`
	Details     Details `json:"details"`
}

// Dispatcher accepts intents for best-effort asynchronous delivery.
type Dispatcher interface {
	Dispatch(intent Intent)
}
