package model

import "time"

// IssuePriority ranks the urgency of a reported fault.
type IssuePriority string

const (
	PriorityLow      IssuePriority = "low"
	PriorityMedium   IssuePriority = "medium"
	PriorityHigh     IssuePriority = "high"
	PriorityCritical IssuePriority = "critical"
)

// Valid reports whether the priority is one of the known values.
func (p IssuePriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// IssueStatus is the lifecycle state of an issue. Transitions form a strict
// forward chain reported -> in_progress -> resolved -> closed, with a shortcut
// straight to resolved.
type IssueStatus string

const (
	IssueReported   IssueStatus = "reported"
	IssueInProgress IssueStatus = "in_progress"
	IssueResolved   IssueStatus = "resolved"
	IssueClosed     IssueStatus = "closed"
)

// Issue is a fault report against a device.
type Issue struct {
	ID          string        `gorm:"primaryKey;size:36" json:"id"`
	DeviceID    string        `gorm:"size:36;not null;index" json:"device_id"`
	ReportedBy  string        `gorm:"size:36;not null;index" json:"reported_by"`
	AssignedTo  *string       `gorm:"size:36" json:"assigned_to,omitempty"`
	Title       string        `gorm:"size:256;not null" json:"title"`
	Description string        `gorm:"size:4096;not null" json:"description"`
	Priority    IssuePriority `gorm:"size:32;not null;default:medium" json:"priority"`
	Status      IssueStatus   `gorm:"size:32;not null;default:reported" json:"status"`
	Resolution  string        `gorm:"size:4096" json:"resolution,omitempty"`
	ResolvedAt  *time.Time    `json:"resolved_at,omitempty"`
	CreatedAt   time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time     `gorm:"not null" json:"updated_at"`

	// Associations
	Device   *Device  `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
	Reporter *Profile `gorm:"foreignKey:ReportedBy" json:"reporter,omitempty"`
}
