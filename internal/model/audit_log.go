package model

import "time"

// AuditLog is one immutable record of an accepted state transition. Entries
// are written in the same transaction as the mutation they document and are
// never updated or deleted.
type AuditLog struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:36;not null;index" json:"user_id"`
	Action      string    `gorm:"size:64;not null;index" json:"action"`
	EntityType  string    `gorm:"size:64;not null;index" json:"entity_type"`
	EntityID    string    `gorm:"size:36;not null" json:"entity_id"`
	OldValue    string    `gorm:"type:text" json:"old_value,omitempty"`
	NewValue    string    `gorm:"type:text" json:"new_value,omitempty"`
	Description string    `gorm:"size:1024" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"not null;index" json:"created_at"`
}
