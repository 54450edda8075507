package model

import "time"

// DeviceStatus is the staff-controlled status of a device. It is informational
// only; reservation overlap is the authoritative conflict signal.
type DeviceStatus string

const (
	DeviceAvailable   DeviceStatus = "available"
	DeviceInUse       DeviceStatus = "in_use"
	DeviceMaintenance DeviceStatus = "maintenance"
	DeviceUnavailable DeviceStatus = "unavailable"
)

// Valid reports whether the status is one of the known values.
func (s DeviceStatus) Valid() bool {
	switch s {
	case DeviceAvailable, DeviceInUse, DeviceMaintenance, DeviceUnavailable:
		return true
	}
	return false
}

// DeviceCategory groups devices for the catalog.
type DeviceCategory struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Description string    `gorm:"size:512" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

// Location is a physical place where a device lives.
type Location struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Building  string    `gorm:"size:128" json:"building,omitempty"`
	Floor     string    `gorm:"size:32" json:"floor,omitempty"`
	Room      string    `gorm:"size:32" json:"room,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

// Device is a bookable piece of equipment.
type Device struct {
	ID           string       `gorm:"primaryKey;size:36" json:"id"`
	Name         string       `gorm:"size:256;not null" json:"name"`
	SerialNumber string       `gorm:"size:128" json:"serial_number,omitempty"`
	CategoryID   *string      `gorm:"size:36;index" json:"category_id,omitempty"`
	LocationID   *string      `gorm:"size:36;index" json:"location_id,omitempty"`
	Status       DeviceStatus `gorm:"size:32;not null;default:available" json:"status"`
	Description  string       `gorm:"size:1024" json:"description,omitempty"`
	ImageURL     string       `gorm:"size:512" json:"image_url,omitempty"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null" json:"updated_at"`

	// Associations
	Category *DeviceCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Location *Location       `gorm:"foreignKey:LocationID" json:"location,omitempty"`
}
