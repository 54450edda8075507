package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationApproved  ReservationStatus = "approved"
	ReservationRejected  ReservationStatus = "rejected"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed from the status.
func (s ReservationStatus) Terminal() bool {
	switch s {
	case ReservationRejected, ReservationCompleted, ReservationCancelled:
		return true
	}
	return false
}

// Reservation is a time-boxed booking of a device. Intervals are half-open
// [StartDate, EndDate): back-to-back reservations do not conflict.
type Reservation struct {
	ID         string            `gorm:"primaryKey;size:36" json:"id"`
	DeviceID   string            `gorm:"size:36;not null;index:idx_reservations_device_status" json:"device_id"`
	UserID     string            `gorm:"size:36;not null;index" json:"user_id"`
	StartDate  time.Time         `gorm:"not null" json:"start_date"`
	EndDate    time.Time         `gorm:"not null" json:"end_date"`
	Purpose    string            `gorm:"size:1024" json:"purpose,omitempty"`
	Status     ReservationStatus `gorm:"size:32;not null;default:pending;index:idx_reservations_device_status" json:"status"`
	ApprovedBy *string           `gorm:"size:36" json:"approved_by,omitempty"`
	CreatedAt  time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"not null" json:"updated_at"`

	// Associations
	Device *Device  `gorm:"foreignKey:DeviceID" json:"device,omitempty"`
	User   *Profile `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
