package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"equipment-booking-backend/internal/model"
)

// Store wraps the gorm handle with the transaction-scoped queries the
// lifecycle engine needs. All reads that feed a write decision take the
// enclosing transaction handle, never the root handle.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new gorm-backed store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for read-only presentation queries.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction runs fn inside a single database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// LockDevice serializes check-then-write sequences on one device. On postgres
// it takes an advisory transaction lock; sqlite already serializes writers at
// the database level.
func LockDevice(tx *gorm.DB, deviceID string) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", deviceID).Error; err != nil {
		return fmt.Errorf("failed to lock device %s: %w", deviceID, err)
	}
	return nil
}

// GetDevice fetches one device inside the transaction.
func GetDevice(tx *gorm.DB, id string) (model.Device, error) {
	var device model.Device
	err := tx.First(&device, "id = ?", id).Error
	return device, err
}

// GetReservation fetches one reservation inside the transaction.
func GetReservation(tx *gorm.DB, id string) (model.Reservation, error) {
	var reservation model.Reservation
	err := tx.First(&reservation, "id = ?", id).Error
	return reservation, err
}

// GetIssue fetches one issue inside the transaction.
func GetIssue(tx *gorm.DB, id string) (model.Issue, error) {
	var issue model.Issue
	err := tx.First(&issue, "id = ?", id).Error
	return issue, err
}

// RoleOf returns the role assigned to a user, or ErrRecordNotFound when the
// user has no role row.
func RoleOf(tx *gorm.DB, userID string) (model.Role, error) {
	var ur model.UserRole
	if err := tx.First(&ur, "user_id = ?", userID).Error; err != nil {
		return "", err
	}
	return ur.Role, nil
}

// OverlappingReservations returns the reservations for a device in any of the
// given statuses whose [start_date, end_date) interval intersects
// [start, end). excludeID, when non-empty, removes the reservation under
// decision from its own conflict scan.
func OverlappingReservations(tx *gorm.DB, deviceID string, start, end time.Time, statuses []model.ReservationStatus, excludeID string) ([]model.Reservation, error) {
	q := tx.Where("device_id = ? AND status IN ?", deviceID, statuses).
		Where("start_date < ? AND end_date > ?", end, start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var overlapping []model.Reservation
	if err := q.Find(&overlapping).Error; err != nil {
		return nil, fmt.Errorf("overlap scan for device %s failed: %w", deviceID, err)
	}
	return overlapping, nil
}

// ActiveReservations returns the pending and approved reservations for a
// device, used for the unavailable-device notification fan-out.
func ActiveReservations(tx *gorm.DB, deviceID string) ([]model.Reservation, error) {
	var active []model.Reservation
	err := tx.Where("device_id = ? AND status IN ?", deviceID,
		[]model.ReservationStatus{model.ReservationPending, model.ReservationApproved}).
		Find(&active).Error
	if err != nil {
		return nil, fmt.Errorf("active reservation scan for device %s failed: %w", deviceID, err)
	}
	return active, nil
}

// ExpiredApprovedReservations returns the approved reservations whose window
// ended at or before asOf. Completed rows are excluded by construction, which
// is what makes the sweep idempotent.
func ExpiredApprovedReservations(tx *gorm.DB, asOf time.Time) ([]model.Reservation, error) {
	var expired []model.Reservation
	err := tx.Where("status = ? AND end_date <= ?", model.ReservationApproved, asOf).
		Find(&expired).Error
	if err != nil {
		return nil, fmt.Errorf("expired reservation scan failed: %w", err)
	}
	return expired, nil
}
