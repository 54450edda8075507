package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"equipment-booking-backend/internal/model"
	"equipment-booking-backend/internal/notification"
	"equipment-booking-backend/internal/store"
)

// activeStatuses are the reservation states that occupy a device's calendar.
var activeStatuses = []model.ReservationStatus{
	model.ReservationPending,
	model.ReservationApproved,
}

// CreateReservation books a device for [start, end) and leaves the new
// reservation pending approval. Any pending or approved reservation whose
// interval overlaps the requested one fails the call; requests are never
// silently queued behind a conflict.
func (e *Engine) CreateReservation(ctx context.Context, deviceID, requesterID string, start, end time.Time, purpose string) (model.Reservation, error) {
	if !end.After(start) {
		return model.Reservation{}, fmt.Errorf("%w: end %s is not after start %s", ErrInvalidInterval, end.Format(time.RFC3339), start.Format(time.RFC3339))
	}
	if start.Before(e.now()) {
		return model.Reservation{}, fmt.Errorf("%w: start %s is in the past", ErrInvalidInterval, start.Format(time.RFC3339))
	}

	reservation := model.Reservation{
		ID:        uuid.NewString(),
		DeviceID:  deviceID,
		UserID:    requesterID,
		StartDate: start,
		EndDate:   end,
		Purpose:   purpose,
		Status:    model.ReservationPending,
	}

	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := store.LockDevice(tx, deviceID); err != nil {
			return err
		}
		if _, err := store.GetDevice(tx, deviceID); err != nil {
			return notFound(err, EntityDevice, deviceID)
		}
		if err := tx.First(&model.Profile{}, "id = ?", requesterID).Error; err != nil {
			return notFound(err, "user", requesterID)
		}

		overlapping, err := store.OverlappingReservations(tx, deviceID, start, end, activeStatuses, "")
		if err != nil {
			return err
		}
		if len(overlapping) > 0 {
			return fmt.Errorf("%w: device %s already has %d overlapping reservation(s)", ErrSchedulingConflict, deviceID, len(overlapping))
		}

		if err := tx.Create(&reservation).Error; err != nil {
			return fmt.Errorf("failed to create reservation: %w", err)
		}
		return store.AppendAudit(tx, requesterID, ActionCreate, EntityReservation, reservation.ID,
			nil, reservation, "reservation requested")
	})
	if err != nil {
		return model.Reservation{}, err
	}

	countTransition(EntityReservation, ActionCreate)
	return reservation, nil
}

// Decision is an approver's verdict on a pending reservation.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// DecideReservation approves or rejects a pending reservation. Approval
// re-runs the overlap check against reservations approved since creation; on
// conflict the reservation stays pending for manual resolution rather than
// being forced through. The requester is notified either way.
func (e *Engine) DecideReservation(ctx context.Context, reservationID, approverID string, decision Decision, reason string) (model.Reservation, error) {
	var (
		reservation model.Reservation
		intents     []notification.Intent
	)

	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := requireStaff(tx, approverID); err != nil {
			return err
		}

		var err error
		reservation, err = store.GetReservation(tx, reservationID)
		if err != nil {
			return notFound(err, EntityReservation, reservationID)
		}
		if reservation.Status != model.ReservationPending {
			return fmt.Errorf("%w: reservation %s is %s, only pending reservations can be decided", ErrInvalidTransition, reservationID, reservation.Status)
		}

		previous := reservation

		switch decision {
		case DecisionApprove:
			if err := store.LockDevice(tx, reservation.DeviceID); err != nil {
				return err
			}
			overlapping, err := store.OverlappingReservations(tx, reservation.DeviceID,
				reservation.StartDate, reservation.EndDate,
				[]model.ReservationStatus{model.ReservationApproved}, reservation.ID)
			if err != nil {
				return err
			}
			if len(overlapping) > 0 {
				return fmt.Errorf("%w: an approved reservation already covers part of this window", ErrSchedulingConflict)
			}
			reservation.Status = model.ReservationApproved
		case DecisionReject:
			reservation.Status = model.ReservationRejected
		default:
			return fmt.Errorf("%w: unknown decision %q", ErrInvalidTransition, decision)
		}

		reservation.ApprovedBy = &approverID
		if err := tx.Model(&model.Reservation{}).Where("id = ?", reservation.ID).
			Updates(map[string]any{"status": reservation.Status, "approved_by": approverID}).Error; err != nil {
			return fmt.Errorf("failed to update reservation %s: %w", reservation.ID, err)
		}

		action := ActionApprove
		template := notification.TemplateReservationApproved
		if decision == DecisionReject {
			action = ActionReject
			template = notification.TemplateReservationRejected
		}
		if err := store.AppendAudit(tx, approverID, action, EntityReservation, reservation.ID,
			previous, reservation, "reservation "+string(reservation.Status)); err != nil {
			return err
		}

		device, err := store.GetDevice(tx, reservation.DeviceID)
		if err != nil {
			return notFound(err, EntityDevice, reservation.DeviceID)
		}
		intents = append(intents, notification.Intent{
			RecipientID: reservation.UserID,
			Template:    template,
			Details: notification.Details{
				DeviceName: device.Name,
				StartDate:  &reservation.StartDate,
				EndDate:    &reservation.EndDate,
				Reason:     reason,
			},
		})
		return nil
	})
	if err != nil {
		return model.Reservation{}, err
	}

	if decision == DecisionApprove {
		countTransition(EntityReservation, ActionApprove)
	} else {
		countTransition(EntityReservation, ActionReject)
	}
	e.dispatch(intents)
	return reservation, nil
}

// CancelReservation cancels a pending or approved reservation. Only the
// requester or staff may cancel. Cancelling a terminal reservation is an
// error, not a no-op; callers are expected to check state first.
func (e *Engine) CancelReservation(ctx context.Context, reservationID, actorID string) (model.Reservation, error) {
	var reservation model.Reservation

	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		var err error
		reservation, err = store.GetReservation(tx, reservationID)
		if err != nil {
			return notFound(err, EntityReservation, reservationID)
		}

		if actorID != reservation.UserID {
			if _, err := requireStaff(tx, actorID); err != nil {
				return err
			}
		}

		if reservation.Status.Terminal() {
			return fmt.Errorf("%w: reservation %s is %s and cannot be cancelled", ErrInvalidTransition, reservationID, reservation.Status)
		}

		previous := reservation
		reservation.Status = model.ReservationCancelled
		if err := tx.Model(&model.Reservation{}).Where("id = ?", reservation.ID).
			Update("status", model.ReservationCancelled).Error; err != nil {
			return fmt.Errorf("failed to cancel reservation %s: %w", reservation.ID, err)
		}

		return store.AppendAudit(tx, actorID, ActionCancel, EntityReservation, reservation.ID,
			previous, reservation, "reservation cancelled")
	})
	if err != nil {
		return model.Reservation{}, err
	}

	countTransition(EntityReservation, ActionCancel)
	return reservation, nil
}

// CompleteExpiredReservations transitions every approved reservation whose
// window ended at or before asOf into completed, one audit entry per row.
// Safe to re-run: already-completed rows fall out of the candidate set, so a
// second sweep with the same asOf does nothing.
func (e *Engine) CompleteExpiredReservations(ctx context.Context, asOf time.Time) (int, error) {
	var completed int

	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		expired, err := store.ExpiredApprovedReservations(tx, asOf)
		if err != nil {
			return err
		}

		for _, r := range expired {
			previous := r
			r.Status = model.ReservationCompleted
			res := tx.Model(&model.Reservation{}).
				Where("id = ? AND status = ?", r.ID, model.ReservationApproved).
				Update("status", model.ReservationCompleted)
			if res.Error != nil {
				return fmt.Errorf("failed to complete reservation %s: %w", r.ID, res.Error)
			}
			if res.RowsAffected == 0 {
				// Another sweep claimed the row between scan and update; it
				// owns the audit entry.
				continue
			}
			if err := store.AppendAudit(tx, SystemActorID, ActionComplete, EntityReservation, r.ID,
				previous, r, "reservation window elapsed"); err != nil {
				return err
			}
			completed++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	for i := 0; i < completed; i++ {
		countTransition(EntityReservation, ActionComplete)
	}
	return completed, nil
}
