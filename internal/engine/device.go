package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"equipment-booking-backend/internal/model"
	"equipment-booking-backend/internal/notification"
	"equipment-booking-backend/internal/store"
)

// DeviceInput holds the staff-editable catalog fields of a device.
type DeviceInput struct {
	Name         string
	SerialNumber string
	CategoryID   *string
	LocationID   *string
	Description  string
	ImageURL     string
}

// CreateDevice adds a device to the catalog. Staff only.
func (e *Engine) CreateDevice(ctx context.Context, actorID string, input DeviceInput) (model.Device, error) {
	if strings.TrimSpace(input.Name) == "" {
		return model.Device{}, fmt.Errorf("%w: device name is required", ErrInvalidTransition)
	}

	device := model.Device{
		ID:           uuid.NewString(),
		Name:         input.Name,
		SerialNumber: input.SerialNumber,
		CategoryID:   input.CategoryID,
		LocationID:   input.LocationID,
		Status:       model.DeviceAvailable,
		Description:  input.Description,
		ImageURL:     input.ImageURL,
	}

	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := requireStaff(tx, actorID); err != nil {
			return err
		}
		if err := tx.Create(&device).Error; err != nil {
			return fmt.Errorf("failed to create device: %w", err)
		}
		return store.AppendAudit(tx, actorID, ActionCreate, EntityDevice, device.ID,
			nil, device, "device added to catalog")
	})
	if err != nil {
		return model.Device{}, err
	}

	countTransition(EntityDevice, ActionCreate)
	return device, nil
}

// UpdateDevice edits the catalog fields of a device. Status is not among
// them; status changes go through SetDeviceStatus so the unavailable fan-out
// cannot be bypassed. Staff only.
func (e *Engine) UpdateDevice(ctx context.Context, actorID, deviceID string, input DeviceInput) (model.Device, error) {
	if strings.TrimSpace(input.Name) == "" {
		return model.Device{}, fmt.Errorf("%w: device name is required", ErrInvalidTransition)
	}

	var device model.Device
	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := requireStaff(tx, actorID); err != nil {
			return err
		}

		var err error
		device, err = store.GetDevice(tx, deviceID)
		if err != nil {
			return notFound(err, EntityDevice, deviceID)
		}

		previous := device
		device.Name = input.Name
		device.SerialNumber = input.SerialNumber
		device.CategoryID = input.CategoryID
		device.LocationID = input.LocationID
		device.Description = input.Description
		device.ImageURL = input.ImageURL

		if err := tx.Model(&model.Device{}).Where("id = ?", device.ID).Updates(map[string]any{
			"name":          device.Name,
			"serial_number": device.SerialNumber,
			"category_id":   device.CategoryID,
			"location_id":   device.LocationID,
			"description":   device.Description,
			"image_url":     device.ImageURL,
		}).Error; err != nil {
			return fmt.Errorf("failed to update device %s: %w", device.ID, err)
		}
		return store.AppendAudit(tx, actorID, ActionUpdate, EntityDevice, device.ID,
			previous, device, "device catalog fields updated")
	})
	if err != nil {
		return model.Device{}, err
	}

	countTransition(EntityDevice, ActionUpdate)
	return device, nil
}

// SetDeviceStatus moves a device between its four statuses. Staff only; the
// status graph is free. Marking a device unavailable notifies every distinct
// holder of a pending or approved reservation on it, but the reservations
// themselves stay untouched: a human resolves the clash.
func (e *Engine) SetDeviceStatus(ctx context.Context, deviceID, actorID string, newStatus model.DeviceStatus) (model.Device, error) {
	if !newStatus.Valid() {
		return model.Device{}, fmt.Errorf("%w: unknown device status %q", ErrInvalidTransition, newStatus)
	}

	var (
		device  model.Device
		intents []notification.Intent
	)

	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := requireStaff(tx, actorID); err != nil {
			return err
		}

		var err error
		device, err = store.GetDevice(tx, deviceID)
		if err != nil {
			return notFound(err, EntityDevice, deviceID)
		}

		previous := device
		device.Status = newStatus
		if err := tx.Model(&model.Device{}).Where("id = ?", device.ID).
			Update("status", newStatus).Error; err != nil {
			return fmt.Errorf("failed to set status of device %s: %w", device.ID, err)
		}
		if err := store.AppendAudit(tx, actorID, ActionUpdateStatus, EntityDevice, device.ID,
			previous, device, "device status set to "+string(newStatus)); err != nil {
			return err
		}

		if newStatus == model.DeviceUnavailable && previous.Status != model.DeviceUnavailable {
			active, err := store.ActiveReservations(tx, device.ID)
			if err != nil {
				return err
			}
			// One intent per distinct holder, carrying that holder's window.
			seen := make(map[string]bool, len(active))
			for _, r := range active {
				if seen[r.UserID] {
					continue
				}
				seen[r.UserID] = true
				start, end := r.StartDate, r.EndDate
				intents = append(intents, notification.Intent{
					RecipientID: r.UserID,
					Template:    notification.TemplateDeviceUnavailable,
					Details: notification.Details{
						DeviceName: device.Name,
						StartDate:  &start,
						EndDate:    &end,
					},
				})
			}
		}
		return nil
	})
	if err != nil {
		return model.Device{}, err
	}

	countTransition(EntityDevice, ActionUpdateStatus)
	e.dispatch(intents)
	return device, nil
}
