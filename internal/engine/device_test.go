package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-booking-backend/internal/model"
	"equipment-booking-backend/internal/notification"
)

func TestSetDeviceStatus_UnavailableFanOut(t *testing.T) {
	eng, testDB, dispatcher := newTestEngine(t)
	ctx := context.Background()

	// Three active reservations held by two distinct users.
	reservations := []model.Reservation{
		{ID: "cccccccc-0000-0000-0000-000000000001", DeviceID: camID, UserID: aliceID,
			StartDate: fixedNow.Add(time.Hour), EndDate: fixedNow.Add(2 * time.Hour),
			Status: model.ReservationApproved},
		{ID: "cccccccc-0000-0000-0000-000000000002", DeviceID: camID, UserID: aliceID,
			StartDate: fixedNow.Add(3 * time.Hour), EndDate: fixedNow.Add(4 * time.Hour),
			Status: model.ReservationPending},
		{ID: "cccccccc-0000-0000-0000-000000000003", DeviceID: camID, UserID: bobID,
			StartDate: fixedNow.Add(5 * time.Hour), EndDate: fixedNow.Add(6 * time.Hour),
			Status: model.ReservationApproved},
	}
	require.NoError(t, testDB.Create(&reservations).Error)

	device, err := eng.SetDeviceStatus(ctx, camID, tinaID, model.DeviceUnavailable)
	require.NoError(t, err)
	assert.Equal(t, model.DeviceUnavailable, device.Status)

	intents := dispatcher.all()
	require.Len(t, intents, 2, "one intent per distinct holder")
	recipients := map[string]bool{}
	for _, intent := range intents {
		assert.Equal(t, notification.TemplateDeviceUnavailable, intent.Template)
		assert.Equal(t, "Canon EOS R5", intent.Details.DeviceName)
		recipients[intent.RecipientID] = true
	}
	assert.True(t, recipients[aliceID])
	assert.True(t, recipients[bobID])

	// Reservations are flagged for notification, never auto-cancelled.
	var active int64
	require.NoError(t, testDB.Model(&model.Reservation{}).
		Where("device_id = ? AND status IN ?", camID,
			[]model.ReservationStatus{model.ReservationPending, model.ReservationApproved}).
		Count(&active).Error)
	assert.Equal(t, int64(3), active)

	// Setting unavailable again does not re-notify.
	dispatcher.reset()
	_, err = eng.SetDeviceStatus(ctx, camID, tinaID, model.DeviceUnavailable)
	require.NoError(t, err)
	assert.Empty(t, dispatcher.all())
}

func TestSetDeviceStatus_Guards(t *testing.T) {
	eng, testDB, dispatcher := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.SetDeviceStatus(ctx, camID, aliceID, model.DeviceMaintenance)
	assert.ErrorIs(t, err, ErrUnauthorized)

	_, err = eng.SetDeviceStatus(ctx, camID, tinaID, "broken")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = eng.SetDeviceStatus(ctx, "no-such-device", tinaID, model.DeviceMaintenance)
	assert.ErrorIs(t, err, ErrNotFound)

	// The status graph is free for staff; maintenance -> available is fine.
	_, err = eng.SetDeviceStatus(ctx, camID, tinaID, model.DeviceMaintenance)
	require.NoError(t, err)
	device, err := eng.SetDeviceStatus(ctx, camID, tinaID, model.DeviceAvailable)
	require.NoError(t, err)
	assert.Equal(t, model.DeviceAvailable, device.Status)

	assert.Empty(t, dispatcher.all(), "only the unavailable edge notifies")

	var audited int64
	require.NoError(t, testDB.Model(&model.AuditLog{}).
		Where("entity_id = ? AND action = ?", camID, ActionUpdateStatus).Count(&audited).Error)
	assert.Equal(t, int64(2), audited)
}

func TestCreateAndUpdateDevice(t *testing.T) {
	eng, testDB, _ := newTestEngine(t)
	ctx := context.Background()

	_, err := eng.CreateDevice(ctx, aliceID, DeviceInput{Name: "Projector"})
	assert.ErrorIs(t, err, ErrUnauthorized)

	device, err := eng.CreateDevice(ctx, tinaID, DeviceInput{
		Name:         "Epson EB-X51",
		SerialNumber: "EPX51-0042",
		Description:  "Portable projector",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DeviceAvailable, device.Status)

	updated, err := eng.UpdateDevice(ctx, tinaID, device.ID, DeviceInput{
		Name:         "Epson EB-X51 (cart 3)",
		SerialNumber: "EPX51-0042",
	})
	require.NoError(t, err)
	assert.Equal(t, "Epson EB-X51 (cart 3)", updated.Name)
	// Status is untouched by catalog edits.
	assert.Equal(t, model.DeviceAvailable, updated.Status)

	var audited int64
	require.NoError(t, testDB.Model(&model.AuditLog{}).
		Where("entity_id = ?", device.ID).Count(&audited).Error)
	assert.Equal(t, int64(2), audited)

	_, err = eng.UpdateDevice(ctx, tinaID, "no-such-device", DeviceInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAssignRole(t *testing.T) {
	eng, testDB, _ := newTestEngine(t)
	ctx := context.Background()

	// Technicians are staff but not admins.
	_, err := eng.AssignRole(ctx, tinaID, carlID, model.RoleTeacher)
	assert.ErrorIs(t, err, ErrUnauthorized)

	assignment, err := eng.AssignRole(ctx, adaID, carlID, model.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, model.RoleTeacher, assignment.Role)

	// Replacing an existing assignment records the old role.
	_, err = eng.AssignRole(ctx, adaID, carlID, model.RoleTechnician)
	require.NoError(t, err)

	var entries []model.AuditLog
	require.NoError(t, testDB.Where("entity_type = ? AND entity_id = ?", EntityUserRole, carlID).
		Order("created_at ASC").Find(&entries).Error)
	require.Len(t, entries, 2)
	// A first assignment has no prior role to snapshot.
	assert.Empty(t, entries[0].OldValue)
	assert.Contains(t, entries[0].NewValue, `"role":"teacher"`)
	assert.Contains(t, entries[1].OldValue, `"role":"teacher"`)
	assert.Contains(t, entries[1].NewValue, `"role":"technician"`)

	role, err := eng.Authorize(ctx, carlID)
	require.NoError(t, err)
	assert.True(t, role)

	_, err = eng.AssignRole(ctx, adaID, "no-such-user", model.RoleStudent)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = eng.AssignRole(ctx, adaID, carlID, "headmaster")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
