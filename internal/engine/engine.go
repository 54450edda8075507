package engine

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"equipment-booking-backend/internal/model"
	"equipment-booking-backend/internal/notification"
	"equipment-booking-backend/internal/obs"
	"equipment-booking-backend/internal/store"
)

// Audit action tags.
const (
	ActionCreate       = "create"
	ActionUpdate       = "update"
	ActionApprove      = "approve"
	ActionReject       = "reject"
	ActionCancel       = "cancel"
	ActionComplete     = "complete"
	ActionReport       = "report"
	ActionUpdateStatus = "update_status"
	ActionAssignRole   = "assign_role"
)

// Audit entity type tags.
const (
	EntityReservation = "reservation"
	EntityIssue       = "issue"
	EntityDevice      = "device"
	EntityUserRole    = "user_role"
)

// SystemActorID is recorded as the actor for unattended transitions such as
// the expiry sweep.
const SystemActorID = "system"

// Engine enforces the reservation, device and issue state machines. Every
// operation is a single transaction: precondition reads, the mutation and the
// audit entry either all commit or none do. Notification intents are
// dispatched only after a successful commit.
type Engine struct {
	store    *store.Store
	notifier notification.Dispatcher

	// now is swapped out in tests.
	now func() time.Time
}

// New creates a lifecycle engine. notifier may be nil, in which case accepted
// transitions produce no notifications.
func New(s *store.Store, notifier notification.Dispatcher) *Engine {
	return &Engine{
		store:    s,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// dispatch hands intents to the notifier after the enclosing transaction has
// committed. Delivery is best-effort; nothing here can fail the operation.
func (e *Engine) dispatch(intents []notification.Intent) {
	if e.notifier == nil {
		return
	}
	for _, intent := range intents {
		e.notifier.Dispatch(intent)
	}
}

// requireStaff resolves the actor's role inside the transaction and fails
// unless it is technician or admin.
func requireStaff(tx *gorm.DB, actorID string) (model.Role, error) {
	role, err := store.RoleOf(tx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", fmt.Errorf("%w: user %s has no role", ErrUnauthorized, actorID)
		}
		return "", err
	}
	if !role.IsStaff() {
		return role, fmt.Errorf("%w: user %s is %s, staff required", ErrUnauthorized, actorID, role)
	}
	return role, nil
}

// requireAdmin is like requireStaff but admits only admins.
func requireAdmin(tx *gorm.DB, actorID string) error {
	role, err := store.RoleOf(tx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: user %s has no role", ErrUnauthorized, actorID)
		}
		return err
	}
	if role != model.RoleAdmin {
		return fmt.Errorf("%w: user %s is %s, admin required", ErrUnauthorized, actorID, role)
	}
	return nil
}

// notFound converts a gorm missing-row error into the engine's taxonomy.
func notFound(err error, entityType, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s %s", ErrNotFound, entityType, id)
	}
	return err
}

func countTransition(entityType, action string) {
	obs.IncTransition(entityType, action)
}
