package engine

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"equipment-booking-backend/internal/model"
	"equipment-booking-backend/internal/store"
)

// AssignRole sets a user's platform role, replacing any existing assignment.
// Admin only; the change is audited like any other transition.
func (e *Engine) AssignRole(ctx context.Context, actorID, userID string, role model.Role) (model.UserRole, error) {
	if !role.Valid() {
		return model.UserRole{}, fmt.Errorf("%w: unknown role %q", ErrInvalidTransition, role)
	}

	assignment := model.UserRole{UserID: userID, Role: role}

	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		if err := requireAdmin(tx, actorID); err != nil {
			return err
		}
		if err := tx.First(&model.Profile{}, "id = ?", userID).Error; err != nil {
			return notFound(err, "user", userID)
		}

		// previous stays untyped nil for a first assignment so the audit
		// entry's old value is left empty rather than the JSON literal null.
		var previous any
		existing, err := store.RoleOf(tx, userID)
		if err == nil {
			previous = model.UserRole{UserID: userID, Role: existing}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).Create(&assignment).Error; err != nil {
			return fmt.Errorf("failed to assign role: %w", err)
		}

		return store.AppendAudit(tx, actorID, ActionAssignRole, EntityUserRole, userID,
			previous, assignment, "role set to "+string(role))
	})
	if err != nil {
		return model.UserRole{}, err
	}

	countTransition(EntityUserRole, ActionAssignRole)
	return assignment, nil
}

// Authorize reports whether the actor holds at least the staff capability.
// Read-side callers use it to gate admin views; the engine's own operations
// re-check inside their transactions.
func (e *Engine) Authorize(ctx context.Context, actorID string) (bool, error) {
	role, err := store.RoleOf(e.store.DB().WithContext(ctx), actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return role.IsStaff(), nil
}
