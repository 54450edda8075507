package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"equipment-booking-backend/internal/model"
)

// AppendAudit writes one immutable audit entry inside the caller's
// transaction. If the append fails the whole transaction rolls back, so the
// log never records a mutation that was not committed and never misses one
// that was.
func AppendAudit(tx *gorm.DB, actorID, action, entityType, entityID string, oldValue, newValue any, description string) error {
	entry := model.AuditLog{
		ID:          uuid.NewString(),
		UserID:      actorID,
		Action:      action,
		EntityType:  entityType,
		EntityID:    entityID,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}

	if oldValue != nil {
		data, err := json.Marshal(oldValue)
		if err != nil {
			return fmt.Errorf("failed to encode audit old value: %w", err)
		}
		entry.OldValue = string(data)
	}
	if newValue != nil {
		data, err := json.Marshal(newValue)
		if err != nil {
			return fmt.Errorf("failed to encode audit new value: %w", err)
		}
		entry.NewValue = string(data)
	}

	if err := tx.Create(&entry).Error; err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// AuditFilter narrows an audit log query. Zero values mean "no filter".
type AuditFilter struct {
	ActorID    string
	Action     string
	EntityType string
	Since      time.Time
	Until      time.Time
	Limit      int
}

// ListAuditLogs returns audit entries in reverse-chronological order. This is
// the only externally specified read contract of the audit subsystem.
func (s *Store) ListAuditLogs(ctx context.Context, filter AuditFilter) ([]model.AuditLog, error) {
	q := s.db.WithContext(ctx).Model(&model.AuditLog{})
	if filter.ActorID != "" {
		q = q.Where("user_id = ?", filter.ActorID)
	}
	if filter.Action != "" {
		q = q.Where("action = ?", filter.Action)
	}
	if filter.EntityType != "" {
		q = q.Where("entity_type = ?", filter.EntityType)
	}
	if !filter.Since.IsZero() {
		q = q.Where("created_at >= ?", filter.Since)
	}
	if !filter.Until.IsZero() {
		q = q.Where("created_at <= ?", filter.Until)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var entries []model.AuditLog
	if err := q.Order("created_at DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("audit log query failed: %w", err)
	}
	return entries, nil
}
