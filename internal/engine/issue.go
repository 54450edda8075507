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

// ReportIssue files a new fault report against a device.
func (e *Engine) ReportIssue(ctx context.Context, deviceID, reporterID, title, description string, priority model.IssuePriority) (model.Issue, error) {
	if strings.TrimSpace(title) == "" {
		return model.Issue{}, fmt.Errorf("%w: issue title is required", ErrInvalidTransition)
	}
	if priority == "" {
		priority = model.PriorityMedium
	}
	if !priority.Valid() {
		return model.Issue{}, fmt.Errorf("%w: unknown priority %q", ErrInvalidTransition, priority)
	}

	issue := model.Issue{
		ID:          uuid.NewString(),
		DeviceID:    deviceID,
		ReportedBy:  reporterID,
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      model.IssueReported,
	}

	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := store.GetDevice(tx, deviceID); err != nil {
			return notFound(err, EntityDevice, deviceID)
		}
		if err := tx.First(&model.Profile{}, "id = ?", reporterID).Error; err != nil {
			return notFound(err, "user", reporterID)
		}

		if err := tx.Create(&issue).Error; err != nil {
			return fmt.Errorf("failed to create issue: %w", err)
		}
		return store.AppendAudit(tx, reporterID, ActionReport, EntityIssue, issue.ID,
			nil, issue, "issue reported")
	})
	if err != nil {
		return model.Issue{}, err
	}

	countTransition(EntityIssue, ActionReport)
	return issue, nil
}

// legalIssueTransition reports whether the edge from -> to exists in the issue
// state machine: a strict forward chain with a shortcut straight to resolved.
func legalIssueTransition(from, to model.IssueStatus) bool {
	switch from {
	case model.IssueReported:
		return to == model.IssueInProgress || to == model.IssueResolved
	case model.IssueInProgress:
		return to == model.IssueResolved
	case model.IssueResolved:
		return to == model.IssueClosed
	}
	return false
}

// UpdateIssueStatus advances an issue along its state machine. Moving into
// resolved requires a non-empty resolution and stamps resolved_at; every other
// transition leaves both untouched. assigneeID, when non-nil, records who is
// working the issue. The reporter is notified when the issue is resolved.
func (e *Engine) UpdateIssueStatus(ctx context.Context, issueID, actorID string, newStatus model.IssueStatus, resolution string, assigneeID *string) (model.Issue, error) {
	var (
		issue   model.Issue
		intents []notification.Intent
	)

	err := e.store.Transaction(ctx, func(tx *gorm.DB) error {
		if _, err := requireStaff(tx, actorID); err != nil {
			return err
		}

		var err error
		issue, err = store.GetIssue(tx, issueID)
		if err != nil {
			return notFound(err, EntityIssue, issueID)
		}
		if !legalIssueTransition(issue.Status, newStatus) {
			return fmt.Errorf("%w: issue %s cannot go from %s to %s", ErrInvalidTransition, issueID, issue.Status, newStatus)
		}

		previous := issue
		updates := map[string]any{"status": newStatus}

		if newStatus == model.IssueResolved {
			if strings.TrimSpace(resolution) == "" {
				return fmt.Errorf("%w: resolving an issue requires a resolution text", ErrInvalidTransition)
			}
			resolvedAt := e.now()
			issue.Resolution = resolution
			issue.ResolvedAt = &resolvedAt
			updates["resolution"] = resolution
			updates["resolved_at"] = resolvedAt
		}
		if assigneeID != nil {
			issue.AssignedTo = assigneeID
			updates["assigned_to"] = *assigneeID
		}
		issue.Status = newStatus

		if err := tx.Model(&model.Issue{}).Where("id = ?", issue.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update issue %s: %w", issue.ID, err)
		}
		if err := store.AppendAudit(tx, actorID, ActionUpdateStatus, EntityIssue, issue.ID,
			previous, issue, "issue moved to "+string(newStatus)); err != nil {
			return err
		}

		if newStatus == model.IssueResolved {
			intents = append(intents, notification.Intent{
				RecipientID: issue.ReportedBy,
				Template:    notification.TemplateIssueResolved,
				Details: notification.Details{
					IssueTitle: issue.Title,
					Resolution: issue.Resolution,
				},
			})
		}
		return nil
	})
	if err != nil {
		return model.Issue{}, err
	}

	countTransition(EntityIssue, ActionUpdateStatus)
	e.dispatch(intents)
	return issue, nil
}
