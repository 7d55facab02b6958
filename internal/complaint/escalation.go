package complaint

import (
	"context"
	"fmt"

	"hrdesk/backend/internal/apperror"
	"hrdesk/backend/internal/metrics"
	"hrdesk/backend/internal/models"
	"hrdesk/backend/internal/notify"
	"hrdesk/backend/internal/storage"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultDeescalationNote = "Returned to normal processing"

// EscalateInput names the escalation targets in order; the first one becomes
// the new assignee.
type EscalateInput struct {
	Targets []string `json:"escalated_to"`
	Reason  string   `json:"reason"`
}

// DeescalateInput hands the complaint back to AssignedTo.
type DeescalateInput struct {
	AssignedTo *string `json:"assigned_to"`
	Reason     string  `json:"reason"`
}

// Escalate records the next escalation level of the complaint and reassigns it
// to the primary target.
func (s *Service) Escalate(ctx context.Context, actor Actor, c *models.Complaint, in EscalateInput) (*models.Complaint, error) {
	targets := make([]string, 0, len(in.Targets))
	for _, target := range in.Targets {
		if target != "" {
			targets = append(targets, target)
		}
	}
	if len(targets) == 0 {
		return nil, apperror.InvalidState("escalation of complaint %s needs at least one target", c.ComplaintNumber)
	}

	previousAssignee := c.AssignedTo
	prior := c.Status
	var level string

	// c only takes the new state once the transaction has committed
	updated := *c
	err := s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		count, err := tx.CountEscalations(ctx, c.ID)
		if err != nil {
			return err
		}
		level = fmt.Sprintf("level_%d", count+1)

		now := s.now()
		escalation := &models.Escalation{
			ComplaintID:     c.ID,
			EscalatedFrom:   previousAssignee,
			EscalatedTo:     pq.StringArray(targets),
			EscalationLevel: level,
			Reason:          in.Reason,
			EscalatedBy:     actor.UserID,
			EscalatedAt:     now,
		}
		if err := tx.CreateEscalation(ctx, escalation); err != nil {
			return err
		}

		updated.IsEscalated = true
		updated.EscalatedAt = timePtr(now)
		updated.EscalatedTo = pq.StringArray(targets)
		updated.AssignedTo = stringPtr(targets[0])
		updated.Status = models.StatusEscalated
		if err := tx.SaveComplaint(ctx, &updated); err != nil {
			return err
		}

		var from *models.Status
		if prior != "" {
			from = statusPtr(prior)
		}
		notes := "Escalated: " + in.Reason
		return writeHistory(ctx, tx, c.ID, from, models.StatusEscalated, &notes, actor)
	})
	if err != nil {
		return nil, err
	}
	*c = updated

	metrics.EscalationTotal.WithLabelValues("escalate").Inc()
	metrics.RecordTransition(string(prior), string(models.StatusEscalated))
	s.Logger.Info("complaint escalated",
		zap.Uint("complaint_id", c.ID),
		zap.String("level", level),
		zap.Strings("targets", targets),
	)

	previous := string(prior)
	if previous == "" {
		previous = "unknown"
	}
	s.notifyCreator(ctx, c, previous)
	s.notifyTargets(ctx, c, targets)

	return s.Storage.FindComplaintDetailed(ctx, c.ID)
}

// Deescalate returns an escalated complaint to under_review. It fails without
// touching anything when the complaint is not escalated.
func (s *Service) Deescalate(ctx context.Context, actor Actor, c *models.Complaint, in DeescalateInput) (*models.Complaint, error) {
	if !c.IsEscalated {
		return nil, apperror.InvalidState("complaint %s is not escalated", c.ComplaintNumber)
	}

	updated := *c
	err := s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		updated.IsEscalated = false
		updated.EscalatedTo = nil
		updated.AssignedTo = in.AssignedTo
		updated.Status = models.StatusUnderReview
		if err := tx.SaveComplaint(ctx, &updated); err != nil {
			return err
		}

		notes := in.Reason
		if notes == "" {
			notes = defaultDeescalationNote
		}
		return writeHistory(ctx, tx, c.ID, statusPtr(models.StatusEscalated), models.StatusUnderReview, &notes, actor)
	})
	if err != nil {
		return nil, err
	}
	*c = updated

	metrics.EscalationTotal.WithLabelValues("deescalate").Inc()
	metrics.RecordTransition(string(models.StatusEscalated), string(models.StatusUnderReview))
	s.Logger.Info("complaint de-escalated", zap.Uint("complaint_id", c.ID))

	s.notifyCreator(ctx, c, string(models.StatusEscalated))
	return c, nil
}

// notifyTargets tells every escalation target that the complaint is now theirs.
func (s *Service) notifyTargets(ctx context.Context, c *models.Complaint, targets []string) {
	for _, target := range targets {
		err := s.Notifier.Notify(ctx, notify.Event{
			Type:            notify.EventEscalated,
			Recipient:       notify.UserRecipient(target),
			ComplaintID:     c.ID,
			ComplaintNumber: c.ComplaintNumber,
			CurrentStatus:   string(c.Status),
			OccurredAt:      s.now(),
		})
		if err != nil {
			s.Logger.Warn("failed to notify escalation target",
				zap.Uint("complaint_id", c.ID),
				zap.String("target", target),
				zap.Error(err),
			)
		}
	}
}
