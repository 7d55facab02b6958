package complaint

import (
	"context"

	"hrdesk/backend/internal/apperror"
	"hrdesk/backend/internal/metrics"
	"hrdesk/backend/internal/models"
	"hrdesk/backend/internal/sla"
	"hrdesk/backend/internal/storage"

	"go.uber.org/zap"
)

// Submit moves a complaint to submitted and starts its SLA clock. The SLA
// window comes from the priority unless sla_hours was set explicitly; the due
// date and breach time are only derived from a window computed here.
func (s *Service) Submit(ctx context.Context, actor Actor, id uint) (*models.Complaint, error) {
	var (
		c     *models.Complaint
		prior models.Status
	)
	err := s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		var err error
		if c, err = tx.FindComplaint(ctx, id); err != nil {
			return err
		}

		prior = c.Status
		if prior == "" {
			prior = models.StatusDraft
		}

		now := s.now()
		c.Status = models.StatusSubmitted
		c.SubmittedAt = timePtr(now)

		if c.SLAHours == nil {
			hours := sla.Hours(c.Priority)
			c.SLAHours = &hours

			if c.DueDate == nil {
				c.DueDate = timePtr(sla.DueDate(now, hours))

				if c.SLABreachAt == nil {
					c.SLABreachAt = timePtr(*c.DueDate)
				}
			}
		}

		if err := tx.SaveComplaint(ctx, c); err != nil {
			return err
		}
		return writeHistory(ctx, tx, c.ID, statusPtr(prior), models.StatusSubmitted, nil, actor)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(prior), string(models.StatusSubmitted))
	s.Logger.Info("complaint submitted",
		zap.Uint("complaint_id", c.ID),
		zap.Intp("sla_hours", c.SLAHours),
	)
	s.notifyCreator(ctx, c, string(prior))
	return c, nil
}

// UpdateStatus sets an arbitrary known status and stamps the milestone
// timestamp that belongs to it. Transition legality is left to the caller,
// except that a complaint cannot be closed before it has a resolution.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, id uint, status models.Status, notes *string) (*models.Complaint, error) {
	if !status.Valid() {
		return nil, apperror.InvalidState("unknown complaint status %q", status)
	}

	var (
		c     *models.Complaint
		prior models.Status
	)
	err := s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		var err error
		if c, err = tx.FindComplaint(ctx, id); err != nil {
			return err
		}

		if status == models.StatusClosed {
			resolution, err := tx.FindResolution(ctx, c.ID)
			if err != nil {
				return err
			}
			if resolution == nil {
				return apperror.InvalidState("complaint %s cannot be closed without a resolution", c.ComplaintNumber)
			}
		}

		prior = c.Status
		now := s.now()
		c.Status = status
		switch status {
		case models.StatusAcknowledged:
			if c.AcknowledgedAt == nil {
				c.AcknowledgedAt = timePtr(now)
			}
		case models.StatusResolved:
			c.ResolvedAt = timePtr(now)
		case models.StatusClosed:
			c.ClosedAt = timePtr(now)
		}

		if err := tx.SaveComplaint(ctx, c); err != nil {
			return err
		}
		var from *models.Status
		if prior != "" {
			from = statusPtr(prior)
		}
		return writeHistory(ctx, tx, c.ID, from, status, notes, actor)
	})
	if err != nil {
		return nil, err
	}

	metrics.RecordTransition(string(prior), string(status))
	s.Logger.Info("complaint status changed",
		zap.Uint("complaint_id", c.ID),
		zap.String("from", string(prior)),
		zap.String("to", string(status)),
	)
	s.notifyCreator(ctx, c, string(prior))
	return c, nil
}
