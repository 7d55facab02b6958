package complaint

import (
	"context"
	"strings"
	"time"

	"hrdesk/backend/internal/apperror"
	"hrdesk/backend/internal/metrics"
	"hrdesk/backend/internal/models"
	"hrdesk/backend/internal/storage"

	"go.uber.org/zap"
)

// SatisfactoryFlag is the feedback key that closes a resolved complaint.
const SatisfactoryFlag = "satisfactory_to_complainant"

// Resolve records the resolution payload and moves the complaint to resolved.
// Only complaints under review, investigating or escalated can be resolved.
func (s *Service) Resolve(ctx context.Context, actor Actor, c *models.Complaint, data map[string]any) (*models.Complaint, error) {
	if !c.Status.Resolvable() {
		return nil, apperror.InvalidState("complaint %s cannot be resolved from status %s", c.ComplaintNumber, c.Status)
	}

	prior := c.Status
	updated := *c
	err := s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		now := s.now()
		updated.Status = models.StatusResolved
		updated.ResolvedAt = timePtr(now)
		if err := tx.SaveComplaint(ctx, &updated); err != nil {
			return err
		}

		if err := s.recordResolution(ctx, tx, actor, &updated, data, now); err != nil {
			return err
		}

		notes := "Complaint resolved"
		return writeHistory(ctx, tx, c.ID, statusPtr(prior), models.StatusResolved, &notes, actor)
	})
	if err != nil {
		return nil, err
	}
	*c = updated

	metrics.RecordTransition(string(prior), string(models.StatusResolved))
	s.Logger.Info("complaint resolved", zap.Uint("complaint_id", c.ID))
	return s.Storage.FindComplaintDetailed(ctx, c.ID)
}

// recordResolution creates the resolution row, or merges into the existing one
// when a reopened complaint is resolved again.
func (s *Service) recordResolution(ctx context.Context, tx storage.Storage, actor Actor, c *models.Complaint, data map[string]any, now time.Time) error {
	existing, err := tx.FindResolution(ctx, c.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		resolution := &models.Resolution{
			ComplaintID: c.ID,
			ResolvedBy:  actor.UserID,
			ResolvedAt:  now,
		}
		resolution.Merge(data)
		return tx.CreateResolution(ctx, resolution)
	}

	existing.ResolvedBy = actor.UserID
	existing.ResolvedAt = now
	existing.Merge(data)
	return tx.SaveResolution(ctx, existing)
}

// UpdateResolution shallow-merges data into the existing resolution payload.
func (s *Service) UpdateResolution(ctx context.Context, actor Actor, c *models.Complaint, data map[string]any) (*models.Resolution, error) {
	var resolution *models.Resolution
	err := s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		var err error
		if resolution, err = requireResolution(ctx, tx, c); err != nil {
			return err
		}
		resolution.Merge(data)
		return tx.SaveResolution(ctx, resolution)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Info("complaint resolution updated",
		zap.Uint("complaint_id", c.ID),
		zap.String("actor", actor.UserID),
	)
	return resolution, nil
}

// RecordFeedback merges the complainant's feedback into the resolution. Only
// the complaint's own employee or a privileged actor may do this. Positive
// feedback closes the complaint.
func (s *Service) RecordFeedback(ctx context.Context, actor Actor, c *models.Complaint, data map[string]any) (*models.Complaint, error) {
	if !actor.owns(c.EmployeeID) && !actor.IsPrivileged() {
		return nil, apperror.Forbidden("only the complainant or HR may record feedback")
	}

	closed := false
	prior := c.Status
	updated := *c
	err := s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		resolution, err := requireResolution(ctx, tx, c)
		if err != nil {
			return err
		}
		resolution.Merge(data)
		if err := tx.SaveResolution(ctx, resolution); err != nil {
			return err
		}

		if !Truthy(resolution.Data[SatisfactoryFlag]) || updated.Status == models.StatusClosed {
			return nil
		}

		closed = true
		updated.Status = models.StatusClosed
		updated.ClosedAt = timePtr(s.now())
		if err := tx.SaveComplaint(ctx, &updated); err != nil {
			return err
		}
		notes := "Closed after positive feedback"
		return writeHistory(ctx, tx, c.ID, statusPtr(models.StatusResolved), models.StatusClosed, &notes, actor)
	})
	if err != nil {
		return nil, err
	}
	*c = updated

	if closed {
		metrics.RecordTransition(string(models.StatusResolved), string(models.StatusClosed))
		s.Logger.Info("complaint closed after feedback", zap.Uint("complaint_id", c.ID))
		s.notifyCreator(ctx, c, string(prior))
	}
	return s.Storage.FindComplaintDetailed(ctx, c.ID)
}

func requireResolution(ctx context.Context, tx storage.Storage, c *models.Complaint) (*models.Resolution, error) {
	resolution, err := tx.FindResolution(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	if resolution == nil {
		return nil, apperror.InvalidState("complaint %s has no resolution", c.ComplaintNumber)
	}
	return resolution, nil
}

// Truthy interprets a loosely typed flag the way form and JSON clients send
// it: true, a non-zero number, or one of "1", "true", "yes", "on".
func Truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "true", "yes", "on":
			return true
		}
		return false
	case float64:
		return val != 0
	case float32:
		return val != 0
	case int:
		return val != 0
	case int64:
		return val != 0
	case int32:
		return val != 0
	case uint:
		return val != 0
	case uint64:
		return val != 0
	}
	return false
}
