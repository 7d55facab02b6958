// Package complaint implements the complaint lifecycle: numbering, creation
// and update, status transitions, escalation, resolution and the
// reconciliation of staged sub-resource changes sent by clients.
//
// Every compound write (a complaint mutation together with its audit history
// or dependent rows) runs inside one storage transaction. Notifications go
// out after the transaction commits and never fail the operation.
package complaint

import (
	"context"
	"time"

	"hrdesk/backend/internal/apperror"
	"hrdesk/backend/internal/config"
	"hrdesk/backend/internal/filestore"
	"hrdesk/backend/internal/metrics"
	"hrdesk/backend/internal/models"
	"hrdesk/backend/internal/notify"
	"hrdesk/backend/internal/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles the business logic for complaints.
type Service struct {
	Storage       storage.Storage
	Notifier      notify.Notifier
	Disks         *filestore.Manager
	DocumentsDisk string
	Logger        *zap.Logger

	now    func() time.Time
	suffix func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithDocumentsDisk selects the disk new documents are stored on.
func WithDocumentsDisk(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.DocumentsDisk = name
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a new complaint service.
func NewService(st storage.Storage, n notify.Notifier, disks *filestore.Manager, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		Storage:       st,
		Notifier:      n,
		Disks:         disks,
		DocumentsDisk: config.DefaultDocumentsDisk,
		Logger:        logger,
		now:           time.Now,
		suffix:        randomSuffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func randomSuffix() string {
	return uuid.NewString()[:8]
}

// CreateInput carries the fields a complaint is filed with.
type CreateInput struct {
	EmployeeID   *uint           `json:"employee_id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Category     string          `json:"category"`
	IncidentDate *time.Time      `json:"incident_date"`
	Priority     models.Priority `json:"priority"`
	Status       models.Status   `json:"status"`
	AssignedTo   *string         `json:"assigned_to"`
	DueDate      *time.Time      `json:"due_date"`
	SLAHours     *int            `json:"sla_hours"`
}

// UpdateInput carries the editable scalar fields and the staged changes of the
// sub-resources. A nil field is left alone. Status is not editable here; it
// only moves through the transition operations.
type UpdateInput struct {
	Title        *string          `json:"title"`
	Description  *string          `json:"description"`
	Category     *string          `json:"category"`
	IncidentDate *time.Time       `json:"incident_date"`
	Priority     *models.Priority `json:"priority"`
	AssignedTo   *string          `json:"assigned_to"`
	DueDate      *time.Time       `json:"due_date"`
	SLAHours     *int             `json:"sla_hours"`

	Subjects  []SubjectItem  `json:"subjects"`
	Comments  []CommentItem  `json:"comments"`
	Documents []DocumentItem `json:"documents"`
}

// Create files a complaint with a freshly generated number and writes its
// initial history entry. Both rows are written in one transaction; an error
// from either is returned unchanged.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (*models.Complaint, error) {
	status := in.Status
	if status == "" {
		status = models.StatusDraft
	}
	if !status.Valid() {
		return nil, apperror.InvalidState("unknown complaint status %q", status)
	}
	priority := in.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !priority.Valid() {
		return nil, apperror.InvalidState("unknown complaint priority %q", priority)
	}

	employeeID := in.EmployeeID
	if employeeID == nil {
		employeeID = actor.EmployeeID
	}

	c := &models.Complaint{
		EmployeeID:   employeeID,
		Title:        in.Title,
		Description:  in.Description,
		Category:     in.Category,
		IncidentDate: in.IncidentDate,
		Status:       status,
		Priority:     priority,
		AssignedTo:   in.AssignedTo,
		DueDate:      in.DueDate,
		SLAHours:     in.SLAHours,
		CreatedBy:    stringPtr(actor.UserID),
	}

	err := s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		number, err := GenerateNumber(ctx, tx, s.now())
		if err != nil {
			return err
		}
		c.ComplaintNumber = number

		if err := tx.CreateComplaint(ctx, c); err != nil {
			return err
		}
		return writeHistory(ctx, tx, c.ID, nil, status, nil, actor)
	})
	if err != nil {
		return nil, err
	}

	metrics.ComplaintCreatedTotal.WithLabelValues(string(status)).Inc()
	metrics.RecordTransition("", string(status))
	s.Logger.Info("complaint created",
		zap.Uint("complaint_id", c.ID),
		zap.String("number", c.ComplaintNumber),
		zap.String("status", string(status)),
	)
	return c, nil
}

// Update applies the present scalar fields and reconciles the staged
// sub-resource changes in one transaction. File operations on documents are
// not part of that transaction.
func (s *Service) Update(ctx context.Context, actor Actor, id uint, in UpdateInput) (*models.Complaint, error) {
	if in.Priority != nil && !in.Priority.Valid() {
		return nil, apperror.InvalidState("unknown complaint priority %q", *in.Priority)
	}

	err := s.Storage.Transaction(ctx, func(tx storage.Storage) error {
		c, err := tx.FindComplaint(ctx, id)
		if err != nil {
			return err
		}

		applyUpdate(c, in)
		if err := tx.SaveComplaint(ctx, c); err != nil {
			return err
		}

		if in.Subjects != nil {
			if err := s.syncSubjects(ctx, tx, c, in.Subjects); err != nil {
				return err
			}
		}
		if in.Comments != nil {
			if err := s.syncComments(ctx, tx, actor, c, in.Comments); err != nil {
				return err
			}
		}
		if in.Documents != nil {
			if err := s.syncDocuments(ctx, tx, actor, c, in.Documents); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Storage.FindComplaintDetailed(ctx, id)
}

func applyUpdate(c *models.Complaint, in UpdateInput) {
	if in.Title != nil {
		c.Title = *in.Title
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Category != nil {
		c.Category = *in.Category
	}
	if in.IncidentDate != nil {
		c.IncidentDate = in.IncidentDate
	}
	if in.Priority != nil {
		c.Priority = *in.Priority
	}
	if in.AssignedTo != nil {
		c.AssignedTo = in.AssignedTo
	}
	if in.DueDate != nil {
		c.DueDate = in.DueDate
	}
	if in.SLAHours != nil {
		c.SLAHours = in.SLAHours
	}
}

// Get loads a complaint with every relation.
func (s *Service) Get(ctx context.Context, id uint) (*models.Complaint, error) {
	return s.Storage.FindComplaintDetailed(ctx, id)
}

// Find loads the complaint row without relations.
func (s *Service) Find(ctx context.Context, id uint) (*models.Complaint, error) {
	return s.Storage.FindComplaint(ctx, id)
}

// Delete moves a complaint to the trash.
func (s *Service) Delete(ctx context.Context, id uint) error {
	c, err := s.Storage.FindComplaint(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Storage.DeleteComplaint(ctx, c); err != nil {
		return err
	}
	s.Logger.Info("complaint deleted", zap.Uint("complaint_id", id))
	return nil
}

// Restore brings a trashed complaint back.
func (s *Service) Restore(ctx context.Context, id uint) (*models.Complaint, error) {
	c, err := s.Storage.FindComplaintWithTrashed(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.Storage.RestoreComplaint(ctx, c); err != nil {
		return nil, err
	}
	s.Logger.Info("complaint restored", zap.Uint("complaint_id", id))
	return c, nil
}

// ForceDelete permanently removes a complaint, trashed or not, with its
// dependent rows. Stored document files are removed afterwards on a best
// effort basis.
func (s *Service) ForceDelete(ctx context.Context, id uint) error {
	c, err := s.Storage.FindComplaintWithTrashed(ctx, id)
	if err != nil {
		return err
	}
	documents, err := s.Storage.ListDocuments(ctx, c.ID)
	if err != nil {
		return err
	}
	if err := s.Storage.ForceDeleteComplaint(ctx, c); err != nil {
		return err
	}

	for i := range documents {
		if err := s.deleteFile(ctx, &documents[i]); err != nil {
			s.Logger.Warn("failed to remove document file",
				zap.Uint("complaint_id", id),
				zap.String("path", documents[i].FilePath),
				zap.Error(err),
			)
		}
	}
	s.Logger.Info("complaint force deleted", zap.Uint("complaint_id", id))
	return nil
}

// writeHistory appends one audit entry. from is nil for the initial status.
func writeHistory(ctx context.Context, tx storage.Storage, complaintID uint, from *models.Status, to models.Status, notes *string, actor Actor) error {
	return tx.CreateStatusHistory(ctx, &models.StatusHistory{
		ComplaintID: complaintID,
		FromStatus:  from,
		ToStatus:    to,
		Notes:       notes,
		ChangedBy:   actor.UserID,
	})
}

// notifyCreator tells the complaint's employee about a status change. The
// employee's linked user is preferred, then the employee's email. Without
// either the notification is skipped.
func (s *Service) notifyCreator(ctx context.Context, c *models.Complaint, previous string) {
	recipient, ok := s.creatorRecipient(ctx, c)
	if !ok {
		metrics.RecordNotification(string(notify.EventStatusChanged), "skipped")
		return
	}

	err := s.Notifier.Notify(ctx, notify.Event{
		Type:            notify.EventStatusChanged,
		Recipient:       recipient,
		ComplaintID:     c.ID,
		ComplaintNumber: c.ComplaintNumber,
		PreviousStatus:  previous,
		CurrentStatus:   string(c.Status),
		OccurredAt:      s.now(),
	})
	if err != nil {
		s.Logger.Warn("failed to notify complaint creator",
			zap.Uint("complaint_id", c.ID),
			zap.Error(err),
		)
	}
}

func (s *Service) creatorRecipient(ctx context.Context, c *models.Complaint) (notify.Recipient, bool) {
	if c.EmployeeID == nil {
		return notify.Recipient{}, false
	}
	employee, err := s.Storage.FindEmployee(ctx, *c.EmployeeID)
	if err != nil {
		s.Logger.Warn("failed to load complaint employee",
			zap.Uint("complaint_id", c.ID),
			zap.Error(err),
		)
		return notify.Recipient{}, false
	}
	if employee == nil {
		return notify.Recipient{}, false
	}
	if employee.UserID != nil && *employee.UserID != "" {
		return notify.UserRecipient(*employee.UserID), true
	}
	if employee.Email != "" {
		return notify.EmailRecipient(employee.Email, employee.FullName()), true
	}
	return notify.Recipient{}, false
}

func stringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func statusPtr(v models.Status) *models.Status {
	return &v
}

func timePtr(v time.Time) *time.Time {
	return &v
}
