// Package reminder schedules complaint reminders on a delayed job queue and
// delivers them when they fall due.
package reminder

import (
	"context"
	"strconv"
	"time"

	"hrdesk/backend/internal/apperror"
	"hrdesk/backend/internal/config"
	"hrdesk/backend/internal/metrics"
	"hrdesk/backend/internal/models"
	"hrdesk/backend/internal/notify"

	"go.uber.org/zap"
)

// Store is the persistence the reminders need.
type Store interface {
	FindComplaint(ctx context.Context, id uint) (*models.Complaint, error)
	CreateReminder(ctx context.Context, reminder *models.Reminder) error
	FindReminder(ctx context.Context, id uint) (*models.Reminder, error)
	SaveReminder(ctx context.Context, reminder *models.Reminder) error
}

// Scheduler is a delayed job set. Scheduling a member again moves it to the
// new time, so each reminder has at most one pending job.
type Scheduler interface {
	ScheduleAt(ctx context.Context, queue, member string, at time.Time) error
	Due(ctx context.Context, queue string, now time.Time, limit int64) ([]string, error)
	Ack(ctx context.Context, queue, member string) error
}

// Input describes a new reminder.
type Input struct {
	ComplaintID uint      `json:"complaint_id"`
	UserID      string    `json:"user_id"`
	RemindAt    time.Time `json:"remind_at"`
	Note        string    `json:"note"`
}

// UpdateInput changes the present fields of a reminder.
type UpdateInput struct {
	UserID   *string    `json:"user_id"`
	RemindAt *time.Time `json:"remind_at"`
	Note     *string    `json:"note"`
}

// Service creates reminders and delivers the due ones.
type Service struct {
	store    Store
	queue    Scheduler
	notifier notify.Notifier
	logger   *zap.Logger
	queueKey string
	backoff  time.Duration
}

func NewService(store Store, queue Scheduler, n notify.Notifier, logger *zap.Logger) *Service {
	return &Service{
		store:    store,
		queue:    queue,
		notifier: n,
		logger:   logger,
		queueKey: config.ReminderQueueKey,
		backoff:  config.ReminderRetryBackoff,
	}
}

// Create stores a reminder for an existing complaint and schedules it.
func (s *Service) Create(ctx context.Context, createdBy string, in Input) (*models.Reminder, error) {
	if in.UserID == "" {
		return nil, apperror.InvalidState("reminder needs a recipient")
	}
	if in.RemindAt.IsZero() {
		return nil, apperror.InvalidState("reminder needs a time")
	}
	if _, err := s.store.FindComplaint(ctx, in.ComplaintID); err != nil {
		return nil, err
	}

	reminder := &models.Reminder{
		ComplaintID: in.ComplaintID,
		UserID:      in.UserID,
		RemindAt:    in.RemindAt,
		Note:        in.Note,
		CreatedBy:   createdBy,
	}
	if err := s.store.CreateReminder(ctx, reminder); err != nil {
		return nil, err
	}
	if err := s.schedule(ctx, reminder); err != nil {
		return nil, err
	}
	return reminder, nil
}

// Update applies the present fields and reschedules the reminder. Moving the
// time re-arms a reminder that was already sent.
func (s *Service) Update(ctx context.Context, id uint, in UpdateInput) (*models.Reminder, error) {
	reminder, err := s.store.FindReminder(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.UserID != nil {
		if *in.UserID == "" {
			return nil, apperror.InvalidState("reminder needs a recipient")
		}
		reminder.UserID = *in.UserID
	}
	if in.Note != nil {
		reminder.Note = *in.Note
	}
	if in.RemindAt != nil && !in.RemindAt.Equal(reminder.RemindAt) {
		reminder.RemindAt = *in.RemindAt
		reminder.SentAt = nil
	}

	if err := s.store.SaveReminder(ctx, reminder); err != nil {
		return nil, err
	}
	if reminder.SentAt == nil {
		if err := s.schedule(ctx, reminder); err != nil {
			return nil, err
		}
	}
	return reminder, nil
}

func (s *Service) schedule(ctx context.Context, reminder *models.Reminder) error {
	member := strconv.FormatUint(uint64(reminder.ID), 10)
	if err := s.queue.ScheduleAt(ctx, s.queueKey, member, reminder.RemindAt); err != nil {
		return err
	}
	s.logger.Debug("reminder scheduled",
		zap.Uint("reminder_id", reminder.ID),
		zap.Time("remind_at", reminder.RemindAt),
	)
	return nil
}

// Process delivers up to limit reminders due at now and returns how many were
// sent. Jobs whose reminder or complaint is gone are dropped. A job that fails
// is pushed back by the retry backoff so it does not hold the head of the
// queue.
func (s *Service) Process(ctx context.Context, now time.Time, limit int64) (int, error) {
	members, err := s.queue.Due(ctx, s.queueKey, now, limit)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, member := range members {
		ok, err := s.deliver(ctx, member, now)
		if err != nil {
			metrics.ReminderProcessTotal.WithLabelValues("failed").Inc()
			s.logger.Warn("reminder delivery failed",
				zap.String("member", member),
				zap.Error(err),
			)
			if err := s.queue.ScheduleAt(ctx, s.queueKey, member, now.Add(s.backoff)); err != nil {
				return sent, err
			}
			continue
		}
		if ok {
			sent++
			metrics.ReminderProcessTotal.WithLabelValues("sent").Inc()
		} else {
			metrics.ReminderProcessTotal.WithLabelValues("dropped").Inc()
		}
		if err := s.queue.Ack(ctx, s.queueKey, member); err != nil {
			return sent, err
		}
	}
	return sent, nil
}

// deliver reports false for jobs that should be dropped without sending.
func (s *Service) deliver(ctx context.Context, member string, now time.Time) (bool, error) {
	id, err := strconv.ParseUint(member, 10, 64)
	if err != nil {
		return false, nil
	}

	reminder, err := s.store.FindReminder(ctx, uint(id))
	if apperror.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if reminder.SentAt != nil {
		return false, nil
	}

	complaint, err := s.store.FindComplaint(ctx, reminder.ComplaintID)
	if apperror.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	err = s.notifier.Notify(ctx, notify.Event{
		Type:            notify.EventReminderDue,
		Recipient:       notify.UserRecipient(reminder.UserID),
		ComplaintID:     complaint.ID,
		ComplaintNumber: complaint.ComplaintNumber,
		CurrentStatus:   string(complaint.Status),
		Note:            reminder.Note,
		OccurredAt:      now,
	})
	if err != nil {
		return false, err
	}

	reminder.SentAt = &now
	if err := s.store.SaveReminder(ctx, reminder); err != nil {
		return false, err
	}
	s.logger.Info("reminder sent",
		zap.Uint("reminder_id", reminder.ID),
		zap.Uint("complaint_id", complaint.ID),
	)
	return true, nil
}
