// Package notify dispatches complaint workflow events to people. Delivery
// (email, chat, push) belongs to whatever subscribes to the published events.
package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hrdesk/backend/internal/localization"
	"hrdesk/backend/internal/metrics"

	"go.uber.org/zap"
)

// EventType names what happened to a complaint.
type EventType string

const (
	EventStatusChanged EventType = "status_changed"
	EventEscalated     EventType = "escalated"
	EventReminderDue   EventType = "reminder_due"
)

// ErrNoRecipient is returned by Notify for an event with an empty recipient.
var ErrNoRecipient = errors.New("notification has no recipient")

// Recipient is either a user account or a raw email address with a display
// name.
type Recipient struct {
	UserID *string `json:"user_id,omitempty"`
	Email  string  `json:"email,omitempty"`
	Name   string  `json:"name,omitempty"`
}

// UserRecipient addresses a user account.
func UserRecipient(userID string) Recipient {
	return Recipient{UserID: &userID}
}

// EmailRecipient addresses a raw email address.
func EmailRecipient(email, name string) Recipient {
	return Recipient{Email: email, Name: name}
}

// Empty reports whether r addresses nobody.
func (r Recipient) Empty() bool {
	return (r.UserID == nil || *r.UserID == "") && r.Email == ""
}

// Event is the payload published for one recipient.
type Event struct {
	Type            EventType `json:"type"`
	Recipient       Recipient `json:"recipient"`
	ComplaintID     uint      `json:"complaint_id"`
	ComplaintNumber string    `json:"complaint_number"`
	PreviousStatus  string    `json:"previous_status,omitempty"`
	CurrentStatus   string    `json:"current_status,omitempty"`
	Note            string    `json:"note,omitempty"`
	Message         string    `json:"message"`
	OccurredAt      time.Time `json:"occurred_at"`
}

// Notifier delivers an event to its recipient.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Publisher is the pub/sub side of storage.Queue.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// RedisNotifier renders the event text and publishes the event on a Redis
// channel.
type RedisNotifier struct {
	publisher Publisher
	localizer *localization.Localizer
	channel   string
	language  string
	logger    *zap.Logger
}

// NewRedisNotifier creates a notifier publishing on channel. Messages are
// rendered in language.
func NewRedisNotifier(p Publisher, l *localization.Localizer, channel, language string, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{
		publisher: p,
		localizer: l,
		channel:   channel,
		language:  language,
		logger:    logger,
	}
}

func (n *RedisNotifier) Notify(ctx context.Context, event Event) error {
	if event.Recipient.Empty() {
		metrics.RecordNotification(string(event.Type), "skipped")
		return ErrNoRecipient
	}
	if event.Message == "" {
		event.Message = n.render(event)
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if err := n.publisher.Publish(ctx, n.channel, event); err != nil {
		metrics.RecordNotification(string(event.Type), "failed")
		return fmt.Errorf("notify %s for complaint %d: %w", event.Type, event.ComplaintID, err)
	}

	metrics.RecordNotification(string(event.Type), "sent")
	n.logger.Debug("notification published",
		zap.String("type", string(event.Type)),
		zap.Uint("complaint_id", event.ComplaintID),
		zap.String("channel", n.channel),
	)
	return nil
}

func (n *RedisNotifier) render(event Event) string {
	switch event.Type {
	case EventEscalated:
		return n.localizer.Format(n.language, "complaint.escalated", event.ComplaintNumber)
	case EventReminderDue:
		return n.localizer.Format(n.language, "reminder.due", event.ComplaintNumber, event.Note)
	default:
		return n.localizer.Format(n.language, "complaint.status_changed",
			event.ComplaintNumber,
			n.localizer.Status(n.language, event.PreviousStatus),
			n.localizer.Status(n.language, event.CurrentStatus),
		)
	}
}
