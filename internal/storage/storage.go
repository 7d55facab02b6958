package storage

import (
	"context"
	"time"

	"hrdesk/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Storage is the persistence contract of the complaint workflow.
//
// Find* lookups that the workflow treats as mandatory (complaint, reminder)
// return *apperror.NotFoundError. Lookups the workflow treats as optional
// (sub-resources, resolution, employee, user) return nil, nil when the row is
// absent.
type Storage interface {
	// Transaction runs fn against a Storage bound to a single database
	// transaction. Returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(tx Storage) error) error

	ComplaintNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error)
	CreateComplaint(ctx context.Context, complaint *models.Complaint) error
	FindComplaint(ctx context.Context, id uint) (*models.Complaint, error)
	FindComplaintWithTrashed(ctx context.Context, id uint) (*models.Complaint, error)
	FindComplaintDetailed(ctx context.Context, id uint) (*models.Complaint, error)
	SaveComplaint(ctx context.Context, complaint *models.Complaint) error
	DeleteComplaint(ctx context.Context, complaint *models.Complaint) error
	RestoreComplaint(ctx context.Context, complaint *models.Complaint) error
	ForceDeleteComplaint(ctx context.Context, complaint *models.Complaint) error

	CreateStatusHistory(ctx context.Context, entry *models.StatusHistory) error
	CountEscalations(ctx context.Context, complaintID uint) (int64, error)
	CreateEscalation(ctx context.Context, escalation *models.Escalation) error

	FindResolution(ctx context.Context, complaintID uint) (*models.Resolution, error)
	CreateResolution(ctx context.Context, resolution *models.Resolution) error
	SaveResolution(ctx context.Context, resolution *models.Resolution) error

	ListSubjects(ctx context.Context, complaintID uint) ([]models.Subject, error)
	FindSubject(ctx context.Context, complaintID, id uint) (*models.Subject, error)
	SaveSubject(ctx context.Context, subject *models.Subject) error
	DeleteSubject(ctx context.Context, subject *models.Subject) error

	FindComment(ctx context.Context, complaintID, id uint) (*models.Comment, error)
	SaveComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, comment *models.Comment) error

	ListDocuments(ctx context.Context, complaintID uint) ([]models.Document, error)
	FindDocument(ctx context.Context, complaintID, id uint) (*models.Document, error)
	SaveDocument(ctx context.Context, document *models.Document) error
	DeleteDocument(ctx context.Context, document *models.Document) error

	FindEmployee(ctx context.Context, id uint) (*models.Employee, error)
	FindUser(ctx context.Context, id string) (*models.User, error)

	CreateReminder(ctx context.Context, reminder *models.Reminder) error
	FindReminder(ctx context.Context, id uint) (*models.Reminder, error)
	SaveReminder(ctx context.Context, reminder *models.Reminder) error
}

// Queue is the Redis side of the service: event fan-out and a delayed job
// set keyed by member.
type Queue interface {
	Publish(ctx context.Context, channel string, payload any) error
	// ScheduleAt adds member to queue, due at the given time. Scheduling an
	// existing member moves it rather than duplicating it.
	ScheduleAt(ctx context.Context, queue, member string, at time.Time) error
	Due(ctx context.Context, queue string, now time.Time, limit int64) ([]string, error)
	Ack(ctx context.Context, queue, member string) error
}

// Service implements Storage on Postgres and Queue on Redis.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
	}
}

// Migrate creates or updates every table the workflow uses.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Employee{},
		&models.Complaint{},
		&models.StatusHistory{},
		&models.Escalation{},
		&models.Resolution{},
		&models.Subject{},
		&models.Comment{},
		&models.Document{},
		&models.Reminder{},
	)
}

func (s *Service) Transaction(ctx context.Context, fn func(tx Storage) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Service{DB: tx, Redis: s.Redis})
	})
}
