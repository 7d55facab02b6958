package storage

import (
	"context"
	"errors"
	"fmt"

	"hrdesk/backend/internal/apperror"
	"hrdesk/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ComplaintNumbersWithPrefix returns every complaint number starting with
// prefix, soft-deleted complaints included.
func (s *Service) ComplaintNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	var numbers []string
	err := s.DB.WithContext(ctx).Unscoped().
		Model(&models.Complaint{}).
		Where("complaint_number LIKE ?", prefix+"%").
		Pluck("complaint_number", &numbers).Error
	if err != nil {
		return nil, fmt.Errorf("list complaint numbers: %w", err)
	}
	return numbers, nil
}

func (s *Service) CreateComplaint(ctx context.Context, complaint *models.Complaint) error {
	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Create(complaint).Error; err != nil {
		return fmt.Errorf("create complaint: %w", err)
	}
	return nil
}

func (s *Service) FindComplaint(ctx context.Context, id uint) (*models.Complaint, error) {
	return s.findComplaint(s.DB.WithContext(ctx), id)
}

func (s *Service) FindComplaintWithTrashed(ctx context.Context, id uint) (*models.Complaint, error) {
	return s.findComplaint(s.DB.WithContext(ctx).Unscoped(), id)
}

// FindComplaintDetailed loads a complaint with every relation the API returns.
func (s *Service) FindComplaintDetailed(ctx context.Context, id uint) (*models.Complaint, error) {
	db := s.DB.WithContext(ctx).
		Preload("Employee").
		Preload("Subjects", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Documents", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("StatusHistory", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") }).
		Preload("Escalations", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Resolution")
	return s.findComplaint(db, id)
}

func (s *Service) findComplaint(db *gorm.DB, id uint) (*models.Complaint, error) {
	var complaint models.Complaint
	err := db.First(&complaint, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("complaint", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find complaint %d: %w", id, err)
	}
	return &complaint, nil
}

// SaveComplaint writes every column of the complaint row. Loaded relations
// are left alone; they have their own writers.
func (s *Service) SaveComplaint(ctx context.Context, complaint *models.Complaint) error {
	if err := s.DB.WithContext(ctx).Omit(clause.Associations).Save(complaint).Error; err != nil {
		return fmt.Errorf("save complaint %d: %w", complaint.ID, err)
	}
	return nil
}

func (s *Service) DeleteComplaint(ctx context.Context, complaint *models.Complaint) error {
	if err := s.DB.WithContext(ctx).Delete(complaint).Error; err != nil {
		return fmt.Errorf("delete complaint %d: %w", complaint.ID, err)
	}
	return nil
}

func (s *Service) RestoreComplaint(ctx context.Context, complaint *models.Complaint) error {
	err := s.DB.WithContext(ctx).Unscoped().
		Model(complaint).
		Update("deleted_at", nil).Error
	if err != nil {
		return fmt.Errorf("restore complaint %d: %w", complaint.ID, err)
	}
	complaint.DeletedAt = gorm.DeletedAt{}
	return nil
}

// ForceDeleteComplaint removes the complaint row and every dependent row.
func (s *Service) ForceDeleteComplaint(ctx context.Context, complaint *models.Complaint) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dependents := []any{
			&models.StatusHistory{},
			&models.Escalation{},
			&models.Resolution{},
			&models.Subject{},
			&models.Comment{},
			&models.Document{},
			&models.Reminder{},
		}
		for _, model := range dependents {
			if err := tx.Where("complaint_id = ?", complaint.ID).Delete(model).Error; err != nil {
				return fmt.Errorf("force delete complaint %d dependents: %w", complaint.ID, err)
			}
		}
		if err := tx.Unscoped().Delete(complaint).Error; err != nil {
			return fmt.Errorf("force delete complaint %d: %w", complaint.ID, err)
		}
		return nil
	})
}

func (s *Service) CreateStatusHistory(ctx context.Context, entry *models.StatusHistory) error {
	if err := s.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create status history for complaint %d: %w", entry.ComplaintID, err)
	}
	return nil
}

func (s *Service) CountEscalations(ctx context.Context, complaintID uint) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).
		Model(&models.Escalation{}).
		Where("complaint_id = ?", complaintID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count escalations for complaint %d: %w", complaintID, err)
	}
	return count, nil
}

func (s *Service) CreateEscalation(ctx context.Context, escalation *models.Escalation) error {
	if err := s.DB.WithContext(ctx).Create(escalation).Error; err != nil {
		return fmt.Errorf("create escalation for complaint %d: %w", escalation.ComplaintID, err)
	}
	return nil
}

func (s *Service) FindResolution(ctx context.Context, complaintID uint) (*models.Resolution, error) {
	var resolution models.Resolution
	err := s.DB.WithContext(ctx).Where("complaint_id = ?", complaintID).First(&resolution).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find resolution for complaint %d: %w", complaintID, err)
	}
	return &resolution, nil
}

func (s *Service) CreateResolution(ctx context.Context, resolution *models.Resolution) error {
	if err := s.DB.WithContext(ctx).Create(resolution).Error; err != nil {
		return fmt.Errorf("create resolution for complaint %d: %w", resolution.ComplaintID, err)
	}
	return nil
}

func (s *Service) SaveResolution(ctx context.Context, resolution *models.Resolution) error {
	if err := s.DB.WithContext(ctx).Save(resolution).Error; err != nil {
		return fmt.Errorf("save resolution %d: %w", resolution.ID, err)
	}
	return nil
}

func (s *Service) ListSubjects(ctx context.Context, complaintID uint) ([]models.Subject, error) {
	var subjects []models.Subject
	err := s.DB.WithContext(ctx).Where("complaint_id = ?", complaintID).Order("id ASC").Find(&subjects).Error
	if err != nil {
		return nil, fmt.Errorf("list subjects for complaint %d: %w", complaintID, err)
	}
	return subjects, nil
}

func (s *Service) FindSubject(ctx context.Context, complaintID, id uint) (*models.Subject, error) {
	var subject models.Subject
	if err := findChild(s.DB.WithContext(ctx), &subject, complaintID, id); err != nil || subject.ID == 0 {
		return nil, err
	}
	return &subject, nil
}

func (s *Service) SaveSubject(ctx context.Context, subject *models.Subject) error {
	if err := s.DB.WithContext(ctx).Save(subject).Error; err != nil {
		return fmt.Errorf("save subject: %w", err)
	}
	return nil
}

func (s *Service) DeleteSubject(ctx context.Context, subject *models.Subject) error {
	if err := s.DB.WithContext(ctx).Delete(subject).Error; err != nil {
		return fmt.Errorf("delete subject %d: %w", subject.ID, err)
	}
	return nil
}

func (s *Service) FindComment(ctx context.Context, complaintID, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := findChild(s.DB.WithContext(ctx), &comment, complaintID, id); err != nil || comment.ID == 0 {
		return nil, err
	}
	return &comment, nil
}

func (s *Service) SaveComment(ctx context.Context, comment *models.Comment) error {
	if err := s.DB.WithContext(ctx).Save(comment).Error; err != nil {
		return fmt.Errorf("save comment: %w", err)
	}
	return nil
}

func (s *Service) DeleteComment(ctx context.Context, comment *models.Comment) error {
	if err := s.DB.WithContext(ctx).Delete(comment).Error; err != nil {
		return fmt.Errorf("delete comment %d: %w", comment.ID, err)
	}
	return nil
}

func (s *Service) ListDocuments(ctx context.Context, complaintID uint) ([]models.Document, error) {
	var documents []models.Document
	err := s.DB.WithContext(ctx).Where("complaint_id = ?", complaintID).Order("id ASC").Find(&documents).Error
	if err != nil {
		return nil, fmt.Errorf("list documents for complaint %d: %w", complaintID, err)
	}
	return documents, nil
}

func (s *Service) FindDocument(ctx context.Context, complaintID, id uint) (*models.Document, error) {
	var document models.Document
	if err := findChild(s.DB.WithContext(ctx), &document, complaintID, id); err != nil || document.ID == 0 {
		return nil, err
	}
	return &document, nil
}

func (s *Service) SaveDocument(ctx context.Context, document *models.Document) error {
	if err := s.DB.WithContext(ctx).Save(document).Error; err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func (s *Service) DeleteDocument(ctx context.Context, document *models.Document) error {
	if err := s.DB.WithContext(ctx).Delete(document).Error; err != nil {
		return fmt.Errorf("delete document %d: %w", document.ID, err)
	}
	return nil
}

// findChild loads a sub-resource scoped to its complaint. A missing row
// leaves dest untouched and returns nil.
func findChild(db *gorm.DB, dest any, complaintID, id uint) error {
	err := db.Where("complaint_id = ? AND id = ?", complaintID, id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("find %T %d: %w", dest, id, err)
	}
	return nil
}

func (s *Service) FindEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	var employee models.Employee
	err := s.DB.WithContext(ctx).First(&employee, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find employee %d: %w", id, err)
	}
	return &employee, nil
}

func (s *Service) FindUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &user, nil
}

func (s *Service) CreateReminder(ctx context.Context, reminder *models.Reminder) error {
	if err := s.DB.WithContext(ctx).Create(reminder).Error; err != nil {
		return fmt.Errorf("create reminder: %w", err)
	}
	return nil
}

func (s *Service) FindReminder(ctx context.Context, id uint) (*models.Reminder, error) {
	var reminder models.Reminder
	err := s.DB.WithContext(ctx).First(&reminder, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperror.NotFound("reminder", id)
	}
	if err != nil {
		return nil, fmt.Errorf("find reminder %d: %w", id, err)
	}
	return &reminder, nil
}

func (s *Service) SaveReminder(ctx context.Context, reminder *models.Reminder) error {
	if err := s.DB.WithContext(ctx).Save(reminder).Error; err != nil {
		return fmt.Errorf("save reminder %d: %w", reminder.ID, err)
	}
	return nil
}
