package models

import "time"

// Subject is a person a complaint is raised about.
type Subject struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ComplaintID  uint      `gorm:"index;not null" json:"complaint_id"`
	EmployeeID   *uint     `json:"employee_id"`
	Name         string    `gorm:"size:255" json:"name"`
	Relationship string    `gorm:"size:100" json:"relationship"`
	Description  string    `gorm:"type:text" json:"description"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Subject) TableName() string {
	return "complaint_subjects"
}

// Comment is a note left on a complaint by a user.
type Comment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ComplaintID uint      `gorm:"index;not null" json:"complaint_id"`
	UserID      string    `json:"user_id"`
	Body        string    `gorm:"type:text" json:"body"`
	IsInternal  bool      `json:"is_internal"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Comment) TableName() string {
	return "complaint_comments"
}

// Document is a file attached to a complaint. FilePath is relative to Disk.
type Document struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ComplaintID  uint      `gorm:"index;not null" json:"complaint_id"`
	Title        string    `gorm:"size:255" json:"title"`
	DocType      string    `gorm:"size:50" json:"doc_type"`
	Disk         string    `gorm:"size:50" json:"disk"`
	FilePath     string    `gorm:"size:500" json:"file_path"`
	OriginalName string    `gorm:"size:255" json:"original_name"`
	MimeType     string    `gorm:"size:100" json:"mime_type"`
	Size         int64     `json:"size"`
	UploadedBy   string    `json:"uploaded_by"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Document) TableName() string {
	return "complaint_documents"
}
