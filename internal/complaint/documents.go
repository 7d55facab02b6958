package complaint

import (
	"context"
	"fmt"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"hrdesk/backend/internal/apperror"
	"hrdesk/backend/internal/config"
	"hrdesk/backend/internal/models"
	"hrdesk/backend/internal/storage"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const fileTimestampLayout = "20060102150405"

// Upload is a file sent with a document item. Content is base64 in JSON.
type Upload struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Content  []byte `json:"content"`
}

// DocumentItem is a staged change to a complaint document.
type DocumentItem struct {
	Markers
	Title   string  `json:"title"`
	DocType string  `json:"doc_type"`
	File    *Upload `json:"file"`
}

// syncDocuments applies explicitly marked items only. Stored files follow
// their rows: deleted before the row, replaced on a new upload and renamed
// when the title changes.
func (s *Service) syncDocuments(ctx context.Context, tx storage.Storage, actor Actor, c *models.Complaint, items []DocumentItem) error {
	for _, item := range items {
		op := Classify(item.Markers)
		switch op.Kind {
		case OpDelete:
			document, err := tx.FindDocument(ctx, c.ID, op.ID)
			if err != nil {
				return err
			}
			if document == nil {
				continue
			}
			if err := s.deleteFile(ctx, document); err != nil {
				return err
			}
			if err := tx.DeleteDocument(ctx, document); err != nil {
				return err
			}

		case OpCreate:
			if item.File == nil {
				return apperror.InvalidState("new document %q has no file", item.Title)
			}
			document := &models.Document{
				ComplaintID: c.ID,
				Title:       item.Title,
				DocType:     item.DocType,
			}
			if err := s.storeUpload(ctx, c, document, item.File, actor); err != nil {
				return err
			}
			if err := tx.SaveDocument(ctx, document); err != nil {
				return err
			}

		case OpModify:
			document, err := tx.FindDocument(ctx, c.ID, op.ID)
			if err != nil {
				return err
			}
			if document == nil {
				continue
			}
			if err := s.modifyDocument(ctx, c, document, item, actor); err != nil {
				return err
			}
			if err := tx.SaveDocument(ctx, document); err != nil {
				return err
			}

		default:
			continue
		}
		recordSync("documents", op.Kind)
	}
	return nil
}

func (s *Service) modifyDocument(ctx context.Context, c *models.Complaint, document *models.Document, item DocumentItem, actor Actor) error {
	titleChanged := item.Title != document.Title
	document.Title = item.Title
	document.DocType = item.DocType

	if item.File != nil {
		if err := s.deleteFile(ctx, document); err != nil {
			return err
		}
		return s.storeUpload(ctx, c, document, item.File, actor)
	}
	if !titleChanged || document.FilePath == "" {
		return nil
	}

	disk, err := s.Disks.Disk(document.Disk)
	if err != nil {
		return err
	}
	ext := filepath.Ext(document.OriginalName)
	if ext == "" {
		ext = filepath.Ext(document.FilePath)
	}
	target := s.documentPath(c, document.Title, document.DocType, ext)
	moved, err := disk.Move(ctx, document.FilePath, target)
	if err != nil {
		return fmt.Errorf("rename document %d: %w", document.ID, err)
	}
	if !moved {
		s.Logger.Warn("document file missing, path left unchanged",
			zap.Uint("document_id", document.ID),
			zap.String("path", document.FilePath),
		)
		return nil
	}
	document.FilePath = target
	return nil
}

// storeUpload writes the upload to the documents disk and points document at
// it.
func (s *Service) storeUpload(ctx context.Context, c *models.Complaint, document *models.Document, upload *Upload, actor Actor) error {
	disk, err := s.Disks.Disk(s.DocumentsDisk)
	if err != nil {
		return err
	}

	target := s.documentPath(c, document.Title, document.DocType, filepath.Ext(upload.Name))
	stored, err := disk.Store(ctx, target, upload.Content)
	if err != nil {
		return fmt.Errorf("store document for complaint %d: %w", c.ID, err)
	}

	mimeType := upload.MimeType
	if mimeType == "" {
		mimeType = http.DetectContentType(upload.Content)
	}

	document.Disk = s.DocumentsDisk
	document.FilePath = stored
	document.OriginalName = upload.Name
	document.MimeType = mimeType
	document.Size = int64(len(upload.Content))
	document.UploadedBy = actor.UserID
	return nil
}

func (s *Service) deleteFile(ctx context.Context, document *models.Document) error {
	if document.FilePath == "" {
		return nil
	}
	disk, err := s.Disks.Disk(document.Disk)
	if err != nil {
		return err
	}
	if _, err := disk.Delete(ctx, document.FilePath); err != nil {
		return fmt.Errorf("delete file of document %d: %w", document.ID, err)
	}
	return nil
}

// documentPath builds documents/{complaint}-{label}-{YmdHis}-{suffix}{ext}.
func (s *Service) documentPath(c *models.Complaint, title, docType, ext string) string {
	owner := c.ComplaintNumber
	if owner == "" {
		owner = fmt.Sprintf("complaint-%d", c.ID)
	}
	label := title
	if label == "" {
		label = docType
	}
	if label == "" {
		label = "document"
	}

	name := fmt.Sprintf("%s-%s-%s-%s%s",
		slugify(owner, "complaint"),
		slugify(label, "document"),
		s.now().Format(fileTimestampLayout),
		s.suffix(),
		ext,
	)
	return path.Join(config.DocumentsDirectory, name)
}

// slugify transliterates input to lowercase ASCII and joins its words with
// dashes. Underscores count as separators.
func slugify(input, fallback string) string {
	out := slug.Make(strings.ReplaceAll(input, "_", " "))
	if out == "" {
		return fallback
	}
	return out
}
