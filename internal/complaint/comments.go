package complaint

import (
	"context"

	"hrdesk/backend/internal/models"
	"hrdesk/backend/internal/storage"
)

// CommentItem is a staged change to a complaint comment.
type CommentItem struct {
	Markers
	Body       string `json:"body"`
	IsInternal Flag   `json:"is_internal"`
}

// syncComments applies explicitly marked items only. Comments absent from the
// list are kept.
func (s *Service) syncComments(ctx context.Context, tx storage.Storage, actor Actor, c *models.Complaint, items []CommentItem) error {
	for _, item := range items {
		op := Classify(item.Markers)
		switch op.Kind {
		case OpDelete:
			comment, err := tx.FindComment(ctx, c.ID, op.ID)
			if err != nil {
				return err
			}
			if comment == nil {
				continue
			}
			if err := tx.DeleteComment(ctx, comment); err != nil {
				return err
			}

		case OpCreate:
			comment := &models.Comment{
				ComplaintID: c.ID,
				UserID:      actor.UserID,
				Body:        item.Body,
				IsInternal:  bool(item.IsInternal),
			}
			if err := tx.SaveComment(ctx, comment); err != nil {
				return err
			}

		case OpModify:
			comment, err := tx.FindComment(ctx, c.ID, op.ID)
			if err != nil {
				return err
			}
			if comment == nil {
				continue
			}
			comment.Body = item.Body
			comment.IsInternal = bool(item.IsInternal)
			if err := tx.SaveComment(ctx, comment); err != nil {
				return err
			}

		default:
			continue
		}
		recordSync("comments", op.Kind)
	}
	return nil
}
