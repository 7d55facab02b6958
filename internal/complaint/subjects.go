package complaint

import (
	"context"

	"hrdesk/backend/internal/models"
	"hrdesk/backend/internal/storage"
)

// SubjectItem is a staged change to a complaint subject.
type SubjectItem struct {
	Markers
	EmployeeID   *uint  `json:"employee_id"`
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Description  string `json:"description"`
}

func (item SubjectItem) apply(subject *models.Subject) {
	subject.EmployeeID = item.EmployeeID
	subject.Name = item.Name
	subject.Relationship = item.Relationship
	subject.Description = item.Description
}

// syncSubjects applies the staged items and then deletes every stored subject
// the list no longer mentions. Unlike comments and documents, the list is the
// complete set of subjects.
func (s *Service) syncSubjects(ctx context.Context, tx storage.Storage, c *models.Complaint, items []SubjectItem) error {
	retained := make(map[uint]bool, len(items))

	for _, item := range items {
		op := Classify(item.Markers)
		switch op.Kind {
		case OpDelete:
			subject, err := tx.FindSubject(ctx, c.ID, op.ID)
			if err != nil {
				return err
			}
			if subject == nil {
				continue
			}
			if err := tx.DeleteSubject(ctx, subject); err != nil {
				return err
			}

		case OpCreate:
			subject := &models.Subject{ComplaintID: c.ID}
			item.apply(subject)
			if err := tx.SaveSubject(ctx, subject); err != nil {
				return err
			}
			retained[subject.ID] = true

		case OpModify:
			subject, err := tx.FindSubject(ctx, c.ID, op.ID)
			if err != nil {
				return err
			}
			if subject == nil {
				continue
			}
			item.apply(subject)
			if err := tx.SaveSubject(ctx, subject); err != nil {
				return err
			}
			retained[subject.ID] = true

		case OpKeep:
			retained[op.ID] = true
			continue

		default:
			continue
		}
		recordSync("subjects", op.Kind)
	}

	existing, err := tx.ListSubjects(ctx, c.ID)
	if err != nil {
		return err
	}
	for i := range existing {
		if retained[existing[i].ID] {
			continue
		}
		if err := tx.DeleteSubject(ctx, &existing[i]); err != nil {
			return err
		}
		recordSync("subjects", OpDelete)
	}
	return nil
}
