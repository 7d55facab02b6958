package models

import (
	"time"

	"gorm.io/datatypes"
)

// Resolution holds the free-form resolution payload of a complaint. There is
// at most one per complaint; complainant feedback is merged into Data.
type Resolution struct {
	ID          uint              `gorm:"primaryKey" json:"id"`
	ComplaintID uint              `gorm:"uniqueIndex;not null" json:"complaint_id"`
	Data        datatypes.JSONMap `gorm:"type:jsonb" json:"data"`
	ResolvedBy  string            `json:"resolved_by"`
	ResolvedAt  time.Time         `json:"resolved_at"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Resolution) TableName() string {
	return "complaint_resolutions"
}

// Merge shallow-merges data into the payload. Incoming keys overwrite
// existing ones; untouched keys are kept.
func (r *Resolution) Merge(data map[string]any) {
	if r.Data == nil {
		r.Data = datatypes.JSONMap{}
	}
	for k, v := range data {
		r.Data[k] = v
	}
}
