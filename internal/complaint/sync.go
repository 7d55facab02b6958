package complaint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"hrdesk/backend/internal/metrics"
)

// TempIDPrefix marks ids generated by the client for rows not saved yet.
const TempIDPrefix = "temp-"

// ItemID is a sub-resource id as sent by a client: a stored numeric id, a
// temp- id or nothing.
type ItemID string

func (id *ItemID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ItemID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a number or a string: %w", err)
	}
	*id = ItemID(n.String())
	return nil
}

// IsTemp reports whether the id was generated client-side.
func (id ItemID) IsTemp() bool {
	return strings.HasPrefix(string(id), TempIDPrefix)
}

// Stored returns the numeric id of a persisted row. Temp, empty and malformed
// ids are never looked up.
func (id ItemID) Stored() (uint, bool) {
	if id == "" || id.IsTemp() {
		return 0, false
	}
	n, err := strconv.ParseUint(string(id), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// Flag is a staged-change marker decoded with Truthy.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Flag(Truthy(v))
	return nil
}

// Markers are the staged-change controls every sub-resource item carries.
type Markers struct {
	ID         ItemID `json:"id"`
	IsNew      Flag   `json:"_isNew"`
	IsModified Flag   `json:"_isModified"`
	IsDeleted  Flag   `json:"_isDeleted"`
}

// OpKind is what a staged item asks the synchronizer to do.
type OpKind int

const (
	// OpSkip leaves storage alone.
	OpSkip OpKind = iota
	OpDelete
	OpCreate
	OpModify
	// OpKeep is an unmarked item naming a stored row.
	OpKeep
)

func (k OpKind) String() string {
	switch k {
	case OpDelete:
		return "delete"
	case OpCreate:
		return "create"
	case OpModify:
		return "modify"
	case OpKeep:
		return "keep"
	default:
		return "skip"
	}
}

// Op is a classified staged item. ID is set for delete, modify and keep.
type Op struct {
	Kind OpKind
	ID   uint
}

// Classify resolves the markers of an item into exactly one operation.
// Deletion wins over creation, creation over modification. Delete and modify
// only ever target stored ids.
func Classify(m Markers) Op {
	id, stored := m.ID.Stored()
	switch {
	case bool(m.IsDeleted):
		if stored {
			return Op{Kind: OpDelete, ID: id}
		}
		return Op{Kind: OpSkip}
	case bool(m.IsNew):
		return Op{Kind: OpCreate}
	case bool(m.IsModified):
		if stored {
			return Op{Kind: OpModify, ID: id}
		}
		return Op{Kind: OpSkip}
	case stored:
		return Op{Kind: OpKeep, ID: id}
	}
	return Op{Kind: OpSkip}
}

func recordSync(resource string, kind OpKind) {
	metrics.RecordSync(resource, kind.String())
}
