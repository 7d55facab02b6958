package complaint_test

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"strings"
	"time"

	"hrdesk/backend/internal/apperror"
	"hrdesk/backend/internal/models"
	"hrdesk/backend/internal/storage"

	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// memData is the table state of MemStorage. clone gives Transaction its
// rollback snapshot.
type memData struct {
	nextID      uint
	complaints  map[uint]models.Complaint
	history     []models.StatusHistory
	escalations []models.Escalation
	resolutions map[uint]models.Resolution // by complaint id
	subjects    map[uint]models.Subject
	comments    map[uint]models.Comment
	documents   map[uint]models.Document
	employees   map[uint]models.Employee
	reminders   map[uint]models.Reminder
}

func newMemData() *memData {
	return &memData{
		complaints:  map[uint]models.Complaint{},
		resolutions: map[uint]models.Resolution{},
		subjects:    map[uint]models.Subject{},
		comments:    map[uint]models.Comment{},
		documents:   map[uint]models.Document{},
		employees:   map[uint]models.Employee{},
		reminders:   map[uint]models.Reminder{},
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		nextID:      d.nextID,
		complaints:  map[uint]models.Complaint{},
		history:     slices.Clone(d.history),
		escalations: slices.Clone(d.escalations),
		resolutions: map[uint]models.Resolution{},
		subjects:    maps.Clone(d.subjects),
		comments:    maps.Clone(d.comments),
		documents:   maps.Clone(d.documents),
		employees:   maps.Clone(d.employees),
		reminders:   maps.Clone(d.reminders),
	}
	for id, complaint := range d.complaints {
		c.complaints[id] = copyComplaint(complaint)
	}
	for id, resolution := range d.resolutions {
		c.resolutions[id] = copyResolution(resolution)
	}
	return c
}

func copyComplaint(c models.Complaint) models.Complaint {
	if c.EscalatedTo != nil {
		c.EscalatedTo = append(pq.StringArray{}, c.EscalatedTo...)
	}
	c.Subjects, c.Comments, c.Documents = nil, nil, nil
	c.StatusHistory, c.Escalations, c.Resolution = nil, nil, nil
	return c
}

func copyResolution(r models.Resolution) models.Resolution {
	if r.Data != nil {
		r.Data = datatypes.JSONMap(maps.Clone(map[string]any(r.Data)))
	}
	return r
}

// MemStorage is an in-memory storage.Storage that records every call.
type MemStorage struct {
	data   *memData
	calls  *[]string
	failOn map[string]error
	now    func() time.Time
}

func NewMemStorage() *MemStorage {
	return &MemStorage{
		data:   newMemData(),
		calls:  &[]string{},
		failOn: map[string]error{},
		now:    func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) },
	}
}

var _ storage.Storage = (*MemStorage)(nil)

func (m *MemStorage) call(name string) error {
	*m.calls = append(*m.calls, name)
	return m.failOn[name]
}

// Calls returns the recorded method names in order.
func (m *MemStorage) Calls() []string {
	return slices.Clone(*m.calls)
}

func (m *MemStorage) Called(name string) bool {
	return slices.Contains(*m.calls, name)
}

func (m *MemStorage) ResetCalls() {
	*m.calls = (*m.calls)[:0]
}

func (m *MemStorage) id() uint {
	m.data.nextID++
	return m.data.nextID
}

func (m *MemStorage) Transaction(ctx context.Context, fn func(tx storage.Storage) error) error {
	snapshot := m.data.clone()
	if err := fn(m); err != nil {
		m.data = snapshot
		return err
	}
	return nil
}

func (m *MemStorage) ComplaintNumbersWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	if err := m.call("ComplaintNumbersWithPrefix"); err != nil {
		return nil, err
	}
	var numbers []string
	for _, c := range m.data.complaints {
		if strings.HasPrefix(c.ComplaintNumber, prefix) {
			numbers = append(numbers, c.ComplaintNumber)
		}
	}
	sort.Strings(numbers)
	return numbers, nil
}

func (m *MemStorage) CreateComplaint(ctx context.Context, c *models.Complaint) error {
	if err := m.call("CreateComplaint"); err != nil {
		return err
	}
	c.ID = m.id()
	c.CreatedAt, c.UpdatedAt = m.now(), m.now()
	m.data.complaints[c.ID] = copyComplaint(*c)
	return nil
}

func (m *MemStorage) FindComplaint(ctx context.Context, id uint) (*models.Complaint, error) {
	if err := m.call("FindComplaint"); err != nil {
		return nil, err
	}
	c, ok := m.data.complaints[id]
	if !ok || c.DeletedAt.Valid {
		return nil, apperror.NotFound("complaint", id)
	}
	cp := copyComplaint(c)
	return &cp, nil
}

func (m *MemStorage) FindComplaintWithTrashed(ctx context.Context, id uint) (*models.Complaint, error) {
	if err := m.call("FindComplaintWithTrashed"); err != nil {
		return nil, err
	}
	c, ok := m.data.complaints[id]
	if !ok {
		return nil, apperror.NotFound("complaint", id)
	}
	cp := copyComplaint(c)
	return &cp, nil
}

func (m *MemStorage) FindComplaintDetailed(ctx context.Context, id uint) (*models.Complaint, error) {
	c, err := m.FindComplaint(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Subjects, _ = m.ListSubjects(ctx, id)
	for _, comment := range sortedValues(m.data.comments) {
		if comment.ComplaintID == id {
			c.Comments = append(c.Comments, comment)
		}
	}
	c.Documents, _ = m.ListDocuments(ctx, id)
	for _, entry := range m.data.history {
		if entry.ComplaintID == id {
			c.StatusHistory = append(c.StatusHistory, entry)
		}
	}
	for _, escalation := range m.data.escalations {
		if escalation.ComplaintID == id {
			c.Escalations = append(c.Escalations, escalation)
		}
	}
	if r, ok := m.data.resolutions[id]; ok {
		cp := copyResolution(r)
		c.Resolution = &cp
	}
	return c, nil
}

func (m *MemStorage) SaveComplaint(ctx context.Context, c *models.Complaint) error {
	if err := m.call("SaveComplaint"); err != nil {
		return err
	}
	c.UpdatedAt = m.now()
	m.data.complaints[c.ID] = copyComplaint(*c)
	return nil
}

func (m *MemStorage) DeleteComplaint(ctx context.Context, c *models.Complaint) error {
	if err := m.call("DeleteComplaint"); err != nil {
		return err
	}
	stored := m.data.complaints[c.ID]
	stored.DeletedAt = gorm.DeletedAt{Time: m.now(), Valid: true}
	m.data.complaints[c.ID] = stored
	return nil
}

func (m *MemStorage) RestoreComplaint(ctx context.Context, c *models.Complaint) error {
	if err := m.call("RestoreComplaint"); err != nil {
		return err
	}
	stored := m.data.complaints[c.ID]
	stored.DeletedAt = gorm.DeletedAt{}
	m.data.complaints[c.ID] = stored
	c.DeletedAt = gorm.DeletedAt{}
	return nil
}

func (m *MemStorage) ForceDeleteComplaint(ctx context.Context, c *models.Complaint) error {
	if err := m.call("ForceDeleteComplaint"); err != nil {
		return err
	}
	delete(m.data.complaints, c.ID)
	delete(m.data.resolutions, c.ID)
	m.data.history = slices.DeleteFunc(m.data.history, func(e models.StatusHistory) bool { return e.ComplaintID == c.ID })
	m.data.escalations = slices.DeleteFunc(m.data.escalations, func(e models.Escalation) bool { return e.ComplaintID == c.ID })
	maps.DeleteFunc(m.data.subjects, func(_ uint, s models.Subject) bool { return s.ComplaintID == c.ID })
	maps.DeleteFunc(m.data.comments, func(_ uint, s models.Comment) bool { return s.ComplaintID == c.ID })
	maps.DeleteFunc(m.data.documents, func(_ uint, s models.Document) bool { return s.ComplaintID == c.ID })
	maps.DeleteFunc(m.data.reminders, func(_ uint, s models.Reminder) bool { return s.ComplaintID == c.ID })
	return nil
}

func (m *MemStorage) CreateStatusHistory(ctx context.Context, entry *models.StatusHistory) error {
	if err := m.call("CreateStatusHistory"); err != nil {
		return err
	}
	entry.ID = m.id()
	entry.CreatedAt = m.now()
	m.data.history = append(m.data.history, *entry)
	return nil
}

func (m *MemStorage) CountEscalations(ctx context.Context, complaintID uint) (int64, error) {
	if err := m.call("CountEscalations"); err != nil {
		return 0, err
	}
	var n int64
	for _, e := range m.data.escalations {
		if e.ComplaintID == complaintID {
			n++
		}
	}
	return n, nil
}

func (m *MemStorage) CreateEscalation(ctx context.Context, e *models.Escalation) error {
	if err := m.call("CreateEscalation"); err != nil {
		return err
	}
	e.ID = m.id()
	m.data.escalations = append(m.data.escalations, *e)
	return nil
}

func (m *MemStorage) FindResolution(ctx context.Context, complaintID uint) (*models.Resolution, error) {
	if err := m.call("FindResolution"); err != nil {
		return nil, err
	}
	r, ok := m.data.resolutions[complaintID]
	if !ok {
		return nil, nil
	}
	cp := copyResolution(r)
	return &cp, nil
}

func (m *MemStorage) CreateResolution(ctx context.Context, r *models.Resolution) error {
	if err := m.call("CreateResolution"); err != nil {
		return err
	}
	if _, exists := m.data.resolutions[r.ComplaintID]; exists {
		return fmt.Errorf("duplicate resolution for complaint %d", r.ComplaintID)
	}
	r.ID = m.id()
	m.data.resolutions[r.ComplaintID] = copyResolution(*r)
	return nil
}

func (m *MemStorage) SaveResolution(ctx context.Context, r *models.Resolution) error {
	if err := m.call("SaveResolution"); err != nil {
		return err
	}
	m.data.resolutions[r.ComplaintID] = copyResolution(*r)
	return nil
}

func (m *MemStorage) ListSubjects(ctx context.Context, complaintID uint) ([]models.Subject, error) {
	if err := m.call("ListSubjects"); err != nil {
		return nil, err
	}
	var out []models.Subject
	for _, s := range sortedValues(m.data.subjects) {
		if s.ComplaintID == complaintID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemStorage) FindSubject(ctx context.Context, complaintID, id uint) (*models.Subject, error) {
	if err := m.call("FindSubject"); err != nil {
		return nil, err
	}
	s, ok := m.data.subjects[id]
	if !ok || s.ComplaintID != complaintID {
		return nil, nil
	}
	return &s, nil
}

func (m *MemStorage) SaveSubject(ctx context.Context, s *models.Subject) error {
	if err := m.call("SaveSubject"); err != nil {
		return err
	}
	if s.ID == 0 {
		s.ID = m.id()
	}
	m.data.subjects[s.ID] = *s
	return nil
}

func (m *MemStorage) DeleteSubject(ctx context.Context, s *models.Subject) error {
	if err := m.call("DeleteSubject"); err != nil {
		return err
	}
	delete(m.data.subjects, s.ID)
	return nil
}

func (m *MemStorage) FindComment(ctx context.Context, complaintID, id uint) (*models.Comment, error) {
	if err := m.call("FindComment"); err != nil {
		return nil, err
	}
	c, ok := m.data.comments[id]
	if !ok || c.ComplaintID != complaintID {
		return nil, nil
	}
	return &c, nil
}

func (m *MemStorage) SaveComment(ctx context.Context, c *models.Comment) error {
	if err := m.call("SaveComment"); err != nil {
		return err
	}
	if c.ID == 0 {
		c.ID = m.id()
	}
	m.data.comments[c.ID] = *c
	return nil
}

func (m *MemStorage) DeleteComment(ctx context.Context, c *models.Comment) error {
	if err := m.call("DeleteComment"); err != nil {
		return err
	}
	delete(m.data.comments, c.ID)
	return nil
}

func (m *MemStorage) ListDocuments(ctx context.Context, complaintID uint) ([]models.Document, error) {
	if err := m.call("ListDocuments"); err != nil {
		return nil, err
	}
	var out []models.Document
	for _, d := range sortedValues(m.data.documents) {
		if d.ComplaintID == complaintID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (m *MemStorage) FindDocument(ctx context.Context, complaintID, id uint) (*models.Document, error) {
	if err := m.call("FindDocument"); err != nil {
		return nil, err
	}
	d, ok := m.data.documents[id]
	if !ok || d.ComplaintID != complaintID {
		return nil, nil
	}
	return &d, nil
}

func (m *MemStorage) SaveDocument(ctx context.Context, d *models.Document) error {
	if err := m.call("SaveDocument"); err != nil {
		return err
	}
	if d.ID == 0 {
		d.ID = m.id()
	}
	m.data.documents[d.ID] = *d
	return nil
}

func (m *MemStorage) DeleteDocument(ctx context.Context, d *models.Document) error {
	if err := m.call("DeleteDocument"); err != nil {
		return err
	}
	delete(m.data.documents, d.ID)
	return nil
}

func (m *MemStorage) FindEmployee(ctx context.Context, id uint) (*models.Employee, error) {
	if err := m.call("FindEmployee"); err != nil {
		return nil, err
	}
	e, ok := m.data.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *MemStorage) FindUser(ctx context.Context, id string) (*models.User, error) {
	return nil, m.call("FindUser")
}

func (m *MemStorage) CreateReminder(ctx context.Context, r *models.Reminder) error {
	if err := m.call("CreateReminder"); err != nil {
		return err
	}
	r.ID = m.id()
	m.data.reminders[r.ID] = *r
	return nil
}

func (m *MemStorage) FindReminder(ctx context.Context, id uint) (*models.Reminder, error) {
	if err := m.call("FindReminder"); err != nil {
		return nil, err
	}
	r, ok := m.data.reminders[id]
	if !ok {
		return nil, apperror.NotFound("reminder", id)
	}
	return &r, nil
}

func (m *MemStorage) SaveReminder(ctx context.Context, r *models.Reminder) error {
	if err := m.call("SaveReminder"); err != nil {
		return err
	}
	m.data.reminders[r.ID] = *r
	return nil
}

// seed helpers

func (m *MemStorage) AddEmployee(e models.Employee) uint {
	e.ID = m.id()
	m.data.employees[e.ID] = e
	return e.ID
}

func (m *MemStorage) AddComplaint(c models.Complaint) *models.Complaint {
	c.ID = m.id()
	m.data.complaints[c.ID] = copyComplaint(c)
	return &c
}

func (m *MemStorage) AddSubject(s models.Subject) uint {
	s.ID = m.id()
	m.data.subjects[s.ID] = s
	return s.ID
}

func (m *MemStorage) AddComment(c models.Comment) uint {
	c.ID = m.id()
	m.data.comments[c.ID] = c
	return c.ID
}

func (m *MemStorage) AddDocument(d models.Document) uint {
	d.ID = m.id()
	m.data.documents[d.ID] = d
	return d.ID
}

func (m *MemStorage) AddResolution(r models.Resolution) {
	r.ID = m.id()
	m.data.resolutions[r.ComplaintID] = copyResolution(r)
}

func (m *MemStorage) Complaint(id uint) models.Complaint {
	return m.data.complaints[id]
}

func (m *MemStorage) History(complaintID uint) []models.StatusHistory {
	var out []models.StatusHistory
	for _, e := range m.data.history {
		if e.ComplaintID == complaintID {
			out = append(out, e)
		}
	}
	return out
}

func (m *MemStorage) Escalations(complaintID uint) []models.Escalation {
	var out []models.Escalation
	for _, e := range m.data.escalations {
		if e.ComplaintID == complaintID {
			out = append(out, e)
		}
	}
	return out
}

func (m *MemStorage) Resolution(complaintID uint) (models.Resolution, bool) {
	r, ok := m.data.resolutions[complaintID]
	return r, ok
}

func (m *MemStorage) Subjects() map[uint]models.Subject   { return m.data.subjects }
func (m *MemStorage) Comments() map[uint]models.Comment   { return m.data.comments }
func (m *MemStorage) Documents() map[uint]models.Document { return m.data.documents }

func sortedValues[V any](in map[uint]V) []V {
	keys := slices.Sorted(maps.Keys(in))
	out := make([]V, 0, len(keys))
	for _, k := range keys {
		out = append(out, in[k])
	}
	return out
}
