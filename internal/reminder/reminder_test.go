package reminder_test

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"testing"
	"time"

	"hrdesk/backend/internal/apperror"
	"hrdesk/backend/internal/models"
	"hrdesk/backend/internal/notify"
	"hrdesk/backend/internal/reminder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var now = time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)

type fakeStore struct {
	nextID     uint
	complaints map[uint]models.Complaint
	reminders  map[uint]models.Reminder
	findErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		complaints: map[uint]models.Complaint{},
		reminders:  map[uint]models.Reminder{},
	}
}

func (s *fakeStore) FindComplaint(ctx context.Context, id uint) (*models.Complaint, error) {
	c, ok := s.complaints[id]
	if !ok {
		return nil, apperror.NotFound("complaint", id)
	}
	return &c, nil
}

func (s *fakeStore) CreateReminder(ctx context.Context, r *models.Reminder) error {
	s.nextID++
	r.ID = s.nextID
	s.reminders[r.ID] = *r
	return nil
}

func (s *fakeStore) FindReminder(ctx context.Context, id uint) (*models.Reminder, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	r, ok := s.reminders[id]
	if !ok {
		return nil, apperror.NotFound("reminder", id)
	}
	return &r, nil
}

func (s *fakeStore) SaveReminder(ctx context.Context, r *models.Reminder) error {
	s.reminders[r.ID] = *r
	return nil
}

// fakeQueue mirrors a Redis sorted set: one score per member.
type fakeQueue struct {
	jobs map[string]map[string]time.Time
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{jobs: map[string]map[string]time.Time{}}
}

func (q *fakeQueue) ScheduleAt(ctx context.Context, queue, member string, at time.Time) error {
	if q.jobs[queue] == nil {
		q.jobs[queue] = map[string]time.Time{}
	}
	q.jobs[queue][member] = at
	return nil
}

func (q *fakeQueue) Due(ctx context.Context, queue string, at time.Time, limit int64) ([]string, error) {
	var due []string
	for member, when := range q.jobs[queue] {
		if !when.After(at) {
			due = append(due, member)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		return q.jobs[queue][due[i]].Before(q.jobs[queue][due[j]])
	})
	if int64(len(due)) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (q *fakeQueue) Ack(ctx context.Context, queue, member string) error {
	delete(q.jobs[queue], member)
	return nil
}

func (q *fakeQueue) pending() map[string]time.Time {
	return q.jobs["reminders:due"]
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event notify.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func setup() (*reminder.Service, *fakeStore, *fakeQueue, *MockNotifier) {
	store := newFakeStore()
	store.complaints[1] = models.Complaint{ID: 1, ComplaintNumber: "CPL-2025-00001", Status: models.StatusInvestigating}
	queue := newFakeQueue()
	notifier := new(MockNotifier)
	return reminder.NewService(store, queue, notifier, zap.NewNop()), store, queue, notifier
}

func TestCreate_SchedulesAtRemindTime(t *testing.T) {
	svc, store, queue, _ := setup()
	at := now.Add(2 * time.Hour)

	r, err := svc.Create(context.Background(), "user-hr", reminder.Input{ComplaintID: 1, UserID: "user-officer", RemindAt: at, Note: "chase witness"})

	require.NoError(t, err)
	assert.Equal(t, "user-hr", r.CreatedBy)
	assert.Contains(t, store.reminders, r.ID)
	assert.Equal(t, map[string]time.Time{strconv.Itoa(int(r.ID)): at}, queue.pending())
}

func TestCreate_Validation(t *testing.T) {
	svc, _, queue, _ := setup()
	ctx := context.Background()

	_, err := svc.Create(ctx, "user-hr", reminder.Input{ComplaintID: 1, RemindAt: now})
	assert.True(t, apperror.IsInvalidState(err))

	_, err = svc.Create(ctx, "user-hr", reminder.Input{ComplaintID: 1, UserID: "u"})
	assert.True(t, apperror.IsInvalidState(err))

	_, err = svc.Create(ctx, "user-hr", reminder.Input{ComplaintID: 99, UserID: "u", RemindAt: now})
	assert.True(t, apperror.IsNotFound(err))

	assert.Empty(t, queue.pending())
}

func TestUpdate_ReschedulingKeepsOneJob(t *testing.T) {
	svc, _, queue, _ := setup()
	ctx := context.Background()
	r, err := svc.Create(ctx, "user-hr", reminder.Input{ComplaintID: 1, UserID: "u", RemindAt: now.Add(time.Hour)})
	require.NoError(t, err)

	later := now.Add(5 * time.Hour)
	for i := 0; i < 3; i++ {
		_, err = svc.Update(ctx, r.ID, reminder.UpdateInput{RemindAt: &later})
		require.NoError(t, err)
		later = later.Add(time.Hour)
	}

	require.Len(t, queue.pending(), 1)
	assert.Equal(t, now.Add(7*time.Hour), queue.pending()[strconv.Itoa(int(r.ID))])
}

func TestUpdate_RearmsSentReminder(t *testing.T) {
	svc, store, queue, _ := setup()
	sent := now.Add(-time.Hour)
	store.reminders[5] = models.Reminder{ID: 5, ComplaintID: 1, UserID: "u", RemindAt: sent, SentAt: &sent}

	note := "again"
	_, err := svc.Update(context.Background(), 5, reminder.UpdateInput{Note: &note})
	require.NoError(t, err)
	assert.Empty(t, queue.pending())

	next := now.Add(time.Hour)
	r, err := svc.Update(context.Background(), 5, reminder.UpdateInput{RemindAt: &next})
	require.NoError(t, err)
	assert.Nil(t, r.SentAt)
	assert.Equal(t, "again", r.Note)
	assert.Equal(t, next, queue.pending()["5"])
}

func TestProcess_DeliversDueReminders(t *testing.T) {
	svc, store, queue, notifier := setup()
	ctx := context.Background()
	due, err := svc.Create(ctx, "user-hr", reminder.Input{ComplaintID: 1, UserID: "user-officer", RemindAt: now.Add(-time.Minute), Note: "follow up"})
	require.NoError(t, err)
	future, err := svc.Create(ctx, "user-hr", reminder.Input{ComplaintID: 1, UserID: "user-officer", RemindAt: now.Add(time.Hour)})
	require.NoError(t, err)

	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(ev notify.Event) bool {
		return ev.Type == notify.EventReminderDue &&
			*ev.Recipient.UserID == "user-officer" &&
			ev.ComplaintNumber == "CPL-2025-00001" &&
			ev.Note == "follow up"
	})).Return(nil).Once()

	sent, err := svc.Process(ctx, now, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, &now, store.reminders[due.ID].SentAt)
	assert.Nil(t, store.reminders[future.ID].SentAt)
	assert.NotContains(t, queue.pending(), strconv.Itoa(int(due.ID)))
	assert.Contains(t, queue.pending(), strconv.Itoa(int(future.ID)))
	notifier.AssertExpectations(t)
}

func TestProcess_DropsStaleJobs(t *testing.T) {
	svc, store, queue, notifier := setup()
	ctx := context.Background()
	past := now.Add(-time.Hour)
	store.reminders[7] = models.Reminder{ID: 7, ComplaintID: 42, UserID: "u", RemindAt: past}
	store.reminders[8] = models.Reminder{ID: 8, ComplaintID: 1, UserID: "u", RemindAt: past, SentAt: &past}
	for _, member := range []string{"7", "8", "404", "not-a-number"} {
		require.NoError(t, queue.ScheduleAt(ctx, "reminders:due", member, past))
	}

	sent, err := svc.Process(ctx, now, 10)

	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Empty(t, queue.pending())
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestProcess_FailedNotificationIsRetriedLater(t *testing.T) {
	svc, store, queue, notifier := setup()
	ctx := context.Background()
	r, err := svc.Create(ctx, "user-hr", reminder.Input{ComplaintID: 1, UserID: "u", RemindAt: now})
	require.NoError(t, err)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("redis down"))

	sent, err := svc.Process(ctx, now, 10)

	require.NoError(t, err)
	assert.Zero(t, sent)
	assert.Nil(t, store.reminders[r.ID].SentAt)
	assert.Equal(t, now.Add(5*time.Minute), queue.pending()[strconv.Itoa(int(r.ID))])
}

func TestProcess_FailingJobDoesNotBlockLaterOnes(t *testing.T) {
	svc, store, queue, notifier := setup()
	ctx := context.Background()
	broken, err := svc.Create(ctx, "user-hr", reminder.Input{ComplaintID: 1, UserID: "user-broken", RemindAt: now.Add(-2 * time.Minute)})
	require.NoError(t, err)
	healthy, err := svc.Create(ctx, "user-hr", reminder.Input{ComplaintID: 1, UserID: "user-ok", RemindAt: now.Add(-time.Minute)})
	require.NoError(t, err)

	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(ev notify.Event) bool {
		return *ev.Recipient.UserID == "user-broken"
	})).Return(errors.New("redis down"))
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	for i := 0; i < 2; i++ {
		_, err := svc.Process(ctx, now, 1)
		require.NoError(t, err)
	}

	assert.NotNil(t, store.reminders[healthy.ID].SentAt)
	assert.Nil(t, store.reminders[broken.ID].SentAt)
	assert.Equal(t, map[string]time.Time{strconv.Itoa(int(broken.ID)): now.Add(5 * time.Minute)}, queue.pending())
}

func TestWorker_PollDrainsInBatches(t *testing.T) {
	svc, store, queue, notifier := setup()
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.Create(ctx, "user-hr", reminder.Input{ComplaintID: 1, UserID: "u", RemindAt: now.Add(-time.Duration(i+1) * time.Minute)})
		require.NoError(t, err)
	}
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil)

	reminder.NewWorker(svc, time.Minute, 2, zap.NewNop()).Poll(ctx)

	assert.Empty(t, queue.pending())
	for _, r := range store.reminders {
		assert.NotNil(t, r.SentAt)
	}
	notifier.AssertNumberOfCalls(t, "Notify", 5)
}

func TestWorker_RunStopsOnCancel(t *testing.T) {
	svc, _, _, _ := setup()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		reminder.NewWorker(svc, 10*time.Millisecond, 0, zap.NewNop()).Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
