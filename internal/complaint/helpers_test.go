package complaint_test

import (
	"context"
	"testing"
	"time"

	"hrdesk/backend/internal/complaint"
	"hrdesk/backend/internal/filestore"
	"hrdesk/backend/internal/notify"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, event notify.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// Events returns the events passed to Notify in order.
func (m *MockNotifier) Events() []notify.Event {
	var out []notify.Event
	for _, call := range m.Calls {
		if call.Method == "Notify" {
			out = append(out, call.Arguments.Get(1).(notify.Event))
		}
	}
	return out
}

// recordingDisk logs disk operations into the storage call log so tests can
// check their order against row writes.
type recordingDisk struct {
	filestore.Disk
	calls *[]string
}

func (d recordingDisk) Store(ctx context.Context, path string, content []byte) (string, error) {
	*d.calls = append(*d.calls, "disk.Store")
	return d.Disk.Store(ctx, path, content)
}

func (d recordingDisk) Delete(ctx context.Context, path string) (bool, error) {
	*d.calls = append(*d.calls, "disk.Delete")
	return d.Disk.Delete(ctx, path)
}

func (d recordingDisk) Move(ctx context.Context, from, to string) (bool, error) {
	*d.calls = append(*d.calls, "disk.Move")
	return d.Disk.Move(ctx, from, to)
}

type fixture struct {
	store    *MemStorage
	notifier *MockNotifier
	disk     *filestore.LocalDisk
	svc      *complaint.Service
	actor    complaint.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := NewMemStorage()
	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()

	disk := filestore.NewLocalDisk(t.TempDir())
	disks := filestore.NewManager()
	disks.Register("private", recordingDisk{Disk: disk, calls: store.calls})

	svc := complaint.NewService(store, notifier, disks, zap.NewNop(),
		complaint.WithClock(func() time.Time { return fixedNow }),
	)

	return &fixture{
		store:    store,
		notifier: notifier,
		disk:     disk,
		svc:      svc,
		actor:    complaint.Actor{UserID: "user-hr", Roles: []string{"HR"}},
	}
}

func uintPtr(v uint) *uint           { return &v }
func strPtr(v string) *string        { return &v }
func intPtr(v int) *int              { return &v }
func timePtr(v time.Time) *time.Time { return &v }
