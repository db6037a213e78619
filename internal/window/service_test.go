package window

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/urlhider/internal/history"
	"github.com/runnerr0/urlhider/internal/storage"
)

// fakeHost records calls and returns canned results.
type fakeHost struct {
	current    Geometry
	currentErr error
	createErr  error
	nextID     int
	created    []Spec
	onCreate   func()
}

func (f *fakeHost) CurrentWindow(ctx context.Context) (Geometry, error) {
	return f.current, f.currentErr
}

func (f *fakeHost) CreateWindow(ctx context.Context, spec Spec) (Handle, error) {
	if f.createErr != nil {
		return Handle{}, f.createErr
	}
	f.created = append(f.created, spec)
	if f.onCreate != nil {
		f.onCreate()
	}
	f.nextID++
	return Handle{ID: f.nextID}, nil
}

type failingRecorder struct{ calls int }

func (r *failingRecorder) Append(ctx context.Context, url string, ts int64) (history.UsageRecord, error) {
	r.calls++
	return history.UsageRecord{}, errors.New("disk full")
}

func newTestService(t *testing.T, host Host, opts ...ServiceOption) (*Service, *history.Store) {
	t.Helper()
	store := history.NewStore(storage.NewMemoryKV())
	return NewService(host, store, opts...), store
}

func TestLayout_Place(t *testing.T) {
	got := DefaultLayout.Place(Geometry{Left: 0, Top: 0, Width: 1000, Height: 700})
	assert.Equal(t, Geometry{Left: 50, Top: 50, Width: 900, Height: 600}, got)
}

func TestLayout_PlaceCapsLargeParents(t *testing.T) {
	got := DefaultLayout.Place(Geometry{Left: 100, Top: 20, Width: 2560, Height: 1440})
	assert.Equal(t, Geometry{Left: 150, Top: 70, Width: 1200, Height: 800}, got)
}

func TestLayout_PlaceNeverExceedsParentMinusMargin(t *testing.T) {
	for w := 101; w < 3000; w += 137 {
		for h := 101; h < 2000; h += 113 {
			g := DefaultLayout.Place(Geometry{Width: w, Height: h})
			assert.LessOrEqual(t, g.Width, w-100)
			assert.LessOrEqual(t, g.Height, h-100)
			assert.LessOrEqual(t, g.Width, 1200)
			assert.LessOrEqual(t, g.Height, 800)
		}
	}
}

func TestOpenHidden_Success(t *testing.T) {
	host := &fakeHost{current: Geometry{Left: 0, Top: 0, Width: 1000, Height: 700}, nextID: 41}
	svc, store := newTestService(t, host)
	ctx := context.Background()

	id, err := svc.OpenHidden(ctx, "https://news.example.org/story/1")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	require.Len(t, host.created, 1)
	assert.Equal(t, Spec{
		URL:      "https://news.example.org/story/1",
		Type:     TypePopup,
		Geometry: Geometry{Left: 50, Top: 50, Width: 900, Height: 600},
		Focused:  true,
		State:    StateNormal,
	}, host.created[0])

	records, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "news.example.org", records[0].Domain)
	assert.Equal(t, "https://news.example.org/story/1", records[0].URL)
}

func TestOpenHidden_TimestampIsCaptureTime(t *testing.T) {
	created := false
	var clockCalledAfterCreate bool
	host := &fakeHost{current: Geometry{Width: 1000, Height: 700}}
	host.onCreate = func() { created = true }

	fixed := time.UnixMilli(1700000000123)
	svc, store := newTestService(t, host, WithClock(func() time.Time {
		clockCalledAfterCreate = created
		return fixed
	}))

	_, err := svc.OpenHidden(context.Background(), "https://a.com")
	require.NoError(t, err)
	assert.True(t, clockCalledAfterCreate, "timestamp taken after the window exists")

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(1700000000123), records[0].Timestamp)
}

func TestOpenHidden_InvalidURL(t *testing.T) {
	host := &fakeHost{current: Geometry{Width: 1000, Height: 700}}
	svc, store := newTestService(t, host)

	for _, u := range []string{"", "not a url", "example.com", "https://"} {
		_, err := svc.OpenHidden(context.Background(), u)
		require.Error(t, err, u)

		var cerr *CreationError
		require.True(t, errors.As(err, &cerr))
		var verr *history.ValidationError
		assert.True(t, errors.As(err, &verr))
	}

	assert.Empty(t, host.created, "no window created")
	records, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records, "no usage written")
}

func TestOpenHidden_CurrentWindowFails(t *testing.T) {
	host := &fakeHost{currentErr: errors.New("No current window")}
	svc, store := newTestService(t, host)

	_, err := svc.OpenHidden(context.Background(), "https://a.com")
	require.Error(t, err)
	assert.Equal(t, "read focused window: No current window", err.Error())

	var herr *HostError
	require.True(t, errors.As(err, &herr))
	assert.Equal(t, "current", herr.Op)

	records, _ := store.List(context.Background())
	assert.Empty(t, records)
}

func TestOpenHidden_CreateRejected(t *testing.T) {
	host := &fakeHost{current: Geometry{Width: 1000, Height: 700}, createErr: errors.New("Invalid value for bounds")}
	svc, store := newTestService(t, host)

	_, err := svc.OpenHidden(context.Background(), "https://a.com")
	require.Error(t, err)
	assert.Equal(t, "host rejected window: Invalid value for bounds", err.Error())

	records, _ := store.List(context.Background())
	assert.Empty(t, records)
}

func TestOpenHidden_ParentTooSmall(t *testing.T) {
	host := &fakeHost{current: Geometry{Width: 90, Height: 700}}
	svc, _ := newTestService(t, host)

	_, err := svc.OpenHidden(context.Background(), "https://a.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too small")
	assert.Empty(t, host.created)
}

func TestOpenHidden_RecordFailureStillSucceeds(t *testing.T) {
	host := &fakeHost{current: Geometry{Width: 1000, Height: 700}}
	rec := &failingRecorder{}
	svc := NewService(host, rec)

	id, err := svc.OpenHidden(context.Background(), "https://a.com")
	require.NoError(t, err)
	assert.Equal(t, 1, id)
	assert.Equal(t, 1, rec.calls)
}

func TestOpenHidden_NilRecorder(t *testing.T) {
	host := &fakeHost{current: Geometry{Width: 1000, Height: 700}}
	svc := NewService(host, nil)

	_, err := svc.OpenHidden(context.Background(), "https://a.com")
	assert.NoError(t, err)
}

func TestOpenHidden_CustomLayout(t *testing.T) {
	host := &fakeHost{current: Geometry{Left: 10, Top: 10, Width: 1000, Height: 1000}}
	svc, _ := newTestService(t, host, WithLayout(Layout{MaxWidth: 400, MaxHeight: 300, Inset: 5, Margin: 10}))

	_, err := svc.OpenHidden(context.Background(), "https://a.com")
	require.NoError(t, err)
	assert.Equal(t, Geometry{Left: 15, Top: 15, Width: 400, Height: 300}, host.created[0].Geometry)
}
