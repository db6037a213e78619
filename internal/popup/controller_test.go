package popup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/urlhider/internal/history"
	"github.com/runnerr0/urlhider/internal/message"
	"github.com/runnerr0/urlhider/internal/storage"
	"github.com/runnerr0/urlhider/internal/window"
)

type fakeSender struct {
	resp message.Response
	err  error
	reqs []message.Request
}

func (f *fakeSender) Send(ctx context.Context, req message.Request) (message.Response, error) {
	f.reqs = append(f.reqs, req)
	return f.resp, f.err
}

type fakeTabs struct {
	url string
	err error
}

func (f fakeTabs) ActiveTabURL(ctx context.Context) (string, error) { return f.url, f.err }

type fixedHost struct{ n int }

func (h *fixedHost) CurrentWindow(ctx context.Context) (window.Geometry, error) {
	return window.Geometry{Width: 1000, Height: 700}, nil
}

func (h *fixedHost) CreateWindow(ctx context.Context, spec window.Spec) (window.Handle, error) {
	h.n++
	return window.Handle{ID: h.n}, nil
}

func TestOpen_RejectsEmptyAndInvalidInput(t *testing.T) {
	sender := &fakeSender{}
	c := NewController(Config{Sender: sender})
	ctx := context.Background()

	n := c.Open(ctx, "   ")
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "Please enter a valid URL", n.Text)
	assert.Equal(t, 3*time.Second, n.Duration)

	n = c.Open(ctx, "example dot com")
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "Invalid URL", n.Text)

	assert.Empty(t, sender.reqs, "nothing sent for bad input")
}

func TestOpen_Success(t *testing.T) {
	sender := &fakeSender{resp: message.OkWindow(5)}
	c := NewController(Config{Sender: sender})

	n := c.Open(context.Background(), "  https://example.com  ")
	assert.Equal(t, LevelSuccess, n.Level)
	assert.Contains(t, n.Text, "id 5")

	require.Len(t, sender.reqs, 1)
	assert.Equal(t, message.Request{Action: message.ActionCreateHiddenWindow, URL: "https://example.com"}, sender.reqs[0])
}

func TestOpen_ErrResponse(t *testing.T) {
	c := NewController(Config{Sender: &fakeSender{resp: message.Err("host rejected window: denied")}})

	n := c.Open(context.Background(), "https://example.com")
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "Error creating window: host rejected window: denied", n.Text)
}

func TestOpen_ErrResponseWithoutMessage(t *testing.T) {
	c := NewController(Config{Sender: &fakeSender{resp: message.Response{}}})

	n := c.Open(context.Background(), "https://example.com")
	assert.Equal(t, "Error creating window: unknown error", n.Text)
}

func TestOpen_TransportFailure(t *testing.T) {
	c := NewController(Config{Sender: &fakeSender{err: message.ErrNoResponse}})

	n := c.Open(context.Background(), "https://example.com")
	assert.Equal(t, LevelError, n.Level)
	assert.Equal(t, "Could not reach the extension", n.Text)
}

func TestOpen_CustomNoticeDuration(t *testing.T) {
	c := NewController(Config{Sender: &fakeSender{resp: message.OkWindow(1)}, NoticeDuration: time.Second})
	assert.Equal(t, time.Second, c.Open(context.Background(), "https://a.com").Duration)
}

func TestToggle_InMemory(t *testing.T) {
	sender := &fakeSender{resp: message.OkWindow(1)}
	c := NewController(Config{Sender: sender})
	ctx := context.Background()

	assert.True(t, c.Enabled(ctx))

	on, n := c.Toggle(ctx)
	assert.False(t, on)
	assert.Equal(t, LevelInfo, n.Level)

	n = c.Open(ctx, "https://a.com")
	assert.Equal(t, "Extension is disabled", n.Text)
	assert.Empty(t, sender.reqs)

	on, n = c.Toggle(ctx)
	assert.True(t, on)
	assert.Equal(t, LevelSuccess, n.Level)
}

func TestToggle_Persisted(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()

	on, _ := NewController(Config{Sender: &fakeSender{}, Settings: kv}).Toggle(ctx)
	assert.False(t, on)

	// A new popup session sees the saved state.
	assert.False(t, NewController(Config{Sender: &fakeSender{}, Settings: kv}).Enabled(ctx))

	v, ok, err := kv.Get(ctx, EnabledKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "false", string(v))
}

func TestEnabled_UnreadableSettingDefaultsOn(t *testing.T) {
	kv := storage.NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, EnabledKey, []byte("maybe")))

	assert.True(t, NewController(Config{Settings: kv}).Enabled(ctx))
}

func TestDefaultURL(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "https://tab.example", NewController(Config{Tabs: fakeTabs{url: "https://tab.example"}}).DefaultURL(ctx))
	assert.Equal(t, "", NewController(Config{Tabs: fakeTabs{err: errors.New("no tab")}}).DefaultURL(ctx))
	assert.Equal(t, "", NewController(Config{}).DefaultURL(ctx))
}

func TestUsage_FailuresYieldEmpty(t *testing.T) {
	ctx := context.Background()
	for name, s := range map[string]*fakeSender{
		"transport": {err: errors.New("closed")},
		"err reply": {resp: message.Err("x")},
		"nil data":  {resp: message.Response{Success: true}},
	} {
		t.Run(name, func(t *testing.T) {
			got := NewController(Config{Sender: s}).Usage(ctx)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
}

func TestBuildChart(t *testing.T) {
	recs := []history.UsageRecord{
		{Domain: "a.com"}, {Domain: "b.com"}, {Domain: "b.com"}, {Domain: ""},
	}
	assert.Equal(t, Chart{Labels: []string{"b.com", "a.com"}, Values: []int{2, 1}}, BuildChart(recs, 5))
	assert.Equal(t, Chart{Labels: []string{}, Values: []int{}}, BuildChart(nil, 5))
}

func TestStats_ThroughRouter(t *testing.T) {
	store := history.NewStore(storage.NewMemoryKV())
	svc := window.NewService(&fixedHost{}, store)
	ch := message.NewChannel(message.NewRouter(svc, store, nil))
	c := NewController(Config{Sender: ch})
	ctx := context.Background()

	empty := c.Stats(ctx)
	assert.Equal(t, 0, empty.Total)
	assert.Empty(t, empty.Chart.Labels)

	for _, u := range []string{"https://a.com/1", "https://b.com", "https://a.com/2"} {
		n := c.Open(ctx, u)
		require.Equal(t, LevelSuccess, n.Level, n.Text)
	}

	stats := c.Stats(ctx)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, []string{"a.com", "b.com"}, stats.Chart.Labels)
	assert.Equal(t, []int{2, 1}, stats.Chart.Values)
}
