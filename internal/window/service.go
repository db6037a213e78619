package window

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/runnerr0/urlhider/internal/history"
	"github.com/runnerr0/urlhider/internal/logging"
)

// Layout bounds the size and offset of popup windows.
type Layout struct {
	MaxWidth  int // cap on width
	MaxHeight int // cap on height
	Inset     int // offset from the parent's left and top edges
	Margin    int // subtracted from the parent's width and height
}

// DefaultLayout caps popups at 1200x800, inset 50px inside the parent.
var DefaultLayout = Layout{MaxWidth: 1200, MaxHeight: 800, Inset: 50, Margin: 100}

// Place computes the popup geometry for a parent window.
func (l Layout) Place(parent Geometry) Geometry {
	return Geometry{
		Left:   parent.Left + l.Inset,
		Top:    parent.Top + l.Inset,
		Width:  min(l.MaxWidth, parent.Width-l.Margin),
		Height: min(l.MaxHeight, parent.Height-l.Margin),
	}
}

// Recorder stores a usage entry for an opened URL.
type Recorder interface {
	Append(ctx context.Context, url string, timestamp int64) (history.UsageRecord, error)
}

// Service opens popup windows and records them in the usage log.
type Service struct {
	host     Host
	recorder Recorder
	layout   Layout
	now      func() time.Time
	logger   *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithLayout overrides DefaultLayout.
func WithLayout(l Layout) ServiceOption {
	return func(s *Service) { s.layout = l }
}

// WithClock sets the capture-time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger; nil discards.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service. recorder may be nil to skip recording.
func NewService(host Host, recorder Recorder, opts ...ServiceOption) *Service {
	s := &Service{
		host:     host,
		recorder: recorder,
		layout:   DefaultLayout,
		now:      time.Now,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenHidden opens url in a focused popup window over the current one and
// returns the new window's ID. Errors are *CreationError; on error no usage
// record is written.
func (s *Service) OpenHidden(ctx context.Context, url string) (int, error) {
	if _, err := history.ParseURL(url); err != nil {
		return 0, &CreationError{Err: err}
	}

	parent, err := s.host.CurrentWindow(ctx)
	if err != nil {
		return 0, &CreationError{Err: &HostError{Op: "current", Err: err}}
	}

	target := s.layout.Place(parent)
	if target.Width <= 0 || target.Height <= 0 {
		return 0, &CreationError{Err: &HostError{
			Op:  "place",
			Err: fmt.Errorf("parent window %dx%d too small for popup", parent.Width, parent.Height),
		}}
	}

	h, err := s.host.CreateWindow(ctx, Spec{
		URL:      url,
		Type:     TypePopup,
		Geometry: target,
		Focused:  true,
		State:    StateNormal,
	})
	if err != nil {
		return 0, &CreationError{Err: &HostError{Op: "create", Err: err}}
	}

	s.record(ctx, url, s.now().UnixMilli())

	s.logger.Info("popup window opened",
		"window_id", h.ID, "url", url,
		"left", target.Left, "top", target.Top,
		"width", target.Width, "height", target.Height,
	)
	return h.ID, nil
}

// record persists the usage entry. The window is already open, so a
// failed write is logged and dropped.
func (s *Service) record(ctx context.Context, url string, ts int64) {
	if s.recorder == nil {
		return
	}
	if _, err := s.recorder.Append(ctx, url, ts); err != nil {
		s.logger.Warn("usage record not saved", "url", url, "err", err)
	}
}
