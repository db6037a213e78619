package window

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/browser"
)

// SystemHost implements Host by handing URLs to the operating system's
// default browser. It has no view of real window positions: the focused
// window is the configured screen, and placement and chrome hints are left
// to the browser.
type SystemHost struct {
	mu     sync.Mutex
	screen Geometry
	nextID int
	open   func(url string) error
}

// NewSystemHost creates a SystemHost that reports screen as the focused window.
func NewSystemHost(screen Geometry) *SystemHost {
	browser.Stdout = io.Discard
	browser.Stderr = io.Discard
	return &SystemHost{screen: screen, nextID: 1, open: browser.OpenURL}
}

// CurrentWindow returns the configured screen geometry.
func (h *SystemHost) CurrentWindow(ctx context.Context) (Geometry, error) {
	if err := ctx.Err(); err != nil {
		return Geometry{}, err
	}
	return h.screen, nil
}

// CreateWindow opens spec.URL in the default browser and assigns the next ID.
func (h *SystemHost) CreateWindow(ctx context.Context, spec Spec) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}
	if err := h.open(spec.URL); err != nil {
		return Handle{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	return Handle{ID: id}, nil
}
