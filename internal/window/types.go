// Package window opens URLs in borderless popup windows placed over the
// focused browser window.
package window

import (
	"context"
	"fmt"
)

// Geometry is a window's position and outer size in screen pixels.
type Geometry struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Type is the window chrome style.
type Type string

const (
	TypeNormal Type = "normal"
	TypePopup  Type = "popup" // no address bar or toolbar
)

// State is the display state of a window.
type State string

const (
	StateNormal    State = "normal"
	StateMinimized State = "minimized"
	StateMaximized State = "maximized"
)

// Spec describes a window to create.
type Spec struct {
	URL      string
	Type     Type
	Geometry Geometry
	Focused  bool
	State    State
}

// Handle identifies a created window.
type Handle struct {
	ID int
}

// Host is the browser's window-management capability.
type Host interface {
	// CurrentWindow returns the geometry of the focused window.
	CurrentWindow(ctx context.Context) (Geometry, error)
	CreateWindow(ctx context.Context, spec Spec) (Handle, error)
}

// HostError reports a window query or creation rejected by the host.
type HostError struct {
	Op  string // "current", "place", "create"
	Err error
}

func (e *HostError) Error() string {
	switch e.Op {
	case "create":
		return fmt.Sprintf("host rejected window: %v", e.Err)
	case "current":
		return fmt.Sprintf("read focused window: %v", e.Err)
	default:
		return e.Err.Error()
	}
}

func (e *HostError) Unwrap() error { return e.Err }

// CreationError is returned by Service.OpenHidden for any failure. Its
// message is what the caller shows to the user after its own
// "Error creating window" prefix, so it adds none.
type CreationError struct {
	Err error
}

func (e *CreationError) Error() string {
	return e.Err.Error()
}

func (e *CreationError) Unwrap() error { return e.Err }
