package message

import (
	"context"
	"log/slog"
	"sync"

	"github.com/runnerr0/urlhider/internal/history"
	"github.com/runnerr0/urlhider/internal/logging"
)

// Handler serves one request variant. It must return without blocking; the
// reply is delivered once on the returned channel.
type Handler func(ctx context.Context, req Request) <-chan Response

// WindowOpener opens a URL in a popup window.
type WindowOpener interface {
	OpenHidden(ctx context.Context, url string) (int, error)
}

// HistoryLister returns the usage log.
type HistoryLister interface {
	List(ctx context.Context) ([]history.UsageRecord, error)
}

// Router dispatches requests to handlers keyed by action. It keeps no state
// between requests, and replies to concurrent requests may settle in any
// order.
type Router struct {
	mu       sync.RWMutex
	handlers map[Action]Handler
	logger   *slog.Logger
}

// NewRouter creates a Router serving createHiddenWindow and getUsageData.
func NewRouter(windows WindowOpener, hist HistoryLister, logger *slog.Logger) *Router {
	if logger == nil {
		logger = logging.Discard()
	}
	r := &Router{handlers: make(map[Action]Handler), logger: logger}
	r.Register(ActionCreateHiddenWindow, windowHandler(windows, logger))
	r.Register(ActionGetUsageData, usageHandler(hist, logger))
	return r
}

// Register sets the handler for action, replacing any previous one.
func (r *Router) Register(action Action, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[action] = h
}

// Handles reports whether action has a handler.
func (r *Router) Handles(action Action) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[action]
	return ok
}

// Dispatch starts handling req and returns the pending reply. The bool is
// false for an unknown action, in which case no reply will ever be sent.
func (r *Router) Dispatch(ctx context.Context, req Request) (<-chan Response, bool) {
	r.mu.RLock()
	h, ok := r.handlers[req.Action]
	r.mu.RUnlock()
	if !ok {
		r.logger.Warn("ignoring request with unknown action",
			"action", string(req.Action), "request_id", req.RequestID)
		return nil, false
	}

	r.logger.Debug("dispatching request", "action", string(req.Action), "request_id", req.RequestID)
	return h(ctx, req), true
}
