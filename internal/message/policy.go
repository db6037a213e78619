package message

import (
	"context"
	"fmt"
	"log/slog"
)

// internalErrorMessage is sent when a handler panics.
const internalErrorMessage = "internal extension error"

// Failures never reach the transport as faults. Window requests turn every
// error into an Err reply; usage queries fall back to an empty log.

func windowHandler(w WindowOpener, logger *slog.Logger) Handler {
	return func(ctx context.Context, req Request) <-chan Response {
		return async(req, Err(internalErrorMessage), logger, func() Response {
			id, err := w.OpenHidden(ctx, req.URL)
			if err != nil {
				logger.Info("window request failed", "url", req.URL, "err", err)
				return Err(err.Error())
			}
			return OkWindow(id)
		})
	}
}

func usageHandler(h HistoryLister, logger *slog.Logger) Handler {
	return func(ctx context.Context, req Request) <-chan Response {
		return async(req, OkData(nil), logger, func() Response {
			data, err := h.List(ctx)
			if err != nil {
				logger.Warn("usage query failed, replying with empty log", "err", err)
				return OkData(nil)
			}
			return OkData(data)
		})
	}
}

// async runs fn on its own goroutine and delivers its reply, tagged with
// the request ID. A panic in fn delivers fallback instead.
func async(req Request, fallback Response, logger *slog.Logger, fn func() Response) <-chan Response {
	ch := make(chan Response, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				logger.Error("handler panicked", "action", string(req.Action), "panic", fmt.Sprint(p))
				fallback.RequestID = req.RequestID
				ch <- fallback
			}
		}()
		resp := fn()
		resp.RequestID = req.RequestID
		ch <- resp
	}()
	return ch
}
