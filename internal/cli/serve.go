package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/runnerr0/urlhider/internal/message"
)

// Execute implements the go-flags Commander interface for ServeCommand.
// Browsers launch the host with the caller's origin as an argument; it is
// logged and otherwise ignored.
func (c *ServeCommand) Execute(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := setup(ctx, c.globals, c.deps)
	if err != nil {
		return err
	}
	defer e.close()

	host, err := e.windowHost()
	if err != nil {
		return err
	}

	maxBytes := c.MaxMessageBytes
	if maxBytes <= 0 {
		maxBytes = e.cfg.Messaging.MaxMessageBytes
	}

	e.logger.Info("native messaging host started", "args", args, "backend", e.cfg.Window.Backend)
	nh := message.NewNativeHost(e.router(host), e.stdin(), e.stdout(), maxBytes, e.logger)
	if err := nh.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		e.logger.Error("native messaging host stopped", "err", err)
		return err
	}
	e.logger.Info("native messaging host finished")
	return nil
}
