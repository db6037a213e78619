package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"

	"github.com/runnerr0/urlhider/internal/popup"
)

// Execute implements the go-flags Commander interface for OpenCommand.
func (c *OpenCommand) Execute(args []string) error {
	ctx := context.Background()

	e, err := setup(ctx, c.globals, c.deps)
	if err != nil {
		return err
	}
	defer e.close()

	host, err := e.windowHost()
	if err != nil {
		return fmt.Errorf("start window host: %w", err)
	}
	tabs, _ := host.(popup.TabQuerier)
	ctrl := e.controller(e.router(host), tabs)

	url := c.URL
	if url == "" {
		url = ctrl.DefaultURL(ctx)
	}

	n := ctrl.Open(ctx, url)

	if c.globals.JSON {
		if err := writeJSON(e.stdout(), map[string]interface{}{
			"url":     url,
			"level":   n.Level,
			"message": n.Text,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprint(e.stdout(), renderNotice(n))
	}

	if n.Level == popup.LevelError {
		return errors.New(n.Text)
	}

	if n.Level == popup.LevelSuccess && c.keepRunning(e) {
		if !c.globals.JSON {
			fmt.Fprint(e.stdout(), pterm.Info.Sprintln("Press Ctrl+C to close the browser"))
		}
		waitCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-waitCtx.Done()
	}
	return nil
}

// keepRunning reports whether the command owns a browser that would close
// with the process.
func (c *OpenCommand) keepRunning(e *env) bool {
	return !c.NoWait && e.deps.host == nil && e.cfg.Window.Backend == "playwright"
}

func renderNotice(n popup.Notice) string {
	switch n.Level {
	case popup.LevelSuccess:
		return pterm.Success.Sprintln(n.Text)
	case popup.LevelError:
		return pterm.Error.Sprintln(n.Text)
	default:
		return pterm.Info.Sprintln(n.Text)
	}
}
