package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/runnerr0/urlhider/internal/config"
	"github.com/runnerr0/urlhider/internal/history"
	"github.com/runnerr0/urlhider/internal/logging"
	"github.com/runnerr0/urlhider/internal/message"
	"github.com/runnerr0/urlhider/internal/popup"
	"github.com/runnerr0/urlhider/internal/storage"
	"github.com/runnerr0/urlhider/internal/window"
)

// env is the wired application for one command invocation.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	kv      storage.KV
	store   *history.Store
	deps    *deps
	closers []func() error
}

// loadConfig resolves configuration.
// Priority: --config flag > default config path > built-in defaults.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals.Config != "" {
		cfg, err := config.Load(globals.Config)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	}
	cfg, err := config.LoadOrCreate()
	if err != nil {
		// Unwritable home or similar: run on defaults.
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}

// setup loads config, the logger and the KV store.
func setup(ctx context.Context, globals *GlobalFlags, d *deps) (*env, error) {
	if d == nil {
		d = &deps{}
	}

	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, deps: d}

	if err := e.openLogger(globals); err != nil {
		return nil, err
	}

	if d.kv != nil {
		e.kv = d.kv
	} else {
		kv, err := openKV(ctx, cfg, globals)
		if err != nil {
			e.close()
			return nil, err
		}
		e.kv = kv
		e.closers = append(e.closers, kv.Close)
	}

	e.store = history.NewStore(e.kv,
		history.WithKey(cfg.History.StorageKey),
		history.WithMaxRecords(cfg.History.MaxRecords),
	)
	return e, nil
}

func (e *env) openLogger(globals *GlobalFlags) error {
	if globals.Verbose {
		e.logger = logging.NewWriter(os.Stderr, e.cfg.Logging.Format, slog.LevelDebug)
		return nil
	}
	if e.deps.logger != nil {
		e.logger = e.deps.logger
		return nil
	}
	path, err := e.cfg.LogPath()
	if err != nil {
		return err
	}
	logger, closer, err := logging.New(e.cfg.Logging, path)
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	e.logger = logger
	e.closers = append(e.closers, closer.Close)
	return nil
}

// openKV opens the configured storage backend.
func openKV(ctx context.Context, cfg *config.Config, globals *GlobalFlags) (storage.KV, error) {
	if cfg.Storage.Backend == "memory" && globals.DBPath == "" {
		return storage.NewMemoryKV(), nil
	}

	dbPath := globals.DBPath
	if dbPath == "" {
		p, err := cfg.DBPath()
		if err != nil {
			return nil, err
		}
		dbPath = p
	}

	kv, err := storage.OpenSQLite(ctx, dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	return kv, nil
}

// windowHost returns the injected host or starts the configured one.
func (e *env) windowHost() (window.Host, error) {
	if e.deps.host != nil {
		return e.deps.host, nil
	}

	wc := e.cfg.Window
	screen := window.Geometry{Width: wc.ScreenWidth, Height: wc.ScreenHeight}
	switch wc.Backend {
	case "system":
		return window.NewSystemHost(screen), nil
	default:
		h := window.NewPlaywrightHost(window.PlaywrightOptions{
			Headless: wc.Headless,
			Channel:  wc.BrowserChannel,
			Install:  wc.InstallBrowser,
			Anchor:   screen,
		})
		if err := h.Start(); err != nil {
			return nil, err
		}
		e.closers = append(e.closers, h.Close)
		return h, nil
	}
}

// router wires the window service and the usage log behind a Router.
func (e *env) router(host window.Host) *message.Router {
	wc := e.cfg.Window
	svc := window.NewService(host, e.store,
		window.WithLayout(window.Layout{
			MaxWidth:  wc.MaxWidth,
			MaxHeight: wc.MaxHeight,
			Inset:     wc.Inset,
			Margin:    wc.Margin,
		}),
		window.WithLogger(e.logger),
	)
	return message.NewRouter(svc, e.store, e.logger)
}

// controller returns a popup controller talking to r over an in-process
// channel. r may be nil for commands that never send requests.
func (e *env) controller(r *message.Router, tabs popup.TabQuerier) *popup.Controller {
	var sender popup.Sender
	if r != nil {
		sender = message.NewChannel(r)
	}
	return popup.NewController(popup.Config{
		Sender:         sender,
		Tabs:           tabs,
		Settings:       e.kv,
		TopDomains:     e.cfg.History.ChartTopDomains,
		NoticeDuration: time.Duration(e.cfg.Messaging.NoticeSeconds) * time.Second,
		Logger:         e.logger,
	})
}

// close runs cleanups in reverse order.
func (e *env) close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		_ = e.closers[i]()
	}
	e.closers = nil
}

func (e *env) stdout() io.Writer {
	if e.deps.stdout != nil {
		return e.deps.stdout
	}
	return os.Stdout
}

func (e *env) stdin() io.Reader {
	if e.deps.stdin != nil {
		return e.deps.stdin
	}
	return os.Stdin
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
