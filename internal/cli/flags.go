package cli

import (
	"io"
	"log/slog"

	"github.com/runnerr0/urlhider/internal/storage"
	"github.com/runnerr0/urlhider/internal/window"
)

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	DBPath  string `long:"db-path" description:"Override the SQLite database path"`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Log at debug level to stderr"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// deps lets tests inject collaborators; nil fields are built from config.
type deps struct {
	kv     storage.KV
	host   window.Host
	stdin  io.Reader
	stdout io.Writer
	logger *slog.Logger
}

// OpenCommand opens a URL in a popup window and records it.
type OpenCommand struct {
	URL    string `long:"url" description:"URL to open (defaults to the active tab)"`
	NoWait bool   `long:"no-wait" description:"Exit right after the window opens instead of keeping the browser running"`

	globals *GlobalFlags
	version string
	deps    *deps
}

// StatsCommand shows total opens and the top-domain chart.
type StatsCommand struct {
	Top int `long:"top" description:"Number of domains to chart (default from config)"`

	globals *GlobalFlags
	version string
	deps    *deps
}

// HistoryCommand lists the usage log.
type HistoryCommand struct {
	Limit  int    `long:"limit" description:"Show only the most recent N records" default:"0"`
	Domain string `long:"domain" description:"Only records for this domain"`

	globals *GlobalFlags
	version string
	deps    *deps
}

// ToggleCommand flips the enabled switch.
type ToggleCommand struct {
	globals *GlobalFlags
	version string
	deps    *deps
}

// ClearCommand deletes the usage log after a confirmation prompt.
type ClearCommand struct {
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	deps    *deps
}

// ServeCommand runs the background router as a native messaging host.
type ServeCommand struct {
	MaxMessageBytes int `long:"max-message-bytes" description:"Override the largest accepted message"`

	globals *GlobalFlags
	version string
	deps    *deps
}
