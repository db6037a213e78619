// Package popup implements the toolbar popup flow: validate the URL the
// user entered, ask the background router to open it, and summarize the
// usage log for the chart.
package popup

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/runnerr0/urlhider/internal/history"
	"github.com/runnerr0/urlhider/internal/logging"
	"github.com/runnerr0/urlhider/internal/message"
	"github.com/runnerr0/urlhider/internal/storage"
)

// DefaultNoticeDuration is how long a notice stays visible.
const DefaultNoticeDuration = 3 * time.Second

// EnabledKey is the storage slot for the on/off toggle.
const EnabledKey = "extensionEnabled"

// Level classifies a notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notice is a transient message shown in the popup.
type Notice struct {
	Text     string        `json:"text"`
	Level    Level         `json:"level"`
	Duration time.Duration `json:"-"`
}

// Sender delivers a request to the background router.
type Sender interface {
	Send(ctx context.Context, req message.Request) (message.Response, error)
}

// TabQuerier returns the URL of the active tab.
type TabQuerier interface {
	ActiveTabURL(ctx context.Context) (string, error)
}

// Chart is the bar chart of most opened domains.
type Chart struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Stats is what the popup renders below the URL field.
type Stats struct {
	Total int   `json:"total"`
	Chart Chart `json:"chart"`
}

// Controller drives one popup session.
type Controller struct {
	sender         Sender
	tabs           TabQuerier
	settings       storage.KV
	topDomains     int
	noticeDuration time.Duration
	logger         *slog.Logger

	// enabled is the toggle state when there is no settings store.
	enabled bool
}

// Config holds Controller dependencies. Tabs and Settings are optional.
type Config struct {
	Sender         Sender
	Tabs           TabQuerier
	Settings       storage.KV
	TopDomains     int
	NoticeDuration time.Duration
	Logger         *slog.Logger
}

// NewController creates a Controller.
func NewController(cfg Config) *Controller {
	c := &Controller{
		sender:         cfg.Sender,
		tabs:           cfg.Tabs,
		settings:       cfg.Settings,
		topDomains:     cfg.TopDomains,
		noticeDuration: cfg.NoticeDuration,
		logger:         cfg.Logger,
		enabled:        true,
	}
	if c.topDomains <= 0 {
		c.topDomains = history.DefaultTopDomains
	}
	if c.noticeDuration <= 0 {
		c.noticeDuration = DefaultNoticeDuration
	}
	if c.logger == nil {
		c.logger = logging.Discard()
	}
	return c
}

func (c *Controller) notice(text string, level Level) Notice {
	return Notice{Text: text, Level: level, Duration: c.noticeDuration}
}

// DefaultURL is the URL the input is pre-filled with: the active tab's, or
// empty when it cannot be read.
func (c *Controller) DefaultURL(ctx context.Context) string {
	if c.tabs == nil {
		return ""
	}
	u, err := c.tabs.ActiveTabURL(ctx)
	if err != nil {
		c.logger.Debug("active tab unavailable", "err", err)
		return ""
	}
	return u
}

// Open validates raw and asks the router to open it in a popup window.
func (c *Controller) Open(ctx context.Context, raw string) Notice {
	if !c.Enabled(ctx) {
		return c.notice("Extension is disabled", LevelInfo)
	}

	url := strings.TrimSpace(raw)
	if url == "" {
		return c.notice("Please enter a valid URL", LevelError)
	}
	if !history.IsValidURL(url) {
		return c.notice("Invalid URL", LevelError)
	}

	resp, err := c.sender.Send(ctx, message.Request{Action: message.ActionCreateHiddenWindow, URL: url})
	if err != nil {
		c.logger.Warn("create window request not answered", "err", err)
		return c.notice("Could not reach the extension", LevelError)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "unknown error"
		}
		return c.notice("Error creating window: "+msg, LevelError)
	}
	return c.notice("Window created (id "+strconv.Itoa(resp.WindowID)+")", LevelSuccess)
}

// Usage fetches the usage log. Any failure yields an empty log.
func (c *Controller) Usage(ctx context.Context) []history.UsageRecord {
	resp, err := c.sender.Send(ctx, message.Request{Action: message.ActionGetUsageData})
	if err != nil || !resp.Success || resp.Data == nil {
		if err != nil {
			c.logger.Warn("usage request not answered", "err", err)
		}
		return []history.UsageRecord{}
	}
	return resp.Data
}

// Stats returns the total count and the top-domain chart.
func (c *Controller) Stats(ctx context.Context) Stats {
	records := c.Usage(ctx)
	return Stats{Total: len(records), Chart: BuildChart(records, c.topDomains)}
}

// BuildChart turns records into chart labels and values.
func BuildChart(records []history.UsageRecord, n int) Chart {
	top := history.TopDomains(records, n)
	chart := Chart{Labels: make([]string, len(top)), Values: make([]int, len(top))}
	for i, d := range top {
		chart.Labels[i] = d.Domain
		chart.Values[i] = d.Count
	}
	return chart
}

// Enabled reports the toggle state. It defaults to on, including when the
// setting cannot be read.
func (c *Controller) Enabled(ctx context.Context) bool {
	if c.settings == nil {
		return c.enabled
	}
	v, ok, err := c.settings.Get(ctx, EnabledKey)
	if err != nil || !ok {
		return true
	}
	on, err := strconv.ParseBool(string(v))
	if err != nil {
		return true
	}
	return on
}

// Toggle flips the enabled state and returns the notice to show.
func (c *Controller) Toggle(ctx context.Context) (bool, Notice) {
	on := !c.Enabled(ctx)
	if c.settings == nil {
		c.enabled = on
	} else {
		if err := c.settings.Set(ctx, EnabledKey, []byte(strconv.FormatBool(on))); err != nil {
			c.logger.Warn("toggle state not saved", "err", err)
		}
	}
	if on {
		return on, c.notice("Extension enabled", LevelSuccess)
	}
	return on, c.notice("Extension disabled", LevelInfo)
}
