package window

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/playwright-community/playwright-go"
)

// PlaywrightOptions configures the Chromium instance driven by PlaywrightHost.
type PlaywrightOptions struct {
	Headless bool
	Channel  string // "" for bundled Chromium, or "chrome", "msedge"
	Install  bool   // download the driver and browser on Start
	// Initial geometry of the anchor window the first popup is placed over.
	Anchor Geometry
}

// PlaywrightHost implements Host with a Chromium browser driven through
// Playwright. Popups are opened from the focused page with window.open so
// the browser renders them without address bar or toolbar.
type PlaywrightHost struct {
	mu      sync.Mutex
	opts    PlaywrightOptions
	pw      *playwright.Playwright
	browser playwright.Browser
	anchor  playwright.Page
	windows map[int]playwright.Page
	order   []int
	nextID  int
}

// NewPlaywrightHost creates a host. Start must be called before use.
func NewPlaywrightHost(opts PlaywrightOptions) *PlaywrightHost {
	return &PlaywrightHost{
		opts:    opts,
		windows: make(map[int]playwright.Page),
		nextID:  1,
	}
}

// Start launches the browser and its anchor window.
func (h *PlaywrightHost) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pw != nil {
		return nil
	}

	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if h.opts.Install {
		if err := playwright.Install(runOpts); err != nil {
			return fmt.Errorf("install playwright: %w", err)
		}
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}

	a := h.opts.Anchor
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(h.opts.Headless),
		Args: []string{
			fmt.Sprintf("--window-position=%d,%d", a.Left, a.Top),
			fmt.Sprintf("--window-size=%d,%d", a.Width, a.Height),
		},
	}
	if h.opts.Channel != "" {
		launchOpts.Channel = playwright.String(h.opts.Channel)
	}

	browser, err := pw.Chromium.Launch(launchOpts)
	if err != nil {
		pw.Stop()
		return fmt.Errorf("launch browser: %w", err)
	}

	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		NoViewport: playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return fmt.Errorf("create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		browser.Close()
		pw.Stop()
		return fmt.Errorf("create anchor page: %w", err)
	}

	h.pw = pw
	h.browser = browser
	h.anchor = page
	return nil
}

// focused returns the most recently opened window that is still open,
// falling back to the anchor page.
func (h *PlaywrightHost) focused() (playwright.Page, error) {
	if h.anchor == nil {
		return nil, fmt.Errorf("browser not started")
	}
	for i := len(h.order) - 1; i >= 0; i-- {
		if p := h.windows[h.order[i]]; p != nil && !p.IsClosed() {
			return p, nil
		}
	}
	return h.anchor, nil
}

const geometryScript = `() => ({
	left: window.screenX,
	top: window.screenY,
	width: window.outerWidth,
	height: window.outerHeight
})`

// CurrentWindow reads the focused window's screen position and outer size.
func (h *PlaywrightHost) CurrentWindow(ctx context.Context) (Geometry, error) {
	if err := ctx.Err(); err != nil {
		return Geometry{}, err
	}

	h.mu.Lock()
	page, err := h.focused()
	h.mu.Unlock()
	if err != nil {
		return Geometry{}, err
	}

	v, err := page.Evaluate(geometryScript)
	if err != nil {
		return Geometry{}, fmt.Errorf("read window geometry: %w", err)
	}
	return parseGeometry(v)
}

const openScript = `([url, features]) => { window.open(url, "_blank", features) }`

// CreateWindow opens spec.URL from the focused page and waits for the popup.
func (h *PlaywrightHost) CreateWindow(ctx context.Context, spec Spec) (Handle, error) {
	if err := ctx.Err(); err != nil {
		return Handle{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	opener, err := h.focused()
	if err != nil {
		return Handle{}, err
	}

	features := windowFeatures(spec)
	popup, err := opener.ExpectPopup(func() error {
		_, err := opener.Evaluate(openScript, []interface{}{spec.URL, features})
		return err
	})
	if err != nil {
		return Handle{}, fmt.Errorf("open popup: %w", err)
	}

	if spec.Focused {
		if err := popup.BringToFront(); err != nil {
			return Handle{}, fmt.Errorf("focus popup: %w", err)
		}
	}

	id := h.nextID
	h.nextID++
	h.windows[id] = popup
	h.order = append(h.order, id)
	return Handle{ID: id}, nil
}

// Close shuts down the browser and the Playwright driver.
func (h *PlaywrightHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.pw == nil {
		return nil
	}
	_ = h.browser.Close() // Ignore errors, continue cleanup
	err := h.pw.Stop()
	h.pw, h.browser, h.anchor = nil, nil, nil
	h.windows = make(map[int]playwright.Page)
	h.order = nil
	return err
}

// windowFeatures builds the window.open feature string for spec.
func windowFeatures(spec Spec) string {
	g := spec.Geometry
	geom := fmt.Sprintf("left=%d,top=%d,width=%d,height=%d", g.Left, g.Top, g.Width, g.Height)
	if spec.Type == TypePopup {
		return "popup=yes," + geom
	}
	return geom
}

func parseGeometry(v interface{}) (Geometry, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return Geometry{}, fmt.Errorf("unexpected geometry result %T", v)
	}
	var g Geometry
	fields := []struct {
		name string
		dst  *int
	}{
		{"left", &g.Left}, {"top", &g.Top}, {"width", &g.Width}, {"height", &g.Height},
	}
	for _, f := range fields {
		n, err := toInt(m[f.name])
		if err != nil {
			return Geometry{}, fmt.Errorf("geometry %s: %w", f.name, err)
		}
		*f.dst = n
	}
	return g, nil
}

func toInt(v interface{}) (int, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
}

// ActiveTabURL returns the URL of the focused page.
func (h *PlaywrightHost) ActiveTabURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	page, err := h.focused()
	if err != nil {
		return "", err
	}
	return page.URL(), nil
}
