package cli

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/urlhider/internal/popup"
	"github.com/runnerr0/urlhider/internal/window"
)

func newOpenCommand(t *testing.T, d *testDeps, url string) *OpenCommand {
	return &OpenCommand{
		URL:     url,
		globals: &GlobalFlags{Config: writeTestConfig(t, "")},
		deps:    d.deps,
	}
}

func TestOpen_RecordsAndReportsWindow(t *testing.T) {
	host := newFakeHost()
	d := newTestDeps(host, "")

	require.NoError(t, newOpenCommand(t, d, "https://example.com/page").Execute(nil))

	assert.Contains(t, d.out.String(), "Window created (id 1)")
	require.Len(t, host.created, 1)
	assert.Equal(t, window.Geometry{Left: 50, Top: 50, Width: 900, Height: 600}, host.created[0].Geometry)
	assert.Equal(t, window.TypePopup, host.created[0].Type)

	recs := d.records(t)
	require.Len(t, recs, 1)
	assert.Equal(t, "example.com", recs[0].Domain)
	assert.Equal(t, "https://example.com/page", recs[0].URL)
}

func TestOpen_InvalidURL(t *testing.T) {
	host := newFakeHost()
	d := newTestDeps(host, "")

	err := newOpenCommand(t, d, "not a url").Execute(nil)
	require.Error(t, err)
	assert.Equal(t, "Invalid URL", err.Error())
	assert.Empty(t, host.created)
	assert.Empty(t, d.records(t))
}

func TestOpen_EmptyURLWithoutActiveTab(t *testing.T) {
	d := newTestDeps(newFakeHost(), "")

	err := newOpenCommand(t, d, "").Execute(nil)
	require.Error(t, err)
	assert.Equal(t, "Please enter a valid URL", err.Error())
}

func TestOpen_DefaultsToActiveTab(t *testing.T) {
	host := newFakeHost()
	host.activeTab = "https://tab.example.org/x"
	d := newTestDeps(host, "")

	require.NoError(t, newOpenCommand(t, d, "").Execute(nil))

	require.Len(t, host.created, 1)
	assert.Equal(t, "https://tab.example.org/x", host.created[0].URL)
}

func TestOpen_HostFailure(t *testing.T) {
	host := newFakeHost()
	host.createErr = errors.New("boom")
	d := newTestDeps(host, "")

	err := newOpenCommand(t, d, "https://example.com").Execute(nil)
	require.Error(t, err)
	assert.Equal(t, "Error creating window: host rejected window: boom", err.Error())
	assert.Empty(t, d.records(t))
}

func TestOpen_Disabled(t *testing.T) {
	host := newFakeHost()
	d := newTestDeps(host, "")
	require.NoError(t, d.kv.Set(context.Background(), popup.EnabledKey, []byte("false")))

	require.NoError(t, newOpenCommand(t, d, "https://example.com").Execute(nil))

	assert.Contains(t, d.out.String(), "Extension is disabled")
	assert.Empty(t, host.created)
}

func TestOpen_JSON(t *testing.T) {
	d := newTestDeps(newFakeHost(), "")
	cmd := newOpenCommand(t, d, "https://example.com")
	cmd.globals.JSON = true

	require.NoError(t, cmd.Execute(nil))

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(d.out.Bytes(), &out))
	assert.Equal(t, "success", out["level"])
	assert.Equal(t, "Window created (id 1)", out["message"])
	assert.Equal(t, "https://example.com", out["url"])
}
