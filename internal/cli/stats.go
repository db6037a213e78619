package cli

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"

	"github.com/runnerr0/urlhider/internal/popup"
)

// Execute implements the go-flags Commander interface for StatsCommand.
func (c *StatsCommand) Execute(args []string) error {
	ctx := context.Background()

	e, err := setup(ctx, c.globals, c.deps)
	if err != nil {
		return err
	}
	defer e.close()

	// Stats only reads the log, so the router runs without a window host.
	ctrl := e.controller(e.router(nil), nil)
	records := ctrl.Usage(ctx)

	top := c.Top
	if top <= 0 {
		top = e.cfg.History.ChartTopDomains
	}
	stats := popup.Stats{Total: len(records), Chart: popup.BuildChart(records, top)}

	if c.globals.JSON {
		return writeJSON(e.stdout(), stats)
	}

	out := e.stdout()
	fmt.Fprintf(out, "Total opens: %d\n", stats.Total)
	if len(stats.Chart.Labels) == 0 {
		fmt.Fprintln(out, "No data available")
		return nil
	}

	chart, err := renderChart(stats.Chart)
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, chart)
	return nil
}

func renderChart(chart popup.Chart) (string, error) {
	bars := make(pterm.Bars, len(chart.Labels))
	for i, label := range chart.Labels {
		bars[i] = pterm.Bar{Label: label, Value: chart.Values[i]}
	}
	return pterm.DefaultBarChart.
		WithBars(bars).
		WithHorizontal().
		WithShowValue().
		Srender()
}
