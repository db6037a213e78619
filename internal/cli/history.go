package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/runnerr0/urlhider/internal/history"
)

// Execute implements the go-flags Commander interface for HistoryCommand.
func (c *HistoryCommand) Execute(args []string) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be >= 0")
	}

	ctx := context.Background()

	e, err := setup(ctx, c.globals, c.deps)
	if err != nil {
		return err
	}
	defer e.close()

	records, err := e.store.List(ctx)
	if err != nil {
		return fmt.Errorf("read usage log: %w", err)
	}
	records = filterRecords(records, c.Domain, c.Limit)

	if c.globals.JSON {
		return writeJSON(e.stdout(), records)
	}

	out := e.stdout()
	if len(records) == 0 {
		fmt.Fprintln(out, "No records")
		return nil
	}

	data := pterm.TableData{{"#", "Opened", "Domain", "URL"}}
	for i, r := range records {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			time.UnixMilli(r.Timestamp).Format("2006-01-02 15:04:05"),
			r.Domain,
			r.URL,
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	fmt.Fprintln(out, table)
	return nil
}

// filterRecords keeps records for domain (all when empty) and then the last
// limit of them (all when zero). Order is preserved.
func filterRecords(records []history.UsageRecord, domain string, limit int) []history.UsageRecord {
	out := records
	if domain != "" {
		out = make([]history.UsageRecord, 0, len(records))
		for _, r := range records {
			if strings.EqualFold(r.Domain, domain) {
				out = append(out, r)
			}
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
