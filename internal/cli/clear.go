package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// Execute implements the go-flags Commander interface for ClearCommand.
func (c *ClearCommand) Execute(args []string) error {
	ctx := context.Background()

	e, err := setup(ctx, c.globals, c.deps)
	if err != nil {
		return err
	}
	defer e.close()

	out := e.stdout()

	// Confirmation prompt unless --force
	if !c.Force {
		fmt.Fprintln(out, "⚠ WARNING: This will permanently delete the usage log.")
		fmt.Fprintln(out, "This action cannot be undone.")
		fmt.Fprintln(out)
		fmt.Fprint(out, `Type "CLEAR" to confirm: `)

		scanner := bufio.NewScanner(e.stdin())
		if !scanner.Scan() {
			return fmt.Errorf("aborted: no input received")
		}
		if strings.TrimSpace(scanner.Text()) != "CLEAR" {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	records, err := e.store.List(ctx)
	if err != nil {
		return fmt.Errorf("read usage log: %w", err)
	}
	if err := e.store.Clear(ctx); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	if c.globals.JSON {
		return writeJSON(out, map[string]interface{}{
			"cleared": true,
			"records": len(records),
		})
	}
	fmt.Fprintf(out, "Usage log cleared (%d records deleted).\n", len(records))
	return nil
}
