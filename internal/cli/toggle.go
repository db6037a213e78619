package cli

import (
	"context"
	"fmt"
)

// Execute implements the go-flags Commander interface for ToggleCommand.
func (c *ToggleCommand) Execute(args []string) error {
	ctx := context.Background()

	e, err := setup(ctx, c.globals, c.deps)
	if err != nil {
		return err
	}
	defer e.close()

	on, n := e.controller(nil, nil).Toggle(ctx)

	if c.globals.JSON {
		return writeJSON(e.stdout(), map[string]interface{}{
			"enabled": on,
			"message": n.Text,
		})
	}
	fmt.Fprint(e.stdout(), renderNotice(n))
	return nil
}
