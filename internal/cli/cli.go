package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Open    *OpenCommand
	Stats   *StatsCommand
	History *HistoryCommand
	Toggle  *ToggleCommand
	Clear   *ClearCommand
	Serve   *ServeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "urlhider"
	parser.LongDescription = "Open URLs in borderless popup windows and chart the domains you open most."

	cmds := &commands{
		Open:    &OpenCommand{globals: &globals, version: version},
		Stats:   &StatsCommand{globals: &globals, version: version},
		History: &HistoryCommand{globals: &globals, version: version},
		Toggle:  &ToggleCommand{globals: &globals, version: version},
		Clear:   &ClearCommand{globals: &globals, version: version},
		Serve:   &ServeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("open", "Open a URL in a popup window", "Open a URL in a borderless popup window placed over the focused window, and record it.", cmds.Open)
	parser.AddCommand("stats", "Show the most opened domains", "Show the total number of recorded opens and a bar chart of the top domains.", cmds.Stats)
	parser.AddCommand("history", "List recorded opens", "List the recorded usage log, oldest first.", cmds.History)
	parser.AddCommand("toggle", "Enable or disable opening", "Flip the persisted on/off switch for opening popup windows.", cmds.Toggle)
	parser.AddCommand("clear", "Delete the usage log", "Delete the usage log. Destructive operation with safety prompt.", cmds.Clear)
	parser.AddCommand("serve", "Run as a native messaging host", "Serve popup requests over the browser native messaging protocol on stdin/stdout.", cmds.Serve)

	return parser, &globals, cmds
}

// Run is the main entry point for the urlhider CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("urlhider %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
