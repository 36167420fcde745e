package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/1broseidon/viewwall/internal/ipc"
	"github.com/1broseidon/viewwall/internal/tui"
)

func runTop(args []string) int {
	fs := flag.NewFlagSet("top", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	interval := fs.Duration("interval", time.Second, "Refresh interval")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: viewwall top [--interval D]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Live dashboard of the wall.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  tab, 1/2   Switch between the viewer list and wall map")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓   Select a viewer")
		fmt.Fprintln(os.Stderr, "  a          Arrange")
		fmt.Fprintln(os.Stderr, "  g          Gather at the center")
		fmt.Fprintln(os.Stderr, "  f / u      Fullscreen / restore the selected viewer")
		fmt.Fprintln(os.Stderr, "  n / p      Advance / go back")
		fmt.Fprintln(os.Stderr, "  c          Close all")
		fmt.Fprintln(os.Stderr, "  q, Ctrl+C  Quit")
		return 0
	}

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if err := tui.Run(ipc.NewClient(), *interval); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
