package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/viewwall/internal/content"
	"github.com/1broseidon/viewwall/internal/ipc"
	"github.com/1broseidon/viewwall/internal/palette"
)

func runPalette(args []string) int {
	fs := flag.NewFlagSet("palette", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path")
	backendName := fs.String("backend", "", "Palette backend (overrides ui.palette_backend)")

	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stderr, "Usage: viewwall palette [--path PATH] [--backend NAME]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show a command palette for wall actions, live viewers and catalog content.")
		fmt.Fprintln(os.Stderr, "Backends: rofi, fuzzel, wofi, dmenu (default: ui.palette_backend, then auto).")
		return 0
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}

	res, err := loadConfigAt(*path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		return 1
	}
	name := res.Config.UI.PaletteBackend
	if *backendName != "" {
		name = *backendName
	}
	backend, err := palette.NewBackend(name)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	client := ipc.NewClient()
	list, err := client.ListViewers()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var models []*content.Model
	if res.Config.Content.Catalog != "" {
		cat, err := content.LoadCatalog(res.Config.Content.Catalog)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		} else {
			models = cat.All()
		}
	}

	if err := palette.Run(backend, client, list.Viewers, models); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
