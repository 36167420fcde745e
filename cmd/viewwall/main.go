package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/1broseidon/viewwall/internal/config"
	"github.com/1broseidon/viewwall/internal/ipc"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		if len(os.Args) > 2 && (os.Args[2] == "help" || os.Args[2] == "-h" || os.Args[2] == "--help") {
			fmt.Fprintln(os.Stdout, "Usage: viewwall daemon")
			os.Exit(0)
		}
		if len(os.Args) > 2 {
			fmt.Fprintln(os.Stderr, "daemon takes no arguments")
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Usage: viewwall daemon")
			os.Exit(2)
		}
		runDaemon()
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "viewers":
		os.Exit(runViewers(os.Args[2:]))
	case "displays":
		os.Exit(runDisplays(os.Args[2:]))
	case "launch":
		os.Exit(runLaunch(os.Args[2:]))
	case "close-all":
		os.Exit(runCloseAll(os.Args[2:]))
	case "arrange":
		os.Exit(runSimple("arrange", "Pack the normal-layer viewers.", os.Args[2:], ipc.NewClient().Arrange))
	case "gather":
		os.Exit(runGather(os.Args[2:]))
	case "fullscreen":
		os.Exit(runViewerCommand("fullscreen", "Fullscreen a viewer.", os.Args[2:], ipc.NewClient().Fullscreen))
	case "unfullscreen":
		os.Exit(runViewerCommand("unfullscreen", "Restore a fullscreen viewer.", os.Args[2:], ipc.NewClient().Unfullscreen))
	case "advance":
		os.Exit(runAdvance(os.Args[2:]))
	case "present":
		os.Exit(runPresent(os.Args[2:]))
	case "exit":
		os.Exit(runSimple("exit", "Close every viewer and stop the daemon.", os.Args[2:], ipc.NewClient().Exit))
	case "reload":
		os.Exit(runSimple("reload", "Reload the daemon configuration.", os.Args[2:], ipc.NewClient().Reload))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "top":
		os.Exit(runTop(os.Args[2:]))
	case "palette":
		os.Exit(runPalette(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: viewwall <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the viewwall daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  viewers             List open viewers")
	fmt.Fprintln(w, "  displays            List displays and the wall surface")
	fmt.Fprintln(w, "  reload              Reload the daemon configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  launch              Open a viewer")
	fmt.Fprintln(w, "  close-all           Close every viewer")
	fmt.Fprintln(w, "  arrange             Pack the normal-layer viewers")
	fmt.Fprintln(w, "  gather              Pull viewers toward a point")
	fmt.Fprintln(w, "  fullscreen ID       Fullscreen a viewer")
	fmt.Fprintln(w, "  unfullscreen ID     Restore a fullscreen viewer")
	fmt.Fprintln(w, "  advance             Next slide or PDF page")
	fmt.Fprintln(w, "  present             Start, jump within or end a presentation")
	fmt.Fprintln(w, "  exit                Close every viewer and stop the daemon")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  top                 Live wall dashboard")
	fmt.Fprintln(w, "  palette             Open the rofi/dmenu command palette")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'viewwall <command> --help' for command-specific options.")
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: viewwall status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	jsonOut := fs.Bool("json", false, "Output the full status as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(status)
	}
	fmt.Printf("daemon_running:   %v\n", status.DaemonRunning)
	fmt.Printf("display:          %.0fx%.0f\n", status.Display.Width, status.Display.Height)
	fmt.Printf("viewers:          %d\n", len(status.Viewers))
	fmt.Printf("darkeners:        %d\n", status.Darkeners)
	fmt.Printf("pending_removals: %d\n", status.PendingRemovals)
	fmt.Printf("idle:             %v\n", status.Idle)
	if p := status.Presentation; p.PresentationID != 0 {
		fmt.Printf("presentation:     %d (slide %d)\n", p.PresentationID, p.SlideID)
	}
	fmt.Printf("uptime_seconds:   %d\n", status.UptimeSeconds)

	types := make([]string, 0, len(status.CountByType))
	for t := range status.CountByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Printf("  %-28s %d\n", t, status.CountByType[t])
	}
	return 0
}

func runViewers(args []string) int {
	fs := flag.NewFlagSet("viewers", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: viewwall viewers [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List open viewers in activation order (front-most last).")
	}
	jsonOut := fs.Bool("json", false, "Output as JSON")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	data, err := ipc.NewClient().ListViewers()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *jsonOut {
		return printJSON(data.Viewers)
	}
	for _, v := range data.Viewers {
		flags := ""
		if v.Fullscreen {
			flags += " fullscreen"
		}
		if v.Removing {
			flags += " closing"
		}
		f := v.Frame
		fmt.Printf("%s  %-28s %-10s %5.0fx%-5.0f at %5.0f,%-5.0f%s\n", v.ID, v.Type, v.Layer, f.Width, f.Height, f.X, f.Y, flags)
	}
	return 0
}

func runDisplays(args []string) int {
	if len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help") {
		fmt.Fprintln(os.Stdout, "Usage: viewwall displays")
		return 0
	}
	data, err := ipc.NewClient().GetDisplays()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("wall: %dx%d\n", data.Wall.Width, data.Wall.Height)
	for _, d := range data.Displays {
		fmt.Printf("- %d %s %dx%d+%d+%d\n", d.ID, d.Name, d.Width, d.Height, d.X, d.Y)
	}
	return 0
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func loadConfigAt(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  viewwall config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  viewwall config print [--path PATH] [--effective|--defaults]")
		fmt.Fprintln(os.Stderr, "  viewwall config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/viewwall/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfigAt(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/viewwall/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		printEffective := fs.Bool("effective", false, "Print effective config (default)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			_ = printEffective // default
			res, err := loadConfigAt(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/viewwall/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfigAt(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
