package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/1broseidon/viewwall/internal/ipc"
)

// optFloat is a float flag that remembers whether it was given.
type optFloat struct {
	v   float64
	set bool
}

func (f *optFloat) String() string {
	if f == nil || !f.set {
		return ""
	}
	return strconv.FormatFloat(f.v, 'f', -1, 64)
}

func (f *optFloat) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	f.v, f.set = v, true
	return nil
}

func (f *optFloat) ptr() *float64 {
	if !f.set {
		return nil
	}
	v := f.v
	return &v
}

// parseLaunchArgs builds a LAUNCH payload from command-line flags. A single
// positional argument is treated as a user string.
func parseLaunchArgs(args []string) (ipc.LaunchPayload, error) {
	fs := flag.NewFlagSet("launch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: viewwall launch [flags] [USER_STRING]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a viewer. USER_STRING is a path, URL or \"key:value ! key:value\" request.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	var x, y optFloat
	var p ipc.LaunchPayload
	fs.StringVar(&p.ViewType, "type", "", "Viewer kind (default: titled_media_viewer)")
	fs.StringVar(&p.Layer, "layer", "", "Layer: background, normal or top")
	fs.Var(&x, "x", "Center x on the wall")
	fs.Var(&y, "y", "Center y on the wall")
	fs.Float64Var(&p.Width, "width", 0, "Starting width in pixels")
	fs.BoolVar(&p.Fullscreen, "fullscreen", false, "Open fullscreen")
	fs.IntVar(&p.ContentID, "content", 0, "Catalog content id")
	fs.StringVar(&p.MediaPath, "media", "", "Media file path or URL")
	fs.StringVar(&p.UserString, "string", "", "Raw user string")
	fs.IntVar(&p.Page, "page", 0, "Starting PDF page")
	fs.BoolVar(&p.Loop, "loop", false, "Loop video")
	fs.BoolVar(&p.Locked, "locked", false, "Open locked")
	volume := fs.Int("volume", -1, "Video volume 0-100")

	if err := fs.Parse(args); err != nil {
		return p, err
	}
	switch fs.NArg() {
	case 0:
	case 1:
		if p.UserString != "" {
			return p, fmt.Errorf("give either --string or a positional user string")
		}
		p.UserString = fs.Arg(0)
	default:
		return p, fmt.Errorf("launch takes at most one positional argument")
	}
	if *volume >= 0 {
		v := *volume
		p.Volume = &v
	}
	p.X, p.Y = x.ptr(), y.ptr()
	return p, nil
}

func runLaunch(args []string) int {
	p, err := parseLaunchArgs(args)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	data, err := ipc.NewClient().Launch(p)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if data.ViewerID != "" {
		fmt.Println(data.ViewerID)
	}
	return 0
}

func runCloseAll(args []string) int {
	fs := flag.NewFlagSet("close-all", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	slides := fs.Bool("slides", false, "Also close presentation slide content")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if err := ipc.NewClient().CloseAll(*slides); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// runSimple runs a command that takes no arguments.
func runSimple(name, desc string, args []string, fn func() error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: viewwall %s\n\n%s\n", name, desc)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2
	}
	if err := fn(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runViewerCommand(name, desc string, args []string, fn func(id string) error) int {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: viewwall %s <viewer-id>\n\n%s\n", name, desc)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "%s requires <viewer-id>\n", name)
		fs.Usage()
		return 2
	}
	if err := fn(fs.Arg(0)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runGather(args []string) int {
	fs := flag.NewFlagSet("gather", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: viewwall gather [--x X --y Y]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Pull viewers toward a point (default: center of the normal layer).")
	}
	var x, y optFloat
	fs.Var(&x, "x", "Gather point x")
	fs.Var(&y, "y", "Gather point y")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if x.set != y.set {
		fmt.Fprintln(os.Stderr, "gather needs both --x and --y, or neither")
		return 2
	}
	if err := ipc.NewClient().Gather(x.ptr(), y.ptr()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runAdvance(args []string) int {
	fs := flag.NewFlagSet("advance", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	back := fs.Bool("back", false, "Go backwards")
	pdf := fs.Bool("pdf", false, "Only turn the page of the front-most PDF")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	client := ipc.NewClient()
	var err error
	if *pdf {
		err = client.PDFPage(!*back)
	} else {
		err = client.Advance(!*back)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runPresent(args []string) int {
	fs := flag.NewFlagSet("present", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: viewwall present (--id ID | --slide ID | --end) [--controller]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Flags:")
		fs.PrintDefaults()
	}
	var p ipc.PresentationPayload
	fs.IntVar(&p.ID, "id", 0, "Presentation to start")
	fs.IntVar(&p.SlideID, "slide", 0, "Slide to jump to")
	fs.BoolVar(&p.End, "end", false, "End the running presentation")
	fs.BoolVar(&p.ShowController, "controller", false, "Show the presentation controller")
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if err := p.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return 2
	}
	if err := ipc.NewClient().Presentation(p); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
