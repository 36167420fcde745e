package palette

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"os/exec"
	"strconv"
	"strings"
)

type launcherKind int

const (
	kindRofi launcherKind = iota
	kindFuzzel
	kindWofi
	kindDmenu
)

// launcher drives any dmenu-compatible program over stdin/stdout.
type launcher struct {
	command string
	kind    launcherKind
}

func (l *launcher) Name() string { return l.command }

// byIndex reports whether the launcher prints the row index instead of text.
func (l *launcher) byIndex() bool {
	return l.kind == kindRofi || l.kind == kindFuzzel
}

func (l *launcher) Show(prompt string, items []Item, message string) (SelectResult, error) {
	if len(items) == 0 {
		return SelectResult{}, fmt.Errorf("palette: no items to show")
	}
	rows := make([]Item, len(items))
	copy(rows, items)
	if !l.byIndex() {
		disambiguate(rows)
	}

	cmd := exec.Command(l.command, l.args(prompt, message, rows)...)
	cmd.Stdin = strings.NewReader(l.input(rows))
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	selection := strings.TrimSpace(string(out))

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return SelectResult{}, fmt.Errorf("%s failed: %w", l.command, err)
		}
		exitCode = exitErr.ExitCode()
		// 1 is "nothing chosen", 130 is Ctrl+C.
		if exitCode == 1 || exitCode == 130 {
			return SelectResult{}, ErrCancelled
		}
		// rofi kb-custom-N exits are 10..28.
		if exitCode < 10 || exitCode > 28 {
			if msg := strings.TrimSpace(stderr.String()); msg != "" {
				return SelectResult{}, fmt.Errorf("%s failed: %s", l.command, msg)
			}
			return SelectResult{}, fmt.Errorf("%s failed: %w", l.command, err)
		}
	}
	if selection == "" {
		return SelectResult{}, ErrCancelled
	}

	item, err := l.parse(selection, rows)
	if err != nil {
		return SelectResult{}, err
	}
	if item.IsHeader {
		return SelectResult{}, ErrCancelled
	}
	return SelectResult{Item: item, ExitCode: exitCode}, nil
}

func (l *launcher) args(prompt, message string, rows []Item) []string {
	var args []string
	switch l.kind {
	case kindRofi:
		args = []string{"-dmenu", "-i", "-format", "i", "-no-custom", "-markup-rows", "-show-icons"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
		if active := activeRows(rows); active != "" {
			args = append(args, "-a", active)
		}
		if message != "" {
			args = append(args, "-mesg", html.EscapeString(message))
		}
	case kindFuzzel:
		args = []string{"--dmenu", "--index"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case kindWofi:
		args = []string{"--dmenu"}
		if prompt != "" {
			args = append(args, "--prompt", prompt)
		}
	case kindDmenu:
		args = []string{"-i", "-l", "20"}
		if prompt != "" {
			args = append(args, "-p", prompt)
		}
	}
	return args
}

func (l *launcher) input(rows []Item) string {
	lines := make([]string, len(rows))
	for i, it := range rows {
		lines[i] = l.row(it)
	}
	return strings.Join(lines, "\n")
}

// row renders one line. rofi takes per-row attributes after a single NUL,
// as key\x1fvalue pairs also separated by \x1f.
func (l *launcher) row(it Item) string {
	label := cleanLabel(it.Label)
	if l.kind != kindRofi {
		if it.IsHeader {
			return "== " + label + " =="
		}
		return label
	}

	label = html.EscapeString(label)
	var attrs []string
	if it.IsHeader {
		label = "<b>" + label + "</b>"
		attrs = append(attrs, "nonselectable", "true")
	}
	if it.Icon != "" {
		attrs = append(attrs, "icon", cleanField(it.Icon))
	}
	if it.Meta != "" {
		attrs = append(attrs, "meta", cleanField(it.Meta))
	}
	if len(attrs) == 0 {
		return label
	}
	return label + "\x00" + strings.Join(attrs, "\x1f")
}

func (l *launcher) parse(selection string, rows []Item) (Item, error) {
	if l.byIndex() {
		if idx, err := strconv.Atoi(selection); err == nil {
			if idx < 0 || idx >= len(rows) {
				return Item{}, fmt.Errorf("palette: index %d out of range", idx)
			}
			return rows[idx], nil
		}
	}
	for _, it := range rows {
		if l.row(it) == selection || cleanLabel(it.Label) == selection {
			return it, nil
		}
	}
	return Item{}, fmt.Errorf("palette: unknown selection %q", selection)
}

// disambiguate suffixes repeated labels so text-matching launchers can tell
// them apart.
func disambiguate(rows []Item) {
	seen := make(map[string]int)
	for i := range rows {
		if rows[i].IsHeader {
			continue
		}
		key := cleanLabel(rows[i].Label)
		if n := seen[key]; n > 0 {
			rows[i].Label = fmt.Sprintf("%s (%d)", key, n+1)
		}
		seen[key]++
	}
}

func activeRows(rows []Item) string {
	var idx []string
	for i, it := range rows {
		if it.IsActive && !it.IsHeader {
			idx = append(idx, strconv.Itoa(i))
		}
	}
	return strings.Join(idx, ",")
}

func cleanLabel(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(s))
}

func cleanField(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\x00", " ", "\x1f", " ", "\r", " ", "\n", " ").Replace(s))
}
