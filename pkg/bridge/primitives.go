package bridge

import (
	"context"
	"strconv"
	"strings"
)

// primitives.go implements C4: thin, semantic operations over Transport.
// Each has a fixed argv template per §4.4.

// Session is a parsed list-sessions record.
type Session struct {
	ID       string
	Name     string
	Windows  int
	Attached bool
	Created  int64
}

// WindowRec is a parsed list-windows record.
type WindowRec struct {
	Session string
	ID      string
	Index   int
	Name    string
	Active  bool
	Panes   int
	Flags   string
}

// PaneRec is a parsed list-panes record.
type PaneRec struct {
	Session string
	Window  string
	ID      string
	Index   int
	Active  bool
	TTY     string
	Command string
	Title   string
}

const (
	sessionFmt = "#{session_id}\t#{session_name}\t#{session_windows}\t#{session_attached}\t#{session_created}"
	windowFmt  = "#{session_name}\t#{window_id}\t#{window_index}\t#{window_name}\t#{window_active}\t#{window_panes}\t#{window_flags}"
	paneFmt    = "#{session_name}\t#{window_id}\t#{pane_id}\t#{pane_index}\t#{pane_active}\t#{pane_tty}\t#{pane_current_command}\t#{pane_title}"
)

// Primitives bundles a Transport with the fixed argv templates of §4.4.
type Primitives struct {
	T Transport
}

// ListSessions runs `list-sessions -F <fmt>` and parses the tab-separated
// result.
func (p Primitives) ListSessions(ctx context.Context) ([]Session, error) {
	out, err := p.T.Run(ctx, []string{"list-sessions", "-F", sessionFmt})
	if err != nil {
		return nil, err
	}
	var sessions []Session
	for _, line := range splitNonEmptyLines(out) {
		f := strings.Split(line, "\t")
		if len(f) < 5 {
			continue
		}
		sessions = append(sessions, Session{
			ID:       f[0],
			Name:     f[1],
			Windows:  atoiOr0(f[2]),
			Attached: f[3] == "1",
			Created:  int64(atoiOr0(f[4])),
		})
	}
	return sessions, nil
}

// ListWindows runs `list-windows [-t target] -F <fmt>`.
func (p Primitives) ListWindows(ctx context.Context, target string) ([]WindowRec, error) {
	args := []string{"list-windows"}
	if target != "" {
		args = append(args, "-t", target)
	}
	args = append(args, "-F", windowFmt)
	out, err := p.T.Run(ctx, args)
	if err != nil {
		return nil, err
	}
	var windows []WindowRec
	for _, line := range splitNonEmptyLines(out) {
		f := strings.Split(line, "\t")
		if len(f) < 7 {
			continue
		}
		windows = append(windows, WindowRec{
			Session: f[0],
			ID:      f[1],
			Index:   atoiOr0(f[2]),
			Name:    f[3],
			Active:  f[4] == "1",
			Panes:   atoiOr0(f[5]),
			Flags:   f[6],
		})
	}
	return windows, nil
}

// ListPanes runs `list-panes [-t target] -F <fmt>`.
func (p Primitives) ListPanes(ctx context.Context, target string) ([]PaneRec, error) {
	args := []string{"list-panes"}
	if target != "" {
		args = append(args, "-t", target)
	}
	args = append(args, "-F", paneFmt)
	out, err := p.T.Run(ctx, args)
	if err != nil {
		return nil, err
	}
	var panes []PaneRec
	for _, line := range splitNonEmptyLines(out) {
		f := strings.Split(line, "\t")
		if len(f) < 8 {
			continue
		}
		panes = append(panes, PaneRec{
			Session: f[0],
			Window:  f[1],
			ID:      f[2],
			Index:   atoiOr0(f[3]),
			Active:  f[4] == "1",
			TTY:     f[5],
			Command: f[6],
			Title:   f[7],
		})
	}
	return panes, nil
}

// CapturePane runs `capture-pane -p -t pane -S start [-E end]`.
func (p Primitives) CapturePane(ctx context.Context, pane string, start int, end *int) (string, error) {
	if pane == "" {
		return "", newErr(KindInvalidTarget, "capture-pane requires a pane target")
	}
	args := []string{"capture-pane", "-p", "-t", pane, "-S", strconv.Itoa(start)}
	if end != nil {
		args = append(args, "-E", strconv.Itoa(*end))
	}
	return p.T.Run(ctx, args)
}

// sendKeysTokens maps the caller-facing special tokens to tmux key names.
var sendKeysTokens = map[string]string{
	"<SPACE>": "Space",
	"<TAB>":   "Tab",
	"<ESC>":   "Escape",
	"<ENTER>": "Enter",
}

// SendKeys runs `send-keys -t pane -- key1 key2 ... [Enter]` per the
// send-keys policy in §4.4: special tokens are mapped, empty keys are only
// allowed with enter=true, and enter=true appends Enter unless the mapped
// token already is Enter.
func (p Primitives) SendKeys(ctx context.Context, pane, keys string, enter bool) (string, error) {
	mapped, isEnterToken := mapSendKeysToken(keys)
	if mapped == "" && !enter {
		return "", newErr(KindInvalidKeys, "empty keys require enter=true")
	}

	args := []string{"send-keys", "-t", pane, "--"}
	if mapped != "" {
		args = append(args, mapped)
	}
	if enter && !isEnterToken {
		args = append(args, "Enter")
	}
	return p.T.Run(ctx, args)
}

func mapSendKeysToken(keys string) (mapped string, isEnter bool) {
	trimmed := strings.TrimSpace(keys)
	if tok, ok := sendKeysTokens[keys]; ok {
		return tok, tok == "Enter"
	}
	if tok, ok := sendKeysTokens[trimmed]; ok {
		return tok, tok == "Enter"
	}
	return keys, false
}

// NewSession runs `new-session -d -s name [command]`.
func (p Primitives) NewSession(ctx context.Context, name, command string) (string, error) {
	if name == "" {
		return "", newErr(KindInvalidTarget, "new-session requires a name")
	}
	args := []string{"new-session", "-d", "-s", name}
	if command != "" {
		args = append(args, command)
	}
	return p.T.Run(ctx, args)
}

// NewWindow runs `new-window [-t session] [-n name] -P -F '#{window_name}'
// [command]` and returns the final window name printed by -P.
func (p Primitives) NewWindow(ctx context.Context, session, name, command string) (string, error) {
	args := []string{"new-window"}
	if session != "" {
		args = append(args, "-t", session)
	}
	if name != "" {
		args = append(args, "-n", name)
	}
	args = append(args, "-P", "-F", "#{window_name}")
	if command != "" {
		args = append(args, command)
	}
	return p.T.Run(ctx, args)
}

// SplitPane runs `split-window -t pane {-h|-v} [command]`.
func (p Primitives) SplitPane(ctx context.Context, pane string, horizontal bool, command string) (string, error) {
	args := []string{"split-window", "-t", pane}
	if horizontal {
		args = append(args, "-h")
	} else {
		args = append(args, "-v")
	}
	if command != "" {
		args = append(args, command)
	}
	return p.T.Run(ctx, args)
}

// KillSession, KillWindow, KillPane run `kill-{session,window,pane} -t target`.
func (p Primitives) KillSession(ctx context.Context, target string) (string, error) {
	return p.T.Run(ctx, []string{"kill-session", "-t", target})
}
func (p Primitives) KillWindow(ctx context.Context, target string) (string, error) {
	return p.T.Run(ctx, []string{"kill-window", "-t", target})
}
func (p Primitives) KillPane(ctx context.Context, target string) (string, error) {
	return p.T.Run(ctx, []string{"kill-pane", "-t", target})
}

// RenameSession, RenameWindow run `rename-{...} -t target name`.
func (p Primitives) RenameSession(ctx context.Context, target, name string) (string, error) {
	return p.T.Run(ctx, []string{"rename-session", "-t", target, name})
}
func (p Primitives) RenameWindow(ctx context.Context, target, name string) (string, error) {
	return p.T.Run(ctx, []string{"rename-window", "-t", target, name})
}

// SelectWindow, SelectPane run `select-{window,pane} -t target`.
func (p Primitives) SelectWindow(ctx context.Context, target string) (string, error) {
	return p.T.Run(ctx, []string{"select-window", "-t", target})
}
func (p Primitives) SelectPane(ctx context.Context, target string) (string, error) {
	return p.T.Run(ctx, []string{"select-pane", "-t", target})
}

// SetSyncPanes runs `set-window-option -t target synchronize-panes on|off`.
func (p Primitives) SetSyncPanes(ctx context.Context, target string, on bool) (string, error) {
	v := "off"
	if on {
		v = "on"
	}
	return p.T.Run(ctx, []string{"set-window-option", "-t", target, "synchronize-panes", v})
}

// HasSession runs `has-session -t name` and reports presence via the exit
// code rather than the error's content.
func (p Primitives) HasSession(ctx context.Context, name string) bool {
	_, err := p.T.Run(ctx, []string{"has-session", "-t", name})
	return err == nil
}

// PipePane runs `pipe-pane -t pane '<shellCmd>'`, or with shellCmd empty,
// `pipe-pane -t pane` to turn it off.
func (p Primitives) PipePane(ctx context.Context, pane, shellCmd string) (string, error) {
	args := []string{"pipe-pane", "-t", pane}
	if shellCmd != "" {
		args = append(args, shellCmd)
	}
	return p.T.Run(ctx, args)
}

// SelectLayout runs `select-layout -t target layout`.
func (p Primitives) SelectLayout(ctx context.Context, target, layout string) (string, error) {
	return p.T.Run(ctx, []string{"select-layout", "-t", target, layout})
}

// DisplayMessage runs `display-message -p [-t target] fmt` and returns the
// raw text, used by the capture engine to read #{history_size} etc.
func (p Primitives) DisplayMessage(ctx context.Context, target, format string) (string, error) {
	args := []string{"display-message", "-p"}
	if target != "" {
		args = append(args, "-t", target)
	}
	args = append(args, format)
	return p.T.Run(ctx, args)
}

func splitNonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func atoiOr0(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
