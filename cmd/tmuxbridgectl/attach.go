package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
	"golang.org/x/term"

	"tmux-agent-bridge/pkg/bridge"
)

// runAttach opens an interactive PTY session to a tmux pane, locally or
// through ssh, grounded on the teacher's __connect subcommand (pty.Start,
// raw local terminal mode, a resize watcher split by OS build tag). Unlike
// __connect this never injects a password; it only starts "tmux attach".
func runAttach(e *env, args []string) error {
	fs := flag.NewFlagSet("attach", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if t.session == "" {
		return fmt.Errorf("attach requires -session")
	}

	bin := e.cfg.BinaryPath
	if prof, ok := e.hosts[t.host]; ok && prof.TmuxBin != "" {
		bin = prof.TmuxBin
	}
	if bin == "" {
		bin = "tmux"
	}

	target := t.session
	if t.window != "" {
		target = t.session + ":" + t.window
	}
	if t.pane != "" {
		target = t.pane
	}

	var cmd *exec.Cmd
	if t.host == "" {
		cmd = exec.Command(bin, "attach-session", "-t", target)
	} else {
		// Run directly under ssh's pty (no `| sh` pipeline) so tmux gets a
		// terminal on stdin.
		remote := "PATH=/usr/local/bin:/usr/bin:/bin exec " + bridge.ShellSingleQuote(bin) + " attach-session -t " + bridge.ShellSingleQuote(target)
		cmd = exec.Command("ssh", "-t", t.host, remote)
	}

	ptmx, err := pty.Start(cmd)
	if err != nil {
		return fmt.Errorf("attach: pty start: %w", err)
	}
	defer func() { _ = ptmx.Close() }()

	if term.IsTerminal(int(os.Stdout.Fd())) {
		if cols, rows, sizeErr := term.GetSize(int(os.Stdout.Fd())); sizeErr == nil && rows > 0 && cols > 0 {
			_ = pty.Setsize(ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
		}
	}
	startPTYResizeWatcher(ptmx)

	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		oldState, sErr := term.MakeRaw(fd)
		if sErr == nil {
			defer func() { _ = term.Restore(fd, oldState) }()
		}
	}

	go func() { _, _ = io.Copy(ptmx, os.Stdin) }()
	_, _ = io.Copy(os.Stdout, ptmx)

	return cmd.Wait()
}
