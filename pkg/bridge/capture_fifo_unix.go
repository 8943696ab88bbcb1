//go:build !windows

package bridge

import (
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
)

// capture_fifo_unix.go: FIFO creation and reading for the pipe regime on
// POSIX systems. Windows has no FIFO primitive, so the pipe regime is
// unavailable there and Stream falls back to polling (capture_fifo_windows.go).
//
// Both the directory and the FIFO itself must exist on the host the tmux
// server runs on, since tmux's own pipe-pane write target ("cat >> fifo") is
// dispatched through the same Transport as every other primitive. When
// opts.Host is set, makePipeDir/makeFIFO issue mkdir/mkfifo through a
// RemoteTransport instead of touching the local filesystem.

// makePipeDir creates a fresh directory named name to hold the pipe regime's
// FIFO, locally or (when opts.Host != "") on the remote host, and returns a
// cleanup function that removes it.
func makePipeDir(ctx context.Context, opts StreamOptions, name string) (string, func(), error) {
	if opts.Host == "" {
		dir := filepath.Join(os.TempDir(), name)
		if err := os.Mkdir(dir, 0o700); err != nil {
			return "", nil, err
		}
		return dir, func() { _ = os.RemoveAll(dir) }, nil
	}

	sshBin := opts.RemoteSSHBin
	if sshBin == "" {
		sshBin = "ssh"
	}
	dir := "/tmp/" + name
	mk := RemoteTransport{Host: opts.Host, SSHBin: sshBin, Bin: "mkdir"}
	if _, err := mk.Run(ctx, []string{"-p", dir}); err != nil {
		return "", nil, err
	}
	rm := RemoteTransport{Host: opts.Host, SSHBin: sshBin, Bin: "rm"}
	return dir, func() { _, _ = rm.Run(context.Background(), []string{"-rf", dir}) }, nil
}

// makeFIFO creates the FIFO at path, locally or (when opts.Host != "") on the
// remote host via `mkfifo`, since a local-only FIFO is invisible to a tmux
// server running elsewhere.
func makeFIFO(ctx context.Context, opts StreamOptions, path string) error {
	if opts.Host == "" {
		return syscall.Mkfifo(path, 0o600)
	}
	sshBin := opts.RemoteSSHBin
	if sshBin == "" {
		sshBin = "ssh"
	}
	rt := RemoteTransport{Host: opts.Host, SSHBin: sshBin, Bin: "mkfifo"}
	_, err := rt.Run(ctx, []string{path})
	return err
}

// openPipeReader opens fifoPath for reading, locally or (when opts.Host is
// set) via a remote `cat` subprocess whose stdout is consumed, per §4.5(d).
func openPipeReader(ctx context.Context, opts StreamOptions, fifoPath string) (io.Reader, pipeReaderCloser, error) {
	if opts.Host == "" {
		f, err := os.OpenFile(fifoPath, os.O_RDONLY, 0)
		if err != nil {
			return nil, nil, err
		}
		return f, func() { _ = f.Close() }, nil
	}

	catBin := opts.RemoteCatBin
	if catBin == "" {
		catBin = "cat"
	}
	sshBin := opts.RemoteSSHBin
	if sshBin == "" {
		sshBin = "ssh"
	}
	cmd := exec.CommandContext(ctx, sshBin, opts.Host, catBin, fifoPath)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}
	return stdout, func() { _ = cmd.Wait() }, nil
}
