//go:build windows

package bridge

import (
	"context"
	"errors"
	"io"
)

// capture_fifo_windows.go: Windows has no FIFO primitive usable the way the
// pipe regime needs, so makeFIFO always fails and Stream falls back to the
// polling regime.

func makePipeDir(ctx context.Context, opts StreamOptions, name string) (string, func(), error) {
	return "", nil, errors.New("pipe regime unsupported on windows")
}

func makeFIFO(ctx context.Context, opts StreamOptions, path string) error {
	return errors.New("pipe regime unsupported on windows")
}

func openPipeReader(ctx context.Context, opts StreamOptions, fifoPath string) (io.Reader, pipeReaderCloser, error) {
	return nil, nil, errors.New("pipe regime unsupported on windows")
}
