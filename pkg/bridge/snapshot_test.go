package bridge

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// routingTransport dispatches Run calls by argv[0] to a canned handler,
// avoiding the ordering assumptions a shared fakeTransport would need when
// Snapshot fans the three list calls out across goroutines.
type routingTransport struct {
	mu       sync.Mutex
	handlers map[string]func(args []string) (string, error)
}

func (r *routingTransport) Run(ctx context.Context, args []string) (string, error) {
	r.mu.Lock()
	h := r.handlers[args[0]]
	r.mu.Unlock()
	if h == nil {
		return "", errors.New("unhandled verb: " + args[0])
	}
	return h(args)
}

func assemblerFor(rt *routingTransport) Assembler {
	return Assembler{
		Resolver: Resolver{},
		NewPrims: func(host string) Primitives { return Primitives{T: rt} },
	}
}

func TestSnapshot_NoSessionResolvesToError(t *testing.T) {
	rt := &routingTransport{handlers: map[string]func(args []string) (string, error){}}
	a := assemblerFor(rt)
	_, err := a.Snapshot(context.Background(), "", "", 0)
	if !AsKind(err, KindNoSession) {
		t.Fatalf("expected NoSession, got %v", err)
	}
}

func TestSnapshot_PartialListingFailureYieldsEmptySections(t *testing.T) {
	rt := &routingTransport{handlers: map[string]func(args []string) (string, error){
		"list-sessions": func(args []string) (string, error) {
			return "", errors.New("boom")
		},
		"list-windows": func(args []string) (string, error) {
			return "main\t@1\t0\tvim\t1\t1\t\n", nil
		},
		"list-panes": func(args []string) (string, error) {
			return "main\t@1\t%1\t0\t1\t/dev/ttys0\tvim\ttitle\n", nil
		},
		"capture-pane": func(args []string) (string, error) {
			return "hello\n", nil
		},
	}}
	a := assemblerFor(rt)
	snap, err := a.Snapshot(context.Background(), "", "main", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.SessionsText != "" {
		t.Fatalf("expected empty sessions text on listing failure, got %q", snap.SessionsText)
	}
	if !strings.Contains(snap.WindowsText, "@1") {
		t.Fatalf("expected windows text to be populated, got %q", snap.WindowsText)
	}
	if snap.Capture != "hello\n" {
		t.Fatalf("capture = %q", snap.Capture)
	}
}

func TestSnapshot_ExplicitPaneCaptureFailurePropagates(t *testing.T) {
	rt := &routingTransport{handlers: map[string]func(args []string) (string, error){
		"list-sessions": func(args []string) (string, error) { return "", nil },
		"list-windows":  func(args []string) (string, error) { return "", nil },
		"list-panes":    func(args []string) (string, error) { return "", nil },
		"capture-pane": func(args []string) (string, error) {
			return "", errors.New("no such pane")
		},
	}}
	a := Assembler{
		Resolver: Resolver{
			HostProfiles: map[string]HostProfile{
				"h1": {DefaultPane: "%9"},
			},
		},
		NewPrims: func(host string) Primitives { return Primitives{T: rt} },
	}
	_, err := a.Snapshot(context.Background(), "h1", "main", 50)
	if err == nil {
		t.Fatalf("expected explicit pane capture failure to propagate")
	}
}

func TestSnapshot_ActivePaneSelection(t *testing.T) {
	rt := &routingTransport{handlers: map[string]func(args []string) (string, error){
		"list-sessions": func(args []string) (string, error) {
			return "$1\tmain\t2\t1\t1000\n", nil
		},
		"list-windows": func(args []string) (string, error) {
			return "main\t@1\t0\tshell\t0\t1\t\n" +
				"main\t@2\t1\tvim\t1\t1\t\n", nil
		},
		"list-panes": func(args []string) (string, error) {
			return "main\t@1\t%1\t0\t0\t/dev/ttys0\tbash\ttitle\n" +
				"main\t@2\t%2\t0\t1\t/dev/ttys1\tvim\ttitle\n", nil
		},
		"capture-pane": func(args []string) (string, error) {
			found := false
			for i, a := range args {
				if a == "-t" && i+1 < len(args) && args[i+1] == "%2" {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected capture-pane -t %%2, got %v", args)
			}
			return "active pane contents\n", nil
		},
	}}
	a := assemblerFor(rt)
	snap, err := a.Snapshot(context.Background(), "", "main", 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.CaptureTarget != "%2" {
		t.Fatalf("CaptureTarget = %q, want %%2", snap.CaptureTarget)
	}
	if snap.Capture != "active pane contents\n" {
		t.Fatalf("Capture = %q", snap.Capture)
	}
	if snap.CaptureRequestedLines != 200 {
		t.Fatalf("CaptureRequestedLines = %d", snap.CaptureRequestedLines)
	}
}
