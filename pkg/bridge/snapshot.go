package bridge

import (
	"context"
	"sync"
)

// snapshot.go implements C10: compose a Snapshot by invoking C4/C5 and
// merging their outputs per §4.10.

// Snapshot is the composed view of a host/session returned to the caller.
type Snapshot struct {
	Host                  string
	Session               string
	SessionsText          string
	WindowsText           string
	PanesText             string
	CaptureTarget         string
	Capture               string
	CaptureRequestedLines int
	CaptureTruncated      bool
}

// Assembler composes Snapshots.
type Assembler struct {
	Resolver Resolver
	NewPrims func(host string) Primitives
}

// Snapshot implements §4.10's five-step contract: resolve host/session,
// concurrently list sessions/windows/panes, pick a capture target, capture
// captureLines (default 200), and return. Partial listing failures become
// empty sections; the call fails only on session resolution or capture of an
// explicitly provided target.
func (a Assembler) Snapshot(ctx context.Context, host, session string, captureLines int) (Snapshot, error) {
	eff, _, _ := a.Resolver.Resolve(PaneRef{Host: host, Session: session})
	if eff.Session == "" {
		return Snapshot{}, newErr(KindNoSession, "no session resolvable for snapshot")
	}
	if captureLines <= 0 {
		captureLines = 200
	}

	prims := a.NewPrims(eff.Host)

	var (
		wg                       sync.WaitGroup
		sessionsText, windowsText, panesText string
		panes                                []PaneRec
		windows                              []WindowRec
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		if list, err := prims.ListSessions(ctx); err == nil {
			sessionsText = formatSessions(list)
		}
	}()
	go func() {
		defer wg.Done()
		if list, err := prims.ListWindows(ctx, eff.Session); err == nil {
			windows = list
			windowsText = formatWindows(list)
		}
	}()
	go func() {
		defer wg.Done()
		if list, err := prims.ListPanes(ctx, eff.Session); err == nil {
			panes = list
			panesText = formatPanes(list)
		}
	}()
	wg.Wait()

	captureTarget := eff.Pane
	if captureTarget == "" {
		captureTarget = activePaneToken(eff.Session, windows, panes)
	}

	snap := Snapshot{
		Host:                  eff.Host,
		Session:               eff.Session,
		SessionsText:          sessionsText,
		WindowsText:           windowsText,
		PanesText:             panesText,
		CaptureTarget:         captureTarget,
		CaptureRequestedLines: captureLines,
	}

	if captureTarget == "" {
		snap.Capture = "(no capture target)"
		return snap, nil
	}

	out, err := prims.CapturePane(ctx, captureTarget, -captureLines, nil)
	if err != nil {
		if eff.Pane != "" {
			// an explicitly provided capture target must fail the call
			return Snapshot{}, err
		}
		snap.Capture = "(no capture target)"
		return snap, nil
	}
	snap.Capture = out
	return snap, nil
}

// activePaneToken picks the active pane of the active window, per §4.10 step
// 3. Windows is consulted only to find which window id is active; ties
// within that window are broken by the pane's own active flag.
func activePaneToken(session string, windows []WindowRec, panes []PaneRec) string {
	activeWindowID := ""
	for _, w := range windows {
		if w.Active {
			activeWindowID = w.ID
			break
		}
	}
	for _, p := range panes {
		if p.Active && (activeWindowID == "" || p.Window == activeWindowID) {
			return p.ID
		}
	}
	if len(panes) > 0 {
		return panes[0].ID
	}
	return ""
}

func formatSessions(list []Session) string {
	var out string
	for _, s := range list {
		out += s.ID + "\t" + s.Name + "\n"
	}
	return out
}

func formatWindows(list []WindowRec) string {
	var out string
	for _, w := range list {
		out += w.ID + "\t" + w.Name + "\n"
	}
	return out
}

func formatPanes(list []PaneRec) string {
	var out string
	for _, p := range list {
		out += p.ID + "\t" + p.Command + "\n"
	}
	return out
}
