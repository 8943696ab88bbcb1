// Command tmuxbridgectl is a flag-based, one-shot front door over every
// primitive/capture/fan-out operation in pkg/bridge, mirroring the shape of
// the teacher's cmd/tmux-ssh-manager: global flags parsed once, then a
// subcommand name dispatched from flag.Arg(0).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"tmux-agent-bridge/pkg/bridge"
)

var (
	flagConfig string
)

func init() {
	flag.StringVar(&flagConfig, "config", "", "Path to YAML config (defaults to XDG search path if empty)")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "tmuxbridgectl\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  tmuxbridgectl [global flags] <subcommand> [subcommand flags]\n\n")
		fmt.Fprintf(os.Stderr, "Subcommands:\n")
		fmt.Fprintf(os.Stderr, "  snapshot   open-session   capture   send   list   recent\n")
		fmt.Fprintf(os.Stderr, "  new-session   new-window   split\n")
		fmt.Fprintf(os.Stderr, "  kill   rename   select   raw\n")
		fmt.Fprintf(os.Stderr, "  fanout   default   attach\n\n")
		fmt.Fprintf(os.Stderr, "Global flags:\n")
		flag.PrintDefaults()
	}
}

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	e, err := loadEnv(flagConfig)
	if err != nil {
		fatalf("%v", err)
	}

	sub := flag.Arg(0)
	args := flag.Args()[1:]

	var runErr error
	switch sub {
	case "snapshot":
		runErr = runSnapshot(e, args)
	case "open-session":
		runErr = runOpenSession(e, args)
	case "capture":
		runErr = runCapture(e, args)
	case "send":
		runErr = runSend(e, args)
	case "list":
		runErr = runList(e, args)
	case "recent":
		runErr = runRecent(e, args)
	case "new-session":
		runErr = runNewSession(e, args)
	case "new-window":
		runErr = runNewWindow(e, args)
	case "split":
		runErr = runSplit(e, args)
	case "kill":
		runErr = runKill(e, args)
	case "rename":
		runErr = runRename(e, args)
	case "select":
		runErr = runSelect(e, args)
	case "raw":
		runErr = runRaw(e, args)
	case "fanout":
		runErr = runFanout(e, args)
	case "default":
		runErr = runDefault(e, args)
	case "attach":
		runErr = runAttach(e, args)
	default:
		fmt.Fprintf(os.Stderr, "tmuxbridgectl: unknown subcommand %q\n", sub)
		flag.Usage()
		os.Exit(2)
	}

	if runErr != nil {
		fatalf("%s: %v", sub, runErr)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, "tmuxbridgectl: "+format+"\n", a...)
	os.Exit(1)
}

// targetFlags registers the four PaneRef fields plus a confirm flag shared
// by nearly every subcommand.
type targetFlags struct {
	host, session, window, pane string
	confirm                     bool
}

func bindTargetFlags(fs *flag.FlagSet, t *targetFlags) {
	fs.StringVar(&t.host, "host", "", "Host (empty = local)")
	fs.StringVar(&t.session, "session", "", "Session name or id")
	fs.StringVar(&t.window, "window", "", "Window name, index, or id")
	fs.StringVar(&t.pane, "pane", "", "Pane id (e.g. %3); overrides session/window when set")
	fs.BoolVar(&t.confirm, "confirm", false, "Confirm a destructive operation")
}

func (t targetFlags) ref() bridge.PaneRef {
	return bridge.PaneRef{Host: t.host, Session: t.session, Window: t.window, Pane: t.pane}
}

func runSnapshot(e *env, args []string) error {
	fs := flag.NewFlagSet("snapshot", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	lines := fs.Int("lines", 200, "Capture lines for the snapshot's pane excerpt")
	if err := fs.Parse(args); err != nil {
		return err
	}

	snap, err := e.assembler().Snapshot(context.Background(), t.host, t.session, *lines)
	if err != nil {
		return err
	}
	fmt.Printf("host=%s session=%s capture_target=%s\n", snap.Host, snap.Session, snap.CaptureTarget)
	fmt.Println("--- sessions ---")
	fmt.Print(snap.SessionsText)
	fmt.Println("--- windows ---")
	fmt.Print(snap.WindowsText)
	fmt.Println("--- panes ---")
	fmt.Print(snap.PanesText)
	fmt.Println("--- capture ---")
	fmt.Print(snap.Capture)
	return nil
}

// runOpenSession implements the S1 composite: ensure a session exists on
// host (has-session, new-session if absent), update the process-wide
// defaults, and print the reply text.
func runOpenSession(e *env, args []string) error {
	fs := flag.NewFlagSet("open-session", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if t.session == "" {
		return fmt.Errorf("open-session requires -session")
	}

	prims := e.prims(t.host)
	res, err := bridge.OpenSession(context.Background(), prims, e.defaults, t.host, t.session)
	if err != nil {
		return err
	}
	fmt.Println(res.Reply)
	return nil
}

func runCapture(e *env, args []string) error {
	fs := flag.NewFlagSet("capture", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	lines := fs.Int("lines", 200, "Number of trailing lines (one-shot capture)")
	paged := fs.Bool("paged", false, "Use the adaptive paged capture instead of one-shot")
	tail := fs.Bool("tail", false, "Use bounded-iteration tail capture instead of one-shot")
	iterations := fs.Int("iterations", 3, "Tail iterations (with -tail)")
	intervalMS := fs.Int("interval-ms", 500, "Tail poll interval in ms (with -tail)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	eff, pane, err := e.resolver.Resolve(t.ref())
	if err != nil {
		return err
	}
	prims := e.prims(eff.Host)

	switch {
	case *paged:
		pc, err := bridge.CapturePaged(context.Background(), prims, pane, nil)
		if err != nil {
			return err
		}
		fmt.Printf("# requested=%d history=%d pages=%d more=%v\n", pc.Requested, pc.HistorySize, pc.PagesTried, pc.MoreAvailable)
		fmt.Print(pc.Captured)
	case *tail:
		tr, err := bridge.CaptureTailBounded(context.Background(), prims, pane, *lines, *iterations, *intervalMS)
		if err != nil {
			return err
		}
		fmt.Printf("# iterations=%d\n", tr.Iterations)
		fmt.Print(tr.Output)
	default:
		out, err := prims.CapturePane(context.Background(), pane, -*lines, nil)
		if err != nil {
			return err
		}
		fmt.Print(out)
	}
	return nil
}

func runSend(e *env, args []string) error {
	fs := flag.NewFlagSet("send", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	keys := fs.String("keys", "", "Keys to send (special tokens: <SPACE> <TAB> <ESC> <ENTER>)")
	enter := fs.Bool("enter", false, "Append Enter after the keys")
	if err := fs.Parse(args); err != nil {
		return err
	}

	eff, pane, err := e.resolver.Resolve(t.ref())
	if err != nil {
		return err
	}
	prims := e.prims(eff.Host)

	_, err = e.gate.Dispatch(bridge.DispatchRequest{
		Host: eff.Host, Session: eff.Session, Verb: "send-keys", Confirm: t.confirm,
		Meta: map[string]string{"pane": pane},
	}, func() (string, error) {
		return prims.SendKeys(context.Background(), pane, *keys, *enter)
	})
	return err
}

func runList(e *env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tmuxbridgectl list <sessions|windows|panes> [flags]")
	}
	kind := args[0]
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	prims := e.prims(t.host)
	switch kind {
	case "sessions":
		list, err := prims.ListSessions(context.Background())
		if err != nil {
			return err
		}
		for _, s := range list {
			fmt.Printf("%s\t%s\twindows=%d\tattached=%v\n", s.ID, s.Name, s.Windows, s.Attached)
		}
	case "windows":
		list, err := prims.ListWindows(context.Background(), t.session)
		if err != nil {
			return err
		}
		for _, w := range list {
			fmt.Printf("%s\t%s\tindex=%d\tactive=%v\n", w.ID, w.Name, w.Index, w.Active)
		}
	case "panes":
		list, err := prims.ListPanes(context.Background(), t.session)
		if err != nil {
			return err
		}
		for _, p := range list {
			fmt.Printf("%s\t%s\tactive=%v\tcmd=%s\n", p.ID, p.Window, p.Active, p.Command)
		}
	default:
		return fmt.Errorf("unknown list kind %q (expected sessions|windows|panes)", kind)
	}
	return nil
}

func runRecent(e *env, args []string) error {
	fs := flag.NewFlagSet("recent", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	lines := fs.Int("lines", 200, "Capture lines to scan")
	limit := fs.Int("limit", 15, "Max recent commands returned")
	if err := fs.Parse(args); err != nil {
		return err
	}

	eff, pane, err := e.resolver.Resolve(t.ref())
	if err != nil {
		return err
	}
	out, err := e.prims(eff.Host).CapturePane(context.Background(), pane, -*lines, nil)
	if err != nil {
		return err
	}
	for _, cmd := range bridge.ExtractRecentCommands(out, *limit) {
		fmt.Println(cmd)
	}
	return nil
}

func runNewSession(e *env, args []string) error {
	fs := flag.NewFlagSet("new-session", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	command := fs.String("command", "", "Initial command")
	if err := fs.Parse(args); err != nil {
		return err
	}
	prims := e.prims(t.host)
	_, err := e.gate.Dispatch(bridge.DispatchRequest{
		Host: t.host, Session: t.session, Verb: "new-session", Confirm: t.confirm,
	}, func() (string, error) {
		return prims.NewSession(context.Background(), t.session, *command)
	})
	return err
}

func runNewWindow(e *env, args []string) error {
	fs := flag.NewFlagSet("new-window", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	name := fs.String("name", "", "Window name")
	command := fs.String("command", "", "Initial command")
	if err := fs.Parse(args); err != nil {
		return err
	}
	prims := e.prims(t.host)
	out, err := e.gate.Dispatch(bridge.DispatchRequest{
		Host: t.host, Session: t.session, Verb: "new-window", Confirm: t.confirm,
	}, func() (string, error) {
		return prims.NewWindow(context.Background(), t.session, *name, *command)
	})
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func runSplit(e *env, args []string) error {
	fs := flag.NewFlagSet("split", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	horizontal := fs.Bool("h", false, "Split horizontally (default vertical)")
	command := fs.String("command", "", "Command for the new pane")
	if err := fs.Parse(args); err != nil {
		return err
	}
	eff, pane, err := e.resolver.Resolve(t.ref())
	if err != nil {
		return err
	}
	prims := e.prims(eff.Host)
	_, err = e.gate.Dispatch(bridge.DispatchRequest{
		Host: eff.Host, Session: eff.Session, Verb: "split-window", Confirm: t.confirm,
	}, func() (string, error) {
		return prims.SplitPane(context.Background(), pane, *horizontal, *command)
	})
	return err
}

func runKill(e *env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tmuxbridgectl kill <session|window|pane> [flags]")
	}
	kind := args[0]
	fs := flag.NewFlagSet("kill", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	eff, pane, err := e.resolver.Resolve(t.ref())
	if err != nil && kind == "pane" {
		return err
	}
	host, session := t.host, t.session
	if kind == "pane" {
		host, session = eff.Host, eff.Session
	}
	prims := e.prims(host)

	verb := "kill-" + kind
	target := t.session
	switch kind {
	case "session":
		target = t.session
	case "window":
		target = t.session + ":" + t.window
	case "pane":
		target = pane
	default:
		return fmt.Errorf("unknown kill kind %q (expected session|window|pane)", kind)
	}

	_, err = e.gate.Dispatch(bridge.DispatchRequest{
		Host: host, Session: session, Verb: verb, Confirm: t.confirm,
		Meta: map[string]string{"target": target},
	}, func() (string, error) {
		switch kind {
		case "session":
			return prims.KillSession(context.Background(), target)
		case "window":
			return prims.KillWindow(context.Background(), target)
		default:
			return prims.KillPane(context.Background(), target)
		}
	})
	return err
}

func runRename(e *env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tmuxbridgectl rename <session|window> --target <t> --name <n>")
	}
	kind := args[0]
	fs := flag.NewFlagSet("rename", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	target := fs.String("target", "", "Target session or window")
	name := fs.String("name", "", "New name")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	prims := e.prims(t.host)
	verb := "rename-" + kind
	_, err := e.gate.Dispatch(bridge.DispatchRequest{
		Host: t.host, Session: t.session, Verb: verb, Confirm: t.confirm,
	}, func() (string, error) {
		if kind == "session" {
			return prims.RenameSession(context.Background(), *target, *name)
		}
		return prims.RenameWindow(context.Background(), *target, *name)
	})
	return err
}

func runSelect(e *env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tmuxbridgectl select <window|pane> --target <t>")
	}
	kind := args[0]
	fs := flag.NewFlagSet("select", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	target := fs.String("target", "", "Target window or pane")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	prims := e.prims(t.host)
	verb := "select-" + kind
	_, err := e.gate.Dispatch(bridge.DispatchRequest{
		Host: t.host, Session: t.session, Verb: verb, Confirm: t.confirm,
	}, func() (string, error) {
		if kind == "window" {
			return prims.SelectWindow(context.Background(), *target)
		}
		return prims.SelectPane(context.Background(), *target)
	})
	return err
}

func runRaw(e *env, args []string) error {
	fs := flag.NewFlagSet("raw", flag.ExitOnError)
	var t targetFlags
	bindTargetFlags(fs, &t)
	if err := fs.Parse(args); err != nil {
		return err
	}
	argv := fs.Args()
	if len(argv) == 0 {
		return fmt.Errorf("usage: tmuxbridgectl raw [flags] -- <tmux argv...>")
	}

	prims := e.prims(t.host)
	_, err := e.gate.Dispatch(bridge.DispatchRequest{
		Host: t.host, Session: t.session, Verb: argv[0], Args: argv[1:], Confirm: t.confirm,
	}, func() (string, error) {
		return prims.T.Run(context.Background(), argv)
	})
	return err
}

func runFanout(e *env, args []string) error {
	fs := flag.NewFlagSet("fanout", flag.ExitOnError)
	targetsFlag := fs.String("targets", "", "Comma-separated host:session[:window[:pane]] specs")
	mode := fs.String("mode", "send_capture", "send_capture|tail|pattern")
	keys := fs.String("keys", "", "Keys to send before reading")
	enter := fs.Bool("enter", false, "Append Enter to keys")
	delayMS := fs.Int("delay-ms", 0, "Delay after sending keys before reading")
	tailLines := fs.Int("tail-lines", 200, "Tail mode: lines per capture")
	tailIterations := fs.Int("tail-iterations", 3, "Tail mode: iterations")
	tailIntervalMS := fs.Int("tail-interval-ms", 500, "Tail mode: poll interval ms")
	patternLines := fs.Int("pattern-lines", 200, "Pattern mode: lines to capture before matching")
	pattern := fs.String("pattern", "", "Pattern mode: regex")
	patternFlags := fs.String("pattern-flags", "", "Pattern mode: regex flags, e.g. i")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var targets []bridge.FanOutTarget
	for _, spec := range strings.Split(*targetsFlag, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}
		parts := strings.Split(spec, ":")
		tgt := bridge.FanOutTarget{Host: parts[0]}
		if len(parts) > 1 {
			tgt.Target.Session = parts[1]
		}
		if len(parts) > 2 {
			tgt.Target.Window = parts[2]
		}
		if len(parts) > 3 {
			tgt.Target.Pane = parts[3]
		}
		targets = append(targets, tgt)
	}
	if len(targets) == 0 {
		return fmt.Errorf("no targets parsed from -targets %q", *targetsFlag)
	}

	req := bridge.FanOutRequest{
		Targets:        targets,
		Mode:           bridge.FanOutMode(*mode),
		Keys:           *keys,
		Enter:          *enter,
		DelayMS:        *delayMS,
		TailLines:      *tailLines,
		TailIterations: *tailIterations,
		TailIntervalMS: *tailIntervalMS,
		PatternLines:   *patternLines,
		Pattern:        *pattern,
		PatternFlags:   *patternFlags,
	}
	results, summary := e.coordinator().Run(context.Background(), req)
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("%s\t%s\tERROR: %v\n", r.Host, r.Target, r.Err)
			continue
		}
		fmt.Printf("%s\t%s\tmatched=%v\n", r.Host, r.Target, r.Matched)
		fmt.Print(r.Output)
	}
	fmt.Println("---", summary.String())
	return nil
}

func runDefault(e *env, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: tmuxbridgectl default <get|set> [flags]")
	}
	action := args[0]
	fs := flag.NewFlagSet("default", flag.ExitOnError)
	host := fs.String("host", "", "Host value (set only)")
	session := fs.String("session", "", "Session value (set only)")
	window := fs.String("window", "", "Window value (set only)")
	pane := fs.String("pane", "", "Pane value (set only)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	switch action {
	case "get":
		ref := e.defaults.Get()
		fmt.Printf("host=%s session=%s window=%s pane=%s\n", ref.Host, ref.Session, ref.Window, ref.Pane)
		return nil
	case "set":
		supplied := suppliedFlags(args[1:], "host", "session", "window", "pane")
		field := func(name, value string) bridge.FieldUpdate {
			if supplied[name] {
				return bridge.Set(value)
			}
			return bridge.Unset
		}
		ref := e.defaults.Update(field("host", *host), field("session", *session), field("window", *window), field("pane", *pane))
		fmt.Printf("host=%s session=%s window=%s pane=%s\n", ref.Host, ref.Session, ref.Window, ref.Pane)
		return nil
	default:
		return fmt.Errorf("unknown default action %q (expected get|set)", action)
	}
}

