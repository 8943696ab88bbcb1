// Command tmuxbridge-watch is a small Bubble Tea viewer over pkg/bridge's
// live pipe-tail stream (C5's Stream), standing in for "the agent's context
// window" so the streaming contract is exercised end-to-end from a terminal
// instead of only from package tests. It is not the tool-protocol dispatcher;
// it is a local demo harness over the same Stream function a dispatcher would
// call.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tmux-agent-bridge/pkg/bridge"
)

var (
	flagConfig    string
	flagHost      string
	flagSession   string
	flagWindow    string
	flagPane      string
	flagPollMS    int
	flagHeartbeat int
	flagStripANSI bool
)

func init() {
	flag.StringVar(&flagConfig, "config", "", "Path to YAML config")
	flag.StringVar(&flagHost, "host", "", "Host (empty = local)")
	flag.StringVar(&flagSession, "session", "", "Session name or id")
	flag.StringVar(&flagWindow, "window", "", "Window name, index, or id")
	flag.StringVar(&flagPane, "pane", "", "Pane id; overrides session/window when set")
	flag.IntVar(&flagPollMS, "poll-ms", 0, "Force polling regime at this interval (0 = try pipe regime first)")
	flag.IntVar(&flagHeartbeat, "heartbeat-ms", 5000, "Heartbeat interval")
	flag.BoolVar(&flagStripANSI, "strip-ansi", true, "Strip ANSI CSI/OSC sequences from streamed deltas")
}

func main() {
	flag.Parse()

	cfg, _, err := bridge.LoadConfig(flagConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tmuxbridge-watch: %v\n", err)
		os.Exit(1)
	}
	hosts := map[string]bridge.HostProfile{}
	if cfg.HostsFile != "" {
		hosts = bridge.LoadHostProfilesRecovered(cfg.HostsFile)
	}
	resolver := bridge.Resolver{Defaults: bridge.NewDefaultRegistry(cfg.DefaultsFile), HostProfiles: hosts}

	in := bridge.PaneRef{Host: flagHost, Session: flagSession, Window: flagWindow, Pane: flagPane}
	target, pane, err := resolver.Resolve(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tmuxbridge-watch: %v\n", err)
		os.Exit(1)
	}

	bin := cfg.BinaryPath
	var pathAdd []string
	if prof, ok := hosts[target.Host]; ok {
		if prof.TmuxBin != "" {
			bin = prof.TmuxBin
		}
		pathAdd = prof.PathAdd
	}
	prims := bridge.Primitives{T: bridge.NewTransport(target.Host, bin, pathAdd, cfg.TimeoutMS)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	chunks := make(chan bridge.PaneChunk, 16)
	go bridge.Stream(ctx, prims, target, pane, bridge.StreamOptions{
		PollIntervalMS: flagPollMS,
		HeartbeatMS:    flagHeartbeat,
		StripANSI:      flagStripANSI,
		Host:           target.Host,
	}, chunks)

	m := newModel(pane, chunks, cancel)
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tmuxbridge-watch: %v\n", err)
		os.Exit(1)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	footerStyle = lipgloss.NewStyle().Faint(true)
)

type chunkMsg bridge.PaneChunk

type model struct {
	pane     string
	chunks   <-chan bridge.PaneChunk
	cancel   context.CancelFunc
	vp       viewport.Model
	body     strings.Builder
	seq      uint64
	lastSeen time.Time
	eof      bool
	ready    bool
}

func newModel(pane string, chunks <-chan bridge.PaneChunk, cancel context.CancelFunc) model {
	return model{pane: pane, chunks: chunks, cancel: cancel}
}

func (m model) Init() tea.Cmd {
	return waitForChunk(m.chunks)
}

func waitForChunk(chunks <-chan bridge.PaneChunk) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-chunks
		if !ok {
			return chunkMsg{Eof: true}
		}
		return chunkMsg(c)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		if !m.ready {
			m.vp = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.vp.SetContent(m.body.String())
			m.ready = true
		} else {
			m.vp.Width = msg.Width
			m.vp.Height = msg.Height - headerHeight - footerHeight
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.cancel()
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return m, cmd

	case chunkMsg:
		if msg.Eof && msg.Data == nil {
			m.eof = true
			return m, nil
		}
		m.lastSeen = time.Now()
		m.seq = msg.Seq
		if msg.Eof {
			m.eof = true
		}
		if !msg.Heartbeat && len(msg.Data) > 0 {
			m.body.Write(msg.Data)
			if m.ready {
				m.vp.SetContent(m.body.String())
				m.vp.GotoBottom()
			}
		}
		if m.eof {
			return m, nil
		}
		return m, waitForChunk(m.chunks)
	}

	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m model) View() string {
	if !m.ready {
		return "initializing...\n"
	}
	return m.headerView() + "\n" + m.vp.View() + "\n" + m.footerView()
}

func (m model) headerView() string {
	return headerStyle.Render(fmt.Sprintf(" tmuxbridge-watch  pane=%s ", m.pane))
}

func (m model) footerView() string {
	status := "streaming"
	if m.eof {
		status = "stream ended"
	}
	return footerStyle.Render(fmt.Sprintf(" seq=%d last=%s %s  (q to quit) ", m.seq, m.lastSeen.Format("15:04:05"), status))
}
