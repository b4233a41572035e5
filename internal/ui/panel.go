package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jcurbo/claude-status/internal/engine"
)

// TickMsg triggers a poll on the configured interval.
type TickMsg time.Time

// snapshotMsg carries the result of an engine poll.
type snapshotMsg engine.Snapshot

// Model renders the latest engine snapshot as a compact status panel.
type Model struct {
	eng    *engine.Engine
	snap   engine.Snapshot
	polled bool
	width  int
	now    func() time.Time
}

func New(eng *engine.Engine) Model {
	return Model{eng: eng, now: time.Now}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.poll, doTick(m.eng.Interval()))
}

func doTick(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// poll runs on the bubbletea command pool, which keeps the network fetch
// off the update loop. The engine's busy flag collapses overlapping
// ticks into a single fetch.
func (m Model) poll() tea.Msg {
	return snapshotMsg(m.eng.Poll(context.Background()))
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "r":
			return m, m.poll
		}
		return m, nil

	case TickMsg:
		return m, tea.Batch(m.poll, doTick(m.eng.Interval()))

	case snapshotMsg:
		m.snap = engine.Snapshot(msg)
		m.polled = true
		return m, nil
	}

	return m, nil
}
