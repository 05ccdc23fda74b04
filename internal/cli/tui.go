package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/monist/pkg/executor"
	"github.com/matzehuels/monist/pkg/monorepo"
	"github.com/matzehuels/monist/pkg/observability"
)

// =============================================================================
// Messages
// =============================================================================

type (
	runStartedMsg     struct{ batches [][]string }
	memberStartedMsg  struct{ name string }
	memberFinishedMsg struct {
		name     string
		duration time.Duration
		err      error
	}
	runFinishedMsg struct {
		duration time.Duration
		err      error
	}
	tickMsg time.Time
)

// =============================================================================
// Hooks adapter
// =============================================================================

// tuiHooks forwards executor events to a running bubbletea program.
type tuiHooks struct {
	observability.NoopExecutionHooks
	send func(tea.Msg)
}

func (h tuiHooks) OnRunStart(_ context.Context, _ string, batches [][]string) {
	h.send(runStartedMsg{batches: batches})
}

func (h tuiHooks) OnRunComplete(_ context.Context, _ string, d time.Duration, err error) {
	h.send(runFinishedMsg{duration: d, err: err})
}

func (h tuiHooks) OnMemberStart(_ context.Context, _ string, member string) {
	h.send(memberStartedMsg{name: member})
}

func (h tuiHooks) OnMemberComplete(_ context.Context, _ string, member string, d time.Duration, err error) {
	h.send(memberFinishedMsg{name: member, duration: d, err: err})
}

// =============================================================================
// ProgressModel - Live execution progress
// =============================================================================

type memberState int

const (
	statePending memberState = iota
	stateRunning
	stateDone
	stateFailed
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// progressModel is the bubbletea model showing every member of a plan
// with its state.
type progressModel struct {
	title     string
	batches   [][]string
	states    map[string]memberState
	durations map[string]time.Duration
	frame     int
	finished  bool
	elapsed   time.Duration
	err       error
	cancel    context.CancelFunc
}

func newProgressModel(title string, cancel context.CancelFunc) progressModel {
	return progressModel{
		title:     title,
		states:    map[string]memberState{},
		durations: map[string]time.Duration{},
		cancel:    cancel,
	}
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m progressModel) Init() tea.Cmd {
	return tick()
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case runStartedMsg:
		m.batches = msg.batches
		for _, batch := range msg.batches {
			for _, name := range batch {
				m.states[name] = statePending
			}
		}
	case memberStartedMsg:
		m.states[msg.name] = stateRunning
	case memberFinishedMsg:
		m.durations[msg.name] = msg.duration
		if msg.err != nil {
			m.states[msg.name] = stateFailed
		} else {
			m.states[msg.name] = stateDone
		}
	case runFinishedMsg:
		m.finished = true
		m.elapsed = msg.duration
		m.err = msg.err
		return m, tea.Quit
	case tickMsg:
		if m.finished {
			return m, nil
		}
		m.frame++
		return m, tick()
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString("\n")

	for i, batch := range m.batches {
		b.WriteString(StyleDim.Render(fmt.Sprintf("batch %d", i+1)))
		b.WriteString("\n")
		for _, name := range batch {
			b.WriteString("  ")
			b.WriteString(m.icon(m.states[name]))
			b.WriteString(" ")
			b.WriteString(name)
			if d, ok := m.durations[name]; ok {
				b.WriteString(" ")
				b.WriteString(StyleDim.Render(d.Round(time.Millisecond).String()))
			}
			b.WriteString("\n")
		}
	}

	if m.finished {
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(StyleError.Render(iconError + " failed after " + m.elapsed.Round(time.Millisecond).String()))
		} else {
			b.WriteString(StyleSuccess.Render(iconSuccess + " done in " + m.elapsed.Round(time.Millisecond).String()))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m progressModel) icon(s memberState) string {
	switch s {
	case stateRunning:
		return styleIconSpinner.Render(spinnerFrames[m.frame%len(spinnerFrames)])
	case stateDone:
		return styleIconSuccess.Render(iconSuccess)
	case stateFailed:
		return styleIconError.Render(iconError)
	}
	return StyleDim.Render(iconPending)
}

// executeWithTUI runs the plan while a progressModel draws the progress.
// Command output is always discarded since it would garble the view.
func (c *CLI) executeWithTUI(ctx context.Context, title string, plan [][]*monorepo.Member, x executor.Command, policy executor.Policy) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(title, cancel), tea.WithContext(ctx), tea.WithOutput(c.Stdout))

	uiDone := make(chan struct{})
	go func() {
		defer close(uiDone)
		if _, err := p.Run(); err != nil && ctx.Err() == nil {
			c.Logger.Debug("progress view stopped", "err", err)
		}
	}()

	e := executor.New(c.runner, nil)
	e.Hooks = tuiHooks{send: func(msg tea.Msg) {
		select {
		case <-uiDone:
		default:
			p.Send(msg)
		}
	}}
	policy.SuppressOutput = true
	err := e.Execute(ctx, plan, x, policy)

	<-uiDone
	return err
}
