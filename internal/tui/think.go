// Package tui provides the terminal user interface for mull.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mull-cli/mull/internal/decision"
	"github.com/mull-cli/mull/internal/pipeline"
)

// stageStatus is the display state of one pipeline stage.
type stageStatus int

const (
	stagePending stageStatus = iota
	stageRunning
	stageComplete
	stageFailed
)

// stageLabels are the display names in pipeline order.
var stageLabels = map[decision.StageName]string{
	decision.StageClarifier:   "Clarify",
	decision.StageExplorer:    "Explore",
	decision.StageChallenger:  "Challenge",
	decision.StageSynthesizer: "Synthesize",
}

// EventMsg wraps a pipeline event for the tea runtime.
type EventMsg struct {
	Event pipeline.Event
}

// DoneMsg signals that the pipeline run has ended.
type DoneMsg struct {
	Err error
}

// ThinkModel renders live progress of one pipeline run: a checklist of the
// four stages with a spinner on the active one, plus the tail of the
// streamed output.
type ThinkModel struct {
	input    string
	spinner  spinner.Model
	statuses map[decision.StageName]stageStatus
	current  decision.StageName
	partial  strings.Builder
	err      error
	done     bool
	width    int

	titleStyle   lipgloss.Style
	pendingStyle lipgloss.Style
	runningStyle lipgloss.Style
	doneStyle    lipgloss.Style
	failedStyle  lipgloss.Style
	outputStyle  lipgloss.Style
}

// NewThinkModel creates the progress model for the given decision text.
func NewThinkModel(input string) *ThinkModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	statuses := make(map[decision.StageName]stageStatus, len(decision.StageOrder))
	for _, name := range decision.StageOrder {
		statuses[name] = stagePending
	}

	return &ThinkModel{
		input:    input,
		spinner:  sp,
		statuses: statuses,
		width:    80,

		titleStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			MarginBottom(1),

		pendingStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")),

		runningStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true),

		doneStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("34")),

		failedStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")),

		outputStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			MarginTop(1),
	}
}

// Init starts the spinner tick.
func (m *ThinkModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles spinner ticks, pipeline events, and quit keys.
func (m *ThinkModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}
		return m, nil

	case EventMsg:
		m.applyEvent(msg.Event)
		return m, nil

	case DoneMsg:
		m.done = true
		if msg.Err != nil {
			m.err = msg.Err
		}
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *ThinkModel) applyEvent(ev pipeline.Event) {
	switch ev.Type {
	case pipeline.EventStageStart:
		m.statuses[ev.Stage] = stageRunning
		m.current = ev.Stage
		m.partial.Reset()
	case pipeline.EventStageDelta:
		m.partial.WriteString(ev.Text)
	case pipeline.EventStageDone:
		m.statuses[ev.Stage] = stageComplete
	case pipeline.EventStageError:
		m.statuses[ev.Stage] = stageFailed
	}
}

// View renders the stage checklist and the tail of the current stage output.
func (m *ThinkModel) View() string {
	var b strings.Builder

	b.WriteString(m.titleStyle.Render("Thinking through: "+truncate(m.input, m.width-20)) + "\n")

	for _, name := range decision.StageOrder {
		label := stageLabels[name]
		switch m.statuses[name] {
		case stagePending:
			b.WriteString(m.pendingStyle.Render("  ○ "+label) + "\n")
		case stageRunning:
			b.WriteString(m.runningStyle.Render(fmt.Sprintf("  %s %s...", m.spinner.View(), label)) + "\n")
		case stageComplete:
			b.WriteString(m.doneStyle.Render("  ✓ "+label) + "\n")
		case stageFailed:
			b.WriteString(m.failedStyle.Render("  ✗ "+label) + "\n")
		}
	}

	if tail := m.outputTail(6); tail != "" {
		b.WriteString(m.outputStyle.Render(tail) + "\n")
	}

	if m.err != nil {
		b.WriteString("\n" + m.failedStyle.Render(m.err.Error()) + "\n")
	}

	return b.String()
}

// outputTail returns the last n lines of the streamed output, wrapped to the
// terminal width.
func (m *ThinkModel) outputTail(n int) string {
	text := strings.TrimSpace(m.partial.String())
	if text == "" {
		return ""
	}
	wrapped := lipgloss.NewStyle().Width(max(m.width-4, 20)).Render(text)
	lines := strings.Split(wrapped, "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Err returns the terminal error shown by the model, if any.
func (m *ThinkModel) Err() error {
	return m.err
}

func truncate(s string, limit int) string {
	if limit < 10 {
		limit = 10
	}
	if len(s) <= limit {
		return s
	}
	return s[:limit-3] + "..."
}
