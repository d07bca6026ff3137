// Package tui renders the interactive monitor shown by `earhorn record
// --monitor`: elapsed time, output path, and a stop key, driven by the
// lifecycle of the underlying capture process.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/stopwatch"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/earhorn/earhorn/internal/format"
)

// Styles for the monitor
var (
	recordingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))

	stoppingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFE66D"))

	doneStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#95E1A3"))

	pathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	elapsedStyle = lipgloss.NewStyle().
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C757D"))
)

// Recording is the live capture the monitor tracks. *audio.Recording
// satisfies it.
type Recording interface {
	// Path returns the output file being written.
	Path() string
	// Done is closed once the capture process has exited.
	Done() <-chan struct{}
	// Stop asks the capture process to finish. Safe to call more than once.
	Stop()
	// Err reports the capture failure, if any, after Done is closed.
	Err() error
}

type state int

const (
	stateRecording state = iota
	stateStopping
	stateDone
)

// recordingDoneMsg is sent when the capture process exits.
type recordingDoneMsg struct{}

type model struct {
	rec       Recording
	stopwatch stopwatch.Model
	state     state
	err       error
}

var _ tea.Model = model{}

func newModel(rec Recording) model {
	return model{
		rec:       rec,
		stopwatch: stopwatch.NewWithInterval(time.Second),
	}
}

// Init starts the stopwatch and watches for the recording to finish.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.stopwatch.Init(), waitForDone(m.rec))
}

// Update handles key presses and recording lifecycle messages.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			if m.state == stateRecording {
				m.state = stateStopping
				return m, stopRecording(m.rec)
			}
			return m, nil
		}

	case recordingDoneMsg:
		m.state = stateDone
		m.err = m.rec.Err()
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.stopwatch, cmd = m.stopwatch.Update(msg)
	return m, cmd
}

// View renders the monitor.
func (m model) View() string {
	var b strings.Builder

	switch m.state {
	case stateRecording:
		b.WriteString(recordingStyle.Render("● recording"))
	case stateStopping:
		b.WriteString(stoppingStyle.Render("◌ stopping"))
	case stateDone:
		b.WriteString(doneStyle.Render("■ stopped"))
	}
	b.WriteString("  ")
	b.WriteString(pathStyle.Render(m.rec.Path()))
	b.WriteString("\n\n")

	b.WriteString("  ")
	b.WriteString(elapsedStyle.Render(format.Duration(m.stopwatch.Elapsed())))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ %v", m.err)))
		b.WriteString("\n\n")
	}

	if help := m.helpText(); help != "" {
		b.WriteString(dimStyle.Render(help))
		b.WriteString("\n")
	}

	return b.String()
}

func (m model) helpText() string {
	switch m.state {
	case stateRecording:
		return "q: stop"
	case stateStopping:
		return "flushing encoder..."
	}
	return ""
}

// waitForDone delivers recordingDoneMsg once the capture process exits.
func waitForDone(rec Recording) tea.Cmd {
	return func() tea.Msg {
		<-rec.Done()
		return recordingDoneMsg{}
	}
}

// stopRecording asks the capture process to finish. The exit itself is
// observed by waitForDone.
func stopRecording(rec Recording) tea.Cmd {
	return func() tea.Msg {
		rec.Stop()
		return nil
	}
}

// Run displays the monitor until the recording finishes or the user stops
// it. Capture failures are reported through Recording.Err, not Run; Run
// only returns terminal UI errors.
func Run(rec Recording) error {
	p := tea.NewProgram(newModel(rec))
	_, err := p.Run()
	return err
}
