// Package ui renders batch-build progress in the terminal.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"jasmine/internal/buildpipeline"
)

// fileState is the lifecycle of one input as the progress view sees it.
type fileState uint8

const (
	stateQueued fileState = iota
	stateWorking
	stateBuilt
	stateFailed
)

// stageWeight is the share of the bar an input contributes while in stage.
var stageWeight = map[buildpipeline.Stage]float64{
	buildpipeline.StageDecode: 0.1,
	buildpipeline.StageLower:  0.4,
	buildpipeline.StageEmit:   0.7,
	buildpipeline.StageWrite:  0.9,
}

var stageVerb = map[buildpipeline.Stage]string{
	buildpipeline.StageDecode: "decoding",
	buildpipeline.StageLower:  "lowering",
	buildpipeline.StageEmit:   "emitting",
	buildpipeline.StageWrite:  "writing",
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	queuedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	builtStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
)

type buildModel struct {
	title   string
	events  <-chan buildpipeline.Event
	spinner spinner.Model
	bar     progress.Model
	files   []*fileRow
	byName  map[string]*fileRow
	outcome buildpipeline.Status
	width   int
	closed  bool
}

type fileRow struct {
	name  string
	state fileState
	stage buildpipeline.Stage
	took  time.Duration
	err   error
}

type eventMsg buildpipeline.Event

// closedMsg arrives once the event channel is drained and closed.
type closedMsg struct{}

// NewProgressModel returns a Bubble Tea model listing files and a shared
// progress bar fed by BuildAll events. It quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan buildpipeline.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = workingStyle

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &buildModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		files:   make([]*fileRow, 0, len(files)),
		byName:  make(map[string]*fileRow, len(files)),
		width:   80,
	}
	for _, name := range files {
		row := &fileRow{name: name}
		m.files = append(m.files, row)
		m.byName[name] = row
	}
	return m
}

func (m *buildModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

func (m *buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(buildpipeline.Event(msg)), m.next())
	case closedMsg:
		m.closed = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.closed {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = max(msg.Width-4, 10)
		}
		return m, nil
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *buildModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return closedMsg{}
		}
		return eventMsg(ev)
	}
}

// apply folds one event into the rows. Failures are final: later events
// for the same file are ignored.
func (m *buildModel) apply(ev buildpipeline.Event) tea.Cmd {
	if ev.File == "" {
		m.outcome = ev.Status
		return nil
	}
	row, ok := m.byName[ev.File]
	if !ok || row.state == stateFailed {
		return nil
	}
	row.stage = ev.Stage
	switch ev.Status {
	case buildpipeline.StatusQueued:
		row.state = stateQueued
	case buildpipeline.StatusWorking:
		row.state = stateWorking
	case buildpipeline.StatusError:
		row.state = stateFailed
		row.err = ev.Err
	case buildpipeline.StatusDone:
		switch ev.Stage {
		case buildpipeline.StageEmit:
			row.took = ev.Elapsed
		case buildpipeline.StageWrite:
			row.took += ev.Elapsed
			row.state = stateBuilt
		}
	}
	return m.bar.SetPercent(m.fraction())
}

func (m *buildModel) fraction() float64 {
	if len(m.files) == 0 {
		return 0
	}
	var sum float64
	for _, row := range m.files {
		switch row.state {
		case stateBuilt, stateFailed:
			sum++
		case stateWorking:
			sum += stageWeight[row.stage]
		}
	}
	return sum / float64(len(m.files))
}

func (m *buildModel) counts() (built, failed int) {
	for _, row := range m.files {
		switch row.state {
		case stateBuilt:
			built++
		case stateFailed:
			failed++
		}
	}
	return built, failed
}

func (m *buildModel) View() string {
	if len(m.files) == 0 {
		return ""
	}
	built, failed := m.counts()
	header := fmt.Sprintf("%s: %d/%d built", m.title, built, len(m.files))
	if failed > 0 {
		header += fmt.Sprintf(", %d failed", failed)
	}
	switch {
	case m.closed && m.outcome == buildpipeline.StatusError:
		header = "failed " + header
	case m.closed:
		header = "done " + header
	default:
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(header))
	b.WriteString("\n\n")

	const labelWidth = 10
	nameWidth := max(m.width-labelWidth-14, 20)
	for _, row := range m.files {
		label, style := row.label()
		fmt.Fprintf(&b, "  %s %s", style.Render(fmt.Sprintf("%-*s", labelWidth, label)), truncate(row.name, nameWidth))
		if row.state == stateBuilt && row.took > 0 {
			b.WriteString(dimStyle.Render(fmt.Sprintf("  %.1fms", float64(row.took)/float64(time.Millisecond))))
		}
		b.WriteByte('\n')
		if row.err != nil {
			b.WriteString("    ")
			b.WriteString(failedStyle.Render(truncate(firstLine(row.err.Error()), nameWidth+labelWidth)))
			b.WriteByte('\n')
		}
	}

	b.WriteByte('\n')
	if m.closed {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	return b.String()
}

func (r *fileRow) label() (string, lipgloss.Style) {
	switch r.state {
	case stateWorking:
		return stageVerb[r.stage], workingStyle
	case stateBuilt:
		return "built", builtStyle
	case stateFailed:
		return "failed", failedStyle
	default:
		return "queued", queuedStyle
	}
}

func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	return s
}
