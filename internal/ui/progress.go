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

	"flagger/internal/buildpipeline"
)

// genState is what one .flg file is doing right now, as shown in the list.
type genState uint8

const (
	stateQueued genState = iota
	stateParsing
	stateResolving
	stateEmitting
	stateCached
	stateWriting
	stateWritten
	stateUnchanged
	stateFailed
)

var stateNames = [...]string{
	stateQueued:    "queued",
	stateParsing:   "parsing",
	stateResolving: "resolving",
	stateEmitting:  "emitting",
	stateCached:    "cached",
	stateWriting:   "writing",
	stateWritten:   "written",
	stateUnchanged: "unchanged",
	stateFailed:    "error",
}

func (s genState) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "?"
}

func (s genState) final() bool {
	return s >= stateWritten
}

// weight is the share of a file's work done once it reaches s.
func (s genState) weight() float64 {
	switch s {
	case stateParsing:
		return 0.1
	case stateResolving:
		return 0.4
	case stateEmitting:
		return 0.7
	case stateCached:
		return 0.8
	case stateWriting:
		return 0.9
	case stateWritten, stateUnchanged, stateFailed:
		return 1
	default:
		return 0
	}
}

type palette struct {
	title lipgloss.Style
	busy  lipgloss.Style
	ok    lipgloss.Style
	bad   lipgloss.Style
	idle  lipgloss.Style
	dim   lipgloss.Style
}

func newPalette() palette {
	return palette{
		title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")),
		busy:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		bad:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		idle:  lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
		dim:   lipgloss.NewStyle().Faint(true),
	}
}

func (p palette) state(s genState) lipgloss.Style {
	switch {
	case s == stateFailed:
		return p.bad
	case s.final(), s == stateCached:
		return p.ok
	case s == stateQueued:
		return p.idle
	default:
		return p.busy
	}
}

type genRow struct {
	name      string
	state     genState
	fromCache bool
	elapsed   time.Duration
}

// shown is the state displayed for the row; cache hits keep saying so.
func (r genRow) shown() genState {
	if r.fromCache && r.state != stateFailed {
		return stateCached
	}
	return r.state
}

type progressModel struct {
	title  string
	events <-chan buildpipeline.Event
	spin   spinner.Model
	bar    progress.Model
	colors palette

	rows  []genRow
	byKey map[string]int
	phase string // этап всего каталога (link)
	width int
	done  bool
}

type eventMsg buildpipeline.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders generation progress
// for files. display maps event paths to the names shown; nil shows paths as is.
func NewProgressModel(title string, files []string, display func(string) string, events <-chan buildpipeline.Event) tea.Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	colors := newPalette()
	spin.Style = colors.busy

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:  title,
		events: events,
		spin:   spin,
		bar:    bar,
		colors: colors,
		rows:   make([]genRow, len(files)),
		byKey:  make(map[string]int, len(files)),
		width:  80,
	}
	for i, file := range files {
		name := file
		if display != nil {
			name = display(file)
		}
		m.rows[i] = genRow{name: name}
		m.byKey[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.next())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.applyEvent(buildpipeline.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.colors.title.Render(m.header()))
	b.WriteString("\n\n")

	const stateWidth = 10
	nameWidth := max(m.width-stateWidth-14, 20)
	for _, row := range m.rows {
		shown := row.shown()
		label := m.colors.state(shown).Render(fmt.Sprintf("%*s", stateWidth, shown))
		fmt.Fprintf(&b, "  %s %s", label, truncate(row.name, nameWidth))
		if row.state.final() && row.elapsed > 0 {
			b.WriteString(m.colors.dim.Render(fmt.Sprintf("  %s", row.elapsed.Round(time.Millisecond))))
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	b.WriteString(m.colors.dim.Render(m.summary()))
	b.WriteByte('\n')
	return b.String()
}

func (m *progressModel) header() string {
	header := m.title
	if m.phase != "" {
		header += " (" + m.phase + ")"
	}
	if m.done {
		return "done: " + header
	}
	return m.spin.View() + " " + header
}

// summary is the footer line, e.g. "2 written, 1 cached, 0 failed".
func (m *progressModel) summary() string {
	var written, cached, failed int
	for _, row := range m.rows {
		switch {
		case row.state == stateFailed:
			failed++
		case row.fromCache:
			cached++
		case row.state == stateWritten, row.state == stateUnchanged:
			written++
		}
	}
	return fmt.Sprintf("%d written, %d cached, %d failed", written, cached, failed)
}

func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev buildpipeline.Event) tea.Cmd {
	state, known := stateFor(ev.Stage, ev.Status)
	if ev.File == "" {
		if known && ev.Status == buildpipeline.StatusWorking {
			m.phase = state.String()
		} else if ev.Stage == buildpipeline.StageLink && ev.Status == buildpipeline.StatusWorking {
			m.phase = "linking"
		}
		return nil
	}
	idx, ok := m.byKey[ev.File]
	if !ok || !known {
		return nil
	}
	row := &m.rows[idx]
	if row.state.final() {
		return nil
	}
	if state == stateCached {
		row.fromCache = true
	}
	row.state = state
	row.elapsed += ev.Elapsed
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var total float64
	for _, row := range m.rows {
		total += row.state.weight()
	}
	return total / float64(len(m.rows))
}

// stateFor maps a pipeline event onto a row state. known is false for events
// that do not change what the row shows (e.g. a finished parse stage).
func stateFor(stage buildpipeline.Stage, status buildpipeline.Status) (state genState, known bool) {
	switch status {
	case buildpipeline.StatusQueued:
		return stateQueued, true
	case buildpipeline.StatusError:
		return stateFailed, true
	case buildpipeline.StatusCached:
		return stateCached, true
	case buildpipeline.StatusSkipped:
		return stateUnchanged, stage == buildpipeline.StageWrite
	case buildpipeline.StatusDone:
		return stateWritten, stage == buildpipeline.StageWrite
	case buildpipeline.StatusWorking:
		switch stage {
		case buildpipeline.StageParse:
			return stateParsing, true
		case buildpipeline.StageResolve:
			return stateResolving, true
		case buildpipeline.StageEmit:
			return stateEmitting, true
		case buildpipeline.StageWrite:
			return stateWriting, true
		}
	}
	return stateQueued, false
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
