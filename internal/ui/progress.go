package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"irislint/internal/driver"
)

// phase is where a file is in the load -> scan pipeline.
type phase uint8

const (
	phaseQueued phase = iota
	phaseLoading
	phaseLoaded
	phaseScanning
	phaseBalanced
	phaseUnbalanced
	phaseUnreadable
)

var phaseLabels = [...]string{
	phaseQueued:     "queued",
	phaseLoading:    "loading",
	phaseLoaded:     "loaded",
	phaseScanning:   "scanning",
	phaseBalanced:   "ok",
	phaseUnbalanced: "failed",
	phaseUnreadable: "error",
}

func (p phase) String() string {
	if int(p) < len(phaseLabels) {
		return phaseLabels[p]
	}
	return ""
}

// steps counts finished pipeline stages. An unreadable file never reaches
// the scanner, so both of its stages count as finished.
func (p phase) steps() int {
	switch p {
	case phaseLoaded, phaseScanning:
		return 1
	case phaseBalanced, phaseUnbalanced, phaseUnreadable:
		return 2
	default:
		return 0
	}
}

func (p phase) final() bool {
	return p.steps() == 2
}

// phaseFor maps a driver event onto a phase; ok is false for events the view
// ignores.
func phaseFor(stage driver.Stage, status driver.Status) (phase, bool) {
	if status == driver.StatusQueued {
		return phaseQueued, true
	}
	switch stage {
	case driver.StageLoad:
		switch status {
		case driver.StatusWorking:
			return phaseLoading, true
		case driver.StatusDone:
			return phaseLoaded, true
		case driver.StatusError:
			return phaseUnreadable, true
		}
	case driver.StageScan:
		switch status {
		case driver.StatusWorking:
			return phaseScanning, true
		case driver.StatusDone:
			return phaseBalanced, true
		case driver.StatusFailed:
			return phaseUnbalanced, true
		case driver.StatusError:
			return phaseUnreadable, true
		}
	}
	return phaseQueued, false
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	prog    progress.Model
	items   []fileItem
	index   map[string]int
	width   int
	done    bool
}

type fileItem struct {
	path  string
	phase phase
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model that renders per-file check
// progress. The model quits when events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 76

	items := make([]fileItem, len(files))
	index := make(map[string]int, len(files))
	for i, file := range files {
		items[i] = fileItem{path: file}
		index[file] = i
	}
	return &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		prog:    prog,
		items:   items,
		index:   index,
		width:   80,
	}
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.listenForEvent())
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		cmd := m.applyEvent(driver.Event(msg))
		return m, tea.Batch(cmd, m.listenForEvent())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.prog.Width = msg.Width - 4
		}
		return m, nil
	case progress.FrameMsg:
		progressModel, cmd := m.prog.Update(msg)
		m.prog = progressModel.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// tally counts files per phase.
type tally [len(phaseLabels)]int

func (m *progressModel) tally() tally {
	var t tally
	for _, item := range m.items {
		t[item.phase]++
	}
	return t
}

// fraction is the share of finished stages over all files.
func (m *progressModel) fraction() float64 {
	if len(m.items) == 0 {
		return 0
	}
	steps := 0
	for _, item := range m.items {
		steps += item.phase.steps()
	}
	return float64(steps) / float64(2*len(m.items))
}

// stageLine renders "loaded x/N · scanned y/N" while running and the outcome
// counts once the run is over.
func (m *progressModel) stageLine() string {
	t := m.tally()
	total := len(m.items)
	if m.done {
		return fmt.Sprintf("%d ok, %d failed, %d unreadable",
			t[phaseBalanced], t[phaseUnbalanced], t[phaseUnreadable])
	}
	loaded := total - t[phaseQueued] - t[phaseLoading]
	scanned := t[phaseBalanced] + t[phaseUnbalanced]
	return fmt.Sprintf("loaded %d/%d · scanned %d/%d", loaded, total, scanned, total-t[phaseUnreadable])
}

func (m *progressModel) View() string {
	if len(m.items) == 0 {
		return ""
	}
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	header := fmt.Sprintf("%s (%s)", m.title, m.stageLine())
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n\n")

	const statusWidth = 10
	nameWidth := max(m.width-statusWidth-4, 20)
	for _, item := range m.items {
		status := styleFor(item.phase).Render(fmt.Sprintf("%*s", statusWidth, item.phase))
		fmt.Fprintf(&b, "  %s %s\n", status, truncate(item.path, nameWidth))
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.prog.ViewAs(1.0))
	} else {
		b.WriteString(m.prog.View())
	}
	b.WriteString("\n")
	return b.String()
}

func (m *progressModel) listenForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) applyEvent(ev driver.Event) tea.Cmd {
	idx, ok := m.index[ev.File]
	if !ok {
		return nil
	}
	next, ok := phaseFor(ev.Stage, ev.Status)
	if !ok {
		return nil
	}
	// итог файла не откатывается поздними событиями
	if m.items[idx].phase.final() {
		return nil
	}
	m.items[idx].phase = next
	return m.prog.SetPercent(m.fraction())
}

func styleFor(p phase) lipgloss.Style {
	switch p {
	case phaseBalanced:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case phaseUnbalanced:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	case phaseUnreadable:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case phaseLoading, phaseLoaded, phaseScanning:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
