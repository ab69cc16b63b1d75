package ui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/olivier-w/countup/internal/counter"
	"github.com/olivier-w/countup/internal/frame"
	"github.com/olivier-w/countup/internal/sound"
	"github.com/olivier-w/countup/internal/spring"
	"github.com/olivier-w/countup/internal/stats"
	"github.com/olivier-w/countup/internal/visibility"
	"github.com/rs/zerolog"
)

// Terminal cells are measured as 8x16 px so margins from the board file
// keep their on-screen meaning.
const (
	cellWidthPx  = 8
	cellHeightPx = 16

	headerLines   = 4
	rowLines      = 3
	trailLines    = 4
	footerLines   = 2
	valueWidth    = 14
	defaultWidth  = 80
	defaultHeight = 24
)

// session is the mutable state shared by every copy of the Model.
type session struct {
	board    stats.Board
	loop     *frame.Loop
	rows     []*statRow
	log      zerolog.Logger
	chimeDue bool
}

// Model is the Bubbletea model for the statistics board.
type Model struct {
	s        *session
	chime    sound.Chime
	keys     keyMap
	help     help.Model
	bar      progress.Model
	width    int
	height   int
	scroll   int
	ticking  bool
	quitting bool
}

// Option configures a Model.
type Option func(*options)

type options struct {
	chime sound.Chime
	log   zerolog.Logger
	clock frame.Clock
}

// WithChime plays c each time a counter settles.
func WithChime(c sound.Chime) Option {
	return func(o *options) { o.chime = c }
}

// WithLogger sets the logger for the board and its counters.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithClock replaces the frame clock.
func WithClock(c frame.Clock) Option {
	return func(o *options) { o.clock = c }
}

// New creates the board model and mounts every counter against a default
// terminal size. Counters already on screen start animating on the first
// frame.
func New(board stats.Board, opts ...Option) Model {
	o := options{chime: sound.Silent{}, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	bar := progress.New(
		progress.WithScaledGradient("#FF8C00", "#FF5F1F"),
		progress.WithoutPercentage(),
	)

	m := Model{
		s: &session{
			board: board,
			loop:  frame.NewLoop(o.clock),
			log:   o.log,
		},
		chime:  o.chime,
		keys:   defaultKeys(),
		help:   help.New(),
		bar:    bar,
		width:  defaultWidth,
		height: defaultHeight,
	}
	m.resize(defaultWidth, defaultHeight)
	m.mount()
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tea.SetWindowTitle(m.s.board.Title)}
	if m.s.loop.Active() {
		cmds = append(cmds, frameCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			m.s.close()
			return m, tea.Sequence(tea.SetWindowTitle(""), tea.Quit)
		case key.Matches(msg, m.keys.Down):
			m.scrollTo(m.scroll + 1)
		case key.Matches(msg, m.keys.Up):
			m.scrollTo(m.scroll - 1)
		case key.Matches(msg, m.keys.Top):
			m.scrollTo(0)
		case key.Matches(msg, m.keys.Bottom):
			m.scrollTo(m.maxScroll())
		case key.Matches(msg, m.keys.Remount):
			m.s.close()
			m.mount()
		}

	case tea.MouseMsg:
		switch msg.Button {
		case tea.MouseButtonWheelDown:
			m.scrollTo(m.scroll + 1)
		case tea.MouseButtonWheelUp:
			m.scrollTo(m.scroll - 1)
		}

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case frameMsg:
		m.ticking = false
		m.s.loop.Step(time.Time(msg))
	}

	return m.afterUpdate()
}

// afterUpdate plays a pending chime and keeps the frame loop running only
// while a counter is animating. Counters settling within one update share
// a single chime.
func (m Model) afterUpdate() (tea.Model, tea.Cmd) {
	if m.s.chimeDue {
		m.s.chimeDue = false
		m.chime.Play()
	}
	if m.s.loop.Active() && !m.ticking {
		m.ticking = true
		return m, frameCmd()
	}
	return m, nil
}

// Close tears down every counter. Quitting through the keyboard already
// does this; main calls it for other exit paths.
func (m Model) Close() { m.s.close() }

func (m *Model) mount() {
	sc := spring.DefaultConfig()
	sc.Method, _ = m.s.board.Settings.SpringMethod()
	settings := m.s.board.Settings

	m.s.rows = m.s.rows[:0]
	for _, st := range m.s.board.Stats {
		row := newStatRow(st)
		row.ctrl = counter.New(row, m.s.loop, st.Counter(),
			counter.WithSettings(settings.Counter()),
			counter.WithMargin(settings.MarginPx()),
			counter.WithSpring(sc),
			counter.WithLogger(m.s.log.With().Str("stat", st.Label).Logger()),
		)
		s, ctrl := m.s, row.ctrl
		row.unsub = ctrl.OnState(func(state counter.State) {
			// A counter with nothing to count (end 0) settles silently.
			if state == counter.Settled && ctrl.Forwarded() > 0 {
				s.chimeDue = true
			}
		})
		m.s.rows = append(m.s.rows, row)
	}
	m.layout()
	for _, row := range m.s.rows {
		row.ctrl.Mount()
	}
	m.s.log.Debug().Int("stats", len(m.s.rows)).Msg("board mounted")
}

func (s *session) close() {
	for _, row := range s.rows {
		row.close()
	}
}

func (m *Model) resize(width, height int) {
	m.width = max(width, 20)
	m.height = max(height, footerLines+rowLines)
	m.bar.Width = min(max(m.width-valueWidth-8, 10), 40)
	m.help.Width = m.width
	m.scroll = min(m.scroll, m.maxScroll())
	m.layout()
}

func (m *Model) scrollTo(line int) {
	m.scroll = min(max(line, 0), m.maxScroll())
	m.layout()
}

func (m Model) contentHeight() int { return m.height - footerLines }

func (m Model) totalLines() int {
	return headerLines + len(m.s.board.Stats)*rowLines + trailLines
}

func (m Model) maxScroll() int {
	return max(m.totalLines()-m.contentHeight(), 0)
}

// layout publishes every row's position against the visible window.
func (m Model) layout() {
	w := float64(m.width * cellWidthPx)
	viewport := visibility.Rect{
		Y: float64(m.scroll * cellHeightPx),
		W: w,
		H: float64(m.contentHeight() * cellHeightPx),
	}
	for i, row := range m.s.rows {
		row.publish(visibility.Geometry{
			Element: visibility.Rect{
				Y: float64((headerLines + i*rowLines) * cellHeightPx),
				W: w,
				H: float64(rowLines * cellHeightPx),
			},
			Viewport: viewport,
		})
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	lines := m.contentLines()
	end := min(m.scroll+m.contentHeight(), len(lines))
	visible := lines[min(m.scroll, end):end]

	var b strings.Builder
	for _, line := range visible {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	for range m.contentHeight() - len(visible) {
		b.WriteByte('\n')
	}
	b.WriteString("\n  ")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("  ")
	b.WriteString(helpStyle.Render(renderChimeStatus(m.s.board.Settings)))
	return b.String()
}

func (m Model) contentLines() []string {
	lines := make([]string, 0, m.totalLines())
	lines = append(lines,
		"",
		"  "+titleStyle.Render(m.s.board.Title),
		"  "+headerStyle.Render(renderSubtitle(len(m.s.rows), m.s.board.Settings)),
		"",
	)
	for _, row := range m.s.rows {
		style := valueStyle
		if row.ctrl.State() == counter.Armed {
			style = pendingStyle
		}
		value := style.Render(padRight(row.ctrl.Text(), valueWidth))
		lines = append(lines,
			"  "+labelStyle.Render(row.stat.Label),
			"  "+value+" "+m.bar.ViewAs(row.fraction()),
			"",
		)
	}
	for range trailLines {
		lines = append(lines, "")
	}
	return lines
}

func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
