// Package tui provides the Bubble Tea front end for one feedback session.
package tui

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fakeyudi/parley/internal/attach"
	"github.com/fakeyudi/parley/internal/countdown"
	"github.com/fakeyudi/parley/internal/feedback"
	"github.com/fakeyudi/parley/internal/prefs"
)

// ── Styles ────────────

var (
	// Title bar at the very top
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 2)

	// Agent summary banner
	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("24")).
			Padding(0, 1)

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// Countdown badge, by phase
	clockRunStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	clockWarnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	clockCritStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	clockPauseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("178")).Bold(true)

	// Option chips
	optionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("151"))
	optionCursorStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("237"))
	optionPickedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("82"))

	attachRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("33"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
)

// criticalDisplay is a display-only threshold: below it the countdown turns
// red. The functional warning phase comes from the controller.
const criticalDisplay = 60 * time.Second

// ── Focus areas ─────────────────

type focusArea int

const (
	focusText focusArea = iota
	focusOptions
	focusAttach
)

// tickMsg drives the countdown once per second, independent of user input.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// ── Model ────────────────────

// Model is the root Bubble Tea model for a feedback session.
type Model struct {
	req   feedback.Request
	store *attach.Store
	clock *countdown.Controller
	pf    prefs.Prefs

	text        textarea.Model
	attachInput textinput.Model

	selected     map[int]bool
	optionCursor int
	focus        focusArea
	showAttach   bool
	attachErr    string

	width  int
	height int
	ready  bool

	// Terminal-event latch: exactly one result per session. Once set, all
	// further submit/expiry paths are disabled.
	result *feedback.Result
	done   bool
}

// New creates the session model. The caller owns the store's teardown.
func New(req feedback.Request, store *attach.Store, clock *countdown.Controller, pf prefs.Prefs) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your feedback… (@path#12-20 to reference code)"
	ta.ShowLineNumbers = false
	ta.SetHeight(6)
	ta.Focus()

	ti := textinput.New()
	ti.Placeholder = "path to an image to attach"

	return Model{
		req:         req,
		store:       store,
		clock:       clock,
		pf:          pf,
		text:        ta,
		attachInput: ti,
		selected:    make(map[int]bool),
		showAttach:  pf.AttachmentsVisible,
	}
}

// Result returns the emitted result; ok is false if the program ended
// without one (treated as an empty submission by the caller).
func (m Model) Result() (feedback.Result, bool) {
	if m.result == nil {
		return feedback.Result{}, false
	}
	return *m.result, true
}

// ── Bubble Tea interface ───────────────

func (m Model) Init() tea.Cmd { return tea.Batch(textarea.Blink, tick()) }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if m.done {
			return m, nil
		}
		if m.clock.Tick() == countdown.Expired {
			// Expiry emits immediately with whatever has accumulated.
			m.finish(true)
			return m, tea.Quit
		}
		return m, tick()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.text.SetWidth(msg.Width - 4)
		m.attachInput.Width = msg.Width - 8
		return m, nil

	case tea.KeyMsg:
		if m.done {
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		// Abandoned session: empty result, not a timeout.
		m.result = &feedback.Result{
			InteractiveFeedback: "",
			ImagePaths:          []string{},
			SelectedOptions:     []string{},
		}
		m.done = true
		return m, tea.Quit

	case "ctrl+s":
		m.finish(false)
		return m, tea.Quit

	case "ctrl+e":
		// End action: attachments are cleared before the result is built.
		m.store.Clear()
		m.text.SetValue("end")
		m.finish(false)
		return m, tea.Quit

	case "ctrl+t":
		if m.clock.Phase() == countdown.Paused {
			m.clock.Resume()
		} else {
			m.clock.Pause()
		}
		return m, nil

	case "ctrl+r":
		m.clock.Reset()
		return m, nil

	case "ctrl+o":
		m.showAttach = !m.showAttach
		m.pf.AttachmentsVisible = m.showAttach
		// Persist the toggle immediately; prefs are best-effort.
		_ = prefs.Save(m.req.ProjectDirectory, m.pf)
		if m.showAttach {
			return m.setFocus(focusAttach)
		}
		return m.setFocus(focusText)

	case "tab":
		return m.cycleFocus()
	}

	switch m.focus {
	case focusOptions:
		switch msg.String() {
		case "up", "k":
			if m.optionCursor > 0 {
				m.optionCursor--
			}
			return m, nil
		case "down", "j":
			if m.optionCursor < len(m.req.Options)-1 {
				m.optionCursor++
			}
			return m, nil
		case "enter", " ":
			// Re-selecting toggles; never an error.
			m.selected[m.optionCursor] = !m.selected[m.optionCursor]
			if !m.selected[m.optionCursor] {
				delete(m.selected, m.optionCursor)
			}
			return m, nil
		}
		return m, nil

	case focusAttach:
		if msg.String() == "enter" {
			path := strings.TrimSpace(m.attachInput.Value())
			if path == "" {
				return m, nil
			}
			if _, err := m.store.AddFile(path, attach.SourcePicker); err != nil {
				m.attachErr = err.Error()
			} else {
				m.attachErr = ""
				m.attachInput.SetValue("")
			}
			return m, nil
		}
		var cmd tea.Cmd
		m.attachInput, cmd = m.attachInput.Update(msg)
		return m, cmd

	default:
		var cmd tea.Cmd
		m.text, cmd = m.text.Update(msg)
		return m, cmd
	}
}

// cycleFocus moves tab focus text → options → attachments → text, skipping
// hidden areas.
func (m Model) cycleFocus() (tea.Model, tea.Cmd) {
	next := m.focus
	for {
		next = (next + 1) % 3
		if next == focusOptions && len(m.req.Options) == 0 {
			continue
		}
		if next == focusAttach && !m.showAttach {
			continue
		}
		break
	}
	return m.setFocus(next)
}

func (m Model) setFocus(f focusArea) (tea.Model, tea.Cmd) {
	m.focus = f
	m.text.Blur()
	m.attachInput.Blur()
	switch f {
	case focusText:
		return m, m.text.Focus()
	case focusAttach:
		return m, m.attachInput.Focus()
	}
	return m, nil
}

// finish assembles the one and only result. Image paths are read before any
// teardown clears the store.
func (m *Model) finish(timedOut bool) {
	if m.done {
		return
	}
	res := feedback.Assemble(m.req, m.text.Value(), m.selected, m.store.Paths(), timedOut)
	m.result = &res
	m.done = true
}

// ── View ──────────────────────

func (m Model) View() string {
	if !m.ready {
		return "Loading…"
	}

	project := filepath.Base(filepath.Clean(m.req.ProjectDirectory))
	title := titleStyle.Render(" parley  " + project)
	clock := m.renderClock()
	gap := m.width - lipgloss.Width(title) - lipgloss.Width(clock)
	if gap < 1 {
		gap = 1
	}
	top := title + strings.Repeat(" ", gap) + clock

	var b strings.Builder
	b.WriteString(top + "\n\n")
	b.WriteString(summaryStyle.Width(m.width).Render(m.req.Summary) + "\n\n")

	if len(m.req.Options) > 0 {
		b.WriteString(sectionHeader.Render("  Options") + "\n")
		b.WriteString(m.renderOptions() + "\n")
	}

	if m.showAttach {
		b.WriteString(sectionHeader.Render("  Attachments") + "\n")
		b.WriteString(m.renderAttachments() + "\n")
	}

	b.WriteString(sectionHeader.Render("  Feedback") + "\n")
	b.WriteString(m.text.View() + "\n\n")
	b.WriteString(m.renderStatusBar())
	return b.String()
}

func (m Model) renderClock() string {
	rem := m.clock.Remaining()
	label := fmt.Sprintf("⏱ %02d:%02d ", int(rem.Minutes()), int(rem.Seconds())%60)
	switch {
	case m.clock.Phase() == countdown.Paused:
		return clockPauseStyle.Render("⏸ paused " + strings.TrimPrefix(label, "⏱ "))
	case rem <= criticalDisplay:
		return clockCritStyle.Render(label)
	case m.clock.Phase() == countdown.Warning:
		return clockWarnStyle.Render(label)
	default:
		return clockRunStyle.Render(label)
	}
}

func (m Model) renderOptions() string {
	var b strings.Builder
	for i, opt := range m.req.Options {
		mark := "[ ]"
		if m.selected[i] {
			mark = optionPickedStyle.Render("[x]")
		}
		row := fmt.Sprintf("  %s %d. %s", mark, i+1, opt)
		if m.focus == focusOptions && i == m.optionCursor {
			row = optionCursorStyle.Render(row)
		} else {
			row = optionStyle.Render(row)
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}

func (m Model) renderAttachments() string {
	var b strings.Builder
	paths := m.store.Paths()
	if len(paths) == 0 {
		b.WriteString(dimStyle.Render("  (none)") + "\n")
	}
	for i, p := range paths {
		b.WriteString(attachRowStyle.Render(fmt.Sprintf("  %d. %s", i+1, filepath.Base(p))) + "\n")
	}
	b.WriteString("  " + m.attachInput.View() + "\n")
	if m.attachErr != "" {
		b.WriteString(errStyle.Render("  "+m.attachErr) + "\n")
	}
	return b.String()
}

func (m Model) renderStatusBar() string {
	hint := "  ctrl+s send  ctrl+e end  tab focus  ctrl+o attach  ctrl+t pause  ctrl+r restart  esc cancel"
	if m.focus == focusOptions {
		hint = "  ↑/↓ move  space toggle  " + strings.TrimLeft(hint, " ")
	}
	return statusBarStyle.Width(m.width).Render(hint)
}

// ── Program entry ─────────────────────

// Run drives the session to its single terminal event and returns the
// result. in/out should be the controlling terminal, leaving the process's
// std streams free for the orchestrator's diagnostics.
func Run(m Model, in io.Reader, out io.Writer) (feedback.Result, error) {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return feedback.Result{}, err
	}
	if fm, ok := final.(Model); ok {
		if res, ok := fm.Result(); ok {
			return res, nil
		}
	}
	return feedback.Result{
		ImagePaths:      []string{},
		SelectedOptions: []string{},
	}, nil
}
