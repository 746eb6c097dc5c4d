// Package tui provides the Bubble Tea recall interface.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/tachy/internal/trainer"
)

type phase int

const (
	phaseReady phase = iota
	phaseShow
	phaseRecall
	phaseFeedback
)

const maxAnswerLength = 64

// Session supplies stimuli and grades recall attempts. Record grades the
// most recent stimulus returned by Next.
type Session interface {
	Next() trainer.Stimulus
	Record(ctx context.Context, typed string) (trainer.Verdict, error)
}

// hideMsg ends the exposure of trial.
type hideMsg struct {
	trial int
}

// Model implements the Bubble Tea flash-and-recall UI.
type Model struct {
	session  Session
	exposure time.Duration
	logger   *slog.Logger
	input    textinput.Model

	width  int
	height int

	phase    phase
	trial    int
	stimulus trainer.Stimulus
	verdict  trainer.Verdict
	correct  int
	err      error
}

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	stimulusStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	okStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs a recall TUI model. exposure is how long each
// stimulus stays on screen.
func NewModel(session Session, exposure time.Duration, logger *slog.Logger) *Model {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "type what you saw"
	input.CharLimit = maxAnswerLength
	if logger == nil {
		logger = slog.Default()
	}
	return &Model{
		session:  session,
		exposure: exposure,
		logger:   logger,
		input:    input,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case hideMsg:
		if msg.trial != m.trial || m.phase != phaseShow {
			return m, nil
		}
		m.phase = phaseRecall
		m.input.Reset()
		return m, m.input.Focus()
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		}
		switch m.phase {
		case phaseReady, phaseFeedback:
			if msg.Type == tea.KeyEnter || msg.Type == tea.KeySpace {
				return m, m.present()
			}
			return m, nil
		case phaseRecall:
			if msg.Type == tea.KeyEnter {
				m.submit()
				return m, nil
			}
		default:
			return m, nil
		}
	}
	if m.phase != phaseRecall {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) present() tea.Cmd {
	m.stimulus = m.session.Next()
	m.trial++
	m.phase = phaseShow
	m.err = nil
	trial := m.trial
	return tea.Tick(m.exposure, func(time.Time) tea.Msg {
		return hideMsg{trial: trial}
	})
}

func (m *Model) submit() {
	typed := m.input.Value()
	m.input.Blur()
	m.phase = phaseFeedback
	verdict, err := m.session.Record(context.Background(), typed)
	if err != nil {
		m.logger.Error("failed to record attempt", "trial", m.trial, "err", err)
		m.err = err
		m.verdict = trainer.Verdict{Expected: m.stimulus.Text, Typed: typed}
		return
	}
	m.verdict = verdict
	if verdict.OK {
		m.correct++
	}
	m.logger.Debug("attempt recorded", "trial", m.trial, "ok", verdict.OK, "status", verdict.Status)
}

// View implements tea.Model.
func (m *Model) View() string {
	content := m.renderBody()
	if m.width == 0 || m.height == 0 {
		return content + "\n" + m.renderFooter()
	}
	footer := m.renderFooter()
	if m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) renderBody() string {
	switch m.phase {
	case phaseShow:
		runes := make([]styledRune, 0, len(m.stimulus.Text))
		for _, r := range m.stimulus.Text {
			runes = append(runes, styledRune{s: stimulusStyle.Render(string(r)), width: 1})
		}
		return wrapStyledRunes(runes, m.contentWidth())
	case phaseRecall:
		return m.input.View()
	case phaseFeedback:
		return m.renderFeedback()
	default:
		return pendingStyle.Render("Press enter to flash the next stimulus.")
	}
}

func (m *Model) renderFeedback() string {
	lines := make([]string, 0, 4)
	switch {
	case m.err != nil:
		lines = append(lines, incorrectStyle.Render(fmt.Sprintf("Not saved: %v", m.err)))
	case m.verdict.OK:
		lines = append(lines, okStyle.Render("Correct"))
	default:
		lines = append(lines, incorrectStyle.Render("Missed"))
	}
	expected := buildStyledRunes([]rune(m.verdict.Expected), []rune(strings.TrimSpace(m.verdict.Typed)))
	lines = append(lines, wrapStyledRunes(expected, m.contentWidth()))
	if !m.verdict.OK {
		lines = append(lines, pendingStyle.Render("you typed: "+m.verdict.Typed))
	}
	if m.verdict.Status != "" {
		lines = append(lines, m.verdict.Status)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter() string {
	segments := make([]string, 0, 3)
	if m.trial > 0 {
		segments = append(segments, fmt.Sprintf("Trial %d", m.trial))
		done := m.trial
		if m.phase != phaseFeedback {
			done--
		}
		if done > 0 {
			segments = append(segments, fmt.Sprintf("Correct %d/%d", m.correct, done))
		}
	}
	if m.stimulus.Label != "" {
		segments = append(segments, m.stimulus.Label)
	}
	segments = append(segments, "enter: next · esc: quit")
	return footerStyle.Render(strings.Join(segments, "  "))
}
