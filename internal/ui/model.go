package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hurttlocker/factdice/internal/dice"
	"github.com/hurttlocker/factdice/internal/logging"
	"github.com/hurttlocker/factdice/internal/roll"
	"github.com/hurttlocker/factdice/internal/store"
	"github.com/hurttlocker/factdice/internal/theme"
	"github.com/hurttlocker/factdice/internal/topic"
)

// DefaultRollDelay is how long the dice spins before the roll resolves.
const DefaultRollDelay = time.Second

// NoticeText is shown once when remote generation turns out to be unconfigured.
const NoticeText = "⚠️ Please set your Gemini API key (GEMINI_API_KEY in .env or the environment) to generate facts."

// Options configures the widget.
type Options struct {
	Session *roll.Session
	// Store persists the theme. Optional.
	Store store.Store
	Topic string
	Theme theme.Name
	// RollDelay is the spin time before a roll. Zero rolls immediately.
	RollDelay time.Duration
}

// Model is the root Bubble Tea model for the dice widget.
type Model struct {
	session *roll.Session
	store   store.Store
	delay   time.Duration

	topicID string
	theme   theme.Name
	styles  theme.Styles
	spinner spinner.Model

	rolling bool
	result  *roll.Result
	notice  bool
	err     error
	width   int
}

// New creates the widget model.
func New(opts Options) Model {
	t := topic.Resolve(opts.Topic)
	name := opts.Theme
	if name == "" {
		name = theme.Dark
	}
	styles := theme.For(name)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.Spinner

	return Model{
		session: opts.Session,
		store:   opts.Store,
		delay:   opts.RollDelay,
		topicID: t.ID,
		theme:   styles.Name,
		styles:  styles,
		spinner: s,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case RollStart:
		return m, m.rollCmd(msg.Topic)

	case RollFinished:
		m.rolling = false
		if msg.Err != nil {
			if !errors.Is(msg.Err, roll.ErrRollInFlight) {
				m.err = msg.Err
			}
			return m, nil
		}
		m.result = msg.Result
		if msg.Result.Notice {
			m.notice = true
		}
		return m, nil

	case ThemeSaved:
		if msg.Err != nil {
			logging.Warn("theme not saved", "theme", msg.Theme, "err", msg.Err)
			m.err = msg.Err
		}
		return m, nil

	case spinner.TickMsg:
		if !m.rolling {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Roll):
		if m.rolling || m.session == nil {
			return m, nil
		}
		m.rolling = true
		m.result = nil
		start := RollStart{Topic: m.topicID}
		if m.delay <= 0 {
			return m, tea.Batch(m.spinner.Tick, m.rollCmd(start.Topic))
		}
		return m, tea.Batch(m.spinner.Tick, tea.Tick(m.delay, func(time.Time) tea.Msg { return start }))

	case key.Matches(msg, keys.NextTopic), key.Matches(msg, keys.PrevTopic):
		if m.rolling {
			return m, nil
		}
		step := 1
		if key.Matches(msg, keys.PrevTopic) {
			step = -1
		}
		m.topicID = topic.Next(m.topicID, step)
		m.result = nil
		return m, nil

	case key.Matches(msg, keys.Theme):
		m.theme = theme.Toggle(m.theme)
		m.styles = theme.For(m.theme)
		m.spinner.Style = m.styles.Spinner
		return m, m.saveThemeCmd(m.theme)
	}

	return m, nil
}

func (m Model) rollCmd(topicID string) tea.Cmd {
	s := m.session
	return func() tea.Msg {
		res, err := s.Roll(context.Background(), topicID)
		return RollFinished{Result: res, Err: err}
	}
}

func (m Model) saveThemeCmd(n theme.Name) tea.Cmd {
	st := m.store
	if st == nil {
		return nil
	}
	return func() tea.Msg {
		return ThemeSaved{Theme: n, Err: theme.Save(context.Background(), st, n)}
	}
}

// View renders the widget.
func (m Model) View() string {
	st := m.styles
	name := topic.DisplayName(m.topicID)

	var b strings.Builder
	b.WriteString(st.Title.Render("Fact Dice"))
	b.WriteString("  ")
	b.WriteString(m.theme.Icon())
	b.WriteString("\n")
	b.WriteString("Topic: ")
	b.WriteString(st.Topic.Render("‹ " + name + " ›"))
	b.WriteString("\n\n")

	switch {
	case m.rolling:
		b.WriteString(st.Dice.Render(m.spinner.View() + " rolling"))
	case m.result != nil:
		b.WriteString(st.Dice.Render(dice.Render(m.result.DiceValue, st.DotOn, st.DotOff)))
	default:
		b.WriteString(st.Dice.Render(dice.Render(1, st.DotOn, st.DotOff)))
	}
	b.WriteString("\n")

	if m.result != nil && !m.rolling {
		b.WriteString(st.Label.Render(m.result.Label))
		b.WriteString("\n")
		for _, f := range m.result.Facts {
			b.WriteString(st.Bullet.Render("•"))
			b.WriteString(st.Fact.Render(wrap(f, m.width)))
			b.WriteString("\n")
		}
	} else if !m.rolling {
		b.WriteString(st.Label.Render(dice.Prompt(name)))
		b.WriteString("\n")
	}

	if m.notice {
		b.WriteString(st.Notice.Render(NoticeText))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(st.Notice.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	}

	b.WriteString(st.Help.Render(helpLine()))
	return b.String()
}

func wrap(s string, width int) string {
	if width <= 8 {
		return s
	}
	return lipgloss.NewStyle().Width(width - 4).Render(s)
}

// Topic returns the selected topic id (for testing).
func (m Model) Topic() string { return m.topicID }

// Theme returns the active theme (for testing).
func (m Model) Theme() theme.Name { return m.theme }

// Rolling reports whether a roll is in progress (for testing).
func (m Model) Rolling() bool { return m.rolling }

// Result returns the displayed roll, nil when none (for testing).
func (m Model) Result() *roll.Result { return m.result }

// Run starts the widget full-screen and blocks until the user quits.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running widget: %w", err)
	}
	return nil
}
