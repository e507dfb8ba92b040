package view

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pairup/internal/config"
	"github.com/MrJamesThe3rd/pairup/internal/matcher"
	"github.com/MrJamesThe3rd/pairup/internal/media"
	"github.com/MrJamesThe3rd/pairup/internal/roster"
	"github.com/MrJamesThe3rd/pairup/internal/session"
)

type loadState int

const (
	loadStateForm loadState = iota
	loadStateRunning
	loadStateResult
)

// loadFields is shared with the form so its bindings survive model copies.
type loadFields struct {
	rosterPath string
	mediaDir   string
	threshold  string
}

type LoadModel struct {
	CommonModel
	sessions   *session.Registry
	extensions []string

	state   loadState
	fields  *loadFields
	form    *huh.Form
	spinner spinner.Model
	cancel  context.CancelFunc

	session *session.Session
	stats   matcher.Stats
	err     error
}

func NewLoadModel(sessions *session.Registry, extensions []string, threshold int) LoadModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := LoadModel{
		sessions:   sessions,
		extensions: extensions,
		fields:     &loadFields{mediaDir: ".", threshold: strconv.Itoa(threshold)},
		spinner:    s,
	}
	m.form = m.buildForm()

	return m
}

func (m LoadModel) Title() string { return "Load Session" }

func (m LoadModel) ShortHelp() string {
	switch m.state {
	case loadStateRunning:
		return "Esc: stop matching"
	case loadStateResult:
		if m.session != nil {
			return "Enter: open pool | Esc: back"
		}
	}

	return "Esc: back | Enter: confirm"
}

func (m LoadModel) Init() tea.Cmd {
	return m.form.Init()
}

func (m LoadModel) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key("roster").
				Title("Roster CSV").
				Placeholder("./recipients.csv").
				Value(&m.fields.rosterPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("roster path cannot be empty")
					}
					return nil
				}),

			huh.NewInput().
				Key("media").
				Title("Recordings Directory").
				Description(strings.Join(m.extensions, " ")).
				Value(&m.fields.mediaDir),

			huh.NewInput().
				Key("threshold").
				Title("Threshold").
				Description(fmt.Sprintf("Minimum similarity, %d to 100", config.MinThreshold)).
				Value(&m.fields.threshold).
				Validate(validateThreshold),
		),
	).WithWidth(60).WithShowHelp(false)
}

func validateThreshold(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("threshold must be a number")
	}

	if n < config.MinThreshold || n > 100 {
		return fmt.Errorf("threshold must be between %d and 100", config.MinThreshold)
	}

	return nil
}

func (m LoadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.state {
	case loadStateForm:
		return m.updateForm(msg)
	case loadStateRunning:
		return m.updateRunning(msg)
	case loadStateResult:
		return m.updateResult(msg)
	}

	return m, nil
}

func (m LoadModel) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		return m, Back
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	threshold, _ := strconv.Atoi(strings.TrimSpace(m.fields.threshold))

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.state = loadStateRunning
	m.err = nil
	m.session = nil

	return m, tea.Batch(m.spinner.Tick, m.runCmd(ctx, threshold))
}

func (m LoadModel) updateRunning(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc && m.cancel != nil {
			m.cancel()
		}

		return m, nil

	case loadResultMsg:
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}

		m.state = loadStateResult
		m.session = msg.session
		m.stats = msg.stats
		m.err = msg.err

		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)

	return m, cmd
}

func (m LoadModel) updateResult(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyEsc:
		m.state = loadStateForm
		m.form = m.buildForm()

		return m, m.form.Init()
	case tea.KeyEnter:
		if m.session == nil {
			return m, nil
		}

		sess := m.session

		return m, func() tea.Msg { return SessionLoadedMsg{Session: sess} }
	}

	return m, nil
}

func (m LoadModel) View() string {
	switch m.state {
	case loadStateForm:
		return lipgloss.NewStyle().Padding(1).Render(m.form.View())
	case loadStateRunning:
		return lipgloss.NewStyle().Padding(2).Render(
			fmt.Sprintf("%s Matching %s against %s...", m.spinner.View(), m.fields.rosterPath, m.fields.mediaDir),
		)
	case loadStateResult:
		return m.viewResult()
	}

	return ""
}

func (m LoadModel) viewResult() string {
	style := lipgloss.NewStyle().Padding(2)

	if m.session == nil {
		return style.Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)) + "\n\n(Esc to go back)")
	}

	var lines []string

	if errors.Is(m.err, context.Canceled) {
		lines = append(lines, errorStyle.Render("Matching stopped. Matches found so far are kept."))
	} else if m.err != nil {
		lines = append(lines, errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	} else {
		lines = append(lines, successStyle.Render("Matching complete."))
	}

	lines = append(lines, "", m.stats.String(), "")

	summary := m.session.Summary()
	for _, k := range []matcher.Kind{
		matcher.KindExact, matcher.KindToken, matcher.KindFuzzy,
		matcher.KindLeftOnly, matcher.KindRightOnly,
	} {
		lines = append(lines, fmt.Sprintf("%-12s %d", k, summary[k]))
	}

	return style.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// Messages

type loadResultMsg struct {
	session *session.Session
	stats   matcher.Stats
	err     error
}

func (m LoadModel) runCmd(ctx context.Context, threshold int) tea.Cmd {
	rosterPath := strings.TrimSpace(m.fields.rosterPath)
	mediaDir := strings.TrimSpace(m.fields.mediaDir)

	return func() tea.Msg {
		recipients, err := roster.Load(rosterPath)
		if err != nil {
			return loadResultMsg{err: err}
		}

		files, err := media.Scan(mediaDir, m.extensions)
		if err != nil {
			return loadResultMsg{err: err}
		}

		sess, err := m.sessions.Create(recipients, files)
		if err != nil {
			return loadResultMsg{err: err}
		}

		stats, err := sess.AutoMatch(ctx, threshold)

		return loadResultMsg{session: sess, stats: stats, err: err}
	}
}
