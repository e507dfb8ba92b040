package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pairup/internal/association"
	"github.com/MrJamesThe3rd/pairup/internal/matcher"
	"github.com/MrJamesThe3rd/pairup/internal/session"
)

type poolState int

const (
	poolStateBrowse poolState = iota
	poolStateFilter
	poolStatePick
)

type PoolModel struct {
	CommonModel
	session      *session.Session
	associations *association.Service

	state  poolState
	table  table.Model
	rows   []session.Row
	filter textinput.Model

	// Manual match picker
	form    *huh.Form
	picking session.Row
	pick    *uuid.UUID

	status string
}

func NewPoolModel(sess *session.Session, assocSvc *association.Service) PoolModel {
	columns := []table.Column{
		{Title: "Kind", Width: 11},
		{Title: "Score", Width: 6},
		{Title: "Recipient", Width: 36},
		{Title: "Recording", Width: 36},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	fi := textinput.New()
	fi.Placeholder = "recipient or file name"
	fi.Prompt = "/"
	fi.Width = 40

	m := PoolModel{
		session:      sess,
		associations: assocSvc,
		table:        t,
		filter:       fi,
	}
	m.refreshTable()

	return m
}

func (m PoolModel) Title() string { return "Match Pool" }

func (m PoolModel) ShortHelp() string {
	switch m.state {
	case poolStateFilter:
		return "Enter: apply | Esc: clear"
	case poolStatePick:
		return "Enter: match | Esc: cancel"
	}

	return "Esc: back | m: match | u: unmatch | /: filter | o: sort"
}

func (m PoolModel) Init() tea.Cmd {
	return nil
}

func (m PoolModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case suggestMsg:
		return m.openPicker(msg.rightKey)

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil
	}

	switch m.state {
	case poolStateBrowse:
		return m.updateBrowse(msg)
	case poolStateFilter:
		return m.updateFilter(msg)
	case poolStatePick:
		return m.updatePick(msg)
	}

	return m, nil
}

func (m PoolModel) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if ok {
		switch keyMsg.String() {
		case "esc":
			return m, Back
		case "/":
			m.state = poolStateFilter
			m.table.Blur()

			return m, m.filter.Focus()
		case "o":
			m.session.SortForDisplay()
			m.refreshTable()
			m.table.SetCursor(0)

			return m, nil
		case "u":
			return m.unmatch()
		case "m":
			return m.startPick()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)

	return m, cmd
}

func (m PoolModel) updateFilter(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.filter.SetValue("")
			fallthrough
		case tea.KeyEnter:
			m.state = poolStateBrowse
			m.filter.Blur()
			m.table.Focus()
			m.refreshTable()
			m.table.SetCursor(0)

			return m, nil
		}
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)

	return m, cmd
}

func (m PoolModel) current() (session.Row, bool) {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.rows) {
		return session.Row{}, false
	}

	return m.rows[idx], true
}

func (m PoolModel) unmatch() (tea.Model, tea.Cmd) {
	row, ok := m.current()
	if !ok {
		return m, nil
	}

	left, right, err := m.session.UnMatch(row.ID)
	if err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
		return m, nil
	}

	m.status = fmt.Sprintf("Unmatched %s and %s", left.Label(matcher.SideLeft), right.Label(matcher.SideRight))
	m.refreshTable()

	return m, nil
}

// startPick looks up the recording last committed for the selected recipient
// before opening the picker, so it can be offered first.
func (m PoolModel) startPick() (tea.Model, tea.Cmd) {
	row, ok := m.current()
	if !ok {
		return m, nil
	}

	if row.Kind.IsMatch() {
		m.status = "Unmatch this row first."
		return m, nil
	}

	m.picking = row

	if row.Left == nil {
		return m.openPicker("")
	}

	return m, m.suggestCmd(row.Left.Key())
}

func (m PoolModel) openPicker(suggestion string) (tea.Model, tea.Cmd) {
	side := matcher.SideRight
	if m.picking.Left == nil {
		side = matcher.SideLeft
	}

	candidates := orderCandidates(m.session.Candidates(side, ""), suggestion)
	if len(candidates) == 0 {
		m.status = "Nothing left to match with."
		return m, nil
	}

	options := make([]huh.Option[uuid.UUID], len(candidates))
	for i, c := range candidates {
		label := c.Label(side)
		if i == 0 && suggestion != "" && c.Right != nil && c.Right.Key() == suggestion {
			label += " (used last time)"
		}

		options[i] = huh.NewOption(label, c.ID)
	}

	m.pick = new(uuid.UUID)
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[uuid.UUID]().
				Key("pick").
				Title("Match " + m.picking.Label(opposite(side)) + " with").
				Options(options...).
				Value(m.pick),
		),
	).WithWidth(60).WithShowHelp(false)

	m.state = poolStatePick
	m.table.Blur()

	return m, m.form.Init()
}

func (m PoolModel) updatePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.closePicker()
		return m, nil
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State != huh.StateCompleted {
		return m, cmd
	}

	row, err := m.session.ForceMatch(m.picking.ID, *m.pick)
	if err != nil {
		m.status = fmt.Sprintf("Error: %v", err)
	} else {
		m.status = fmt.Sprintf("Matched %s and %s", row.Label(matcher.SideLeft), row.Label(matcher.SideRight))
	}

	m.closePicker()
	m.refreshTable()

	return m, nil
}

func (m *PoolModel) closePicker() {
	m.state = poolStateBrowse
	m.form = nil
	m.pick = nil
	m.table.Focus()
}

func (m PoolModel) View() string {
	header := fmt.Sprintf("%d rows", len(m.rows))
	if q := m.filter.Value(); q != "" && m.state != poolStateFilter {
		header += " matching " + activeStyle(q)
	}

	tableView := lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Render(m.table.View())

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		tableView,
	)

	if m.state == poolStateFilter {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.filter.View())
	}

	if m.state == poolStatePick && m.form != nil {
		panel := lipgloss.NewStyle().
			Padding(1, 2).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Width(64).
			Render(m.form.View())

		content = lipgloss.JoinHorizontal(lipgloss.Top, content, panel)
	}

	if m.status != "" {
		content = faintStyle.Render(m.status) + "\n" + content
	}

	return lipgloss.NewStyle().Padding(1).Render(content)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *PoolModel) refreshTable() {
	if q := m.filter.Value(); q != "" {
		m.rows = m.session.Filter(q)
	} else {
		m.rows = m.session.Rows()
	}

	rows := make([]table.Row, 0, len(m.rows))
	for _, r := range m.rows {
		rows = append(rows, table.Row{
			r.Kind.String(),
			FormatScore(r.Kind, r.Score),
			r.Label(matcher.SideLeft),
			r.Label(matcher.SideRight),
		})
	}

	m.table.SetRows(rows)

	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
}

// orderCandidates moves the recording whose key equals suggestion to the front.
func orderCandidates(rows []session.Row, suggestion string) []session.Row {
	if suggestion == "" {
		return rows
	}

	for i, r := range rows {
		if r.Right == nil || r.Right.Key() != suggestion {
			continue
		}

		out := make([]session.Row, 0, len(rows))
		out = append(out, r)
		out = append(out, rows[:i]...)
		out = append(out, rows[i+1:]...)

		return out
	}

	return rows
}

func opposite(side matcher.Side) matcher.Side {
	if side == matcher.SideLeft {
		return matcher.SideRight
	}

	return matcher.SideLeft
}

// Messages

type suggestMsg struct {
	rightKey string
}

func (m PoolModel) suggestCmd(leftKey string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := DbCtx()
		defer cancel()

		// A failed lookup only loses the hint.
		rightKey, _ := m.associations.Suggest(ctx, leftKey)

		return suggestMsg{rightKey: rightKey}
	}
}
