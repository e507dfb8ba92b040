package view

import (
	"cmp"
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/pairup/internal/matcher"
	"github.com/MrJamesThe3rd/pairup/internal/session"
)

// ReviewModel walks the similarity matches one at a time so an operator can
// confirm or reject each of them.
type ReviewModel struct {
	CommonModel
	session *session.Session

	queue      []session.Row
	current    *session.Row
	totalCount int
	accepted   int
	rejected   int

	status string
}

func NewReviewModel(sess *session.Session) ReviewModel {
	queue := reviewQueue(sess.Rows())

	m := ReviewModel{
		session:    sess,
		queue:      queue,
		totalCount: len(queue),
	}
	m.nextRow()

	return m
}

func (m ReviewModel) Title() string { return "Review Matches" }

func (m ReviewModel) ShortHelp() string {
	if m.current == nil {
		return "Esc: back"
	}

	return "Enter: accept | u: unmatch | Esc: back"
}

func (m ReviewModel) Init() tea.Cmd {
	return nil
}

func (m ReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "esc":
		return m, Back
	case "enter":
		if m.current == nil {
			return m, nil
		}

		m.accepted++
		m.nextRow()
	case "u":
		if m.current == nil {
			return m, nil
		}

		if _, _, err := m.session.UnMatch(m.current.ID); err != nil {
			m.status = fmt.Sprintf("Error: %v", err)
			return m, nil
		}

		m.rejected++
		m.nextRow()
	}

	return m, nil
}

func (m *ReviewModel) nextRow() {
	if len(m.queue) == 0 {
		m.current = nil
		m.status = fmt.Sprintf("All done! %d accepted, %d unmatched.", m.accepted, m.rejected)

		return
	}

	row := m.queue[0]
	m.queue = m.queue[1:]
	m.current = &row

	currentIdx := m.totalCount - len(m.queue)
	m.status = fmt.Sprintf("Reviewing %d/%d", currentIdx, m.totalCount)
}

func (m ReviewModel) View() string {
	if m.current == nil {
		if m.totalCount == 0 {
			return lipgloss.NewStyle().Padding(2).Render("No similarity matches to review.\n\n(Esc to back)")
		}

		return lipgloss.NewStyle().Padding(2).Render(m.status + "\n\n(Esc to back)")
	}

	r := m.current

	recipient := ""
	if r.Left != nil {
		recipient = r.Left.Key()
		if r.Left.ID != "" {
			recipient += faintStyle.Render(" #" + r.Left.ID)
		}
	}

	recording, path, size := "", "", "-"
	if r.Right != nil {
		recording, path, size = r.Right.Name, r.Right.Path, FormatSize(r.Right.Size)
	}

	info := fmt.Sprintf(
		"Kind:      %s %s\nRecipient: %s\nRecording: %s\nPath:      %s\nSize:      %s\n",
		FormatKind(r.Kind),
		FormatScore(r.Kind, r.Score),
		recipient,
		recording,
		path,
		size,
	)

	return lipgloss.NewStyle().Padding(2).Render(
		fmt.Sprintf("%s\n\n%s\n(Enter to accept, u to unmatch, Esc to quit)", m.status, info),
	)
}

// reviewQueue keeps the token and fuzzy matches, lowest score first.
func reviewQueue(rows []session.Row) []session.Row {
	var queue []session.Row

	for _, r := range rows {
		if r.Kind == matcher.KindToken || r.Kind == matcher.KindFuzzy {
			queue = append(queue, r)
		}
	}

	slices.SortStableFunc(queue, func(a, b session.Row) int {
		return cmp.Compare(a.Score, b.Score)
	})

	return queue
}
