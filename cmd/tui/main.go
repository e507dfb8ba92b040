package main

import (
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/pairup/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/pairup/internal/association"
	associationStore "github.com/MrJamesThe3rd/pairup/internal/association/store"
	"github.com/MrJamesThe3rd/pairup/internal/config"
	"github.com/MrJamesThe3rd/pairup/internal/database"
	"github.com/MrJamesThe3rd/pairup/internal/export"
	"github.com/MrJamesThe3rd/pairup/internal/matcher"
	"github.com/MrJamesThe3rd/pairup/internal/session"
)

type model struct {
	cfg                *config.Config
	sessions           *session.Registry
	associationService *association.Service
	exportService      *export.Service

	session     *session.Session
	currentView View
	status      string

	loadView   view.LoadModel
	poolView   view.PoolModel
	reviewView view.ReviewModel
	exportView view.ExportModel
}

type View int

const (
	ViewMenu   View = 0
	ViewLoad   View = 1
	ViewPool   View = 2
	ViewReview View = 3
	ViewExport View = 4
)

func initialModel() model {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	ctx, cancel := view.DbCtx()
	defer cancel()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	scorer, err := cfg.Scorer()
	if err != nil {
		slog.Error("failed to build scorer", "error", err)
		os.Exit(1)
	}

	assocSvc := association.NewService(associationStore.New(db))
	expSvc := export.NewService(assocSvc, cfg.Export.CopyRecordings)
	registry := session.NewRegistry(matcher.WithScorer(scorer), matcher.WithBatchSize(cfg.Matching.BatchSize))

	return model{
		cfg:                cfg,
		sessions:           registry,
		associationService: assocSvc,
		exportService:      expSvc,
		currentView:        ViewMenu,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.currentView == ViewMenu {
			return m.updateMenu(msg)
		}
	case view.BackMsg:
		m.currentView = ViewMenu
		return m, nil
	case view.SessionLoadedMsg:
		m.session = msg.Session
		m.session.SortForDisplay()
		m.poolView = view.NewPoolModel(m.session, m.associationService)
		m.currentView = ViewPool

		return m, m.poolView.Init()
	}

	switch m.currentView {
	case ViewLoad:
		var newModel tea.Model
		newModel, cmd = m.loadView.Update(msg)
		m.loadView = newModel.(view.LoadModel)
	case ViewPool:
		var newModel tea.Model
		newModel, cmd = m.poolView.Update(msg)
		m.poolView = newModel.(view.PoolModel)
	case ViewReview:
		var newModel tea.Model
		newModel, cmd = m.reviewView.Update(msg)
		m.reviewView = newModel.(view.ReviewModel)
	case ViewExport:
		var newModel tea.Model
		newModel, cmd = m.exportView.Update(msg)
		m.exportView = newModel.(view.ExportModel)
	}

	return m, cmd
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "1":
		m.currentView = ViewLoad
		m.loadView = view.NewLoadModel(m.sessions, m.cfg.Matching.Extensions, m.cfg.Matching.Threshold)

		return m, m.loadView.Init()
	}

	if msg.String() != "2" && msg.String() != "3" && msg.String() != "4" {
		return m, nil
	}

	if m.session == nil {
		m.status = "Load a session first."
		return m, nil
	}

	switch msg.String() {
	case "2":
		m.currentView = ViewPool
		m.poolView = view.NewPoolModel(m.session, m.associationService)

		return m, m.poolView.Init()
	case "3":
		m.currentView = ViewReview
		m.reviewView = view.NewReviewModel(m.session)

		return m, m.reviewView.Init()
	default:
		m.currentView = ViewExport
		m.exportView = view.NewExportModel(m.session, m.associationService, m.exportService)

		return m, m.exportView.Init()
	}
}

func (m model) active() view.View {
	switch m.currentView {
	case ViewLoad:
		return m.loadView
	case ViewPool:
		return m.poolView
	case ViewReview:
		return m.reviewView
	case ViewExport:
		return m.exportView
	}

	return nil
}

func (m model) View() string {
	v := m.active()
	if v == nil {
		return m.viewMenu()
	}

	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).PaddingLeft(1).Render(v.Title())
	help := lipgloss.NewStyle().Faint(true).PaddingLeft(1).Render(v.ShortHelp())

	return lipgloss.JoinVertical(lipgloss.Left, title, v.View(), help)
}

func (m model) viewMenu() string {
	current := "No session loaded"
	if m.session != nil {
		current = "Session " + m.session.ID.String()[:8] + " | " + m.session.Stats().String()
	}

	menu := "Pairup\n\n" +
		current + "\n\n" +
		"1. Load Session\n" +
		"2. Browse Pool\n" +
		"3. Review Matches\n" +
		"4. Commit & Export\n\n" +
		"q. Quit"

	if m.status != "" {
		menu += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render(m.status)
	}

	return lipgloss.NewStyle().Padding(2).Render(menu)
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		slog.Error("failed to run TUI", "error", err)
		os.Exit(1)
	}
}
