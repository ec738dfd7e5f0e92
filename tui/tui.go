// ABOUTME: Terminal User Interface using bubbletea framework
// ABOUTME: Walks the user through the prioritization questionnaire for one client at a time
package tui

import (
	"context"
	"database/sql"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/models"
	"github.com/harperreed/pagen-priority/prioritize"
)

// ViewMode represents the current TUI view
type ViewMode int

const (
	ViewList ViewMode = iota
	ViewRequired
	ViewOptional
	ViewEvaluating
	ViewConfirmOverwrite
	ViewResult
)

// Engine is the part of the prioritization engine the TUI drives.
type Engine interface {
	Evaluate(ctx context.Context, req prioritize.Request) (*prioritize.Assessment, error)
	Commit(ctx context.Context, a *prioritize.Assessment, confirmed bool) (*models.Prioritization, error)
	UserID() string
}

// Model is the main bubbletea model
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	engine  Engine
	clients *db.ClientRepository
	deals   *db.DealRepository

	viewMode ViewMode

	// List view state
	rows        []models.ClientPriority
	selectedRow int
	search      textinput.Model
	searching   bool

	// Questionnaire state
	selected     *models.ClientPriority
	activeDeals  int
	frequencyIdx int
	initiatorIdx int
	proposalIdx  int
	imageInput   textinput.Model
	optionalIdx  int

	// Outcome state
	assessment *prioritize.Assessment
	record     *models.Prioritization
	declined   bool

	// UI state
	width  int
	height int
	err    error
}

// NewModel creates a new TUI model
func NewModel(database *sql.DB, engine Engine) Model {
	ctx, cancel := context.WithCancel(context.Background())

	search := textinput.New()
	search.Placeholder = "name, email, or company"
	search.Prompt = "/ "

	image := textinput.New()
	image.Placeholder = "path to a .jpg or .png screenshot (optional)"
	image.CharLimit = 512

	m := Model{
		ctx:        ctx,
		cancel:     cancel,
		engine:     engine,
		clients:    db.NewClientRepository(database),
		deals:      db.NewDealRepository(database),
		viewMode:   ViewList,
		search:     search,
		imageInput: image,
		width:      80,
		height:     24,
	}
	m.loadClients()
	return m
}

// Run starts the TUI in the alternate screen.
func Run(database *sql.DB, engine Engine) error {
	_, err := tea.NewProgram(NewModel(database, engine), tea.WithAltScreen()).Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case evaluatedMsg:
		return m.handleEvaluated(msg)
	case savedMsg:
		return m.handleSaved(msg)
	}
	return m, nil
}

func (m Model) View() string {
	switch m.viewMode {
	case ViewList:
		return m.renderListView()
	case ViewRequired:
		return m.renderRequiredView()
	case ViewOptional:
		return m.renderOptionalView()
	case ViewEvaluating:
		return m.renderEvaluatingView()
	case ViewConfirmOverwrite:
		return m.renderConfirmOverwriteView()
	case ViewResult:
		return m.renderResultView()
	}
	return ""
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Cancelling the context before quitting keeps an in-flight run from saving.
	if msg.String() == "ctrl+c" {
		m.cancel()
		return m, tea.Quit
	}

	switch m.viewMode {
	case ViewList:
		return m.handleListKeys(msg)
	case ViewRequired:
		return m.handleRequiredKeys(msg)
	case ViewOptional:
		return m.handleOptionalKeys(msg)
	case ViewConfirmOverwrite:
		return m.handleConfirmOverwriteKeys(msg)
	case ViewResult:
		return m.handleResultKeys(msg)
	}

	return m, nil
}

// resetQuestionnaire clears every answer and outcome.
func (m *Model) resetQuestionnaire() {
	m.selected = nil
	m.activeDeals = 0
	m.frequencyIdx = 0
	m.initiatorIdx = 0
	m.proposalIdx = 0
	m.optionalIdx = 0
	m.imageInput.SetValue("")
	m.imageInput.Blur()
	m.assessment = nil
	m.record = nil
	m.declined = false
	m.err = nil
}

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("170")).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("252"))

	optionActiveStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("170")).
				Background(lipgloss.Color("235")).
				Padding(0, 1)

	optionInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("240")).
				Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	priorityStyles = map[models.PriorityLevel]lipgloss.Style{
		models.PriorityHigh:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9")),
		models.PriorityMedium: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214")),
		models.PriorityLow:    lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	}
)

func renderPriority(level models.PriorityLevel) string {
	if style, ok := priorityStyles[level]; ok {
		return style.Render(string(level))
	}
	return string(level)
}
