package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/harperreed/pagen-priority/models"
)

func (m *Model) loadClients() {
	rows, err := m.clients.ListWithPriority(m.ctx, m.engine.UserID(), m.search.Value(), 100)
	if err != nil {
		m.err = err
		return
	}
	m.rows = rows
	if m.selectedRow >= len(rows) {
		m.selectedRow = 0
	}
}

func (m Model) renderListView() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("PAGEN CLIENT PRIORITIES"))
	s.WriteString("\n")

	if m.searching || m.search.Value() != "" {
		s.WriteString(m.search.View())
		s.WriteString("\n\n")
	}

	if len(m.rows) == 0 {
		s.WriteString("No clients found\n")
	} else {
		s.WriteString(m.renderClientsTable())
		s.WriteString("\n")
	}

	if m.err != nil {
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(m.renderListHelp())
	return s.String()
}

func (m Model) renderClientsTable() string {
	columns := []table.Column{
		{Title: "Name", Width: 30},
		{Title: "Company", Width: 25},
		{Title: "Priority", Width: 10},
	}

	var rows []table.Row
	for _, c := range m.rows {
		priority := "-"
		if c.Priority != nil {
			priority = string(*c.Priority)
		}
		rows = append(rows, table.Row{c.Name, c.Company, priority})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(max(m.height-10, 3)),
	)

	if m.selectedRow < len(rows) {
		t.SetCursor(m.selectedRow)
	}

	return t.View()
}

func (m Model) renderListHelp() string {
	if m.searching {
		return helpStyle.Render("Enter: Apply search • Esc: Clear search")
	}
	help := []string{
		"↑/↓: Navigate",
		"Enter: Prioritize",
		"/: Search",
		"q: Quit",
	}
	return helpStyle.Render(strings.Join(help, " • "))
}

func (m Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKeys(msg)
	}

	switch msg.String() {
	case "q":
		m.cancel()
		return m, tea.Quit
	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}
	case "down", "j":
		if m.selectedRow < len(m.rows)-1 {
			m.selectedRow++
		}
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "enter":
		if m.selectedRow < len(m.rows) {
			return m.startQuestionnaire(m.rows[m.selectedRow])
		}
	}

	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		m.selectedRow = 0
		m.loadClients()
		return m, nil
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue("")
		m.selectedRow = 0
		m.loadClients()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

// startQuestionnaire derives the active deal count before asking anything.
func (m Model) startQuestionnaire(client models.ClientPriority) (tea.Model, tea.Cmd) {
	m.resetQuestionnaire()

	deals, err := m.deals.ListByClient(m.ctx, client.ID)
	if err != nil {
		m.err = fmt.Errorf("failed to load deals: %w", err)
		return m, nil
	}

	m.selected = &client
	m.activeDeals = models.ActiveDealCount(deals)
	m.viewMode = ViewRequired
	return m, nil
}
