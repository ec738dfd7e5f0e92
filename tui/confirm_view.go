// ABOUTME: Overwrite confirmation view for TUI
// ABOUTME: Asks before an existing prioritization is replaced and shows the outcome afterwards
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	confirmBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("214")).
			Padding(1, 2).
			Width(60).
			Align(lipgloss.Center)

	confirmButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("9")).
				Padding(0, 2).
				MarginRight(2)

	cancelButtonStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("8")).
				Padding(0, 2)
)

func (m Model) renderConfirmOverwriteView() string {
	a := m.assessment

	title := warningStyle.Render("⚠  EXISTING PRIORITY  ⚠")
	message := fmt.Sprintf("%s was already prioritized on %s.", a.Client.Name, a.Existing.CreatedAt.Format("2006-01-02"))
	change := fmt.Sprintf("\nCurrent: %s    New: %s\n",
		renderPriority(a.Existing.CalculatedPriority), renderPriority(a.Proposed.CalculatedPriority))
	question := "Replace the stored answers with the new ones?"

	buttons := lipgloss.JoinHorizontal(
		lipgloss.Left,
		confirmButtonStyle.Render("Yes, Overwrite (y)"),
		cancelButtonStyle.Render("Keep (n/esc)"),
	)

	parts := []string{title, "", message, change, question}
	if w := a.Warning(); w != "" {
		parts = append(parts, "", warningStyle.Render(w))
	}
	parts = append(parts, "", buttons)

	box := confirmBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center, parts...))

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
	)
}

func (m Model) handleConfirmOverwriteKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.viewMode = ViewEvaluating
		return m, m.commit(true)
	case "n", "N", "esc":
		m.declined = true
		m.viewMode = ViewResult
	}
	return m, nil
}

func (m Model) renderResultView() string {
	var s strings.Builder

	switch {
	case m.err != nil:
		s.WriteString(titleStyle.Render("PRIORITIZATION FAILED"))
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
		s.WriteString("Nothing was saved.\n")
	case m.declined:
		s.WriteString(titleStyle.Render("NOT SAVED"))
		s.WriteString("\n")
		fmt.Fprintf(&s, "Kept the existing %s priority for %s.\n",
			renderPriority(m.assessment.Existing.CalculatedPriority), m.assessment.Client.Name)
	case m.record != nil:
		s.WriteString(titleStyle.Render("SAVED"))
		s.WriteString("\n")
		fmt.Fprintf(&s, "%s priority: %s\n", m.assessment.Client.Name, renderPriority(m.record.CalculatedPriority))
		fmt.Fprintf(&s, "Active deals: %s\n", m.record.Answers.ActiveDeals)
		fmt.Fprintf(&s, "Interactions (14 days): %s\n", m.record.Answers.InteractionFrequency)
		if h := m.record.Enrichment; h != nil {
			fmt.Fprintf(&s, "Image: %s, %d keyword(s), %s sentiment\n", renderPriority(h.Priority), h.KeywordsCount, h.Sentiment)
		}
	}

	if m.assessment != nil {
		if w := m.assessment.Warning(); w != "" {
			s.WriteString("\n")
			s.WriteString(warningStyle.Render("⚠ " + w))
			s.WriteString("\n")
		}
	}

	s.WriteString(helpStyle.Render("Enter/Esc: Back to clients • q: Quit"))
	return s.String()
}

func (m Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.resetQuestionnaire()
		m.viewMode = ViewList
		m.loadClients()
	case "q":
		m.cancel()
		return m, tea.Quit
	}
	return m, nil
}
