// ABOUTME: Questionnaire views for TUI
// ABOUTME: Collects the required and optional answers, then runs the evaluation asynchronously
package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/harperreed/pagen-priority/enrichment"
	"github.com/harperreed/pagen-priority/models"
	"github.com/harperreed/pagen-priority/prioritize"
)

var (
	initiatorOptions = []string{"skip", string(models.InitiatorClient), string(models.InitiatorYou)}
	proposalOptions  = []string{"skip", string(models.ProposalYes), string(models.ProposalNo)}
)

const (
	fieldInitiator = iota
	fieldProposal
	fieldImage
	optionalFieldCount
)

type evaluatedMsg struct {
	assessment *prioritize.Assessment
	err        error
}

type savedMsg struct {
	record *models.Prioritization
	err    error
}

func renderOptions(options []string, selected int, focused bool) string {
	var rendered []string
	for i, opt := range options {
		if i == selected && focused {
			rendered = append(rendered, optionActiveStyle.Render(opt))
		} else if i == selected {
			rendered = append(rendered, labelStyle.Padding(0, 1).Render(opt))
		} else {
			rendered = append(rendered, optionInactiveStyle.Render(opt))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}

func (m Model) renderHeader() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("PRIORITIZE " + strings.ToUpper(m.selected.Name)))
	s.WriteString("\n")
	fmt.Fprintf(&s, "Active deals: %d (counts as %s)\n\n", m.activeDeals, models.BucketActiveDeals(m.activeDeals))
	return s.String()
}

func (m Model) renderRequiredView() string {
	var s strings.Builder
	s.WriteString(m.renderHeader())

	s.WriteString(labelStyle.Render("How many times did you interact in the last 14 days?"))
	s.WriteString("\n")
	for i, f := range models.InteractionFrequencies {
		cursor := "  "
		line := optionInactiveStyle.Render(string(f))
		if i == m.frequencyIdx {
			cursor = "> "
			line = optionActiveStyle.Render(string(f))
		}
		s.WriteString(cursor + line + "\n")
	}

	s.WriteString(helpStyle.Render("↑/↓: Choose • Enter: Next • Esc: Back"))
	return s.String()
}

func (m Model) handleRequiredKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.frequencyIdx > 0 {
			m.frequencyIdx--
		}
	case "down", "j":
		if m.frequencyIdx < len(models.InteractionFrequencies)-1 {
			m.frequencyIdx++
		}
	case "enter":
		m.viewMode = ViewOptional
		m.optionalIdx = fieldInitiator
	case "esc":
		m.resetQuestionnaire()
		m.viewMode = ViewList
	}
	return m, nil
}

func (m Model) renderOptionalView() string {
	var s strings.Builder
	s.WriteString(m.renderHeader())
	fmt.Fprintf(&s, "Interactions (14 days): %s\n\n", models.InteractionFrequencies[m.frequencyIdx])

	s.WriteString(labelStyle.Render("Who initiated the last contact?"))
	s.WriteString("\n")
	s.WriteString(renderOptions(initiatorOptions, m.initiatorIdx, m.optionalIdx == fieldInitiator))
	s.WriteString("\n\n")

	s.WriteString(labelStyle.Render("Is a meeting, call, or offer pending?"))
	s.WriteString("\n")
	s.WriteString(renderOptions(proposalOptions, m.proposalIdx, m.optionalIdx == fieldProposal))
	s.WriteString("\n\n")

	s.WriteString(labelStyle.Render("Conversation screenshot"))
	s.WriteString("\n")
	s.WriteString(m.imageInput.View())
	s.WriteString("\n")

	if m.err != nil {
		s.WriteString("\n")
		s.WriteString(errorStyle.Render("Error: " + m.err.Error()))
		s.WriteString("\n")
	}

	s.WriteString(helpStyle.Render("Tab: Next field • ←/→: Choose • Enter: Evaluate • Esc: Back"))
	return s.String()
}

func (m Model) handleOptionalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.err = nil
		m.imageInput.Blur()
		m.viewMode = ViewRequired
		return m, nil
	case "enter":
		return m.submit()
	case "tab", "down":
		return m.focusField((m.optionalIdx + 1) % optionalFieldCount)
	case "shift+tab", "up":
		return m.focusField((m.optionalIdx + optionalFieldCount - 1) % optionalFieldCount)
	}

	switch m.optionalIdx {
	case fieldInitiator:
		m.initiatorIdx = cycle(m.initiatorIdx, len(initiatorOptions), msg.String())
	case fieldProposal:
		m.proposalIdx = cycle(m.proposalIdx, len(proposalOptions), msg.String())
	case fieldImage:
		var cmd tea.Cmd
		m.imageInput, cmd = m.imageInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) focusField(idx int) (tea.Model, tea.Cmd) {
	m.optionalIdx = idx
	if idx == fieldImage {
		return m, m.imageInput.Focus()
	}
	m.imageInput.Blur()
	return m, nil
}

func cycle(idx, n int, key string) int {
	switch key {
	case "left", "h":
		return (idx + n - 1) % n
	case "right", "l", " ":
		return (idx + 1) % n
	}
	return idx
}

// request builds the engine request from the current answers.
func (m Model) request() (prioritize.Request, error) {
	req := prioritize.Request{
		ClientID:             m.selected.ID,
		InteractionFrequency: models.InteractionFrequencies[m.frequencyIdx],
	}
	if m.initiatorIdx > 0 {
		v := models.Initiator(initiatorOptions[m.initiatorIdx])
		req.WhoInitiated = &v
	}
	if m.proposalIdx > 0 {
		v := models.ProposalState(proposalOptions[m.proposalIdx])
		req.PendingProposal = &v
	}
	if path := strings.TrimSpace(m.imageInput.Value()); path != "" {
		img, err := enrichment.LoadImage(path)
		if err != nil {
			return req, err
		}
		req.Image = img
	}
	return req, nil
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	req, err := m.request()
	if err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil
	m.imageInput.Blur()
	m.viewMode = ViewEvaluating

	ctx, engine := m.ctx, m.engine
	return m, func() tea.Msg {
		a, err := engine.Evaluate(ctx, req)
		return evaluatedMsg{assessment: a, err: err}
	}
}

func (m Model) commit(confirmed bool) tea.Cmd {
	ctx, engine, a := m.ctx, m.engine, m.assessment
	return func() tea.Msg {
		rec, err := engine.Commit(ctx, a, confirmed)
		return savedMsg{record: rec, err: err}
	}
}

func (m Model) handleEvaluated(msg evaluatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.err = msg.err
		m.viewMode = ViewResult
		return m, nil
	}

	m.assessment = msg.assessment
	if msg.assessment.NeedsConfirmation {
		m.viewMode = ViewConfirmOverwrite
		return m, nil
	}
	return m, m.commit(false)
}

func (m Model) handleSaved(msg savedMsg) (tea.Model, tea.Cmd) {
	m.viewMode = ViewResult
	if msg.err != nil {
		m.err = msg.err
		return m, nil
	}
	m.record = msg.record
	m.loadClients()
	return m, nil
}

func (m Model) renderEvaluatingView() string {
	var s strings.Builder
	s.WriteString(m.renderHeader())
	if m.assessment != nil {
		s.WriteString("Saving prioritization...\n")
	} else {
		s.WriteString("Evaluating answers...\n")
	}
	s.WriteString(helpStyle.Render("Ctrl+C: Cancel without saving"))
	return s.String()
}
