// ABOUTME: MCP prompt handlers for reusable CRM workflow templates
// ABOUTME: Builds a priority review prompt from a client's deals and stored prioritization
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type PromptHandlers struct {
	clients    *db.ClientRepository
	deals      *db.DealRepository
	priorities *db.PrioritizationRepository
	userID     string
}

func NewPromptHandlers(database *sql.DB, userID string) *PromptHandlers {
	return &PromptHandlers{
		clients:    db.NewClientRepository(database),
		deals:      db.NewDealRepository(database),
		priorities: db.NewPrioritizationRepository(database),
		userID:     userID,
	}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	switch request.Params.Name {
	case "client-priority-review":
		return h.getClientPriorityReviewPrompt(ctx, request.Params.Arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", request.Params.Name)
	}
}

func (h *PromptHandlers) getClientPriorityReviewPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	clientIDStr, ok := args["client_id"]
	if !ok {
		return nil, fmt.Errorf("client_id is required")
	}

	clientID, err := uuid.Parse(clientIDStr)
	if err != nil {
		return nil, fmt.Errorf("invalid client_id: %w", err)
	}

	client, err := h.clients.Get(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	deals, err := h.deals.ListByClient(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}

	p, err := h.priorities.FindByClientAndUser(ctx, clientID, h.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch priority: %w", err)
	}

	var promptText strings.Builder
	promptText.WriteString("Please review how this client should be prioritized:\n\n")
	promptText.WriteString(fmt.Sprintf("Name: %s\n", client.Name))
	if client.Company != "" {
		promptText.WriteString(fmt.Sprintf("Company: %s\n", client.Company))
	}

	promptText.WriteString(fmt.Sprintf("\nDeals (%d active of %d):\n", models.ActiveDealCount(deals), len(deals)))
	for _, d := range deals {
		promptText.WriteString(fmt.Sprintf("- %s [%s] %.2f %s\n", d.Title, d.Stage, float64(d.Amount)/100, d.Currency))
	}

	if p == nil {
		promptText.WriteString("\nNo prioritization has been recorded yet.\n")
		promptText.WriteString("\nAsk me how many times we interacted in the last 14 days, who initiated the last contact, ")
		promptText.WriteString("and whether a proposal is pending, then call prioritize_client with the answers.")
	} else {
		promptText.WriteString(fmt.Sprintf("\nCurrent priority: %s (recorded %s)\n", p.CalculatedPriority, p.CreatedAt.Format("2006-01-02")))
		promptText.WriteString(fmt.Sprintf("Interaction frequency: %s\n", p.Answers.InteractionFrequency))
		if p.Answers.WhoInitiated != nil {
			promptText.WriteString(fmt.Sprintf("Last contact initiated by: %s\n", *p.Answers.WhoInitiated))
		}
		if p.Answers.PendingProposal != nil {
			promptText.WriteString(fmt.Sprintf("Pending proposal: %s\n", *p.Answers.PendingProposal))
		}
		if p.Enrichment != nil {
			promptText.WriteString(fmt.Sprintf("Image analysis: %s priority, %d keywords, %s sentiment\n",
				p.Enrichment.Priority, p.Enrichment.KeywordsCount, p.Enrichment.Sentiment))
		}
		promptText.WriteString("\nPlease say whether this priority still looks right given the deals above, ")
		promptText.WriteString("and which answers I should revisit before re-prioritizing.")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Priority review for client: %s", client.Name),
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: promptText.String(),
				},
			},
		},
	}, nil
}
