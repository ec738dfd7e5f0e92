// ABOUTME: Deal MCP tool handlers
// ABOUTME: Implements create_deal and move_deal tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type DealHandlers struct {
	deals *db.DealRepository
}

func NewDealHandlers(database *sql.DB) *DealHandlers {
	return &DealHandlers{deals: db.NewDealRepository(database)}
}

var stageList = strings.Join(models.Stages, ", ")

type CreateDealInput struct {
	ClientID string `json:"client_id" jsonschema:"ID of the client that owns the deal (required)"`
	Title    string `json:"title" jsonschema:"Deal title (required)"`
	Amount   int64  `json:"amount,omitempty" jsonschema:"Deal amount in cents"`
	Currency string `json:"currency,omitempty" jsonschema:"Currency code (default USD)"`
	Stage    string `json:"stage,omitempty" jsonschema:"Deal stage: new, contacted, follow_up, negotiating, closed (default new)"`
}

type DealOutput struct {
	ID        string `json:"id"`
	ClientID  string `json:"client_id"`
	Title     string `json:"title"`
	Amount    int64  `json:"amount,omitempty"`
	Currency  string `json:"currency"`
	Stage     string `json:"stage"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func dealToOutput(deal *models.Deal) DealOutput {
	return DealOutput{
		ID:        deal.ID.String(),
		ClientID:  deal.ClientID.String(),
		Title:     deal.Title,
		Amount:    deal.Amount,
		Currency:  deal.Currency,
		Stage:     deal.Stage,
		Active:    !models.IsTerminalStage(deal.Stage),
		CreatedAt: deal.CreatedAt.Format(time.RFC3339),
		UpdatedAt: deal.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *DealHandlers) CreateDeal(ctx context.Context, request *mcp.CallToolRequest, input CreateDealInput) (*mcp.CallToolResult, DealOutput, error) {
	if input.Title == "" {
		return nil, DealOutput{}, fmt.Errorf("title is required")
	}

	clientID, err := uuid.Parse(input.ClientID)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("invalid client_id: %w", err)
	}

	if input.Stage != "" && !models.IsValidStage(input.Stage) {
		return nil, DealOutput{}, fmt.Errorf("invalid stage: %s (valid: %s)", input.Stage, stageList)
	}

	deal := &models.Deal{
		ClientID: clientID,
		Title:    input.Title,
		Amount:   input.Amount,
		Currency: input.Currency,
		Stage:    input.Stage,
	}

	if err := h.deals.Create(ctx, deal); err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to create deal: %w", err)
	}

	return nil, dealToOutput(deal), nil
}

type MoveDealInput struct {
	ID    string `json:"id" jsonschema:"Deal ID (required)"`
	Stage string `json:"stage" jsonschema:"Target stage: new, contacted, follow_up, negotiating, closed (required)"`
}

func (h *DealHandlers) MoveDeal(ctx context.Context, request *mcp.CallToolRequest, input MoveDealInput) (*mcp.CallToolResult, DealOutput, error) {
	id, err := uuid.Parse(input.ID)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("invalid deal ID: %w", err)
	}
	if !models.IsValidStage(input.Stage) {
		return nil, DealOutput{}, fmt.Errorf("invalid stage: %s (valid: %s)", input.Stage, stageList)
	}

	deal, err := h.deals.MoveStage(ctx, id, input.Stage)
	if err != nil {
		return nil, DealOutput{}, fmt.Errorf("failed to move deal: %w", err)
	}

	return nil, dealToOutput(deal), nil
}
