// ABOUTME: Universal query tool handler
// ABOUTME: Implements flexible filtering across clients, deals, and stored prioritizations
package handlers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/models"
)

type QueryHandlers struct {
	clients    *db.ClientRepository
	deals      *db.DealRepository
	priorities *db.PrioritizationRepository
	userID     string
}

func NewQueryHandlers(database *sql.DB, userID string) *QueryHandlers {
	return &QueryHandlers{
		clients:    db.NewClientRepository(database),
		deals:      db.NewDealRepository(database),
		priorities: db.NewPrioritizationRepository(database),
		userID:     userID,
	}
}

type QueryCRMInput struct {
	EntityType string         `json:"entity_type" jsonschema:"Type of entity to query (client, deal, prioritization)"`
	Query      string         `json:"query,omitempty" jsonschema:"Search query for client name, email, or company"`
	Filters    map[string]any `json:"filters,omitempty" jsonschema:"Additional filters: priority (low, medium, high, none) for clients and prioritizations; client_id, stage, active, min_amount, max_amount for deals"`
	Limit      int            `json:"limit,omitempty" jsonschema:"Maximum results to return (default 10)"`
}

type QueryCRMOutput struct {
	EntityType string `json:"entity_type"`
	Results    []any  `json:"results"`
	Count      int    `json:"count"`
}

func (h *QueryHandlers) QueryCRM(ctx context.Context, req *mcp.CallToolRequest, input QueryCRMInput) (*mcp.CallToolResult, QueryCRMOutput, error) {
	if input.Limit == 0 {
		input.Limit = 10
	}

	switch input.EntityType {
	case "client":
		return h.queryClients(ctx, input)
	case "deal":
		return h.queryDeals(ctx, input)
	case "prioritization":
		return h.queryPrioritizations(ctx, input)
	default:
		return nil, QueryCRMOutput{}, fmt.Errorf("invalid entity_type: %s (valid: client, deal, prioritization)", input.EntityType)
	}
}

func stringFilter(filters map[string]any, key string) string {
	s, _ := filters[key].(string)
	return s
}

// priorityFilter accepts a level or "none" for clients without a stored record.
func priorityFilter(filters map[string]any, allowNone bool) (string, error) {
	p := stringFilter(filters, "priority")
	if p == "" || models.PriorityLevel(p).Valid() || (allowNone && p == "none") {
		return p, nil
	}
	return "", fmt.Errorf("invalid priority filter: %s", p)
}

func (h *QueryHandlers) queryClients(ctx context.Context, input QueryCRMInput) (*mcp.CallToolResult, QueryCRMOutput, error) {
	priority, err := priorityFilter(input.Filters, true)
	if err != nil {
		return nil, QueryCRMOutput{}, err
	}

	// The priority filter is applied after the search, so over-fetch when it is set.
	limit := input.Limit
	if priority != "" {
		limit = 1000
	}

	found, err := h.clients.ListWithPriority(ctx, h.userID, input.Query, limit)
	if err != nil {
		return nil, QueryCRMOutput{}, fmt.Errorf("failed to find clients: %w", err)
	}

	results := []any{}
	for i := range found {
		c := found[i]
		switch {
		case priority == "none" && c.Priority != nil:
			continue
		case priority != "" && priority != "none" && (c.Priority == nil || string(*c.Priority) != priority):
			continue
		}

		out := clientToOutput(&c.Client)
		if c.Priority != nil {
			out.Priority = string(*c.Priority)
		}
		results = append(results, out)
		if len(results) == input.Limit {
			break
		}
	}

	return nil, QueryCRMOutput{
		EntityType: "client",
		Results:    results,
		Count:      len(results),
	}, nil
}

func (h *QueryHandlers) queryDeals(ctx context.Context, input QueryCRMInput) (*mcp.CallToolResult, QueryCRMOutput, error) {
	stage := stringFilter(input.Filters, "stage")
	var minAmount, maxAmount *int64
	var activeOnly *bool

	if v, ok := input.Filters["min_amount"].(float64); ok {
		amt := int64(v)
		minAmount = &amt
	}
	if v, ok := input.Filters["max_amount"].(float64); ok {
		amt := int64(v)
		maxAmount = &amt
	}
	if v, ok := input.Filters["active"].(bool); ok {
		activeOnly = &v
	}

	var (
		deals []models.Deal
		err   error
	)
	if cid := stringFilter(input.Filters, "client_id"); cid != "" {
		id, perr := uuid.Parse(cid)
		if perr != nil {
			return nil, QueryCRMOutput{}, fmt.Errorf("invalid client_id: %w", perr)
		}
		deals, err = h.deals.ListByClient(ctx, id)
	} else {
		deals, err = h.deals.Find(ctx, stage, 1000)
	}
	if err != nil {
		return nil, QueryCRMOutput{}, fmt.Errorf("failed to find deals: %w", err)
	}

	// Filter in memory (MVP approach)
	results := []any{}
	for i := range deals {
		d := deals[i]
		if stage != "" && d.Stage != stage {
			continue
		}
		if minAmount != nil && d.Amount < *minAmount {
			continue
		}
		if maxAmount != nil && d.Amount > *maxAmount {
			continue
		}
		if activeOnly != nil && *activeOnly == models.IsTerminalStage(d.Stage) {
			continue
		}
		results = append(results, dealToOutput(&d))
		if len(results) == input.Limit {
			break
		}
	}

	return nil, QueryCRMOutput{
		EntityType: "deal",
		Results:    results,
		Count:      len(results),
	}, nil
}

func (h *QueryHandlers) queryPrioritizations(ctx context.Context, input QueryCRMInput) (*mcp.CallToolResult, QueryCRMOutput, error) {
	priority, err := priorityFilter(input.Filters, false)
	if err != nil {
		return nil, QueryCRMOutput{}, err
	}

	records, err := h.priorities.ListByUser(ctx, h.userID, models.PriorityLevel(priority), input.Limit)
	if err != nil {
		return nil, QueryCRMOutput{}, fmt.Errorf("failed to find prioritizations: %w", err)
	}

	results := make([]any, len(records))
	for i := range records {
		results[i] = prioritizationToOutput(&records[i])
	}

	return nil, QueryCRMOutput{
		EntityType: "prioritization",
		Results:    results,
		Count:      len(results),
	}, nil
}
