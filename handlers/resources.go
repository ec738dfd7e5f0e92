// ABOUTME: MCP resource handlers for exposing CRM data
// ABOUTME: Provides read-only access to clients, the deal pipeline, and stored priorities via URI
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ResourceHandlers struct {
	clients    *db.ClientRepository
	deals      *db.DealRepository
	priorities *db.PrioritizationRepository
	userID     string
}

func NewResourceHandlers(database *sql.DB, userID string) *ResourceHandlers {
	return &ResourceHandlers{
		clients:    db.NewClientRepository(database),
		deals:      db.NewDealRepository(database),
		priorities: db.NewPrioritizationRepository(database),
		userID:     userID,
	}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, "crm://") {
		return nil, fmt.Errorf("invalid URI scheme: expected crm://")
	}

	path := strings.TrimPrefix(uri, "crm://")
	parts := strings.Split(path, "/")

	switch parts[0] {
	case "clients":
		if len(parts) == 1 {
			return h.readAllClients(ctx)
		}
		return h.readClient(ctx, parts[1])

	case "pipeline":
		return h.readPipeline(ctx)

	case "priorities":
		return h.readPriorities(ctx)

	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readAllClients(ctx context.Context) (*mcp.ReadResourceResult, error) {
	clients, err := h.clients.ListWithPriority(ctx, h.userID, "", 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}
	return jsonResource("crm://clients", clients)
}

type clientDetail struct {
	Client         *models.Client         `json:"client"`
	Deals          []models.Deal          `json:"deals"`
	ActiveDeals    int                    `json:"active_deals"`
	Prioritization *models.Prioritization `json:"prioritization,omitempty"`
}

func (h *ResourceHandlers) readClient(ctx context.Context, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid client ID: %w", err)
	}

	client, err := h.clients.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client: %w", err)
	}

	deals, err := h.deals.ListByClient(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}

	p, err := h.priorities.FindByClientAndUser(ctx, id, h.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch priority: %w", err)
	}

	return jsonResource("crm://clients/"+idStr, clientDetail{
		Client:         client,
		Deals:          deals,
		ActiveDeals:    models.ActiveDealCount(deals),
		Prioritization: p,
	})
}

type pipelineStage struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
	Value int64  `json:"total_value"`
}

func (h *ResourceHandlers) readPipeline(ctx context.Context) (*mcp.ReadResourceResult, error) {
	deals, err := h.deals.Find(ctx, "", 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deals: %w", err)
	}

	byStage := make(map[string]*pipelineStage, len(models.Stages))
	pipeline := make([]*pipelineStage, 0, len(models.Stages))
	for _, stage := range models.Stages {
		s := &pipelineStage{Stage: stage}
		byStage[stage] = s
		pipeline = append(pipeline, s)
	}
	for _, d := range deals {
		if s, ok := byStage[d.Stage]; ok {
			s.Count++
			s.Value += d.Amount
		}
	}

	return jsonResource("crm://pipeline", pipeline)
}

func (h *ResourceHandlers) readPriorities(ctx context.Context) (*mcp.ReadResourceResult, error) {
	counts, err := h.priorities.CountByPriority(ctx, h.userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count priorities: %w", err)
	}
	return jsonResource("crm://priorities", counts)
}
