// ABOUTME: Client MCP tool handlers
// ABOUTME: Implements add_client and find_clients tools
package handlers

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ClientHandlers struct {
	clients *db.ClientRepository
	userID  string
}

func NewClientHandlers(database *sql.DB, userID string) *ClientHandlers {
	return &ClientHandlers{clients: db.NewClientRepository(database), userID: userID}
}

type AddClientInput struct {
	Name    string `json:"name" jsonschema:"Client name (required)"`
	Company string `json:"company,omitempty" jsonschema:"Company the client works for"`
	Email   string `json:"email,omitempty" jsonschema:"Email address"`
	Phone   string `json:"phone,omitempty" jsonschema:"Phone number"`
}

type ClientOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Company   string `json:"company,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Priority  string `json:"priority,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func clientToOutput(client *models.Client) ClientOutput {
	return ClientOutput{
		ID:        client.ID.String(),
		Name:      client.Name,
		Company:   client.Company,
		Email:     client.Email,
		Phone:     client.Phone,
		CreatedAt: client.CreatedAt.Format(time.RFC3339),
		UpdatedAt: client.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *ClientHandlers) AddClient(ctx context.Context, request *mcp.CallToolRequest, input AddClientInput) (*mcp.CallToolResult, ClientOutput, error) {
	if input.Name == "" {
		return nil, ClientOutput{}, fmt.Errorf("name is required")
	}

	client := &models.Client{
		Name:    input.Name,
		Company: input.Company,
		Email:   input.Email,
		Phone:   input.Phone,
	}

	if err := h.clients.Create(ctx, client); err != nil {
		return nil, ClientOutput{}, fmt.Errorf("failed to create client: %w", err)
	}

	return nil, clientToOutput(client), nil
}

type FindClientsInput struct {
	Query string `json:"query,omitempty" jsonschema:"Search by name, email, or company"`
	Limit int    `json:"limit,omitempty" jsonschema:"Maximum results (default 10)"`
}

type FindClientsOutput struct {
	Clients []ClientOutput `json:"clients"`
}

// FindClients returns matching clients with the priority stored for the acting user.
func (h *ClientHandlers) FindClients(ctx context.Context, request *mcp.CallToolRequest, input FindClientsInput) (*mcp.CallToolResult, FindClientsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	found, err := h.clients.ListWithPriority(ctx, h.userID, input.Query, limit)
	if err != nil {
		return nil, FindClientsOutput{}, fmt.Errorf("failed to find clients: %w", err)
	}

	out := FindClientsOutput{Clients: make([]ClientOutput, 0, len(found))}
	for i := range found {
		c := clientToOutput(&found[i].Client)
		if found[i].Priority != nil {
			c.Priority = string(*found[i].Priority)
		}
		out.Clients = append(out.Clients, c)
	}

	return nil, out, nil
}
