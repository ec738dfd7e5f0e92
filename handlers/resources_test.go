// ABOUTME: Tests for MCP resource and prompt handlers
// ABOUTME: Reads client, pipeline, and priority resources and renders the review prompt
package handlers

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/pagen-priority/db"
)

func readResource(t *testing.T, h *ResourceHandlers, uri string) string {
	t.Helper()
	res, err := h.ReadResource(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: uri}})
	require.NoError(t, err)
	require.Len(t, res.Contents, 1)
	assert.Equal(t, "application/json", res.Contents[0].MIMEType)
	return res.Contents[0].Text
}

func TestReadResources(t *testing.T) {
	database := setupTestDB(t)
	clientID := seedClient(t, NewClientHandlers(database, testUser), NewDealHandlers(database), 2)
	priorities := NewPriorityHandlers(newTestEngine(database, nil), db.NewPrioritizationRepository(database))
	_, _, err := priorities.PrioritizeClient(context.Background(), nil, PrioritizeClientInput{ClientID: clientID, InteractionFrequency: "6-9times"})
	require.NoError(t, err)

	h := NewResourceHandlers(database, testUser)

	assert.Contains(t, readResource(t, h, "crm://clients"), `"priority": "medium"`)

	var detail struct {
		ActiveDeals    int `json:"active_deals"`
		Prioritization struct {
			CalculatedPriority string `json:"calculated_priority"`
		} `json:"prioritization"`
	}
	require.NoError(t, json.Unmarshal([]byte(readResource(t, h, "crm://clients/"+clientID)), &detail))
	assert.Equal(t, 2, detail.ActiveDeals)
	assert.Equal(t, "medium", detail.Prioritization.CalculatedPriority)

	var pipeline []pipelineStage
	require.NoError(t, json.Unmarshal([]byte(readResource(t, h, "crm://pipeline")), &pipeline))
	require.Len(t, pipeline, 5)
	assert.Equal(t, "new", pipeline[0].Stage)
	assert.Equal(t, 2, pipeline[0].Count)

	var counts map[string]int
	require.NoError(t, json.Unmarshal([]byte(readResource(t, h, "crm://priorities")), &counts))
	assert.Equal(t, map[string]int{"low": 0, "medium": 1, "high": 0}, counts)

	_, err = h.ReadResource(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "http://clients"}})
	assert.Error(t, err)
	_, err = h.ReadResource(context.Background(), &mcp.ReadResourceRequest{Params: &mcp.ReadResourceParams{URI: "crm://contacts"}})
	assert.Error(t, err)
}

func TestClientPriorityReviewPrompt(t *testing.T) {
	database := setupTestDB(t)
	clientID := seedClient(t, NewClientHandlers(database, testUser), NewDealHandlers(database), 1)
	h := NewPromptHandlers(database, testUser)

	get := func() (*mcp.GetPromptResult, error) {
		return h.GetPrompt(context.Background(), &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{
			Name:      "client-priority-review",
			Arguments: map[string]string{"client_id": clientID},
		}})
	}

	res, err := get()
	require.NoError(t, err)
	text := res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Initech")
	assert.Contains(t, text, "No prioritization has been recorded yet")

	priorities := NewPriorityHandlers(newTestEngine(database, nil), db.NewPrioritizationRepository(database))
	_, _, err = priorities.PrioritizeClient(context.Background(), nil, PrioritizeClientInput{ClientID: clientID, InteractionFrequency: "1-2times"})
	require.NoError(t, err)

	res, err = get()
	require.NoError(t, err)
	text = res.Messages[0].Content.(*mcp.TextContent).Text
	assert.Contains(t, text, "Current priority: low")

	_, err = h.GetPrompt(context.Background(), &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Name: "nope"}})
	assert.Error(t, err)
}
