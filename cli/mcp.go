// ABOUTME: MCP server subcommand
// ABOUTME: Starts the MCP server with client, deal, and prioritization tools on stdio
package cli

import (
	"context"
	"database/sql"
	"os"
	"os/signal"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/handlers"
	"github.com/harperreed/pagen-priority/prioritize"
)

// NewMCPServer registers every tool, resource, and prompt.
func NewMCPServer(database *sql.DB, engine *prioritize.Engine, version string) *mcp.Server {
	userID := engine.UserID()

	clientHandlers := handlers.NewClientHandlers(database, userID)
	dealHandlers := handlers.NewDealHandlers(database)
	priorityHandlers := handlers.NewPriorityHandlers(engine, db.NewPrioritizationRepository(database))
	resourceHandlers := handlers.NewResourceHandlers(database, userID)
	promptHandlers := handlers.NewPromptHandlers(database, userID)
	queryHandlers := handlers.NewQueryHandlers(database, userID)
	reminderHandlers := handlers.NewReminderHandlers(database)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "pagen-priority",
		Version: version,
	}, nil)

	// Tools
	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_client",
		Description: "Add a new client to the CRM",
	}, clientHandlers.AddClient)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_clients",
		Description: "Search for clients by name, email, or company, including their stored priority",
	}, clientHandlers.FindClients)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "create_deal",
		Description: "Create a new pipeline deal for a client",
	}, dealHandlers.CreateDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "move_deal",
		Description: "Move a deal to another pipeline stage",
	}, dealHandlers.MoveDeal)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "prioritize_client",
		Description: "Score a client's priority from the questionnaire answers and an optional image, then save it. An existing priority is only replaced when confirm_overwrite is true.",
	}, priorityHandlers.PrioritizeClient)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_client_priority",
		Description: "Get the stored priority and answers for a client",
	}, priorityHandlers.GetClientPriority)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "query_crm",
		Description: "Query clients, deals, or stored prioritizations with filters",
	}, queryHandlers.QueryCRM)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "add_reminder",
		Description: "Schedule a follow-up reminder for a client",
	}, reminderHandlers.AddReminder)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_reminders",
		Description: "List reminders (open, today, overdue, or all), optionally for one client",
	}, reminderHandlers.ListReminders)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "complete_reminder",
		Description: "Mark a reminder completed, or reopen it with completed=false",
	}, reminderHandlers.CompleteReminder)

	// Resources
	server.AddResource(&mcp.Resource{
		URI:         "crm://clients",
		Name:        "clients",
		Description: "All clients with their stored priority",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "crm://clients/{id}",
		Name:        "client",
		Description: "A client with its deals and stored prioritization",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "crm://pipeline",
		Name:        "pipeline",
		Description: "Deal counts and totals per pipeline stage",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:         "crm://priorities",
		Name:        "priorities",
		Description: "Number of clients at each priority level",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	// Prompts
	server.AddPrompt(&mcp.Prompt{
		Name:        "client-priority-review",
		Description: "Review whether a client's stored priority still fits their deals",
		Arguments: []*mcp.PromptArgument{
			{Name: "client_id", Description: "Client ID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(database *sql.DB, engine *prioritize.Engine, version string, logger *zap.Logger) error {
	logger.Info("starting MCP server", zap.String("user_id", engine.UserID()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return NewMCPServer(database, engine, version).Run(ctx, &mcp.StdioTransport{})
}
