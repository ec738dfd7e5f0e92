// ABOUTME: Entry point for the client prioritization MCP server, CLI, TUI, and web UI
// ABOUTME: Routes to a surface based on arguments after loading config, logger, and database
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/harperreed/pagen-priority/cli"
	"github.com/harperreed/pagen-priority/config"
	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/logging"
	"github.com/harperreed/pagen-priority/prioritize"
	"github.com/harperreed/pagen-priority/tui"
	"github.com/harperreed/pagen-priority/web"
)

const version = "0.2.0"

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/crm/crm.db)")
	configPath := flag.String("config", config.DefaultPath(), "Config file path")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("pagen-priority version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.OpenDatabase(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.String("path", cfg.DBPath), zap.Error(err))
	}
	defer func() { _ = database.Close() }()

	if *initOnly {
		logger.Info("database initialized", zap.String("path", cfg.DBPath))
		return
	}

	engine, cleanup, err := cli.NewEngine(database, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build prioritization engine", zap.Error(err))
	}
	defer cleanup()

	if err := run(args[0], args[1:], database, engine, cfg, logger); err != nil {
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cleanup()
		os.Exit(1)
	}
}

func run(command string, args []string, database *sql.DB, engine *prioritize.Engine, cfg *config.Config, logger *zap.Logger) error {
	switch command {
	case "mcp":
		return cli.MCPCommand(database, engine, version, logger)

	case "crm":
		if len(args) == 0 {
			printUsage()
			return fmt.Errorf("crm requires a subcommand")
		}
		return runCRM(args[0], args[1:], database, engine, cfg)

	case "tui":
		return tui.Run(database, engine)

	case "web":
		server, err := web.NewServer(database, cfg.UserID, logger)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		return server.Start(ctx, cfg.Web.Port)

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func runCRM(command string, args []string, database *sql.DB, engine *prioritize.Engine, cfg *config.Config) error {
	switch command {
	// Client commands
	case "add-client":
		return cli.AddClientCommand(database, args)
	case "list-clients":
		return cli.ListClientsCommand(database, cfg.UserID, args)
	case "delete-client":
		return cli.DeleteClientCommand(database, args)

	// Deal commands
	case "add-deal":
		return cli.AddDealCommand(database, args)
	case "list-deals":
		return cli.ListDealsCommand(database, args)
	case "move-deal":
		return cli.MoveDealCommand(database, args)
	case "delete-deal":
		return cli.DeleteDealCommand(database, args)

	// Prioritization commands
	case "prioritize":
		return cli.PrioritizeCommand(database, engine, args)
	case "show-priority":
		return cli.ShowPriorityCommand(database, cfg.UserID, args)
	case "clear-priority":
		return cli.ClearPriorityCommand(database, engine, args)

	// Reminder commands
	case "add-reminder":
		return cli.AddReminderCommand(database, args)
	case "list-reminders":
		return cli.ListRemindersCommand(database, args)
	case "complete-reminder":
		return cli.CompleteReminderCommand(database, args)

	default:
		printUsage()
		return fmt.Errorf("unknown crm command: %s", command)
	}
}

func printUsage() {
	fmt.Printf(`pagen-priority v%s - Client prioritization for a personal CRM

USAGE:
  pagen-priority [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/crm/crm.db)
  --config <path>        Config file (default: ~/.config/crm/config.yaml)
  --init                 Initialize database and exit

COMMANDS:
  mcp                    Start MCP server on stdio
  crm                    CRM management commands
  tui                    Interactive prioritization questionnaire
  web                    Read-only web dashboard (port from config, default 8080)

CRM COMMANDS:
  pagen-priority crm add-client     Add a new client
    --name <name>             Client name (required)
    --company <company>       Company name
    --email <email>           Email address
    --phone <phone>           Phone number

  pagen-priority crm list-clients   List clients with their priority
    --query <text>            Search by name, email, or company
    --limit <n>               Max results (default: 50)

  pagen-priority crm delete-client <id>  Delete a client, its deals, and priorities

  pagen-priority crm add-deal       Add a new deal
    --title <title>           Deal title (required)
    --client <client>         Client ID or name (required)
    --amount <cents>          Deal amount in cents
    --currency <code>         Currency code (default: USD)
    --stage <stage>           new, contacted, follow_up, negotiating, closed (default: new)

  pagen-priority crm list-deals     List deals
    --client <client>         Filter by client ID or name
    --stage <stage>           Filter by stage
    --limit <n>               Max results (default: 50)

  pagen-priority crm move-deal --stage <stage> <id>  Move a deal to another stage
  pagen-priority crm delete-deal <id>                Delete a deal

  pagen-priority crm prioritize     Score and save a client's priority
    --client <client>         Client ID or name (required)
    --frequency <bucket>      1-2times, 3-5times, 6-9times, 10+times (required)
    --initiated <who>         client or you
    --proposal <state>        yes or no
    --image <path>            JPEG or PNG screenshot of the latest conversation
    --yes                     Overwrite an existing priority without asking

  pagen-priority crm show-priority <client>   Show the stored priority
  pagen-priority crm clear-priority <client>  Remove the stored priority

  pagen-priority crm add-reminder   Schedule a follow-up reminder
    --client <client>         Client ID or name (required)
    --title <text>            What to do (required)
    --due <date>              YYYY-MM-DD or "YYYY-MM-DD HH:MM" (required)
    --type <type>             call, email, meeting, follow-up (default: follow-up)
    --priority <level>        low, medium, high (default: medium)

  pagen-priority crm list-reminders  List reminders
    --client <client>         Filter by client ID or name
    --view <view>             all, open, today, overdue (default: open)
    --limit <n>               Max results (default: 50)

  pagen-priority crm complete-reminder [--undo] <id>  Complete or reopen a reminder

ENVIRONMENT:
  PAGEN_USER_ID          Acting user for every prioritization (default: local)
  OPENAI_API_KEY         Enables image analysis
  PAGEN_REDIS_ADDR       Caches image analysis results in Redis

EXAMPLES:
  pagen-priority crm add-client --name "Ada Lovelace" --company "Analytical Engines"
  pagen-priority crm add-deal --client "Ada" --title "Support contract" --amount 500000
  pagen-priority crm prioritize --client "Ada" --frequency 6-9times --initiated client --image chat.png
  pagen-priority crm add-reminder --client "Ada" --title "Send renewal quote" --due 2026-11-02

`, version)
}
