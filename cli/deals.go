// ABOUTME: Deal CLI commands
// ABOUTME: Human-friendly commands for managing pipeline deals
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/models"
)

// AddDealCommand adds a new deal for a client.
func AddDealCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-deal", flag.ExitOnError)
	title := fs.String("title", "", "Deal title (required)")
	clientRef := fs.String("client", "", "Client ID or name (required)")
	amount := fs.Int64("amount", 0, "Deal amount in cents")
	currency := fs.String("currency", "USD", "Currency code")
	stage := fs.String("stage", models.StageNew, "Stage ("+strings.Join(models.Stages, ", ")+")")
	_ = fs.Parse(args)

	if *title == "" {
		return fmt.Errorf("--title is required")
	}
	if *clientRef == "" {
		return fmt.Errorf("--client is required")
	}

	ctx := context.Background()
	client, err := resolveClient(ctx, db.NewClientRepository(database), *clientRef)
	if err != nil {
		return err
	}

	deal := &models.Deal{
		ClientID: client.ID,
		Title:    *title,
		Amount:   *amount,
		Currency: *currency,
		Stage:    *stage,
	}

	if err := db.NewDealRepository(database).Create(ctx, deal); err != nil {
		return fmt.Errorf("failed to create deal: %w", err)
	}

	fmt.Printf("✓ Deal created: %s (ID: %s)\n", deal.Title, deal.ID)
	fmt.Printf("  Client: %s\n", client.Name)
	fmt.Printf("  Amount: $%.2f %s\n", float64(deal.Amount)/100.0, deal.Currency)
	fmt.Printf("  Stage: %s\n", deal.Stage)
	return nil
}

// ListDealsCommand lists deals, optionally for one client or stage.
func ListDealsCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("list-deals", flag.ExitOnError)
	stage := fs.String("stage", "", "Filter by stage")
	clientRef := fs.String("client", "", "Filter by client ID or name")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	ctx := context.Background()
	clients := db.NewClientRepository(database)
	deals := db.NewDealRepository(database)

	var (
		list []models.Deal
		err  error
	)
	if *clientRef != "" {
		client, cerr := resolveClient(ctx, clients, *clientRef)
		if cerr != nil {
			return cerr
		}
		list, err = deals.ListByClient(ctx, client.ID)
	} else {
		list, err = deals.Find(ctx, *stage, *limit)
	}
	if err != nil {
		return fmt.Errorf("failed to find deals: %w", err)
	}

	if len(list) == 0 {
		fmt.Println("No deals found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tCLIENT\tAMOUNT\tSTAGE\tID")
	_, _ = fmt.Fprintln(w, "-----\t------\t------\t-----\t--")

	names := map[uuid.UUID]string{}
	var total int64
	for _, deal := range list {
		name, ok := names[deal.ClientID]
		if !ok {
			name = "-"
			if c, err := clients.Get(ctx, deal.ClientID); err == nil {
				name = c.Name
			}
			names[deal.ClientID] = name
		}
		total += deal.Amount

		_, _ = fmt.Fprintf(w, "%s\t%s\t$%.2f\t%s\t%s\n",
			deal.Title, name, float64(deal.Amount)/100.0, deal.Stage, deal.ID)
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d deal(s) - $%.2f, %d active\n", len(list), float64(total)/100.0, models.ActiveDealCount(list))
	return nil
}

// MoveDealCommand moves a deal to another pipeline stage.
func MoveDealCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("move-deal", flag.ExitOnError)
	stage := fs.String("stage", "", "Target stage (required)")
	_ = fs.Parse(args)

	if *stage == "" || fs.NArg() != 1 {
		return fmt.Errorf("usage: move-deal --stage <stage> <id>")
	}

	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid deal ID: %w", err)
	}

	deal, err := db.NewDealRepository(database).MoveStage(context.Background(), id, *stage)
	if err != nil {
		return fmt.Errorf("failed to move deal: %w", err)
	}

	fmt.Printf("✓ Deal moved: %s → %s\n", deal.Title, deal.Stage)
	return nil
}

// DeleteDealCommand deletes a deal.
func DeleteDealCommand(database *sql.DB, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete-deal <id>")
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid deal ID: %w", err)
	}

	if err := db.NewDealRepository(database).Delete(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}

	fmt.Printf("✓ Deal deleted: %s\n", id)
	return nil
}
