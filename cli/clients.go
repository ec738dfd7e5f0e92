// ABOUTME: Client CLI commands
// ABOUTME: Human-friendly commands for adding, listing, and deleting clients
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/models"
)

// AddClientCommand adds a new client.
func AddClientCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("add-client", flag.ExitOnError)
	name := fs.String("name", "", "Client name (required)")
	company := fs.String("company", "", "Company name")
	email := fs.String("email", "", "Email address")
	phone := fs.String("phone", "", "Phone number")
	_ = fs.Parse(args)

	if *name == "" {
		return fmt.Errorf("--name is required")
	}

	client := &models.Client{
		Name:    *name,
		Company: *company,
		Email:   *email,
		Phone:   *phone,
	}

	if err := db.NewClientRepository(database).Create(context.Background(), client); err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	fmt.Printf("✓ Client created: %s (ID: %s)\n", client.Name, client.ID)
	if client.Company != "" {
		fmt.Printf("  Company: %s\n", client.Company)
	}
	return nil
}

// ListClientsCommand lists clients with the priority stored for the acting user.
func ListClientsCommand(database *sql.DB, userID string, args []string) error {
	fs := flag.NewFlagSet("list-clients", flag.ExitOnError)
	query := fs.String("query", "", "Search by name, email, or company")
	limit := fs.Int("limit", 50, "Maximum results")
	_ = fs.Parse(args)

	clients, err := db.NewClientRepository(database).ListWithPriority(context.Background(), userID, *query, *limit)
	if err != nil {
		return fmt.Errorf("failed to find clients: %w", err)
	}

	if len(clients) == 0 {
		fmt.Println("No clients found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tCOMPANY\tEMAIL\tPRIORITY\tID")
	_, _ = fmt.Fprintln(w, "----\t-------\t-----\t--------\t--")

	for _, c := range clients {
		priority := "-"
		if c.Priority != nil {
			priority = string(*c.Priority)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			c.Name, orDash(c.Company), orDash(c.Email), priority, c.ID)
	}
	_ = w.Flush()

	fmt.Printf("\nTotal: %d client(s)\n", len(clients))
	return nil
}

// DeleteClientCommand deletes a client along with its deals and prioritizations.
func DeleteClientCommand(database *sql.DB, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete-client <id>")
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid client ID: %w", err)
	}

	if err := db.NewClientRepository(database).Delete(context.Background(), id); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	fmt.Printf("✓ Client deleted: %s\n", id)
	return nil
}

// resolveClient accepts a client ID or a search term matching exactly one client.
func resolveClient(ctx context.Context, repo *db.ClientRepository, ref string) (*models.Client, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return repo.Get(ctx, id)
	}

	matches, err := repo.Find(ctx, ref, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to lookup client: %w", err)
	}
	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %q", db.ErrClientNotFound, ref)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%q matches more than one client, use the client ID", ref)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
