// ABOUTME: Reminder CLI commands
// ABOUTME: Adds client follow-up reminders, lists due and overdue ones, and toggles completion
package cli

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/models"
)

var dueLayouts = []string{"2006-01-02 15:04", "2006-01-02T15:04", "2006-01-02"}

// parseDue reads a local date with an optional time of day.
func parseDue(s string) (time.Time, error) {
	for _, layout := range dueLayouts {
		if t, err := time.ParseInLocation(layout, strings.TrimSpace(s), time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid due date %q (use YYYY-MM-DD or \"YYYY-MM-DD HH:MM\")", s)
}

func reminderTypeList() string {
	names := make([]string, len(models.ReminderTypes))
	for i, t := range models.ReminderTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// AddReminderCommand schedules a follow-up reminder for a client.
func AddReminderCommand(database *sql.DB, args []string) error {
	return AddReminder(context.Background(), database, args, os.Stdout)
}

func AddReminder(ctx context.Context, database *sql.DB, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add-reminder", flag.ContinueOnError)
	fs.SetOutput(out)
	clientRef := fs.String("client", "", "Client ID or name (required)")
	title := fs.String("title", "", "What to do (required)")
	due := fs.String("due", "", "Due date, YYYY-MM-DD or \"YYYY-MM-DD HH:MM\" (required)")
	kind := fs.String("type", string(models.ReminderFollowUp), "Type ("+reminderTypeList()+")")
	priority := fs.String("priority", string(models.PriorityMedium), "Priority: low, medium, high")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *clientRef == "" {
		return fmt.Errorf("--client is required")
	}
	if *title == "" {
		return fmt.Errorf("--title is required")
	}
	if *due == "" {
		return fmt.Errorf("--due is required")
	}
	dueAt, err := parseDue(*due)
	if err != nil {
		return err
	}

	client, err := resolveClient(ctx, db.NewClientRepository(database), *clientRef)
	if err != nil {
		return err
	}

	rem := &models.Reminder{
		ClientID: client.ID,
		Title:    *title,
		Type:     models.ReminderType(*kind),
		Priority: models.PriorityLevel(*priority),
		DueAt:    dueAt,
	}
	if err := db.NewReminderRepository(database).Create(ctx, rem); err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	_, _ = fmt.Fprintf(out, "✓ Reminder created: %s (ID: %s)\n", rem.Title, rem.ID)
	_, _ = fmt.Fprintf(out, "  Client: %s\n", client.Name)
	_, _ = fmt.Fprintf(out, "  Due: %s\n", rem.DueAt.Local().Format("2006-01-02 15:04"))
	return nil
}

// ListRemindersCommand lists reminders, flagging overdue ones.
func ListRemindersCommand(database *sql.DB, args []string) error {
	return ListReminders(context.Background(), database, args, os.Stdout, time.Now())
}

func ListReminders(ctx context.Context, database *sql.DB, args []string, out io.Writer, now time.Time) error {
	fs := flag.NewFlagSet("list-reminders", flag.ContinueOnError)
	fs.SetOutput(out)
	clientRef := fs.String("client", "", "Filter by client ID or name")
	view := fs.String("view", string(db.ViewOpen), "all, open, today, overdue")
	limit := fs.Int("limit", 50, "Maximum results")
	if err := fs.Parse(args); err != nil {
		return err
	}

	clients := db.NewClientRepository(database)
	filter := db.ReminderFilter{View: db.ReminderView(*view), Now: now, Limit: *limit}
	if *clientRef != "" {
		client, err := resolveClient(ctx, clients, *clientRef)
		if err != nil {
			return err
		}
		filter.ClientID = client.ID
	}

	reminders, err := db.NewReminderRepository(database).List(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list reminders: %w", err)
	}
	if len(reminders) == 0 {
		_, _ = fmt.Fprintln(out, "No reminders found")
		return nil
	}

	names := map[uuid.UUID]string{}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tCLIENT\tDUE\tTYPE\tPRIORITY\tID")
	_, _ = fmt.Fprintln(w, "-----\t------\t---\t----\t--------\t--")

	for i := range reminders {
		r := &reminders[i]
		name, ok := names[r.ClientID]
		if !ok {
			if c, err := clients.Get(ctx, r.ClientID); err == nil {
				name = c.Name
			}
			names[r.ClientID] = name
		}

		indicator := "🟢"
		switch {
		case r.Completed:
			indicator = "✓"
		case r.Overdue(now):
			indicator = "🔴"
		case r.DueToday(now):
			indicator = "🟡"
		}

		_, _ = fmt.Fprintf(w, "%s %s\t%s\t%s\t%s\t%s\t%s\n",
			indicator, r.Title, name, r.DueAt.In(now.Location()).Format("2006-01-02 15:04"),
			r.Type, r.Priority, r.ID)
	}

	return w.Flush()
}

// CompleteReminderCommand marks a reminder done, or reopens it with --undo.
func CompleteReminderCommand(database *sql.DB, args []string) error {
	fs := flag.NewFlagSet("complete-reminder", flag.ExitOnError)
	undo := fs.Bool("undo", false, "Reopen a completed reminder")
	_ = fs.Parse(args)

	if fs.NArg() != 1 {
		return fmt.Errorf("usage: complete-reminder [--undo] <id>")
	}
	id, err := uuid.Parse(fs.Arg(0))
	if err != nil {
		return fmt.Errorf("invalid reminder ID: %w", err)
	}

	rem, err := db.NewReminderRepository(database).SetCompleted(context.Background(), id, !*undo)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	if rem.Completed {
		fmt.Printf("✓ Reminder completed: %s\n", rem.Title)
	} else {
		fmt.Printf("✓ Reminder reopened: %s\n", rem.Title)
	}
	return nil
}
