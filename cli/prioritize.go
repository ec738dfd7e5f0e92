// ABOUTME: Prioritization CLI commands
// ABOUTME: Runs the questionnaire from flags, prompts before overwriting, and shows stored priorities
package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"golang.org/x/term"

	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/enrichment"
	"github.com/harperreed/pagen-priority/models"
	"github.com/harperreed/pagen-priority/prioritize"
)

// Terminal is where a command reads confirmations and writes output.
type Terminal struct {
	In          io.Reader
	Out         io.Writer
	Interactive bool
}

// StdTerminal uses stdin and stdout; prompting is only allowed when stdin is a TTY.
func StdTerminal() Terminal {
	return Terminal{
		In:          os.Stdin,
		Out:         os.Stdout,
		Interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// PrioritizeCommand scores a client and saves the result. Interrupting the
// command before the save is issued leaves the stored record untouched.
func PrioritizeCommand(database *sql.DB, engine *prioritize.Engine, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return Prioritize(ctx, database, engine, args, StdTerminal())
}

func Prioritize(ctx context.Context, database *sql.DB, engine *prioritize.Engine, args []string, t Terminal) error {
	fs := flag.NewFlagSet("prioritize", flag.ContinueOnError)
	fs.SetOutput(t.Out)
	clientRef := fs.String("client", "", "Client ID or name (required)")
	frequency := fs.String("frequency", "", "Interactions in the last 14 days: 1-2times, 3-5times, 6-9times, 10+times (required)")
	initiated := fs.String("initiated", "", "Who initiated the last contact: client or you")
	proposal := fs.String("proposal", "", "Is a meeting, call, or offer pending: yes or no")
	imagePath := fs.String("image", "", "JPEG or PNG screenshot of the latest conversation")
	yes := fs.Bool("yes", false, "Overwrite an existing prioritization without asking")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *clientRef == "" {
		return fmt.Errorf("--client is required")
	}
	if *frequency == "" {
		return fmt.Errorf("--frequency is required")
	}

	client, err := resolveClient(ctx, db.NewClientRepository(database), *clientRef)
	if err != nil {
		return err
	}

	req := prioritize.Request{
		ClientID:             client.ID,
		InteractionFrequency: models.InteractionFrequency(*frequency),
	}
	if *initiated != "" {
		v := models.Initiator(*initiated)
		req.WhoInitiated = &v
	}
	if *proposal != "" {
		v := models.ProposalState(*proposal)
		req.PendingProposal = &v
	}
	if *imagePath != "" {
		img, err := enrichment.LoadImage(*imagePath)
		if err != nil {
			return fmt.Errorf("failed to load image: %w", err)
		}
		req.Image = img
	}

	confirmer := prioritize.ConfirmFunc(func(ctx context.Context, a *prioritize.Assessment) (bool, error) {
		_, _ = fmt.Fprintf(t.Out, "%s already has a %s priority (recorded %s). New priority would be %s.\n",
			a.Client.Name, a.Existing.CalculatedPriority, a.Existing.CreatedAt.Format("2006-01-02"), a.Proposed.CalculatedPriority)
		if *yes {
			return true, nil
		}
		if !t.Interactive {
			_, _ = fmt.Fprintln(t.Out, "Not overwriting; pass --yes to replace it.")
			return false, nil
		}
		return confirm(t, "Overwrite? [y/N] ")
	})

	res, err := engine.Run(ctx, req, confirmer)
	if err != nil {
		var verr *prioritize.ValidationError
		if errors.As(err, &verr) {
			return fmt.Errorf("invalid answers: %w", err)
		}
		return err
	}

	a := res.Assessment
	if w := a.Warning(); w != "" {
		_, _ = fmt.Fprintf(t.Out, "⚠ %s\n", w)
	}

	switch res.Status {
	case prioritize.StatusDeclined:
		_, _ = fmt.Fprintf(t.Out, "Kept existing %s priority for %s\n", a.Existing.CalculatedPriority, a.Client.Name)
	case prioritize.StatusSaved:
		_, _ = fmt.Fprintf(t.Out, "✓ %s priority: %s\n", a.Client.Name, res.Record.CalculatedPriority)
		_, _ = fmt.Fprintf(t.Out, "  Active deals: %d (%s)\n", a.ActiveDealCount, res.Record.Answers.ActiveDeals)
		if h := res.Record.Enrichment; h != nil {
			_, _ = fmt.Fprintf(t.Out, "  Image: %d keyword(s), %s sentiment\n", h.KeywordsCount, h.Sentiment)
		}
	}

	return nil
}

func confirm(t Terminal, prompt string) (bool, error) {
	_, _ = fmt.Fprint(t.Out, prompt)
	line, err := bufio.NewReader(t.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ShowPriorityCommand prints the stored prioritization for a client.
func ShowPriorityCommand(database *sql.DB, userID string, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: show-priority <client-id-or-name>")
	}
	return ShowPriority(context.Background(), database, userID, args[0], os.Stdout)
}

func ShowPriority(ctx context.Context, database *sql.DB, userID, clientRef string, out io.Writer) error {
	client, err := resolveClient(ctx, db.NewClientRepository(database), clientRef)
	if err != nil {
		return err
	}

	p, err := db.NewPrioritizationRepository(database).FindByClientAndUser(ctx, client.ID, userID)
	if err != nil {
		return fmt.Errorf("failed to fetch priority: %w", err)
	}
	if p == nil {
		_, _ = fmt.Fprintf(out, "%s has not been prioritized yet\n", client.Name)
		return nil
	}

	_, _ = fmt.Fprintf(out, "%s: %s priority\n", client.Name, p.CalculatedPriority)
	_, _ = fmt.Fprintf(out, "  Recorded: %s\n", p.CreatedAt.Format("2006-01-02 15:04"))
	_, _ = fmt.Fprintf(out, "  Active deals: %s\n", p.Answers.ActiveDeals)
	_, _ = fmt.Fprintf(out, "  Interactions (14 days): %s\n", p.Answers.InteractionFrequency)
	if p.Answers.WhoInitiated != nil {
		_, _ = fmt.Fprintf(out, "  Last contact initiated by: %s\n", *p.Answers.WhoInitiated)
	}
	if p.Answers.PendingProposal != nil {
		_, _ = fmt.Fprintf(out, "  Pending proposal: %s\n", *p.Answers.PendingProposal)
	}
	if h := p.Enrichment; h != nil {
		_, _ = fmt.Fprintf(out, "  Image: %s priority, %d keyword(s), %s sentiment\n", h.Priority, h.KeywordsCount, h.Sentiment)
	}
	return nil
}

// ClearPriorityCommand removes the stored prioritization for a client.
func ClearPriorityCommand(database *sql.DB, engine *prioritize.Engine, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: clear-priority <client-id-or-name>")
	}
	return ClearPriority(context.Background(), database, engine, args[0], os.Stdout)
}

func ClearPriority(ctx context.Context, database *sql.DB, engine *prioritize.Engine, clientRef string, out io.Writer) error {
	client, err := resolveClient(ctx, db.NewClientRepository(database), clientRef)
	if err != nil {
		return err
	}

	removed, err := engine.Clear(ctx, client.ID)
	if err != nil {
		return fmt.Errorf("failed to clear priority: %w", err)
	}
	if !removed {
		_, _ = fmt.Fprintf(out, "%s has no stored priority\n", client.Name)
		return nil
	}

	_, _ = fmt.Fprintf(out, "✓ Cleared priority for %s\n", client.Name)
	return nil
}
