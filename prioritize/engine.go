// ABOUTME: Prioritization engine: evaluate, confirm, and commit a client's priority
// ABOUTME: Derives active deals, runs best-effort enrichment, scores, and guards overwrites
package prioritize

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/harperreed/pagen-priority/db"
	"github.com/harperreed/pagen-priority/enrichment"
	"github.com/harperreed/pagen-priority/models"
	"github.com/harperreed/pagen-priority/scoring"
)

// ClientReader loads the client being prioritized.
type ClientReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

// DealLister lists the deals owned by a client.
type DealLister interface {
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Deal, error)
}

// Store reads and writes prioritization records scoped to (client, user).
type Store interface {
	FindByClientAndUser(ctx context.Context, clientID uuid.UUID, userID string) (*models.Prioritization, error)
	Exists(ctx context.Context, clientID uuid.UUID, userID string) (bool, error)
	Save(ctx context.Context, rec *models.Prioritization) (*models.Prioritization, error)
	Delete(ctx context.Context, clientID uuid.UUID, userID string) error
}

// Request is the completed questionnaire for one client. The active deal
// bucket is not part of it; the engine derives it from the client's deals.
type Request struct {
	ClientID             uuid.UUID
	InteractionFrequency models.InteractionFrequency
	WhoInitiated         *models.Initiator
	PendingProposal      *models.ProposalState
	Image                *enrichment.Image
}

// Assessment is a scored but unsaved prioritization.
type Assessment struct {
	Client            *models.Client
	ActiveDealCount   int
	Proposed          *models.Prioritization
	Enrichment        enrichment.Outcome
	Existing          *models.Prioritization
	NeedsConfirmation bool
}

// Warning is the non-fatal enrichment message to show the user, if any.
func (a *Assessment) Warning() string {
	return a.Enrichment.Warning()
}

// Confirmer asks the user whether an existing prioritization may be replaced.
type Confirmer interface {
	ConfirmOverwrite(ctx context.Context, a *Assessment) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, a *Assessment) (bool, error)

func (f ConfirmFunc) ConfirmOverwrite(ctx context.Context, a *Assessment) (bool, error) {
	return f(ctx, a)
}

type Status string

const (
	StatusSaved    Status = "saved"
	StatusDeclined Status = "declined"
)

// Result is the end state of Run. Record is set only when Status is StatusSaved.
type Result struct {
	Status     Status
	Assessment *Assessment
	Record     *models.Prioritization
}

// Options configures an Engine.
type Options struct {
	UserID   string
	Analyzer enrichment.Analyzer
	Logger   *zap.Logger
}

// Engine runs the prioritization pipeline for the acting user.
type Engine struct {
	clients  ClientReader
	deals    DealLister
	store    Store
	analyzer enrichment.Analyzer
	userID   string
	logger   *zap.Logger
}

func New(clients ClientReader, deals DealLister, store Store, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		clients:  clients,
		deals:    deals,
		store:    store,
		analyzer: opts.Analyzer,
		userID:   opts.UserID,
		logger:   logger.Named("prioritize"),
	}
}

// UserID is the acting user every record is scoped to.
func (e *Engine) UserID() string {
	return e.userID
}

func validateRequest(req Request) error {
	if req.ClientID == uuid.Nil {
		return invalid("client", "a client is required")
	}
	if req.InteractionFrequency == "" {
		return invalid("interaction frequency", "an answer is required")
	}
	if !req.InteractionFrequency.Valid() {
		return invalid("interaction frequency", "%q is not one of %v", req.InteractionFrequency, models.InteractionFrequencies)
	}
	if req.WhoInitiated != nil && !req.WhoInitiated.Valid() {
		return invalid("who initiated", "%q must be client or you", *req.WhoInitiated)
	}
	if req.PendingProposal != nil && !req.PendingProposal.Valid() {
		return invalid("pending proposal", "%q must be yes or no", *req.PendingProposal)
	}
	if req.Image != nil {
		if err := enrichment.ValidateImage(req.Image); err != nil {
			return &ValidationError{Field: "image", Message: err.Error(), Err: err}
		}
	}
	return nil
}

// HasExisting reports whether the acting user already prioritized the client.
func (e *Engine) HasExisting(ctx context.Context, clientID uuid.UUID) (bool, error) {
	exists, err := e.store.Exists(ctx, clientID, e.userID)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return exists, nil
}

// Clear removes the acting user's prioritization for the client so the next
// run starts fresh. It reports whether a record was removed.
func (e *Engine) Clear(ctx context.Context, clientID uuid.UUID) (bool, error) {
	if e.userID == "" {
		return false, invalid("user", "no acting user is configured")
	}

	exists, err := e.HasExisting(ctx, clientID)
	if err != nil || !exists {
		return false, err
	}

	if err := e.store.Delete(ctx, clientID, e.userID); err != nil {
		return false, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	e.logger.Info("prioritization cleared", zap.String("client_id", clientID.String()))
	return true, nil
}

// Evaluate validates the request, derives the active deal bucket, runs
// enrichment to completion, scores, and checks for an existing record. It
// writes nothing.
func (e *Engine) Evaluate(ctx context.Context, req Request) (*Assessment, error) {
	start := time.Now()
	defer func() {
		PrioritizationDuration.Observe(time.Since(start).Seconds())
	}()

	if e.userID == "" {
		PrioritizationFailures.WithLabelValues(stageValidate).Inc()
		return nil, invalid("user", "no acting user is configured")
	}
	if err := validateRequest(req); err != nil {
		PrioritizationFailures.WithLabelValues(stageValidate).Inc()
		return nil, err
	}

	client, err := e.clients.Get(ctx, req.ClientID)
	if errors.Is(err, db.ErrClientNotFound) || (err == nil && client == nil) {
		PrioritizationFailures.WithLabelValues(stageValidate).Inc()
		return nil, &ValidationError{Field: "client", Message: "not found", Err: db.ErrClientNotFound}
	}
	if err != nil {
		PrioritizationFailures.WithLabelValues(stageLoad).Inc()
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	deals, err := e.deals.ListByClient(ctx, req.ClientID)
	if err != nil {
		PrioritizationFailures.WithLabelValues(stageLoad).Inc()
		return nil, fmt.Errorf("failed to load deals: %w", err)
	}
	activeCount := models.ActiveDealCount(deals)

	answers := models.QuestionnaireAnswers{
		ActiveDeals:          models.BucketActiveDeals(activeCount),
		InteractionFrequency: req.InteractionFrequency,
		WhoInitiated:         req.WhoInitiated,
		PendingProposal:      req.PendingProposal,
	}

	outcome := enrichment.Enrich(ctx, e.analyzer, req.Image, e.logger)
	if req.Image != nil {
		EnrichmentOutcomes.WithLabelValues(outcome.Label()).Inc()
	}

	proposed := &models.Prioritization{
		ClientID:           client.ID,
		UserID:             e.userID,
		Answers:            answers,
		Enrichment:         outcome.Hint,
		CalculatedPriority: scoring.Score(answers, outcome.Hint),
	}

	existing, err := e.store.FindByClientAndUser(ctx, client.ID, e.userID)
	if err != nil {
		PrioritizationFailures.WithLabelValues(stageGuard).Inc()
		return nil, fmt.Errorf("%w: checking for an existing record: %w", ErrPersistence, err)
	}

	e.logger.Debug("prioritization evaluated",
		zap.String("client_id", client.ID.String()),
		zap.Int("active_deals", activeCount),
		zap.String("priority", string(proposed.CalculatedPriority)),
		zap.String("enrichment", outcome.Label()),
		zap.Bool("existing", existing != nil))

	return &Assessment{
		Client:            client,
		ActiveDealCount:   activeCount,
		Proposed:          proposed,
		Enrichment:        outcome,
		Existing:          existing,
		NeedsConfirmation: existing != nil,
	}, nil
}

// Commit saves an assessment. When an existing record was detected, confirmed
// must be true or ErrConfirmationRequired is returned. No save is issued once
// ctx is done.
func (e *Engine) Commit(ctx context.Context, a *Assessment, confirmed bool) (*models.Prioritization, error) {
	if a == nil || a.Proposed == nil {
		return nil, invalid("assessment", "nothing to save")
	}
	if a.NeedsConfirmation && !confirmed {
		return nil, ErrConfirmationRequired
	}
	if err := ctx.Err(); err != nil {
		PrioritizationFailures.WithLabelValues(stageSave).Inc()
		return nil, fmt.Errorf("save not issued: %w", err)
	}

	saved, err := e.store.Save(ctx, a.Proposed)
	if err != nil {
		PrioritizationFailures.WithLabelValues(stageSave).Inc()
		e.logger.Error("failed to save prioritization",
			zap.String("client_id", a.Proposed.ClientID.String()),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	PrioritizationsSaved.WithLabelValues(string(saved.CalculatedPriority)).Inc()
	e.logger.Info("prioritization saved",
		zap.String("client_id", saved.ClientID.String()),
		zap.String("priority", string(saved.CalculatedPriority)),
		zap.Bool("replaced", a.Existing != nil))

	return saved, nil
}

// Run evaluates the request, asks confirmer when a record already exists, and
// commits. A nil confirmer declines every overwrite. Declining is not an error.
func (e *Engine) Run(ctx context.Context, req Request, confirmer Confirmer) (*Result, error) {
	a, err := e.Evaluate(ctx, req)
	if err != nil {
		return nil, err
	}

	if a.NeedsConfirmation {
		ok := false
		if confirmer != nil {
			ok, err = confirmer.ConfirmOverwrite(ctx, a)
			if err != nil {
				PrioritizationFailures.WithLabelValues(stageConfirm).Inc()
				return nil, fmt.Errorf("confirmation failed: %w", err)
			}
		}
		if !ok {
			e.logger.Info("overwrite declined, existing prioritization kept",
				zap.String("client_id", a.Client.ID.String()))
			return &Result{Status: StatusDeclined, Assessment: a}, nil
		}
	}

	saved, err := e.Commit(ctx, a, true)
	if err != nil {
		return nil, err
	}

	return &Result{Status: StatusSaved, Assessment: a, Record: saved}, nil
}
