// ABOUTME: Prioritization MCP tool handlers
// ABOUTME: Implements prioritize_client and get_client_priority over the engine
package handlers

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/pagen-priority/enrichment"
	"github.com/harperreed/pagen-priority/models"
	"github.com/harperreed/pagen-priority/prioritize"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// PriorityStore reads a stored prioritization for the acting user.
type PriorityStore interface {
	FindByClientAndUser(ctx context.Context, clientID uuid.UUID, userID string) (*models.Prioritization, error)
}

type PriorityHandlers struct {
	engine *prioritize.Engine
	store  PriorityStore
}

func NewPriorityHandlers(engine *prioritize.Engine, store PriorityStore) *PriorityHandlers {
	return &PriorityHandlers{engine: engine, store: store}
}

type PrioritizeClientInput struct {
	ClientID             string `json:"client_id" jsonschema:"Client ID (required)"`
	InteractionFrequency string `json:"interaction_frequency" jsonschema:"Interactions in the last 14 days: 1-2times, 3-5times, 6-9times, 10+times (required)"`
	WhoInitiated         string `json:"who_initiated,omitempty" jsonschema:"Who initiated the last contact: client or you"`
	PendingProposal      string `json:"pending_proposal,omitempty" jsonschema:"Is a meeting, call, or offer pending: yes or no"`
	ImagePath            string `json:"image_path,omitempty" jsonschema:"Path to a JPEG or PNG screenshot of the latest conversation"`
	ImageBase64          string `json:"image_base64,omitempty" jsonschema:"Base64 JPEG or PNG image, used when image_path is empty"`
	ImageContentType     string `json:"image_content_type,omitempty" jsonschema:"Content type of image_base64: image/jpeg or image/png"`
	ConfirmOverwrite     bool   `json:"confirm_overwrite,omitempty" jsonschema:"Replace an existing prioritization for this client"`
}

type PrioritizationOutput struct {
	ID                   string `json:"id"`
	ClientID             string `json:"client_id"`
	UserID               string `json:"user_id"`
	ActiveDeals          string `json:"active_deals"`
	InteractionFrequency string `json:"interaction_frequency"`
	WhoInitiated         string `json:"who_initiated,omitempty"`
	PendingProposal      string `json:"pending_proposal,omitempty"`
	ImagePriority        string `json:"image_priority,omitempty"`
	ImageKeywordsCount   *int   `json:"image_keywords_count,omitempty"`
	ImageSentiment       string `json:"image_sentiment,omitempty"`
	CalculatedPriority   string `json:"calculated_priority"`
	CreatedAt            string `json:"created_at"`
}

type PrioritizeClientOutput struct {
	Status                 string                `json:"status"`
	ExistingRecordDetected bool                  `json:"existing_record_detected"`
	CalculatedPriority     string                `json:"calculated_priority"`
	ActiveDealCount        int                   `json:"active_deal_count"`
	KeywordsCount          *int                  `json:"keywords_count,omitempty"`
	Sentiment              string                `json:"sentiment,omitempty"`
	Warning                string                `json:"warning,omitempty"`
	Message                string                `json:"message"`
	Prioritization         *PrioritizationOutput `json:"prioritization,omitempty"`
}

func prioritizationToOutput(p *models.Prioritization) *PrioritizationOutput {
	if p == nil {
		return nil
	}
	out := &PrioritizationOutput{
		ID:                   p.ID.String(),
		ClientID:             p.ClientID.String(),
		UserID:               p.UserID,
		ActiveDeals:          string(p.Answers.ActiveDeals),
		InteractionFrequency: string(p.Answers.InteractionFrequency),
		CalculatedPriority:   string(p.CalculatedPriority),
		CreatedAt:            p.CreatedAt.Format(time.RFC3339),
	}
	if p.Answers.WhoInitiated != nil {
		out.WhoInitiated = string(*p.Answers.WhoInitiated)
	}
	if p.Answers.PendingProposal != nil {
		out.PendingProposal = string(*p.Answers.PendingProposal)
	}
	if h := p.Enrichment; h != nil {
		count := h.KeywordsCount
		out.ImagePriority = string(h.Priority)
		out.ImageKeywordsCount = &count
		out.ImageSentiment = string(h.Sentiment)
	}
	return out
}

func buildRequest(input PrioritizeClientInput) (prioritize.Request, error) {
	clientID, err := uuid.Parse(input.ClientID)
	if err != nil {
		return prioritize.Request{}, fmt.Errorf("invalid client_id: %w", err)
	}

	req := prioritize.Request{
		ClientID:             clientID,
		InteractionFrequency: models.InteractionFrequency(input.InteractionFrequency),
	}
	if input.WhoInitiated != "" {
		v := models.Initiator(input.WhoInitiated)
		req.WhoInitiated = &v
	}
	if input.PendingProposal != "" {
		v := models.ProposalState(input.PendingProposal)
		req.PendingProposal = &v
	}

	switch {
	case input.ImagePath != "":
		img, err := enrichment.LoadImage(input.ImagePath)
		if err != nil {
			return prioritize.Request{}, fmt.Errorf("failed to load image: %w", err)
		}
		req.Image = img
	case input.ImageBase64 != "":
		data, err := base64.StdEncoding.DecodeString(input.ImageBase64)
		if err != nil {
			return prioritize.Request{}, fmt.Errorf("invalid image_base64: %w", err)
		}
		req.Image = &enrichment.Image{Name: "upload", ContentType: input.ImageContentType, Data: data}
	}

	return req, nil
}

// PrioritizeClient scores the client and saves the result. When a record
// already exists it is only replaced if confirm_overwrite is set; otherwise the
// existing record is returned with existing_record_detected.
func (h *PriorityHandlers) PrioritizeClient(ctx context.Context, request *mcp.CallToolRequest, input PrioritizeClientInput) (*mcp.CallToolResult, PrioritizeClientOutput, error) {
	req, err := buildRequest(input)
	if err != nil {
		return nil, PrioritizeClientOutput{}, err
	}

	confirm := prioritize.ConfirmFunc(func(context.Context, *prioritize.Assessment) (bool, error) {
		return input.ConfirmOverwrite, nil
	})

	res, err := h.engine.Run(ctx, req, confirm)
	if err != nil {
		return nil, PrioritizeClientOutput{}, fmt.Errorf("failed to prioritize client: %w", err)
	}

	a := res.Assessment
	out := PrioritizeClientOutput{
		Status:                 string(res.Status),
		ExistingRecordDetected: a.NeedsConfirmation,
		CalculatedPriority:     string(a.Proposed.CalculatedPriority),
		ActiveDealCount:        a.ActiveDealCount,
		Warning:                a.Warning(),
	}
	if hint := a.Enrichment.Hint; hint != nil {
		count := hint.KeywordsCount
		out.KeywordsCount = &count
		out.Sentiment = string(hint.Sentiment)
	}

	switch res.Status {
	case prioritize.StatusSaved:
		out.Prioritization = prioritizationToOutput(res.Record)
		out.Message = fmt.Sprintf("%s priority saved for %s", res.Record.CalculatedPriority, a.Client.Name)
	case prioritize.StatusDeclined:
		out.Prioritization = prioritizationToOutput(a.Existing)
		out.Message = fmt.Sprintf("%s already has a %s priority; call again with confirm_overwrite to replace it with %s",
			a.Client.Name, a.Existing.CalculatedPriority, a.Proposed.CalculatedPriority)
	}

	return nil, out, nil
}

type GetClientPriorityInput struct {
	ClientID string `json:"client_id" jsonschema:"Client ID (required)"`
}

type GetClientPriorityOutput struct {
	Found          bool                  `json:"found"`
	Prioritization *PrioritizationOutput `json:"prioritization,omitempty"`
}

func (h *PriorityHandlers) GetClientPriority(ctx context.Context, request *mcp.CallToolRequest, input GetClientPriorityInput) (*mcp.CallToolResult, GetClientPriorityOutput, error) {
	clientID, err := uuid.Parse(input.ClientID)
	if err != nil {
		return nil, GetClientPriorityOutput{}, fmt.Errorf("invalid client_id: %w", err)
	}

	p, err := h.store.FindByClientAndUser(ctx, clientID, h.engine.UserID())
	if err != nil {
		return nil, GetClientPriorityOutput{}, fmt.Errorf("failed to fetch priority: %w", err)
	}

	return nil, GetClientPriorityOutput{Found: p != nil, Prioritization: prioritizationToOutput(p)}, nil
}
