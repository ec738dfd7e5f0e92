// ABOUTME: OpenAI vision analyzer for client images
// ABOUTME: Sends one chat completion with the image inline and parses the structured hint
package enrichment

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/harperreed/pagen-priority/models"
)

const systemPrompt = "You review images of client conversations and notes for a sales CRM. " +
	"Reply with a single JSON object and nothing else."

const analysisPrompt = `Analyze this image about a client or a conversation with a client.
Return JSON with exactly these keys:
  "priority": one of "low", "medium", "high" - how urgently the client should be attended to
  "keywordsCount": integer >= 0 - number of buying-intent keywords (price, contract, proposal, meeting, deadline, budget...)
  "sentiment": one of "low", "mid", "high" - how positive the client appears`

// OpenAIConfig configures the vision analyzer.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string        // optional, e.g. "https://api.openai.com/v1"
	Model   string        // e.g. "gpt-4o-mini"
	Timeout time.Duration // per call; zero means no extra deadline
}

// OpenAIAnalyzer classifies images with an OpenAI-compatible chat completion endpoint.
type OpenAIAnalyzer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewOpenAIAnalyzer creates an analyzer. The API key is required unless a
// custom BaseURL points at a local endpoint.
func NewOpenAIAnalyzer(cfg OpenAIConfig, logger *zap.Logger) (*OpenAIAnalyzer, error) {
	if cfg.APIKey == "" && cfg.BaseURL == "" {
		return nil, ErrAnalyzerUnavailable
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	return &OpenAIAnalyzer{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger.Named("enrichment"),
	}, nil
}

// Analyze makes exactly one completion call. Unsupported images are rejected
// before any request is sent.
func (a *OpenAIAnalyzer) Analyze(ctx context.Context, img *Image) (*models.EnrichmentHint, error) {
	if err := ValidateImage(img); err != nil {
		return nil, err
	}

	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	requestID := ulid.Make().String()
	logger := a.logger.With(zap.String("request_id", requestID), zap.String("image", img.Name))
	logger.Debug("analyzing image",
		zap.String("model", a.model),
		zap.String("content_type", img.MIMEType()),
		zap.Int("bytes", len(img.Data)))

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: analysisPrompt},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    dataURL(img.MIMEType(), img.Data),
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		logger.Warn("image analysis request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, fmt.Errorf("image analysis request: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrMalformedResponse)
	}

	hint, err := parseHint(resp.Choices[0].Message.Content)
	if err != nil {
		logger.Warn("image analysis reply rejected", zap.Error(err))
		return nil, err
	}

	logger.Info("image analyzed",
		zap.String("priority", string(hint.Priority)),
		zap.Int("keywords", hint.KeywordsCount),
		zap.String("sentiment", string(hint.Sentiment)),
		zap.Duration("elapsed", time.Since(start)))

	return hint, nil
}

func dataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
