// ABOUTME: Response shape checks for image analysis
// ABOUTME: Validates the analyzer JSON against a schema before it becomes a hint
package enrichment

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/harperreed/pagen-priority/models"
)

var (
	ErrMalformedResponse   = errors.New("malformed analysis response")
	ErrAnalyzerUnavailable = errors.New("image analyzer is not configured")
)

const hintSchema = `{
  "type": "object",
  "properties": {
    "priority": {"type": "string", "enum": ["low", "medium", "high"]},
    "keywordsCount": {"type": "integer", "minimum": 0, "maximum": 100000},
    "sentiment": {"type": "string", "enum": ["low", "mid", "high"]}
  },
  "required": ["priority", "keywordsCount", "sentiment"],
  "additionalProperties": false
}`

var hintSchemaLoader = gojsonschema.NewStringLoader(hintSchema)

// parseHint extracts the JSON object from a model reply and checks its shape.
func parseHint(raw string) (*models.EnrichmentHint, error) {
	body, err := extractJSONObject(raw)
	if err != nil {
		return nil, err
	}

	result, err := gojsonschema.Validate(hintSchemaLoader, gojsonschema.NewStringLoader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedResponse, strings.Join(msgs, "; "))
	}

	// The schema already accepted the shape; integral floats like 2.0 pass it as integers.
	var wire struct {
		Priority      string  `json:"priority"`
		KeywordsCount float64 `json:"keywordsCount"`
		Sentiment     string  `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(body), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &models.EnrichmentHint{
		Priority:      models.PriorityLevel(wire.Priority),
		KeywordsCount: int(wire.KeywordsCount),
		Sentiment:     models.Sentiment(wire.Sentiment),
	}, nil
}

// extractJSONObject strips code fences and surrounding prose from a model reply.
func extractJSONObject(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", fmt.Errorf("%w: no JSON object in reply", ErrMalformedResponse)
	}

	body := s[start : end+1]
	if !json.Valid([]byte(body)) {
		return "", fmt.Errorf("%w: invalid JSON in reply", ErrMalformedResponse)
	}
	return body, nil
}

// validateHint guards hints that did not come through parseHint, such as cache hits
// or alternative analyzers.
func validateHint(hint *models.EnrichmentHint) error {
	if hint == nil {
		return fmt.Errorf("%w: empty hint", ErrMalformedResponse)
	}
	if !hint.Priority.Valid() {
		return fmt.Errorf("%w: priority %q", ErrMalformedResponse, hint.Priority)
	}
	if !hint.Sentiment.Valid() {
		return fmt.Errorf("%w: sentiment %q", ErrMalformedResponse, hint.Sentiment)
	}
	if hint.KeywordsCount < 0 {
		return fmt.Errorf("%w: keywords count %d", ErrMalformedResponse, hint.KeywordsCount)
	}
	return nil
}
