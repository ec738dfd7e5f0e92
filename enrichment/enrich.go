// ABOUTME: Analyzer contract and best-effort enrichment outcome
// ABOUTME: Converts analyzer failures into a warning instead of an error
package enrichment

import (
	"context"

	"go.uber.org/zap"

	"github.com/harperreed/pagen-priority/models"
)

// Analyzer classifies an image into an enrichment hint with one external call.
type Analyzer interface {
	Analyze(ctx context.Context, img *Image) (*models.EnrichmentHint, error)
}

// Outcome is the result of a best-effort enrichment. Exactly one of Hint or
// Err is set when an image was supplied; both are nil when it was not.
type Outcome struct {
	Hint *models.EnrichmentHint
	Err  error
}

// Available reports whether a hint can be blended into the score.
func (o Outcome) Available() bool {
	return o.Hint != nil
}

// Skipped reports whether no image was supplied.
func (o Outcome) Skipped() bool {
	return o.Hint == nil && o.Err == nil
}

// Warning is the user-facing message for a failed analysis, empty otherwise.
func (o Outcome) Warning() string {
	if o.Err == nil {
		return ""
	}
	return "image analysis skipped: " + o.Err.Error()
}

// Label names the outcome for metrics and logs.
func (o Outcome) Label() string {
	switch {
	case o.Available():
		return "ok"
	case o.Err != nil:
		return "failed"
	default:
		return "skipped"
	}
}

// Enrich runs the analyzer to completion and never fails. A nil image yields a
// skipped outcome; a nil analyzer yields ErrAnalyzerUnavailable.
func Enrich(ctx context.Context, analyzer Analyzer, img *Image, logger *zap.Logger) Outcome {
	if img == nil {
		return Outcome{}
	}
	if analyzer == nil {
		return Outcome{Err: ErrAnalyzerUnavailable}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if err := ValidateImage(img); err != nil {
		logger.Warn("image rejected before analysis", zap.String("image", img.Name), zap.Error(err))
		return Outcome{Err: err}
	}

	hint, err := analyzer.Analyze(ctx, img)
	if err != nil {
		logger.Warn("image analysis failed, continuing without hint",
			zap.String("image", img.Name),
			zap.Error(err))
		return Outcome{Err: err}
	}
	if err := validateHint(hint); err != nil {
		logger.Warn("image analysis returned an invalid hint", zap.Error(err))
		return Outcome{Err: err}
	}

	return Outcome{Hint: hint}
}
