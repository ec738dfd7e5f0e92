// ABOUTME: Weighted rule evaluation that turns questionnaire answers into a priority level
// ABOUTME: Pure and deterministic; no storage or network access
package scoring

import (
	"fmt"

	"github.com/harperreed/pagen-priority/models"
)

// Weights are expressed in quarter points so every threshold comparison is exact.
const (
	lowCeiling    = 6  // scores below this are low
	highFloor     = 14 // scores above this are high
	clientBoost   = 2
	proposalBoost = 4
)

var activeDealWeights = map[models.ActiveDeals]int{
	models.ActiveDealsOne:       4,
	models.ActiveDealsTwo:       8,
	models.ActiveDealsThreePlus: 12,
}

var frequencyWeights = map[models.InteractionFrequency]int{
	models.Frequency1to2:   -4,
	models.Frequency3to5:   0,
	models.Frequency6to9:   4,
	models.Frequency10Plus: 8,
}

// Hint weights stay below a single step of either mandatory answer.
var hintPriorityWeights = map[models.PriorityLevel]int{
	models.PriorityLow:    -2,
	models.PriorityMedium: 0,
	models.PriorityHigh:   2,
}

var hintSentimentWeights = map[models.Sentiment]int{
	models.SentimentLow:  -1,
	models.SentimentMid:  0,
	models.SentimentHigh: 1,
}

// Points returns the running score for the answers and optional hint.
// Missing optional answers contribute nothing.
func Points(answers models.QuestionnaireAnswers, hint *models.EnrichmentHint) int {
	base, ok := activeDealWeights[answers.ActiveDeals]
	if !ok {
		panic(fmt.Sprintf("scoring: invalid active deals %q", answers.ActiveDeals))
	}
	freq, ok := frequencyWeights[answers.InteractionFrequency]
	if !ok {
		panic(fmt.Sprintf("scoring: invalid interaction frequency %q", answers.InteractionFrequency))
	}

	points := base + freq

	if answers.WhoInitiated != nil && *answers.WhoInitiated == models.InitiatorClient {
		points += clientBoost
	}
	if answers.PendingProposal != nil && *answers.PendingProposal == models.ProposalYes {
		points += proposalBoost
	}

	if hint != nil {
		points += hintPriorityWeights[hint.Priority]
		points += hintSentimentWeights[hint.Sentiment]
	}

	return points
}

// Level maps a running score onto a priority level. Scores sitting exactly on
// a threshold resolve to medium.
func Level(points int) models.PriorityLevel {
	switch {
	case points < lowCeiling:
		return models.PriorityLow
	case points > highFloor:
		return models.PriorityHigh
	default:
		return models.PriorityMedium
	}
}

// Score computes the priority level for a client. ActiveDeals and
// InteractionFrequency must hold valid values; callers validate them first
// and an invalid value panics.
func Score(answers models.QuestionnaireAnswers, hint *models.EnrichmentHint) models.PriorityLevel {
	return Level(Points(answers, hint))
}
