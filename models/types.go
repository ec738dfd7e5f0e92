// ABOUTME: Data models for CRM entities and client prioritization
// ABOUTME: Defines Client, Deal, pipeline stages, questionnaire enums, and Prioritization
package models

import (
	"time"

	"github.com/google/uuid"
)

type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Deal struct {
	ID        uuid.UUID `json:"id"`
	ClientID  uuid.UUID `json:"client_id"`
	Title     string    `json:"title"`
	Amount    int64     `json:"amount,omitempty"` // in cents
	Currency  string    `json:"currency"`
	Stage     string    `json:"stage"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Pipeline stages, in board order. StageClosed is the only terminal stage.
const (
	StageNew         = "new"
	StageContacted   = "contacted"
	StageFollowUp    = "follow_up"
	StageNegotiating = "negotiating"
	StageClosed      = "closed"
)

// Stages lists the pipeline in order.
var Stages = []string{StageNew, StageContacted, StageFollowUp, StageNegotiating, StageClosed}

func IsValidStage(stage string) bool {
	for _, s := range Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// IsTerminalStage reports whether a deal in this stage no longer counts as active.
func IsTerminalStage(stage string) bool {
	return stage == StageClosed
}

// ActiveDealCount returns the number of deals that have not reached the terminal stage.
func ActiveDealCount(deals []Deal) int {
	n := 0
	for _, d := range deals {
		if !IsTerminalStage(d.Stage) {
			n++
		}
	}
	return n
}

// PriorityLevel is the categorical output of the scoring engine.
type PriorityLevel string

const (
	PriorityLow    PriorityLevel = "low"
	PriorityMedium PriorityLevel = "medium"
	PriorityHigh   PriorityLevel = "high"
)

func (p PriorityLevel) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ActiveDeals is the bucketed active deal count used by the questionnaire.
type ActiveDeals string

const (
	ActiveDealsOne       ActiveDeals = "1"
	ActiveDealsTwo       ActiveDeals = "2"
	ActiveDealsThreePlus ActiveDeals = "3+"
)

func (a ActiveDeals) Valid() bool {
	switch a {
	case ActiveDealsOne, ActiveDealsTwo, ActiveDealsThreePlus:
		return true
	}
	return false
}

// BucketActiveDeals maps an active deal count onto the questionnaire buckets.
// Counts below one fall into the lowest bucket.
func BucketActiveDeals(n int) ActiveDeals {
	switch {
	case n >= 3:
		return ActiveDealsThreePlus
	case n == 2:
		return ActiveDealsTwo
	default:
		return ActiveDealsOne
	}
}

// InteractionFrequency counts interactions with the client over the last 14 days.
type InteractionFrequency string

const (
	Frequency1to2   InteractionFrequency = "1-2times"
	Frequency3to5   InteractionFrequency = "3-5times"
	Frequency6to9   InteractionFrequency = "6-9times"
	Frequency10Plus InteractionFrequency = "10+times"
)

// InteractionFrequencies lists the buckets from least to most frequent.
var InteractionFrequencies = []InteractionFrequency{Frequency1to2, Frequency3to5, Frequency6to9, Frequency10Plus}

func (f InteractionFrequency) Valid() bool {
	for _, v := range InteractionFrequencies {
		if v == f {
			return true
		}
	}
	return false
}

// Initiator records who initiated the last contact.
type Initiator string

const (
	InitiatorClient Initiator = "client"
	InitiatorYou    Initiator = "you"
)

func (i Initiator) Valid() bool {
	return i == InitiatorClient || i == InitiatorYou
}

// ProposalState records whether a proposal (meeting, call, offer) is pending.
type ProposalState string

const (
	ProposalYes ProposalState = "yes"
	ProposalNo  ProposalState = "no"
)

func (p ProposalState) Valid() bool {
	return p == ProposalYes || p == ProposalNo
}

// Sentiment bucket reported by image analysis.
type Sentiment string

const (
	SentimentLow  Sentiment = "low"
	SentimentMid  Sentiment = "mid"
	SentimentHigh Sentiment = "high"
)

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentLow, SentimentMid, SentimentHigh:
		return true
	}
	return false
}

// QuestionnaireAnswers is the validated input to the scoring function.
// Optional answers are nil when the user skipped them.
type QuestionnaireAnswers struct {
	ActiveDeals          ActiveDeals          `json:"active_deals"`
	InteractionFrequency InteractionFrequency `json:"interaction_frequency"`
	WhoInitiated         *Initiator           `json:"who_initiated,omitempty"`
	PendingProposal      *ProposalState       `json:"pending_proposal,omitempty"`
}

// EnrichmentHint is the advisory signal derived from an uploaded image.
type EnrichmentHint struct {
	Priority      PriorityLevel `json:"priority"`
	KeywordsCount int           `json:"keywordsCount"`
	Sentiment     Sentiment     `json:"sentiment"`
}

// Prioritization is the persisted priority of a client for one user.
// At most one exists per (ClientID, UserID).
type Prioritization struct {
	ID                 uuid.UUID            `json:"id"`
	ClientID           uuid.UUID            `json:"client_id"`
	UserID             string               `json:"user_id"`
	Answers            QuestionnaireAnswers `json:"answers"`
	Enrichment         *EnrichmentHint      `json:"enrichment,omitempty"`
	CalculatedPriority PriorityLevel        `json:"calculated_priority"`
	CreatedAt          time.Time            `json:"created_at"`
}

// ClientPriority joins a client with its stored priority, if any.
type ClientPriority struct {
	Client
	Priority *PriorityLevel `json:"priority,omitempty"`
}

// ReminderType is what kind of follow-up a reminder asks for.
type ReminderType string

const (
	ReminderCall     ReminderType = "call"
	ReminderEmail    ReminderType = "email"
	ReminderMeeting  ReminderType = "meeting"
	ReminderFollowUp ReminderType = "follow-up"
)

var ReminderTypes = []ReminderType{ReminderCall, ReminderEmail, ReminderMeeting, ReminderFollowUp}

func (r ReminderType) Valid() bool {
	for _, v := range ReminderTypes {
		if v == r {
			return true
		}
	}
	return false
}

// Reminder is a dated follow-up task attached to a client.
type Reminder struct {
	ID          uuid.UUID     `json:"id"`
	ClientID    uuid.UUID     `json:"client_id"`
	Title       string        `json:"title"`
	Type        ReminderType  `json:"type"`
	Priority    PriorityLevel `json:"priority"`
	DueAt       time.Time     `json:"due_at"`
	Completed   bool          `json:"completed"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
}

// StartOfDay is midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Overdue reports whether an open reminder was due on a day before now's.
// A reminder due earlier today is due, not overdue.
func (r *Reminder) Overdue(now time.Time) bool {
	return !r.Completed && r.DueAt.Before(StartOfDay(now))
}

// DueToday reports whether the reminder falls on now's calendar day.
func (r *Reminder) DueToday(now time.Time) bool {
	start := StartOfDay(now)
	return !r.DueAt.Before(start) && r.DueAt.Before(start.AddDate(0, 0, 1))
}
