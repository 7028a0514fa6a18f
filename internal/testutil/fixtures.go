package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/google/uuid"
)

var testClientCounter atomic.Int64

// Client options
type ClientOption func(*domain.Client)

func WithCompany(c string) ClientOption {
	return func(cl *domain.Client) {
		cl.Company = c
	}
}

func WithEmail(e string) ClientOption {
	return func(cl *domain.Client) {
		cl.Email = e
	}
}

func WithInactive() ClientOption {
	return func(cl *domain.Client) {
		cl.Active = false
	}
}

// NewTestClient returns an active client. An empty name gets a unique default.
func NewTestClient(name string, opts ...ClientOption) *domain.Client {
	if name == "" {
		name = fmt.Sprintf("Client %02d", testClientCounter.Add(1))
	}
	now := time.Now().UTC().Truncate(time.Second)
	c := &domain.Client{
		ID:        uuid.New().String(),
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Interaction options
type InteractionOption func(*domain.InteractionRecord)

func WithDate(d time.Time) InteractionOption {
	return func(r *domain.InteractionRecord) {
		r.Date = d
	}
}

func WithStage(s domain.DealStage) InteractionOption {
	return func(r *domain.InteractionRecord) {
		r.DealStage = s
	}
}

func WithInterest(l domain.InterestLevel) InteractionOption {
	return func(r *domain.InteractionRecord) {
		r.InterestLevel = l
	}
}

func WithObjections(o ...string) InteractionOption {
	return func(r *domain.InteractionRecord) {
		r.Objections = append([]string{}, o...)
	}
}

func WithFollowupDate(d time.Time) InteractionOption {
	return func(r *domain.InteractionRecord) {
		r.FollowupDate = &d
	}
}

func WithSummary(s string) InteractionOption {
	return func(r *domain.InteractionRecord) {
		r.Summary = s
	}
}

// NewTestInteraction returns a valid version-1 record for clientID.
func NewTestInteraction(clientID string, opts ...InteractionOption) *domain.InteractionRecord {
	now := time.Now().UTC().Truncate(time.Second)
	r := &domain.InteractionRecord{
		ID:            uuid.New().String(),
		ClientID:      clientID,
		Date:          now,
		RawText:       "Discussed the rollout plan and pricing tiers.",
		Summary:       "Discussed rollout and pricing.",
		DealStage:     domain.StageProposal,
		Objections:    []string{},
		InterestLevel: domain.InterestMedium,
		NextAction:    "send proposal",
		Version:       1,
		CreatedAt:     now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// NewTestFollowup returns followup content for interactionID.
func NewTestFollowup(interactionID string) *domain.FollowupContent {
	return &domain.FollowupContent{
		ID:            uuid.New().String(),
		InteractionID: interactionID,
		EmailText:     "Hi,\n\nThanks for the call today. The proposal follows shortly.\n\nBest,\nSam",
		MessageText:   "Thanks for the call! Proposal coming shortly.",
		CreatedAt:     time.Now().UTC().Truncate(time.Second),
	}
}
