package app

import (
	"time"

	"github.com/alexanderramin/dealnotes/internal/domain"
)

// IngestRequest is one conversation to run through the pipeline.
// A zero Timestamp means now.
type IngestRequest struct {
	ClientID  string
	RawText   string
	Timestamp time.Time
}

// IngestResult reports what the pipeline stored. Interaction is always set
// on success; Followup is nil and FollowupErr set when generation or its
// persistence failed after the interaction was saved.
type IngestResult struct {
	Interaction *domain.InteractionRecord
	Followup    *domain.FollowupContent
	FollowupErr error
	History     domain.ClientHistory
}

// Partial reports whether the interaction was saved without its followup.
func (r *IngestResult) Partial() bool {
	return r != nil && r.Interaction != nil && r.FollowupErr != nil
}
