package domain

import "time"

// ClientHistory is a read-only, date-ascending view of a client's prior
// interactions, bounded for use as generation context.
type ClientHistory struct {
	ClientID string
	Items    []InteractionRecord

	// Truncated counts the older records dropped to fit the bounds.
	Truncated int
}

// Empty reports whether the history holds no interactions.
func (h ClientHistory) Empty() bool {
	return len(h.Items) == 0
}

// Latest returns the most recent interaction, or nil.
func (h ClientHistory) Latest() *InteractionRecord {
	if len(h.Items) == 0 {
		return nil
	}
	return &h.Items[len(h.Items)-1]
}

// TimelineEntry is one row of a client's interaction timeline.
type TimelineEntry struct {
	InteractionID string
	Date          time.Time
	DealStage     DealStage
	InterestLevel InterestLevel
	Summary       string
	NextAction    string
	FollowupDate  *time.Time
	HasFollowup   bool
}

// ClientStats aggregates a client's interaction history.
type ClientStats struct {
	ClientID          string
	TotalInteractions int
	FirstContact      *time.Time
	LastContact       *time.Time
	StagesSeen        []DealStage
}
