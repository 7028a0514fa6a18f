package domain

import (
	"fmt"
	"time"
)

// MinRawTextLen is the shortest conversation text accepted for extraction.
const MinRawTextLen = 10

// ConversationInput is the per-request input to the extraction pipeline. It is
// never persisted directly.
type ConversationInput struct {
	ClientID  string
	RawText   string
	Timestamp time.Time
}

// InteractionRecord is the structured CRM record extracted from one
// conversation. Records are immutable once stored; a corrective re-run stores
// a new version that points at the record it supersedes.
type InteractionRecord struct {
	ID            string
	ClientID      string
	Date          time.Time
	RawText       string
	Summary       string
	DealStage     DealStage
	Objections    []string
	InterestLevel InterestLevel
	NextAction    string
	FollowupDate  *time.Time
	Version       int
	SupersedesID  string
	CreatedAt     time.Time
}

// CheckInvariants verifies the rules every stored record must satisfy.
func (r *InteractionRecord) CheckInvariants() error {
	if r.ClientID == "" {
		return fmt.Errorf("interaction record: client id is required")
	}
	if _, ok := ParseDealStage(string(r.DealStage)); !ok || string(r.DealStage) == "" {
		return fmt.Errorf("interaction record: deal stage %q is not in the closed set", r.DealStage)
	}
	if _, ok := ParseInterestLevel(string(r.InterestLevel)); !ok {
		return fmt.Errorf("interaction record: interest level %q is not in the closed set", r.InterestLevel)
	}
	if r.Objections == nil {
		return fmt.Errorf("interaction record: objections must be a list")
	}
	return nil
}

// NextVersion returns a copy of r prepared as a corrective re-run: a new
// version number pointing back at r. The caller fills in the new id and the
// re-extracted fields.
func (r *InteractionRecord) NextVersion() InteractionRecord {
	next := *r
	next.ID = ""
	next.Version = r.Version + 1
	next.SupersedesID = r.ID
	next.Objections = make([]string, len(r.Objections))
	copy(next.Objections, r.Objections)
	return next
}
