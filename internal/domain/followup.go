package domain

import (
	"fmt"
	"time"
)

// FollowupContent is the generated email and short message for exactly one
// interaction record.
type FollowupContent struct {
	ID            string
	InteractionID string
	EmailText     string
	MessageText   string
	CreatedAt     time.Time
}

func (f *FollowupContent) CheckInvariants() error {
	if f.InteractionID == "" {
		return fmt.Errorf("followup: interaction id is required")
	}
	if f.EmailText == "" || f.MessageText == "" {
		return fmt.Errorf("followup: email and message text are required")
	}
	return nil
}
