package app

import "time"

type StatusRequest struct {
	Now           *time.Time
	DueWithinDays int
}

func NewStatusRequest() StatusRequest {
	return StatusRequest{DueWithinDays: 7}
}

// ModelStatus describes the configured inference backend.
type ModelStatus struct {
	Enabled   bool
	Endpoint  string
	Model     string
	Available bool
}

type DueFollowupView struct {
	InteractionID string
	ClientID      string
	ClientName    string
	FollowupDate  time.Time
	NextAction    string
	DealStage     string
	Overdue       bool
}

type StatusResponse struct {
	GeneratedAt     time.Time
	Model           ModelStatus
	ActiveClients   int
	InactiveClients int
	DueFollowups    []DueFollowupView
	Warnings        []string
}
