package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/dealnotes/internal/app"
	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/llm"
	"github.com/alexanderramin/dealnotes/internal/repository"
)

type statusService struct {
	clients      repository.ClientRepo
	interactions repository.InteractionRepo
	model        llm.LLMClient
	cfg          llm.LLMConfig
}

// NewStatusService reports on the model backend and the pipeline backlog.
// model may be nil when inference is disabled.
func NewStatusService(
	clients repository.ClientRepo,
	interactions repository.InteractionRepo,
	model llm.LLMClient,
	cfg llm.LLMConfig,
) StatusService {
	return &statusService{
		clients:      clients,
		interactions: interactions,
		model:        model,
		cfg:          cfg,
	}
}

func (s *statusService) GetStatus(ctx context.Context, req app.StatusRequest) (*app.StatusResponse, error) {
	now := time.Now().UTC()
	if req.Now != nil {
		now = req.Now.UTC()
	}
	days := req.DueWithinDays
	if days <= 0 {
		days = 7
	}

	resp := &app.StatusResponse{
		GeneratedAt: now,
		Model: app.ModelStatus{
			Enabled:  s.cfg.Enabled && s.model != nil,
			Endpoint: s.cfg.Endpoint,
			Model:    s.cfg.Model,
		},
	}
	if resp.Model.Enabled {
		resp.Model.Available = s.model.Available(ctx)
		if !resp.Model.Available {
			resp.Warnings = append(resp.Warnings,
				fmt.Sprintf("model server at %s is not reachable; ingest will fail until it is", s.cfg.Endpoint))
		}
	} else {
		resp.Warnings = append(resp.Warnings, "inference is disabled; ingest and followup generation are unavailable")
	}

	clients, err := s.clients.List(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("loading clients: %w", err)
	}
	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
		if c.Active {
			resp.ActiveClients++
		} else {
			resp.InactiveClients++
		}
	}

	due, err := s.interactions.ListFollowupsDue(ctx, now.AddDate(0, 0, days))
	if err != nil {
		return nil, fmt.Errorf("loading due followups: %w", err)
	}
	today := truncateDay(now)
	for _, rec := range due {
		resp.DueFollowups = append(resp.DueFollowups, dueView(rec, names[rec.ClientID], today))
	}
	return resp, nil
}

func dueView(rec domain.InteractionRecord, clientName string, today time.Time) app.DueFollowupView {
	v := app.DueFollowupView{
		InteractionID: rec.ID,
		ClientID:      rec.ClientID,
		ClientName:    clientName,
		NextAction:    rec.NextAction,
		DealStage:     string(rec.DealStage),
	}
	if rec.FollowupDate != nil {
		v.FollowupDate = *rec.FollowupDate
		v.Overdue = truncateDay(*rec.FollowupDate).Before(today)
	}
	return v
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
