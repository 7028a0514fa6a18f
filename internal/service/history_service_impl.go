package service

import (
	"context"
	"time"

	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/repository"
)

type historyService struct {
	clients      repository.ClientRepo
	interactions repository.InteractionRepo
	followups    repository.FollowupRepo
}

func NewHistoryService(clients repository.ClientRepo, interactions repository.InteractionRepo, followups repository.FollowupRepo) HistoryService {
	return &historyService{clients: clients, interactions: interactions, followups: followups}
}

// Timeline fails with repository.ErrNotFound for an unknown client rather
// than returning an empty list.
func (s *historyService) Timeline(ctx context.Context, clientID string) ([]domain.TimelineEntry, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return nil, err
	}
	return s.interactions.Timeline(ctx, clientID)
}

func (s *historyService) Stats(ctx context.Context, clientID string) (domain.ClientStats, error) {
	if _, err := s.clients.GetByID(ctx, clientID); err != nil {
		return domain.ClientStats{ClientID: clientID}, err
	}
	return s.interactions.Stats(ctx, clientID)
}

func (s *historyService) Interaction(ctx context.Context, id string) (*domain.InteractionRecord, error) {
	return s.interactions.GetByID(ctx, id)
}

func (s *historyService) Followup(ctx context.Context, interactionID string) (*domain.FollowupContent, error) {
	return s.followups.GetByInteraction(ctx, interactionID)
}

func (s *historyService) Due(ctx context.Context, through time.Time) ([]domain.InteractionRecord, error) {
	return s.interactions.ListFollowupsDue(ctx, through)
}
