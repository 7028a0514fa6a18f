package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/dealnotes/internal/domain"
)

type ClientRepo interface {
	Create(ctx context.Context, c *domain.Client) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	FindByEmail(ctx context.Context, email string) (*domain.Client, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.Client, error)
	Search(ctx context.Context, query string, includeInactive bool) ([]*domain.Client, error)
	Update(ctx context.Context, c *domain.Client) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// InteractionRepo stores interaction records. Records are append-only; a
// corrective re-run is a new row whose supersedes_id points at the old one.
type InteractionRepo interface {
	Create(ctx context.Context, r *domain.InteractionRecord) error
	GetByID(ctx context.Context, id string) (*domain.InteractionRecord, error)
	// ListByClient returns every stored version, oldest first.
	ListByClient(ctx context.Context, clientID string) ([]domain.InteractionRecord, error)
	// Timeline returns the current version of each interaction, oldest first.
	Timeline(ctx context.Context, clientID string) ([]domain.TimelineEntry, error)
	Stats(ctx context.Context, clientID string) (domain.ClientStats, error)
	ListFollowupsDue(ctx context.Context, through time.Time) ([]domain.InteractionRecord, error)
}

type FollowupRepo interface {
	// Upsert stores f, replacing any content already held for the interaction.
	Upsert(ctx context.Context, f *domain.FollowupContent) error
	GetByInteraction(ctx context.Context, interactionID string) (*domain.FollowupContent, error)
}
