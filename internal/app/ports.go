package app

import (
	"context"

	"github.com/alexanderramin/dealnotes/internal/domain"
)

// IngestUseCase runs conversations through extraction and followup generation.
type IngestUseCase interface {
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)
	RegenerateFollowup(ctx context.Context, interactionID string) (*domain.FollowupContent, error)
	Reextract(ctx context.Context, interactionID string) (*IngestResult, error)
}

type StatusUseCase interface {
	GetStatus(ctx context.Context, req StatusRequest) (*StatusResponse, error)
}
