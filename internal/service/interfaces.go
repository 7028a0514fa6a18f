package service

import (
	"context"
	"time"

	"github.com/alexanderramin/dealnotes/internal/app"
	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/importer"
)

type ClientService interface {
	// Create stores a new client. Unless force is set, a likely duplicate
	// yields *DuplicateClientError and nothing is stored.
	Create(ctx context.Context, c *domain.Client, force bool) error
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context, includeInactive bool) ([]*domain.Client, error)
	Search(ctx context.Context, query string, includeInactive bool) ([]*domain.Client, error)
	FindDuplicates(ctx context.Context, c domain.Client) ([]DuplicateCandidate, error)
	Update(ctx context.Context, c *domain.Client) error
	Deactivate(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	// Delete removes the client and, by cascade, its whole history.
	Delete(ctx context.Context, id string) error
}

// DuplicateCandidate is an existing client scored against a new one.
type DuplicateCandidate struct {
	Client     *domain.Client
	Score      float64
	EmailMatch bool
}

type (
	IngestRequest = app.IngestRequest
	IngestResult  = app.IngestResult
)

type IngestService interface {
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)
	// RegenerateFollowup reruns only the followup half for a stored record.
	RegenerateFollowup(ctx context.Context, interactionID string) (*domain.FollowupContent, error)
	// Reextract reruns extraction on a stored record's raw text and stores
	// the result as a new version that supersedes it.
	Reextract(ctx context.Context, interactionID string) (*IngestResult, error)
}

type StatusService interface {
	GetStatus(ctx context.Context, req app.StatusRequest) (*app.StatusResponse, error)
}

type HistoryService interface {
	Timeline(ctx context.Context, clientID string) ([]domain.TimelineEntry, error)
	Stats(ctx context.Context, clientID string) (domain.ClientStats, error)
	Interaction(ctx context.Context, id string) (*domain.InteractionRecord, error)
	Followup(ctx context.Context, interactionID string) (*domain.FollowupContent, error)
	Due(ctx context.Context, through time.Time) ([]domain.InteractionRecord, error)
}

// ImportService bulk loads clients and already-structured interaction
// history. A file is imported completely or not at all.
type ImportService interface {
	Import(ctx context.Context, file *importer.ImportFile) (*ImportResult, error)
}

type ImportResult struct {
	Clients      int
	Interactions int
	// Refs maps each client's ref (or name) to the ID it was stored under.
	Refs map[string]string
}
