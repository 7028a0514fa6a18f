package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/alexanderramin/dealnotes/internal/db"
	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/intelligence"
	"github.com/alexanderramin/dealnotes/internal/repository"
	"github.com/google/uuid"
)

// IngestDeps wires the pipeline. Metrics may be nil.
type IngestDeps struct {
	Clients      repository.ClientRepo
	Interactions repository.InteractionRepo
	Followups    repository.FollowupRepo
	UoW          db.UnitOfWork
	Extractor    intelligence.ExtractionService
	Generator    intelligence.FollowupService
	Config       intelligence.PipelineConfig
	Metrics      *PipelineMetrics
}

type ingestService struct {
	deps      IngestDeps
	assembler *intelligence.ContextAssembler
	observer  UseCaseObserver
	now       func() time.Time
}

func NewIngestService(deps IngestDeps, observers ...UseCaseObserver) IngestService {
	return &ingestService{
		deps:      deps,
		assembler: intelligence.NewContextAssembler(deps.Interactions),
		observer:  useCaseObserverOrNoop(observers),
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

func (s *ingestService) Ingest(ctx context.Context, req IngestRequest) (result *IngestResult, err error) {
	uc := startUseCase(s.observer, s.now, "ingest")
	uc.set("client_id", req.ClientID)
	defer func() {
		if result != nil {
			uc.set("partial", result.Partial())
		}
		s.finish(ctx, uc, err)
	}()

	text := strings.TrimSpace(req.RawText)
	if utf8.RuneCountInString(text) < domain.MinRawTextLen {
		return nil, fmt.Errorf("%w: conversation text must be at least %d characters", ErrInvalidInput, domain.MinRawTextLen)
	}
	client, err := s.activeClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	// Stored instants have whole-second precision.
	ts := req.Timestamp.Truncate(time.Second)
	if ts.IsZero() {
		ts = s.now()
	}

	history, err := s.history(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	uc.set("history_items", len(history.Items))

	rec, err := s.deps.Extractor.Extract(ctx, domain.ConversationInput{
		ClientID:  client.ID,
		RawText:   text,
		Timestamp: ts,
	}, history)
	s.deps.Metrics.record(StageExtract, err)
	if err != nil {
		return nil, err
	}
	rec.ID = uuid.New().String()
	rec.Version = 1
	rec.SupersedesID = ""
	rec.CreatedAt = s.now()

	if err = s.saveInteraction(ctx, rec); err != nil {
		return nil, err
	}
	uc.set("interaction_id", rec.ID)

	result = &IngestResult{Interaction: rec, History: history}
	result.Followup, result.FollowupErr = s.followup(ctx, *client, *rec, history)
	return result, nil
}

func (s *ingestService) RegenerateFollowup(ctx context.Context, interactionID string) (fc *domain.FollowupContent, err error) {
	uc := startUseCase(s.observer, s.now, "regenerate-followup")
	uc.set("interaction_id", interactionID)
	defer func() { s.finish(ctx, uc, err) }()

	rec, err := s.deps.Interactions.GetByID(ctx, interactionID)
	if err != nil {
		return nil, err
	}
	client, err := s.activeClient(ctx, rec.ClientID)
	if err != nil {
		return nil, err
	}
	if err = s.requireCurrent(ctx, rec); err != nil {
		return nil, err
	}
	history, err := s.history(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	return s.followup(ctx, *client, *rec, history)
}

func (s *ingestService) Reextract(ctx context.Context, interactionID string) (result *IngestResult, err error) {
	uc := startUseCase(s.observer, s.now, "reextract")
	uc.set("supersedes_id", interactionID)
	defer func() { s.finish(ctx, uc, err) }()

	prev, err := s.deps.Interactions.GetByID(ctx, interactionID)
	if err != nil {
		return nil, err
	}
	client, err := s.activeClient(ctx, prev.ClientID)
	if err != nil {
		return nil, err
	}

	if err = s.requireCurrent(ctx, prev); err != nil {
		return nil, err
	}

	history, err := s.history(ctx, client.ID)
	if err != nil {
		return nil, err
	}
	history = withoutRecord(history, prev.ID)

	extracted, err := s.deps.Extractor.Extract(ctx, domain.ConversationInput{
		ClientID:  client.ID,
		RawText:   prev.RawText,
		Timestamp: prev.Date,
	}, history)
	s.deps.Metrics.record(StageExtract, err)
	if err != nil {
		return nil, err
	}

	next := prev.NextVersion()
	next.ID = uuid.New().String()
	next.Summary = extracted.Summary
	next.DealStage = extracted.DealStage
	next.Objections = extracted.Objections
	next.InterestLevel = extracted.InterestLevel
	next.NextAction = extracted.NextAction
	next.FollowupDate = extracted.FollowupDate
	next.CreatedAt = s.now()
	if err = s.saveInteraction(ctx, &next); err != nil {
		return nil, err
	}
	uc.set("interaction_id", next.ID)
	uc.set("version", next.Version)

	result = &IngestResult{Interaction: &next, History: history}
	result.Followup, result.FollowupErr = s.followup(ctx, *client, next, history)
	return result, nil
}

func (s *ingestService) activeClient(ctx context.Context, clientID string) (*domain.Client, error) {
	if strings.TrimSpace(clientID) == "" {
		return nil, fmt.Errorf("%w: client id is required", ErrInvalidInput)
	}
	client, err := s.deps.Clients.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.Active {
		return nil, fmt.Errorf("%w: %s", ErrClientInactive, client.DisplayName())
	}
	return client, nil
}

// requireCurrent fails with ErrSuperseded when a newer version of rec exists.
func (s *ingestService) requireCurrent(ctx context.Context, rec *domain.InteractionRecord) error {
	all, err := s.deps.Interactions.ListByClient(ctx, rec.ClientID)
	if err != nil {
		return err
	}
	for _, r := range all {
		if r.SupersedesID == rec.ID {
			return fmt.Errorf("%w: %s is replaced by version %d (%s)", ErrSuperseded, rec.ID, r.Version, r.ID)
		}
	}
	return nil
}

func (s *ingestService) history(ctx context.Context, clientID string) (domain.ClientHistory, error) {
	return s.assembler.Assemble(ctx, clientID, s.deps.Config.ContextMaxItems, s.deps.Config.ContextMaxChars)
}

func (s *ingestService) saveInteraction(ctx context.Context, rec *domain.InteractionRecord) error {
	err := rec.CheckInvariants()
	if err == nil {
		err = s.deps.UoW.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
			return repository.NewSQLiteInteractionRepo(tx).Create(ctx, rec)
		})
	}
	s.deps.Metrics.record(StagePersist, err)
	if errors.Is(err, repository.ErrAlreadySuperseded) {
		return fmt.Errorf("%w: %s was re-extracted concurrently", ErrSuperseded, rec.SupersedesID)
	}
	if err != nil {
		return fmt.Errorf("saving interaction: %w", err)
	}
	return nil
}

// followup generates and stores the followup for rec. Errors are returned
// to the caller as a partial result, never as a pipeline failure.
func (s *ingestService) followup(ctx context.Context, client domain.Client, rec domain.InteractionRecord, history domain.ClientHistory) (*domain.FollowupContent, error) {
	fc, err := s.deps.Generator.Generate(ctx, client, rec, history)
	s.deps.Metrics.record(StageFollowup, err)
	if err != nil {
		return nil, err
	}
	fc.ID = uuid.New().String()
	fc.InteractionID = rec.ID
	fc.CreatedAt = s.now()
	if err := fc.CheckInvariants(); err != nil {
		return nil, err
	}
	err = s.deps.UoW.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteFollowupRepo(tx).Upsert(ctx, fc)
	})
	s.deps.Metrics.record(StagePersist, err)
	if err != nil {
		return nil, fmt.Errorf("saving followup: %w", err)
	}
	return fc, nil
}

// finish adds the extraction attempt count to failed runs before
// reporting.
func (s *ingestService) finish(ctx context.Context, uc *useCase, err error) {
	var extractErr *intelligence.ExtractionFailedError
	if errors.As(err, &extractErr) {
		uc.set("attempts", extractErr.Attempts)
	}
	uc.end(ctx, err)
}

func withoutRecord(h domain.ClientHistory, id string) domain.ClientHistory {
	items := make([]domain.InteractionRecord, 0, len(h.Items))
	for _, r := range h.Items {
		if r.ID != id {
			items = append(items, r)
		}
	}
	h.Items = items
	return h
}
