package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/alexanderramin/dealnotes/internal/db"
	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/intelligence"
	"github.com/alexanderramin/dealnotes/internal/llm"
	"github.com/alexanderramin/dealnotes/internal/repository"
	"github.com/alexanderramin/dealnotes/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// stubExtractor returns a copy of rec for every call, filled in from the input.
// When hold is set, each call announces itself on entered and waits for
// hold to close.
type stubExtractor struct {
	mu        sync.Mutex
	rec       domain.InteractionRecord
	err       error
	inputs    []domain.ConversationInput
	histories []domain.ClientHistory
	entered   chan struct{}
	hold      chan struct{}
}

func (s *stubExtractor) Extract(_ context.Context, in domain.ConversationInput, h domain.ClientHistory) (*domain.InteractionRecord, error) {
	if s.hold != nil {
		s.entered <- struct{}{}
		<-s.hold
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inputs = append(s.inputs, in)
	s.histories = append(s.histories, h)
	if s.err != nil {
		return nil, s.err
	}
	rec := s.rec
	rec.Objections = append([]string{}, s.rec.Objections...)
	rec.ClientID = in.ClientID
	rec.RawText = in.RawText
	rec.Date = in.Timestamp
	return &rec, nil
}

func (s *stubExtractor) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inputs)
}

type stubGenerator struct {
	mu        sync.Mutex
	err       error
	records   []domain.InteractionRecord
	histories []domain.ClientHistory
}

func (g *stubGenerator) Generate(_ context.Context, _ domain.Client, rec domain.InteractionRecord, h domain.ClientHistory) (*domain.FollowupContent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records = append(g.records, rec)
	g.histories = append(g.histories, h)
	if g.err != nil {
		return nil, g.err
	}
	return &domain.FollowupContent{
		InteractionID: rec.ID,
		EmailText:     "Hi,\n\nThanks for your time today. Pricing follows next week.\n\nBest,\nSam",
		MessageText:   "Thanks for today! Pricing lands next week.",
	}, nil
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}

type ingestFixture struct {
	db           *sql.DB
	svc          IngestService
	clients      *repository.SQLiteClientRepo
	interactions *repository.SQLiteInteractionRepo
	followups    *repository.SQLiteFollowupRepo
	extractor    *stubExtractor
	generator    *stubGenerator
	metrics      *PipelineMetrics
	registry     *prometheus.Registry
}

// newIngestFixture wires an IngestService over an in-memory database. uowFor,
// when given, replaces the default unit of work.
func newIngestFixture(t *testing.T, uowFor ...func(*sql.DB) db.UnitOfWork) *ingestFixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &ingestFixture{
		db:           database,
		clients:      repository.NewSQLiteClientRepo(database),
		interactions: repository.NewSQLiteInteractionRepo(database),
		followups:    repository.NewSQLiteFollowupRepo(database),
		extractor: &stubExtractor{rec: domain.InteractionRecord{
			Summary:       "Client loved the demo and wants pricing.",
			DealStage:     domain.StageNegotiation,
			Objections:    []string{"budget"},
			InterestLevel: domain.InterestHigh,
			NextAction:    "send pricing",
		}},
		generator: &stubGenerator{},
		registry:  prometheus.NewRegistry(),
	}
	f.metrics = NewPipelineMetrics(f.registry)

	u := testutil.NewTestUoW(database)
	if len(uowFor) > 0 {
		u = uowFor[0](database)
	}
	f.svc = NewIngestService(IngestDeps{
		Clients:      f.clients,
		Interactions: f.interactions,
		Followups:    f.followups,
		UoW:          u,
		Extractor:    f.extractor,
		Generator:    f.generator,
		Config:       intelligence.DefaultPipelineConfig(),
		Metrics:      f.metrics,
	})
	return f
}

func (f *ingestFixture) client(t *testing.T, opts ...testutil.ClientOption) *domain.Client {
	t.Helper()
	c := testutil.NewTestClient("", opts...)
	require.NoError(t, f.clients.Create(context.Background(), c))
	return c
}

func (f *ingestFixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

// scriptedLLM replays canned gateway responses in order; the last repeats.
type scriptedLLM struct {
	mu        sync.Mutex
	responses []string
	requests  []llm.GenerateRequest
}

func (s *scriptedLLM) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := min(len(s.requests), len(s.responses)-1)
	s.requests = append(s.requests, req)
	return &llm.GenerateResponse{Text: s.responses[i], Model: "llama3.2", Attempts: 1}, nil
}

func (s *scriptedLLM) Available(context.Context) bool { return true }
