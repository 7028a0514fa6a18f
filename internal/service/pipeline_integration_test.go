package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/intelligence"
	"github.com/alexanderramin/dealnotes/internal/llm"
	"github.com/alexanderramin/dealnotes/internal/repository"
	"github.com/alexanderramin/dealnotes/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	pipelineRecordJSON = "```json\n" + `{"summary":"Client loved the demo and wants pricing.","deal_stage":"Negotiation","objections":["budget"],"interest_level":"High","next_action":"send pricing","followup_date":"2025-01-10"}` + "\n```"
	pipelineEmail      = "Hi Dana,\n\nThank you for joining the demo today. I will send pricing early next week and we can talk through the budget.\n\nBest regards,\nSam"
	pipelineMessage    = "Hi Dana! Great demo today. Pricing lands in your inbox next week."
)

// TestIngestPipeline_EndToEnd runs the real extraction and followup services
// against a scripted gateway and a real database.
func TestIngestPipeline_EndToEnd(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	gateway := &scriptedLLM{responses: []string{pipelineRecordJSON, pipelineEmail, pipelineMessage}}
	cfg := intelligence.DefaultPipelineConfig()

	clients := repository.NewSQLiteClientRepo(database)
	interactions := repository.NewSQLiteInteractionRepo(database)
	followups := repository.NewSQLiteFollowupRepo(database)
	svc := NewIngestService(IngestDeps{
		Clients:      clients,
		Interactions: interactions,
		Followups:    followups,
		UoW:          testutil.NewTestUoW(database),
		Extractor:    intelligence.NewExtractionService(gateway, cfg, nil),
		Generator:    intelligence.NewFollowupService(gateway, cfg, nil),
		Config:       cfg,
		Metrics:      NewPipelineMetrics(prometheus.NewRegistry()),
	})

	client := testutil.NewTestClient("Dana Whitfield", testutil.WithCompany("Acme"))
	require.NoError(t, clients.Create(ctx, client))
	prior := testutil.NewTestInteraction(client.ID,
		testutil.WithDate(time.Date(2024, 12, 12, 9, 0, 0, 0, time.UTC)),
		testutil.WithSummary("Intro call about the analytics add-on"),
		testutil.WithStage(domain.StageQualification))
	require.NoError(t, interactions.Create(ctx, prior))

	res, err := svc.Ingest(ctx, IngestRequest{
		ClientID:  client.ID,
		RawText:   "Client loved the demo, wants pricing next week, budget is a concern",
		Timestamp: time.Date(2025, 1, 3, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.False(t, res.Partial())

	rec, err := interactions.GetByID(ctx, res.Interaction.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageNegotiation, rec.DealStage)
	assert.Equal(t, []string{"budget"}, rec.Objections)
	assert.Equal(t, domain.InterestHigh, rec.InterestLevel)
	require.NotNil(t, rec.FollowupDate)
	assert.Equal(t, "2025-01-10", rec.FollowupDate.Format("2006-01-02"))

	fc, err := followups.GetByInteraction(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, pipelineEmail, fc.EmailText)
	assert.Equal(t, pipelineMessage, fc.MessageText)

	require.Len(t, gateway.requests, 3)
	assert.Equal(t, llm.TaskExtract, gateway.requests[0].Task)
	assert.Contains(t, gateway.requests[0].UserPrompt, "Intro call about the analytics add-on")
	assert.Equal(t, llm.TaskEmail, gateway.requests[1].Task)
	assert.Equal(t, llm.TaskMessage, gateway.requests[2].Task)
	assert.Equal(t, 1, strings.Count(gateway.requests[1].UserPrompt, "Client loved the demo and wants pricing."),
		"the new record is rendered once, not repeated as history")
}

func TestIngestPipeline_MalformedOutputSavesNothing(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	gateway := &scriptedLLM{responses: []string{"I'm sorry, I can't help with that."}}
	cfg := intelligence.DefaultPipelineConfig()

	clients := repository.NewSQLiteClientRepo(database)
	svc := NewIngestService(IngestDeps{
		Clients:      clients,
		Interactions: repository.NewSQLiteInteractionRepo(database),
		Followups:    repository.NewSQLiteFollowupRepo(database),
		UoW:          testutil.NewTestUoW(database),
		Extractor:    intelligence.NewExtractionService(gateway, cfg, nil),
		Generator:    intelligence.NewFollowupService(gateway, cfg, nil),
		Config:       cfg,
	})
	client := testutil.NewTestClient("Dana")
	require.NoError(t, clients.Create(ctx, client))

	_, err := svc.Ingest(ctx, IngestRequest{ClientID: client.ID, RawText: "Quick call, nothing decided yet."})

	var failed *intelligence.ExtractionFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, cfg.MaxRepairs+1, failed.Attempts)
	assert.Len(t, gateway.requests, cfg.MaxRepairs+1)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM interactions`).Scan(&n))
	assert.Equal(t, 0, n)
}
