package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/dealnotes/internal/app"
	"github.com/alexanderramin/dealnotes/internal/llm"
	"github.com/alexanderramin/dealnotes/internal/repository"
	"github.com/alexanderramin/dealnotes/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type probeLLM struct {
	scriptedLLM
	up bool
}

func (p *probeLLM) Available(context.Context) bool { return p.up }

func TestStatus_ReportsClientsAndDueFollowups(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	clients := repository.NewSQLiteClientRepo(database)
	interactions := repository.NewSQLiteInteractionRepo(database)

	active := testutil.NewTestClient("Dana")
	gone := testutil.NewTestClient("Evan", testutil.WithInactive())
	require.NoError(t, clients.Create(ctx, active))
	require.NoError(t, clients.Create(ctx, gone))

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	overdue := testutil.NewTestInteraction(active.ID, testutil.WithFollowupDate(now.AddDate(0, 0, -2)))
	soon := testutil.NewTestInteraction(active.ID, testutil.WithFollowupDate(now.AddDate(0, 0, 3)))
	later := testutil.NewTestInteraction(active.ID, testutil.WithFollowupDate(now.AddDate(0, 1, 0)))
	hidden := testutil.NewTestInteraction(gone.ID, testutil.WithFollowupDate(now))
	require.NoError(t, interactions.Create(ctx, overdue))
	require.NoError(t, interactions.Create(ctx, soon))
	require.NoError(t, interactions.Create(ctx, later))
	require.NoError(t, interactions.Create(ctx, hidden))

	svc := NewStatusService(clients, interactions, &probeLLM{up: true}, llm.DefaultConfig())
	req := app.NewStatusRequest()
	req.Now = &now

	resp, err := svc.GetStatus(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, 1, resp.ActiveClients)
	assert.Equal(t, 1, resp.InactiveClients)
	assert.True(t, resp.Model.Enabled)
	assert.True(t, resp.Model.Available)
	assert.Equal(t, "llama3.2", resp.Model.Model)
	assert.Empty(t, resp.Warnings)

	require.Len(t, resp.DueFollowups, 2)
	assert.Equal(t, overdue.ID, resp.DueFollowups[0].InteractionID)
	assert.True(t, resp.DueFollowups[0].Overdue)
	assert.Equal(t, "Dana", resp.DueFollowups[0].ClientName)
	assert.Equal(t, soon.ID, resp.DueFollowups[1].InteractionID)
	assert.False(t, resp.DueFollowups[1].Overdue)
}

func TestStatus_ModelUnreachableWarns(t *testing.T) {
	database := testutil.NewTestDB(t)
	svc := NewStatusService(
		repository.NewSQLiteClientRepo(database),
		repository.NewSQLiteInteractionRepo(database),
		&probeLLM{up: false},
		llm.DefaultConfig(),
	)

	resp, err := svc.GetStatus(context.Background(), app.NewStatusRequest())
	require.NoError(t, err)

	assert.True(t, resp.Model.Enabled)
	assert.False(t, resp.Model.Available)
	require.Len(t, resp.Warnings, 1)
	assert.Contains(t, resp.Warnings[0], "not reachable")
	assert.Empty(t, resp.DueFollowups)
}

func TestStatus_InferenceDisabled(t *testing.T) {
	database := testutil.NewTestDB(t)
	cfg := llm.DefaultConfig()
	cfg.Enabled = false
	svc := NewStatusService(
		repository.NewSQLiteClientRepo(database),
		repository.NewSQLiteInteractionRepo(database),
		nil,
		cfg,
	)

	resp, err := svc.GetStatus(context.Background(), app.NewStatusRequest())
	require.NoError(t, err)

	assert.False(t, resp.Model.Enabled)
	assert.False(t, resp.Model.Available)
	assert.Contains(t, resp.Warnings[0], "disabled")
}
