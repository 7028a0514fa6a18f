package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/dealnotes/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowupRepo_UpsertReplacesContent(t *testing.T) {
	db := testutil.NewTestDB(t)
	ctx := context.Background()
	client := seedClient(t, NewSQLiteClientRepo(db))
	rec := testutil.NewTestInteraction(client.ID)
	require.NoError(t, NewSQLiteInteractionRepo(db).Create(ctx, rec))
	repo := NewSQLiteFollowupRepo(db)

	first := testutil.NewTestFollowup(rec.ID)
	require.NoError(t, repo.Upsert(ctx, first))

	second := testutil.NewTestFollowup(rec.ID)
	second.MessageText = "Quick nudge on the proposal."
	require.NoError(t, repo.Upsert(ctx, second))

	got, err := repo.GetByInteraction(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "Quick nudge on the proposal.", got.MessageText)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM followups`).Scan(&n))
	assert.Equal(t, 1, n, "exactly one followup per interaction")
}

func TestFollowupRepo_RequiresInteraction(t *testing.T) {
	db := testutil.NewTestDB(t)
	err := NewSQLiteFollowupRepo(db).Upsert(context.Background(), testutil.NewTestFollowup("ghost"))
	assert.Error(t, err)
}

func TestFollowupRepo_GetByInteraction_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	_, err := NewSQLiteFollowupRepo(db).GetByInteraction(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
