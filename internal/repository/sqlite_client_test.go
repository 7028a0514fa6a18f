package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/dealnotes/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientRepo_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(db)
	ctx := context.Background()

	c := testutil.NewTestClient("Dana Whitfield", testutil.WithCompany("Acme"), testutil.WithEmail("dana@acme.io"))
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dana Whitfield", got.Name)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, "dana@acme.io", got.Email)
	assert.True(t, got.Active)
	assert.True(t, c.CreatedAt.Equal(got.CreatedAt))
}

func TestClientRepo_GetByID_NotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(db)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientRepo_FindByEmail_CaseInsensitive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(db)
	ctx := context.Background()

	c := testutil.NewTestClient("Dana", testutil.WithEmail("Dana@Acme.io"))
	require.NoError(t, repo.Create(ctx, c))
	require.NoError(t, repo.Create(ctx, testutil.NewTestClient("No Email")))

	got, err := repo.FindByEmail(ctx, "dana@acme.IO")
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)

	_, err = repo.FindByEmail(ctx, "")
	assert.ErrorIs(t, err, ErrNotFound, "empty email never matches clients without one")
}

func TestClientRepo_ListHidesInactive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestClient("bravo")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestClient("Alpha")))
	require.NoError(t, repo.Create(ctx, testutil.NewTestClient("Charlie", testutil.WithInactive())))

	active, err := repo.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Alpha", active[0].Name, "ordering ignores case")
	assert.Equal(t, "bravo", active[1].Name)

	all, err := repo.List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestClientRepo_Search(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestClient("Dana", testutil.WithCompany("Acme Corp"))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestClient("Eli", testutil.WithEmail("eli@acme.io"))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestClient("Fran", testutil.WithCompany("Globex"))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestClient("Gus", testutil.WithCompany("ACME labs"), testutil.WithInactive())))

	got, err := repo.Search(ctx, "acme", false)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Dana", got[0].Name)
	assert.Equal(t, "Eli", got[1].Name)

	got, err = repo.Search(ctx, "acme", true)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = repo.Search(ctx, "100%", true)
	require.NoError(t, err)
	assert.Empty(t, got, "wildcards in the query are literal")
}

func TestClientRepo_UpdateAndSetActive(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(db)
	ctx := context.Background()

	c := testutil.NewTestClient("Dana")
	require.NoError(t, repo.Create(ctx, c))

	c.Company = "Initech"
	c.UpdatedAt = c.UpdatedAt.Add(time.Hour)
	require.NoError(t, repo.Update(ctx, c))

	require.NoError(t, repo.SetActive(ctx, c.ID, false))
	got, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Initech", got.Company)
	assert.False(t, got.Active)

	require.NoError(t, repo.SetActive(ctx, c.ID, true))
	got, err = repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, got.Active)
}

func TestClientRepo_MutationsOnMissingClient(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteClientRepo(db)
	ctx := context.Background()

	assert.ErrorIs(t, repo.Update(ctx, testutil.NewTestClient("Ghost")), ErrNotFound)
	assert.ErrorIs(t, repo.SetActive(ctx, "missing", false), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "missing"), ErrNotFound)
}
