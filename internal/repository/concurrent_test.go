package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/alexanderramin/dealnotes/internal/db"
	"github.com/alexanderramin/dealnotes/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentAccess_ReadDuringWrite verifies that history reads stay
// consistent while interactions are being written.
func TestConcurrentAccess_ReadDuringWrite(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	ctx := context.Background()

	clientRepo := NewSQLiteClientRepo(database)
	interactionRepo := NewSQLiteInteractionRepo(database)

	client := testutil.NewTestClient("ReadWrite")
	require.NoError(t, clientRepo.Create(ctx, client))

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			rec := testutil.NewTestInteraction(client.ID, testutil.WithSummary(fmt.Sprintf("Call %d", i)))
			if err := interactionRepo.Create(ctx, rec); err != nil {
				t.Errorf("writer: create interaction %d: %v", i, err)
				return
			}
		}
	}()

	for r := 0; r < 5; r++ {
		wg.Add(1)
		go func(reader int) {
			defer wg.Done()
			for i := 0; i < 10; i++ {
				records, err := interactionRepo.ListByClient(ctx, client.ID)
				if err != nil {
					t.Errorf("reader %d: list interactions: %v", reader, err)
					return
				}
				for _, rec := range records {
					if rec.ID == "" || rec.Objections == nil {
						t.Errorf("reader %d: got half-read record %+v", reader, rec)
					}
				}
			}
		}(r)
	}

	wg.Wait()

	records, err := interactionRepo.ListByClient(ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, records, 20)
}

// TestConcurrentAccess_FollowupUpsertKeepsOneRow races regenerations of the
// same interaction's followup. Writers queue on the busy timeout instead of
// failing, and exactly one row survives.
func TestConcurrentAccess_FollowupUpsertKeepsOneRow(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	ctx := context.Background()
	uow := db.NewSQLiteUnitOfWork(database)

	client := testutil.NewTestClient("Race Co")
	require.NoError(t, NewSQLiteClientRepo(database).Create(ctx, client))
	rec := testutil.NewTestInteraction(client.ID)
	require.NoError(t, NewSQLiteInteractionRepo(database).Create(ctx, rec))

	const workers = 20
	var wg sync.WaitGroup
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
				f := testutil.NewTestFollowup(rec.ID)
				f.MessageText = fmt.Sprintf("Variant %d", i)
				return NewSQLiteFollowupRepo(tx).Upsert(ctx, f)
			})
			if err != nil {
				errCh <- err
			}
		}(i)
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM followups WHERE interaction_id = ?`, rec.ID).Scan(&n))
	assert.Equal(t, 1, n)
}

// TestConcurrentAccess_ClientWritersDoNotLock creates clients from many
// goroutines at once; none may see "database is locked".
func TestConcurrentAccess_ClientWritersDoNotLock(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	ctx := context.Background()
	uow := db.NewSQLiteUnitOfWork(database)

	const writers = 12
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
				repo := NewSQLiteClientRepo(tx)
				if _, err := repo.List(ctx, false); err != nil {
					return err
				}
				return repo.Create(ctx, testutil.NewTestClient(fmt.Sprintf("Writer %d", i)))
			})
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "writer %d", i)
	}
	all, err := NewSQLiteClientRepo(database).List(ctx, true)
	require.NoError(t, err)
	assert.Len(t, all, writers)
}

// TestConcurrentAccess_OneSuccessorPerInteraction races corrective versions
// of the same record. Exactly one is saved; the rest are told the record is
// already superseded.
func TestConcurrentAccess_OneSuccessorPerInteraction(t *testing.T) {
	database := testutil.NewFileTestDB(t)
	ctx := context.Background()
	uow := db.NewSQLiteUnitOfWork(database)

	client := testutil.NewTestClient("Versions Inc")
	require.NoError(t, NewSQLiteClientRepo(database).Create(ctx, client))
	original := testutil.NewTestInteraction(client.ID)
	require.NoError(t, NewSQLiteInteractionRepo(database).Create(ctx, original))

	const writers = 8
	start := make(chan struct{})
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			next := original.NextVersion()
			next.ID = fmt.Sprintf("v2-%d", i)
			<-start
			errs[i] = uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
				return NewSQLiteInteractionRepo(tx).Create(ctx, &next)
			})
		}(i)
	}
	close(start)
	wg.Wait()

	saved := 0
	for i, err := range errs {
		switch {
		case err == nil:
			saved++
		case errors.Is(err, ErrAlreadySuperseded):
		default:
			t.Errorf("writer %d: unexpected error: %v", i, err)
		}
	}
	assert.Equal(t, 1, saved)

	entries, err := NewSQLiteInteractionRepo(database).Timeline(ctx, client.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "one conversation has one current version")
}
