package service

import (
	"context"
	"errors"
	"testing"

	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/importer"
	"github.com/alexanderramin/dealnotes/internal/repository"
	"github.com/alexanderramin/dealnotes/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importFixture() *importer.ImportFile {
	followup := "2025-01-10"
	return &importer.ImportFile{Clients: []importer.ClientImport{
		{
			Ref:     "dana",
			Name:    " Dana Whitfield ",
			Company: "Acme",
			Email:   "dana@acme.test",
			Interactions: []importer.InteractionImport{{
				Date:          "2025-01-03",
				RawText:       "Client loved the demo, wants pricing next week",
				Summary:       "Loved the demo, wants pricing.",
				DealStage:     "negotiation",
				Objections:    []string{"budget"},
				InterestLevel: "high",
				NextAction:    "send pricing",
				FollowupDate:  &followup,
			}},
		},
		{Name: "Evan Cole", Company: "Globex"},
	}}
}

func TestImportService_StoresClientsAndHistory(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := repository.NewSQLiteClientRepo(database)
	interactions := repository.NewSQLiteInteractionRepo(database)
	svc := NewImportService(clients, testutil.NewTestUoW(database))
	ctx := context.Background()

	res, err := svc.Import(ctx, importFixture())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Clients)
	assert.Equal(t, 1, res.Interactions)

	dana, err := clients.GetByID(ctx, res.Refs["dana"])
	require.NoError(t, err)
	assert.Equal(t, "Dana Whitfield", dana.Name, "names are trimmed")
	assert.True(t, dana.Active)

	timeline, err := interactions.Timeline(ctx, dana.ID)
	require.NoError(t, err)
	require.Len(t, timeline, 1)
	assert.Equal(t, domain.StageNegotiation, timeline[0].DealStage)
	assert.False(t, timeline[0].HasFollowup)

	_, err = clients.GetByID(ctx, res.Refs["Evan Cole"])
	assert.NoError(t, err)
}

func TestImportService_ValidationErrorsListEveryProblem(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := repository.NewSQLiteClientRepo(database)
	svc := NewImportService(clients, testutil.NewTestUoW(database))
	file := importFixture()
	file.Clients[0].Interactions[0].DealStage = "euphoric"
	file.Clients[1].Name = ""

	_, err := svc.Import(context.Background(), file)

	assert.ErrorIs(t, err, ErrInvalidInput)
	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	assert.Len(t, importErr.Problems, 2)

	all, err := clients.List(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestImportService_RejectsEmailAlreadyOnRecord(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := repository.NewSQLiteClientRepo(database)
	existing := testutil.NewTestClient("Dana W", testutil.WithEmail("DANA@acme.test"))
	require.NoError(t, clients.Create(context.Background(), existing))
	svc := NewImportService(clients, testutil.NewTestUoW(database))

	_, err := svc.Import(context.Background(), importFixture())

	var importErr *ImportError
	require.ErrorAs(t, err, &importErr)
	require.Len(t, importErr.Problems, 1)
	assert.Contains(t, importErr.Problems[0], "already belongs to Dana W")
}

func TestImportService_RollsBackOnWriteFailure(t *testing.T) {
	database := testutil.NewTestDB(t)
	clients := repository.NewSQLiteClientRepo(database)
	boom := errors.New("injected interaction write failure")
	// Exec #1 and #2 create the clients, #3 the interaction.
	svc := NewImportService(clients, testutil.FailExecAt(database, 3, boom))

	_, err := svc.Import(context.Background(), importFixture())

	assert.ErrorIs(t, err, boom)
	all, err := clients.List(context.Background(), true)
	require.NoError(t, err)
	assert.Empty(t, all, "clients written before the failure are rolled back")
}

func TestImportService_ObservesUseCase(t *testing.T) {
	database := testutil.NewTestDB(t)
	obs := &recordingObserver{}
	svc := NewImportService(repository.NewSQLiteClientRepo(database), testutil.NewTestUoW(database), obs)

	_, err := svc.Import(context.Background(), importFixture())
	require.NoError(t, err)

	require.Len(t, obs.events, 1)
	assert.Equal(t, "import", obs.events[0].Name)
	assert.True(t, obs.events[0].Success)
	assert.Equal(t, 2, obs.events[0].Fields["clients"])
}

type recordingObserver struct {
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.events = append(o.events, e)
}
