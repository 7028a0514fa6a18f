package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() *InteractionRecord {
	return &InteractionRecord{
		ID:            "rec-1",
		ClientID:      "client-1",
		Date:          time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC),
		RawText:       "Client loved the demo",
		Summary:       "Demo went well",
		DealStage:     StageNegotiation,
		Objections:    []string{"budget"},
		InterestLevel: InterestHigh,
		NextAction:    "send pricing",
		Version:       1,
	}
}

func TestCheckInvariants_Valid(t *testing.T) {
	assert.NoError(t, validRecord().CheckInvariants())
}

func TestCheckInvariants_MissingClient(t *testing.T) {
	r := validRecord()
	r.ClientID = ""
	err := r.CheckInvariants()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client id")
}

func TestCheckInvariants_EnumOutsideSet(t *testing.T) {
	r := validRecord()
	r.DealStage = "won-ish"
	assert.Error(t, r.CheckInvariants())

	r = validRecord()
	r.InterestLevel = "lukewarm"
	assert.Error(t, r.CheckInvariants())
}

func TestCheckInvariants_NilObjections(t *testing.T) {
	r := validRecord()
	r.Objections = nil
	assert.Error(t, r.CheckInvariants())

	r.Objections = []string{}
	assert.NoError(t, r.CheckInvariants())
}

func TestNextVersion(t *testing.T) {
	r := validRecord()
	next := r.NextVersion()

	assert.Empty(t, next.ID)
	assert.Equal(t, 2, next.Version)
	assert.Equal(t, "rec-1", next.SupersedesID)
	assert.Equal(t, r.ClientID, next.ClientID)

	next.Objections[0] = "timing"
	assert.Equal(t, "budget", r.Objections[0], "objections must be copied, not shared")
}

func TestClientValidate(t *testing.T) {
	assert.NoError(t, (&Client{Name: "Ada", Email: "ada@example.com"}).Validate())
	assert.Error(t, (&Client{Name: "   "}).Validate())
	assert.Error(t, (&Client{Name: "Ada", Email: "not-an-email"}).Validate())
}

func TestClientDisplayName(t *testing.T) {
	assert.Equal(t, "Ada", (&Client{Name: "Ada"}).DisplayName())
	assert.Equal(t, "Ada (Acme)", (&Client{Name: "Ada", Company: "Acme"}).DisplayName())
}
