package importer

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/google/uuid"
)

// Batch is a converted import file ready for persistence.
type Batch struct {
	Clients      []*domain.Client
	Interactions []*domain.InteractionRecord
	// Refs maps each client's ref (or name when no ref was given) to its new ID.
	Refs map[string]string
}

// Convert transforms a validated ImportFile into domain objects.
// Call ValidateImportFile first; Convert assumes the file is valid.
func Convert(file *ImportFile, now time.Time) (*Batch, error) {
	batch := &Batch{Refs: make(map[string]string, len(file.Clients))}

	for _, ci := range file.Clients {
		client := &domain.Client{
			ID:        uuid.New().String(),
			Name:      strings.TrimSpace(ci.Name),
			Company:   strings.TrimSpace(ci.Company),
			Email:     strings.TrimSpace(ci.Email),
			Active:    ci.active(),
			CreatedAt: now,
			UpdatedAt: now,
		}
		batch.Clients = append(batch.Clients, client)
		batch.Refs[ci.key()] = client.ID

		records := make([]*domain.InteractionRecord, 0, len(ci.Interactions))
		for _, in := range ci.Interactions {
			rec, err := convertInteraction(client.ID, in, now)
			if err != nil {
				return nil, fmt.Errorf("client %q: %w", client.Name, err)
			}
			records = append(records, rec)
		}
		sort.SliceStable(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
		batch.Interactions = append(batch.Interactions, records...)
	}
	return batch, nil
}

func convertInteraction(clientID string, in InteractionImport, now time.Time) (*domain.InteractionRecord, error) {
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, fmt.Errorf("parsing date: %w", err)
	}
	stage, _ := domain.ParseDealStage(in.DealStage)
	interest, _ := domain.ParseInterestLevel(in.InterestLevel)

	objections := make([]string, 0, len(in.Objections))
	for _, o := range in.Objections {
		if o = strings.TrimSpace(o); o != "" {
			objections = append(objections, o)
		}
	}

	var followup *time.Time
	if in.FollowupDate != nil && *in.FollowupDate != "" {
		t, err := time.Parse(dateLayout, *in.FollowupDate)
		if err != nil {
			return nil, fmt.Errorf("parsing followup_date: %w", err)
		}
		followup = &t
	}

	return &domain.InteractionRecord{
		ID:            uuid.New().String(),
		ClientID:      clientID,
		Date:          date,
		RawText:       strings.TrimSpace(in.RawText),
		Summary:       strings.TrimSpace(in.Summary),
		DealStage:     stage,
		Objections:    objections,
		InterestLevel: interest,
		NextAction:    strings.TrimSpace(in.NextAction),
		FollowupDate:  followup,
		Version:       1,
		CreatedAt:     now,
	}, nil
}
