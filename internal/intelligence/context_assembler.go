package intelligence

import (
	"context"
	"fmt"

	"github.com/alexanderramin/dealnotes/internal/domain"
)

// InteractionLister reads a client's interactions ordered by date ascending.
type InteractionLister interface {
	ListByClient(ctx context.Context, clientID string) ([]domain.InteractionRecord, error)
}

// ContextAssembler builds the bounded history used as generation context.
// It only reads.
type ContextAssembler struct {
	lister InteractionLister
}

// NewContextAssembler creates a ContextAssembler reading through lister.
func NewContextAssembler(lister InteractionLister) *ContextAssembler {
	return &ContextAssembler{lister: lister}
}

// Assemble returns at most maxItems of the client's most recent current
// interactions, oldest first, dropping further old items until the rendered
// history fits in maxChars. Non-positive bounds are not applied. Records
// replaced by a corrective re-run are skipped.
func (a *ContextAssembler) Assemble(ctx context.Context, clientID string, maxItems, maxChars int) (domain.ClientHistory, error) {
	h := domain.ClientHistory{ClientID: clientID, Items: []domain.InteractionRecord{}}

	all, err := a.lister.ListByClient(ctx, clientID)
	if err != nil {
		return h, fmt.Errorf("assemble context for %s: %w", clientID, err)
	}

	current := CurrentVersions(all)
	items := current
	if maxItems > 0 && len(items) > maxItems {
		items = items[len(items)-maxItems:]
	}
	if maxChars > 0 {
		for len(items) > 0 && len(RenderHistory(domain.ClientHistory{Items: items})) > maxChars {
			items = items[1:]
		}
	}

	h.Items = append(h.Items, items...)
	h.Truncated = len(current) - len(items)
	return h, nil
}

// CurrentVersions filters out records that a later version supersedes,
// keeping input order.
func CurrentVersions(records []domain.InteractionRecord) []domain.InteractionRecord {
	superseded := make(map[string]bool)
	for _, r := range records {
		if r.SupersedesID != "" {
			superseded[r.SupersedesID] = true
		}
	}
	out := make([]domain.InteractionRecord, 0, len(records))
	for _, r := range records {
		if !superseded[r.ID] {
			out = append(out, r)
		}
	}
	return out
}
