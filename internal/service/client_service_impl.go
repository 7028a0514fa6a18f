package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/repository"
	"github.com/google/uuid"
)

// DuplicateThreshold is the score at or above which a client counts as a
// likely duplicate.
const DuplicateThreshold = 85.0

// Name and company similarity weights when both clients carry a company.
const (
	nameWeight    = 0.7
	companyWeight = 0.3
)

var nameMetric = &metrics.Levenshtein{
	CaseSensitive: false,
	InsertCost:    1,
	DeleteCost:    1,
	ReplaceCost:   1,
}

type clientService struct {
	clients  repository.ClientRepo
	observer UseCaseObserver
}

func NewClientService(clients repository.ClientRepo, observers ...UseCaseObserver) ClientService {
	return &clientService{clients: clients, observer: useCaseObserverOrNoop(observers)}
}

func (s *clientService) Create(ctx context.Context, c *domain.Client, force bool) (err error) {
	uc := startUseCase(s.observer, time.Now, "create-client")
	uc.set("force", force)
	defer func() { uc.end(ctx, err) }()

	normalizeClient(c)
	if err = c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if !force {
		var dups []DuplicateCandidate
		dups, err = s.FindDuplicates(ctx, *c)
		if err != nil {
			return err
		}
		uc.set("duplicates", len(dups))
		if len(dups) > 0 {
			err = &DuplicateClientError{Candidates: dups}
			return err
		}
	}

	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC().Truncate(time.Second)
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Active = true
	uc.set("client_id", c.ID)
	return s.clients.Create(ctx, c)
}

func (s *clientService) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	return s.clients.GetByID(ctx, id)
}

func (s *clientService) List(ctx context.Context, includeInactive bool) ([]*domain.Client, error) {
	return s.clients.List(ctx, includeInactive)
}

func (s *clientService) Search(ctx context.Context, query string, includeInactive bool) ([]*domain.Client, error) {
	if strings.TrimSpace(query) == "" {
		return s.clients.List(ctx, includeInactive)
	}
	return s.clients.Search(ctx, query, includeInactive)
}

// FindDuplicates scores c against every active client and returns those at
// or above DuplicateThreshold, best first. An exact email match scores 100.
func (s *clientService) FindDuplicates(ctx context.Context, c domain.Client) ([]DuplicateCandidate, error) {
	existing, err := s.clients.List(ctx, false)
	if err != nil {
		return nil, err
	}
	var out []DuplicateCandidate
	for _, e := range existing {
		if e.ID == c.ID {
			continue
		}
		score, emailMatch := duplicateScore(c, *e)
		if emailMatch || score >= DuplicateThreshold {
			out = append(out, DuplicateCandidate{Client: e, Score: score, EmailMatch: emailMatch})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (s *clientService) Update(ctx context.Context, c *domain.Client) error {
	normalizeClient(c)
	if err := c.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	c.UpdatedAt = time.Now().UTC().Truncate(time.Second)
	return s.clients.Update(ctx, c)
}

func (s *clientService) Deactivate(ctx context.Context, id string) error {
	return s.clients.SetActive(ctx, id, false)
}

func (s *clientService) Restore(ctx context.Context, id string) error {
	return s.clients.SetActive(ctx, id, true)
}

func (s *clientService) Delete(ctx context.Context, id string) error {
	return s.clients.Delete(ctx, id)
}

func normalizeClient(c *domain.Client) {
	c.Name = strings.TrimSpace(c.Name)
	c.Company = strings.TrimSpace(c.Company)
	c.Email = strings.TrimSpace(c.Email)
}

// duplicateScore rates how likely candidate and existing are the same client,
// on a 0-100 scale. When neither has a company the name alone decides.
func duplicateScore(candidate, existing domain.Client) (float64, bool) {
	if candidate.Email != "" && strings.EqualFold(candidate.Email, existing.Email) {
		return 100, true
	}
	name := similarity(candidate.Name, existing.Name)
	if candidate.Company == "" && existing.Company == "" {
		return name, false
	}
	return name*nameWeight + similarity(candidate.Company, existing.Company)*companyWeight, false
}

func similarity(a, b string) float64 {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == "" || b == "" {
		return 0
	}
	return strutil.Similarity(a, b, nameMetric) * 100
}
