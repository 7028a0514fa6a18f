package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/dealnotes/internal/db"
	"github.com/alexanderramin/dealnotes/internal/importer"
	"github.com/alexanderramin/dealnotes/internal/repository"
)

type importService struct {
	clients  repository.ClientRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
	now      func() time.Time
}

func NewImportService(clients repository.ClientRepo, uow db.UnitOfWork, observers ...UseCaseObserver) ImportService {
	return &importService{
		clients:  clients,
		uow:      uow,
		observer: useCaseObserverOrNoop(observers),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Second) },
	}
}

func (s *importService) Import(ctx context.Context, file *importer.ImportFile) (result *ImportResult, err error) {
	uc := startUseCase(s.observer, s.now, "import")
	defer func() {
		if result != nil {
			uc.set("clients", result.Clients)
			uc.set("interactions", result.Interactions)
		}
		uc.end(ctx, err)
	}()

	if file == nil {
		return nil, fmt.Errorf("%w: empty import", ErrInvalidInput)
	}
	var problems []string
	for _, e := range importer.ValidateImportFile(file) {
		problems = append(problems, e.Error())
	}
	if len(problems) == 0 {
		problems, err = s.existingEmails(ctx, file)
		if err != nil {
			return nil, err
		}
	}
	if len(problems) > 0 {
		return nil, &ImportError{Problems: problems}
	}

	batch, err := importer.Convert(file, s.now())
	if err != nil {
		return nil, fmt.Errorf("converting import file: %w", err)
	}
	for _, c := range batch.Clients {
		normalizeClient(c)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		clients := repository.NewSQLiteClientRepo(tx)
		interactions := repository.NewSQLiteInteractionRepo(tx)
		for _, c := range batch.Clients {
			if err := clients.Create(ctx, c); err != nil {
				return fmt.Errorf("creating client %q: %w", c.Name, err)
			}
		}
		for _, rec := range batch.Interactions {
			if err := interactions.Create(ctx, rec); err != nil {
				return fmt.Errorf("creating interaction %q: %w", rec.Summary, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &ImportResult{
		Clients:      len(batch.Clients),
		Interactions: len(batch.Interactions),
		Refs:         batch.Refs,
	}, nil
}

// existingEmails reports file clients whose email is already on record.
func (s *importService) existingEmails(ctx context.Context, file *importer.ImportFile) ([]string, error) {
	var problems []string
	for i, c := range file.Clients {
		if c.Email == "" {
			continue
		}
		existing, err := s.clients.FindByEmail(ctx, c.Email)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			continue
		case err != nil:
			return nil, fmt.Errorf("checking existing clients: %w", err)
		}
		problems = append(problems, fmt.Sprintf("clients[%d].email: %q already belongs to %s (%s)", i, c.Email, existing.DisplayName(), existing.ID))
	}
	return problems, nil
}
