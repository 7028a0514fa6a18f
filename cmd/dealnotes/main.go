package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/dealnotes/internal/api"
	"github.com/alexanderramin/dealnotes/internal/cli"
	"github.com/alexanderramin/dealnotes/internal/config"
	"github.com/alexanderramin/dealnotes/internal/db"
	"github.com/alexanderramin/dealnotes/internal/intelligence"
	"github.com/alexanderramin/dealnotes/internal/llm"
	"github.com/alexanderramin/dealnotes/internal/repository"
	"github.com/alexanderramin/dealnotes/internal/service"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.Options{
		ConfigFile: os.Getenv(config.EnvPrefix + "_CONFIG"),
		EnvFile:    os.Getenv(config.EnvPrefix + "_ENV_FILE"),
	})
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	clientRepo := repository.NewSQLiteClientRepo(database)
	interactionRepo := repository.NewSQLiteInteractionRepo(database)
	followupRepo := repository.NewSQLiteFollowupRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Inference stays wired when disabled so the client and history
	// commands work; pipeline calls fail fast with ErrInferenceDisabled.
	var model llm.LLMClient = llm.DisabledClient{}
	if cfg.LLM.Enabled {
		observers := llm.MultiObserver{llm.NewPrometheusObserver(reg)}
		if cfg.LLM.LogCalls {
			observers = append(observers, llm.NewLogObserver(logger))
		}
		model = llm.NewOllamaClient(cfg.LLM, observers)
	}

	observer := service.NewLogUseCaseObserver(logger)
	clients := service.NewClientService(clientRepo, observer)
	history := service.NewHistoryService(clientRepo, interactionRepo, followupRepo)
	ingest := service.NewIngestService(service.IngestDeps{
		Clients:      clientRepo,
		Interactions: interactionRepo,
		Followups:    followupRepo,
		UoW:          uow,
		Extractor:    intelligence.NewExtractionService(model, cfg.Pipeline, logger),
		Generator:    intelligence.NewFollowupService(model, cfg.Pipeline, logger),
		Config:       cfg.Pipeline,
		Metrics:      service.NewPipelineMetrics(reg),
	}, observer)
	status := service.NewStatusService(clientRepo, interactionRepo, model, cfg.LLM)
	imports := service.NewImportService(clientRepo, uow, observer)

	app := &cli.App{
		Clients:     clients,
		History:     history,
		Ingest:      ingest,
		Status:      status,
		Import:      imports,
		DefaultAddr: cfg.HTTPAddr,
		Serve: func(ctx context.Context, addr string) error {
			srv := api.NewServer(api.Deps{
				Clients:  clients,
				History:  history,
				Ingest:   ingest,
				Status:   status,
				Import:   imports,
				Gatherer: reg,
				Logger:   logger,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	// Forms and spinners only make sense on a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}
