package cli

import (
	"context"

	"github.com/alexanderramin/dealnotes/internal/app"
	"github.com/alexanderramin/dealnotes/internal/service"
	"github.com/spf13/cobra"
)

// App holds the use cases CLI commands run against.
type App struct {
	Clients service.ClientService
	History service.HistoryService
	Ingest  app.IngestUseCase
	Status  app.StatusUseCase
	Import  service.ImportService

	// Serve runs the HTTP API until ctx is cancelled. Nil disables "serve".
	Serve func(ctx context.Context, addr string) error
	// DefaultAddr is the listen address used when --addr is not given.
	DefaultAddr string

	// IsInteractive reports whether stdin is a terminal, enabling forms,
	// spinners and the history viewer.
	IsInteractive func() bool
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "dealnotes" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "dealnotes",
		Short:         "Turn sales conversation notes into CRM records and followups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newClientCmd(app),
		newIngestCmd(app),
		newFollowupCmd(app),
		newReextractCmd(app),
		newHistoryCmd(app),
		newImportCmd(app),
		newStatusCmd(app),
		newServeCmd(app),
	)

	return root
}
