package cli

import (
	"fmt"

	"github.com/alexanderramin/dealnotes/internal/cli/formatter"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *App) *cobra.Command {
	var clientArg string
	var browse bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a client's interaction timeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveClientID(ctx, app, clientArg)
			if err != nil {
				return err
			}
			c, err := app.Clients.GetByID(ctx, id)
			if err != nil {
				return err
			}
			entries, err := app.History.Timeline(ctx, id)
			if err != nil {
				return err
			}

			if browse && app.interactive() {
				viewer := newHistoryViewer(c.DisplayName(), formatter.FormatTimelineDetail(entries))
				_, err := tea.NewProgram(viewer, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTimeline(c, entries))
			return nil
		},
	}

	cmd.Flags().StringVarP(&clientArg, "client", "c", "", "Client ID or ID prefix")
	cmd.Flags().BoolVarP(&browse, "interactive", "i", false, "Browse the full timeline in a scrollable viewer")
	_ = cmd.MarkFlagRequired("client")

	return cmd
}
