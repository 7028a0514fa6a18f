package cli

import (
	"context"
	"fmt"

	"github.com/alexanderramin/dealnotes/internal/app"
	"github.com/alexanderramin/dealnotes/internal/cli/formatter"
	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/spf13/cobra"
)

func newFollowupCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "followup",
		Short: "Show or redraft the followup for an interaction",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show ID",
			Short: "Show the drafted email and message",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := resolveInteractionID(cmd.Context(), a, args[0])
				if err != nil {
					return err
				}
				fc, err := a.History.Followup(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("no followup for %s (draft one with: dealnotes followup regenerate %s): %w", id, id, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatFollowup(fc))
				return nil
			},
		},
		&cobra.Command{
			Use:   "regenerate ID",
			Short: "Draft the followup again, replacing any earlier draft",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := resolveInteractionID(cmd.Context(), a, args[0])
				if err != nil {
					return err
				}
				fc, err := withSpinner(cmd, a, "Drafting followups...", func(ctx context.Context) (*domain.FollowupContent, error) {
					return a.Ingest.RegenerateFollowup(ctx, id)
				})
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatFollowup(fc))
				return nil
			},
		},
	)

	return cmd
}

func newReextractCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reextract ID",
		Short: "Re-run extraction on a saved interaction, storing a new version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := resolveInteractionID(cmd.Context(), a, args[0])
			if err != nil {
				return err
			}
			res, err := withSpinner(cmd, a, "Re-reading the conversation...", func(ctx context.Context) (*app.IngestResult, error) {
				return a.Ingest.Reextract(ctx, id)
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatIngestResult(res))
			return nil
		},
	}
}
