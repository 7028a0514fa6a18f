package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/alexanderramin/dealnotes/internal/app"
	"github.com/alexanderramin/dealnotes/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newIngestCmd(a *App) *cobra.Command {
	var clientArg, text, file, at string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Extract a CRM record from conversation notes and draft followups",
		Long: `Runs conversation notes through extraction and followup drafting.

Notes come from --text, --file (use - for stdin) or, on a terminal, an
editor form. The record is saved before followups are drafted, so a
followup failure leaves the record in place; retry it with
"dealnotes followup regenerate ID".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			clientID, err := resolveClientID(ctx, a, clientArg)
			if err != nil {
				return err
			}

			raw, err := conversationText(cmd, a, clientID, text, file)
			if err != nil {
				return err
			}

			req := app.IngestRequest{ClientID: clientID, RawText: raw}
			if at != "" {
				ts, err := parseTimestamp(at)
				if err != nil {
					return err
				}
				req.Timestamp = ts
			}

			res, err := withSpinner(cmd, a, "Reading the conversation...", func(ctx context.Context) (*app.IngestResult, error) {
				return a.Ingest.Ingest(ctx, req)
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatIngestResult(res))
			return nil
		},
	}

	cmd.Flags().StringVarP(&clientArg, "client", "c", "", "Client ID or ID prefix")
	cmd.Flags().StringVarP(&text, "text", "t", "", "Conversation notes")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read notes from a file, or - for stdin")
	cmd.Flags().StringVar(&at, "at", "", "When the conversation happened (YYYY-MM-DD or RFC 3339, default now)")
	_ = cmd.MarkFlagRequired("client")
	cmd.MarkFlagsMutuallyExclusive("text", "file")

	return cmd
}

func conversationText(cmd *cobra.Command, a *App, clientID, text, file string) (string, error) {
	switch {
	case text != "":
		return text, nil
	case file == "-":
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(b), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading notes: %w", err)
		}
		return string(b), nil
	}

	if !a.interactive() {
		return "", fmt.Errorf("no notes given: pass --text, --file, or --file - to read stdin")
	}
	c, err := a.Clients.GetByID(cmd.Context(), clientID)
	if err != nil {
		return "", err
	}
	var notes string
	if err := conversationForm(c.DisplayName(), &notes).Run(); err != nil {
		return "", err
	}
	return notes, nil
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: use YYYY-MM-DD or RFC 3339", s)
}

// withSpinner runs fn, animating a spinner on stderr when attached to a
// terminal.
func withSpinner[T any](cmd *cobra.Command, a *App, message string, fn func(context.Context) (T, error)) (T, error) {
	if a.interactive() {
		stop := formatter.StartSpinner(cmd.ErrOrStderr(), message)
		defer stop()
	}
	return fn(cmd.Context())
}
