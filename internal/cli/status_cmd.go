package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/dealnotes/internal/app"
	"github.com/alexanderramin/dealnotes/internal/cli/formatter"
	"github.com/spf13/cobra"
)

var errModelUnreachable = errors.New("model server is not reachable")

func newStatusCmd(a *App) *cobra.Command {
	req := app.NewStatusRequest()
	var check bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Check the model server and list followups coming due",
		Long: `Reports whether the configured model server answers, how many clients are
on record, and which followups fall due in the next few days.

With --check the command exits non-zero when inference is enabled but the
model server cannot be reached, so it can gate scripts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.DueWithinDays < 0 {
				return fmt.Errorf("--days must not be negative")
			}
			resp, err := a.Status.GetStatus(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatStatus(resp))

			if check && resp.Model.Enabled && !resp.Model.Available {
				return fmt.Errorf("%w at %s", errModelUnreachable, resp.Model.Endpoint)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&req.DueWithinDays, "days", req.DueWithinDays, "Include followups due within this many days")
	cmd.Flags().BoolVar(&check, "check", false, "Fail when the model server is unreachable")

	return cmd
}
