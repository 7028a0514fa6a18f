package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/dealnotes/internal/cli/formatter"
	"github.com/alexanderramin/dealnotes/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Bulk load clients and past interactions from a JSON file",
		Long: `Loads clients, with any interaction history already recorded for them,
from a JSON file (use - for stdin). Imported interactions are stored as-is
without running extraction. The whole file is validated first and nothing
is stored unless every entry is valid.

Example file:

  {"clients": [{"ref": "dana", "name": "Dana Whitfield", "company": "Acme",
    "interactions": [{"date": "2025-01-03", "summary": "Demo went well",
      "deal_stage": "negotiation", "interest_level": "high",
      "objections": ["budget"], "next_action": "send pricing",
      "followup_date": "2025-01-10"}]}]}`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Import == nil {
				return errors.New("import is not available")
			}
			var (
				file *importer.ImportFile
				err  error
			)
			if args[0] == "-" {
				file, err = importer.ParseImportFile(cmd.InOrStdin())
			} else {
				file, err = importer.LoadImportFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("loading import file: %w", err)
			}

			res, err := app.Import.Import(cmd.Context(), file)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatImportResult(res.Clients, res.Interactions, res.Refs))
			return nil
		},
	}
}
