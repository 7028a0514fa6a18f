package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/dealnotes/internal/cli/formatter"
	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/service"
	"github.com/spf13/cobra"
)

func newClientCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "client",
		Aliases: []string{"clients"},
		Short:   "Manage clients",
	}

	cmd.AddCommand(
		newClientAddCmd(app),
		newClientListCmd(app),
		newClientShowCmd(app),
		newClientSearchCmd(app),
		newClientUpdateCmd(app),
		newClientRemoveCmd(app),
		newClientRestoreCmd(app),
	)

	return cmd
}

func newClientAddCmd(app *App) *cobra.Command {
	var name, company, email string
	var force bool

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a client",
		Long:  "Add a client. Names close to an existing client, or a shared email, are refused unless --force is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if name == "" {
				if !app.interactive() {
					return fmt.Errorf("--name is required")
				}
				if err := clientForm(&name, &company, &email).Run(); err != nil {
					return err
				}
			}

			c := &domain.Client{Name: name, Company: company, Email: email}
			err := app.Clients.Create(cmd.Context(), c, force)
			var dup *service.DuplicateClientError
			if errors.As(err, &dup) {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatDuplicates(name, duplicateMatches(dup.Candidates)))
				return fmt.Errorf("client not added")
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added client %s %s\n", formatter.Bold(c.DisplayName()), formatter.Dim(c.ID))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Client name")
	cmd.Flags().StringVar(&company, "company", "", "Company")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().BoolVar(&force, "force", false, "Add even when a similar client exists")

	return cmd
}

func duplicateMatches(candidates []service.DuplicateCandidate) []formatter.DuplicateMatch {
	out := make([]formatter.DuplicateMatch, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, formatter.DuplicateMatch{Client: c.Client, Score: c.Score, EmailMatch: c.EmailMatch})
	}
	return out
}

func newClientListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := app.Clients.List(cmd.Context(), all)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatClientList(clients))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive clients")

	return cmd
}

func newClientShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show a client with headline stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveClientID(ctx, app, args[0])
			if err != nil {
				return err
			}
			c, err := app.Clients.GetByID(ctx, id)
			if err != nil {
				return err
			}
			stats, err := app.History.Stats(ctx, id)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatClient(c, &stats))
			return nil
		},
	}
}

func newClientSearchCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Find clients by name, company or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clients, err := app.Clients.Search(cmd.Context(), args[0], all)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatClientList(clients))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive clients")

	return cmd
}

func newClientUpdateCmd(app *App) *cobra.Command {
	var name, company, email string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Change a client's name, company or email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveClientID(ctx, app, args[0])
			if err != nil {
				return err
			}
			c, err := app.Clients.GetByID(ctx, id)
			if err != nil {
				return err
			}

			changed := false
			if cmd.Flags().Changed("name") {
				c.Name, changed = name, true
			}
			if cmd.Flags().Changed("company") {
				c.Company, changed = company, true
			}
			if cmd.Flags().Changed("email") {
				c.Email, changed = email, true
			}
			if !changed {
				return fmt.Errorf("nothing to update: pass --name, --company or --email")
			}

			if err := app.Clients.Update(ctx, c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated client %s\n", formatter.Bold(c.DisplayName()))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&company, "company", "", "New company (empty clears it)")
	cmd.Flags().StringVar(&email, "email", "", "New email (empty clears it)")

	return cmd
}

func newClientRemoveCmd(app *App) *cobra.Command {
	var hard, yes bool

	cmd := &cobra.Command{
		Use:   "remove ID",
		Short: "Deactivate a client, or delete it with its history using --hard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveClientID(ctx, app, args[0])
			if err != nil {
				return err
			}
			c, err := app.Clients.GetByID(ctx, id)
			if err != nil {
				return err
			}

			if !hard {
				if err := app.Clients.Deactivate(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %s. Restore with: dealnotes client restore %s\n", formatter.Bold(c.Name), id)
				return nil
			}

			if !yes {
				if !app.interactive() {
					return fmt.Errorf("deleting %s removes its whole history; pass --yes to confirm", c.Name)
				}
				var ok bool
				if err := confirmForm(fmt.Sprintf("Delete %s and all of their interactions?", c.Name), &ok).Run(); err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			if err := app.Clients.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s and their history\n", formatter.Bold(c.Name))
			return nil
		},
	}

	cmd.Flags().BoolVar(&hard, "hard", false, "Delete the client and every interaction permanently")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation for --hard")

	return cmd
}

func newClientRestoreCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "restore ID",
		Short: "Reactivate a deactivated client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := resolveClientID(ctx, app, args[0])
			if err != nil {
				return err
			}
			if err := app.Clients.Restore(ctx, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored client %s\n", id)
			return nil
		},
	}
}
