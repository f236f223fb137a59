package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Mann-lohchab/Portal/internal/cli/api"
	"github.com/Mann-lohchab/Portal/internal/cli/guard"
	"github.com/Mann-lohchab/Portal/internal/cli/state"
	"github.com/Mann-lohchab/Portal/internal/model"
)

// newPrincipalCmd builds the admin-only account management commands for one
// role collection ("students" or "teachers").
func newPrincipalCmd(collection, short string) *cobra.Command {
	role := model.RoleStudent
	if collection == "teachers" {
		role = model.RoleTeacher
	}

	cmd := &cobra.Command{
		Use:   collection,
		Short: "Manage " + short + " (admin only)",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List " + short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(func(container *state.Container, client *api.Client) error {
				summaries, err := client.ListPrincipals(role)
				if err != nil {
					return handleAuthError(container, err)
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tEMAIL")
				for _, s := range summaries {
					fmt.Fprintf(w, "%s\t%s %s\t%s\n", s.ID, s.FirstName, s.LastName, s.Email)
				}
				return w.Flush()
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(func(container *state.Container, client *api.Client) error {
				s, err := client.GetPrincipal(role, args[0])
				if err != nil {
					return handleAuthError(container, err)
				}
				fmt.Printf("%s %s (id %s)\nEmail: %s\n", s.FirstName, s.LastName, s.ID, s.Email)
				return nil
			})
		},
	})

	create := &cobra.Command{
		Use:   "create <id>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			firstName, _ := cmd.Flags().GetString("first-name")
			lastName, _ := cmd.Flags().GetString("last-name")
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			return withAdmin(func(container *state.Container, client *api.Client) error {
				if password == "" {
					prompt := promptui.Prompt{Label: "Password", Mask: '*'}
					value, err := prompt.Run()
					if err != nil {
						return promptError(err)
					}
					password = value
				}
				s, err := client.CreatePrincipal(role, api.CreatePrincipalRequest{
					ID:        args[0],
					FirstName: firstName,
					LastName:  lastName,
					Email:     email,
					Password:  password,
				})
				if err != nil {
					return handleAuthError(container, err)
				}
				fmt.Printf("Created %s %s (id %s)\n", s.FirstName, s.LastName, s.ID)
				return nil
			})
		},
	}
	create.Flags().String("first-name", "", "First name")
	create.Flags().String("last-name", "", "Last name")
	create.Flags().String("email", "", "Email address")
	create.Flags().String("password", "", "Initial password (prompted if omitted)")
	_ = create.MarkFlagRequired("first-name")
	_ = create.MarkFlagRequired("email")
	cmd.AddCommand(create)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withAdmin(func(container *state.Container, client *api.Client) error {
				if err := client.DeletePrincipal(role, args[0]); err != nil {
					return handleAuthError(container, err)
				}
				fmt.Println("Deleted", args[0])
				return nil
			})
		},
	})

	return cmd
}

// withAdmin runs fn with an authenticated admin client, or explains how to
// become one.
func withAdmin(fn func(*state.Container, *api.Client) error) error {
	container, err := loadContainer()
	if err != nil {
		return err
	}
	snap := container.Snapshot()
	if guard.Decide(snap, model.RoleAdmin) != guard.Render {
		return fmt.Errorf("admin access required - run 'schoolctl login --role admin'")
	}
	return fn(container, newClient().WithToken(snap.Token))
}
