// Package commands implements the schoolctl CLI.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Mann-lohchab/Portal/internal/cli/api"
	"github.com/Mann-lohchab/Portal/internal/cli/state"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "schoolctl",
	Short: "School portal client",
	Long: `schoolctl is the command-line client for the school portal.

Sign in with a role-specific account, inspect your own session, and, as an
admin, manage student and teacher accounts.

Use "schoolctl [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	defaultServer := os.Getenv("SCHOOLCTL_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "Portal server URL")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(dashboardCmd)
	rootCmd.AddCommand(newPrincipalCmd("students", "student accounts"))
	rootCmd.AddCommand(newPrincipalCmd("teachers", "teacher accounts"))
}

func newClient() *api.Client {
	return api.New(serverURL)
}

func loadContainer() (*state.Container, error) {
	store, err := state.NewFileStore()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize auth state: %w", err)
	}
	return state.NewContainer(store), nil
}

// handleAuthError drops stale local credentials when the server no longer
// accepts our session, so the next command starts from a clean sign-in.
func handleAuthError(container *state.Container, err error) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.IsAuthError() {
		_ = container.Logout()
		return errors.New("session expired, run 'schoolctl login' to sign in again")
	}
	return err
}
