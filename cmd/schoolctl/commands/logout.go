package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and drop stored credentials",
	RunE:  runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	container, err := loadContainer()
	if err != nil {
		return err
	}

	snap := container.Snapshot()
	if snap.IsAuthenticated() {
		// Best effort: local credentials are dropped even if the server
		// is unreachable.
		if err := newClient().WithToken(snap.Token).Logout(snap.User.Role); err != nil {
			fmt.Println("Warning: server logout failed:", err)
		}
	}

	if err := container.Logout(); err != nil {
		return fmt.Errorf("failed to clear credentials: %w", err)
	}

	fmt.Println("Logged out")
	return nil
}
