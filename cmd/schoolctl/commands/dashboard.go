package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mann-lohchab/Portal/internal/cli/guard"
	"github.com/Mann-lohchab/Portal/internal/model"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the dashboard for the signed-in role",
	RunE:  runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	container, err := loadContainer()
	if err != nil {
		return err
	}
	snap := container.Snapshot()
	if !snap.IsAuthenticated() {
		return fmt.Errorf("not logged in - run 'schoolctl login' first")
	}

	role := snap.User.Role
	if guard.Decide(snap, role) != guard.Render {
		return fmt.Errorf("run 'schoolctl login --role %s' to sign in", role)
	}

	me, err := newClient().WithToken(snap.Token).Me()
	if err != nil {
		return handleAuthError(container, err)
	}

	fmt.Printf("Welcome %s %s\n\n", me.FirstName, me.LastName)
	switch role {
	case model.RoleAdmin:
		fmt.Println("Admin dashboard")
		fmt.Println("  schoolctl students list    manage student accounts")
		fmt.Println("  schoolctl teachers list    manage teacher accounts")
	case model.RoleTeacher:
		fmt.Println("Teacher dashboard")
		fmt.Println("  schoolctl whoami           show your account")
	case model.RoleStudent:
		fmt.Println("Student dashboard")
		fmt.Println("  schoolctl whoami           show your account")
	}
	return nil
}
