package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE:  runWhoami,
}

func runWhoami(cmd *cobra.Command, args []string) error {
	container, err := loadContainer()
	if err != nil {
		return err
	}

	snap := container.Snapshot()
	if !snap.IsAuthenticated() {
		return errors.New("not logged in - run 'schoolctl login' first")
	}

	// Ask the server rather than trusting the mirror: the session may have
	// been ended elsewhere.
	me, err := newClient().WithToken(snap.Token).Me()
	if err != nil {
		return handleAuthError(container, err)
	}

	fmt.Printf("%s %s (%s, id %s)\n", me.FirstName, me.LastName, me.Role, me.ID)
	fmt.Println("Email:", me.Email)
	return nil
}
