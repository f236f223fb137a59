package commands

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/Mann-lohchab/Portal/internal/model"
)

var (
	loginRole     string
	loginID       string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to the portal",
	Long: `Sign in to the portal with a role-specific account.

Examples:
  # Sign in as a student, prompted for credentials
  schoolctl login --role student

  # Sign in as an admin with the id on the command line
  schoolctl login --role admin --id A1`,
	RunE: runLogin,
}

func init() {
	loginCmd.Flags().StringVarP(&loginRole, "role", "r", "", "Account role (admin|teacher|student)")
	loginCmd.Flags().StringVarP(&loginID, "id", "u", "", "Account id")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password")
}

func runLogin(cmd *cobra.Command, args []string) error {
	roleName := loginRole
	if roleName == "" {
		selectPrompt := promptui.Select{
			Label: "Role",
			Items: []string{string(model.RoleStudent), string(model.RoleTeacher), string(model.RoleAdmin)},
		}
		_, selected, err := selectPrompt.Run()
		if err != nil {
			return promptError(err)
		}
		roleName = selected
	}
	role, ok := model.ParseRole(roleName)
	if !ok {
		return fmt.Errorf("unknown role %q (want admin, teacher, or student)", roleName)
	}

	externalID := loginID
	if externalID == "" {
		prompt := promptui.Prompt{
			Label: "ID",
			Validate: func(input string) error {
				if input == "" {
					return errors.New("id is required")
				}
				return nil
			},
		}
		value, err := prompt.Run()
		if err != nil {
			return promptError(err)
		}
		externalID = value
	}

	password := loginPassword
	if password == "" {
		prompt := promptui.Prompt{
			Label: "Password",
			Mask:  '*',
		}
		value, err := prompt.Run()
		if err != nil {
			return promptError(err)
		}
		password = value
	}

	container, err := loadContainer()
	if err != nil {
		return err
	}

	resp, err := newClient().Login(role, externalID, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := container.Login(resp.Token, resp.User); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	fmt.Println(resp.Message)
	return nil
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		return errors.New("aborted")
	}
	return err
}
