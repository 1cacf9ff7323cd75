package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func usersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage local accounts",
	}
	cmd.AddCommand(userAddCmd(app))
	cmd.AddCommand(userListCmd(app))
	cmd.AddCommand(userLoginCmd(app))
	cmd.AddCommand(userPasswdCmd(app))
	cmd.AddCommand(userUnlockCmd(app))
	return cmd
}

// readPassword prompts on the terminal without echoing; when stdin is not a
// terminal it falls back to the --password flag value.
func readPassword(prompt, flagValue string) (string, error) {
	if flagValue != "" || !term.IsTerminal(int(os.Stdin.Fd())) {
		return flagValue, nil
	}
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(raw), nil
}

func userAddCmd(app *App) *cobra.Command {
	var password, fullName, fullNameAr, role string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword("Password: ", password)
			if err != nil {
				return err
			}
			res := app.Users.Create(cmdContext(), args[0], pw, fullName, fullNameAr, role)
			if err := resultErr(res); err != nil {
				return err
			}
			printOutcome(res)
			fmt.Printf("  ID:   %s\n", res.Data.UserID)
			fmt.Printf("  Role: %s\n", res.Data.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	cmd.Flags().StringVar(&fullName, "name", "", "full name (Latin)")
	cmd.Flags().StringVar(&fullNameAr, "name-ar", "", "full name (Arabic)")
	cmd.Flags().StringVar(&role, "role", "", "role: admin, data_manager, office_clerk, field_supervisor, analyst")
	return cmd
}

func userListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Users.List(cmdContext())
			if err := resultErr(res); err != nil {
				return err
			}
			for _, u := range res.Data {
				state := "active"
				if u.IsLocked {
					state = "locked"
				} else if !u.IsActive {
					state = "disabled"
				}
				fmt.Printf("%-16s %-14s %-8s %s\n", u.Username, u.Role, state, u.UserID)
			}
			return nil
		},
	}
}

func userLoginCmd(app *App) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Verify credentials against the local account store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword("Password: ", password)
			if err != nil {
				return err
			}
			res := app.Users.Login(cmdContext(), args[0], pw)
			if err := resultErr(res); err != nil {
				return err
			}
			printOutcome(res)
			fmt.Printf("  Role: %s\n", res.Data.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password (prompted when omitted)")
	return cmd
}

func userPasswdCmd(app *App) *cobra.Command {
	var current, next string

	cmd := &cobra.Command{
		Use:   "passwd <user-id>",
		Short: "Change an account password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			currentPw, err := readPassword("Current password: ", current)
			if err != nil {
				return err
			}
			nextPw, err := readPassword("New password: ", next)
			if err != nil {
				return err
			}
			res := app.Users.ChangePassword(cmdContext(), args[0], currentPw, nextPw)
			if err := resultErr(res); err != nil {
				return err
			}
			printOutcome(res)
			return nil
		},
	}

	cmd.Flags().StringVar(&current, "current", "", "current password (prompted when omitted)")
	cmd.Flags().StringVar(&next, "new", "", "new password (prompted when omitted)")
	return cmd
}

func userUnlockCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <user-id>",
		Short: "Unlock an account locked by failed login attempts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Users.Unlock(cmdContext(), args[0])
			if err := resultErr(res); err != nil {
				return err
			}
			printOutcome(res)
			return nil
		},
	}
}
