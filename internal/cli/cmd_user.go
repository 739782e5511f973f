package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeanscarter/clinidesk/internal/auth"
	"github.com/jeanscarter/clinidesk/internal/model"
	"github.com/jeanscarter/clinidesk/internal/validate"
)

func newUserCommand(out io.Writer, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}
	cmd.AddCommand(newUserAddCommand(out, configPath))
	cmd.AddCommand(newUserUnlockCommand(out, configPath))
	return cmd
}

func newUserAddCommand(out io.Writer, configPath *string) *cobra.Command {
	var (
		username string
		fullName string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a staff account, reading the password from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			fmt.Fprint(out, "Password: ")
			reader := bufio.NewReader(cmd.InOrStdin())
			password, err := reader.ReadString('\n')
			if err != nil && password == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(password, "\r\n")

			hasher, err := auth.NewHasher(auth.DefaultParams())
			if err != nil {
				return err
			}
			hash, salt, err := hasher.Generate(password)
			if err != nil {
				return err
			}

			account := &model.Account{
				Username:     username,
				PasswordHash: hash,
				Salt:         salt,
				Role:         model.Role(role),
				FullName:     fullName,
				Active:       true,
			}
			if violations := validate.Account(account); len(violations) > 0 {
				return model.NewValidation("users", violations)
			}
			if err := rt.store.Accounts.Save(cmd.Context(), account); err != nil {
				return err
			}

			rt.logger.Info("account created", "username", username, "role", role)
			fmt.Fprintf(out, "created account %s (id=%d)\n", account.Username, account.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login name (unique)")
	cmd.Flags().StringVar(&fullName, "full-name", "", "Display name")
	cmd.Flags().StringVar(&role, "role", string(model.RoleReceptionist), "Role: Admin, Doctor, or Receptionist")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("full-name")
	return cmd
}

func newUserUnlockCommand(out io.Writer, configPath *string) *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "unlock",
		Short: "Clear an account's failed-attempt counter and lockout",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			hasher, err := auth.NewHasher(auth.DefaultParams())
			if err != nil {
				return err
			}
			authenticator := auth.NewAuthenticator(rt.store.Accounts, hasher, nil, rt.logger)
			if err := authenticator.Unlock(cmd.Context(), username); err != nil {
				return err
			}

			fmt.Fprintf(out, "unlocked account %s\n", username)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Login name")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
