package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sgdl/go-sgdl-client/internal/utils"
	"github.com/sgdl/go-sgdl-client/users"
)

func newLoginCommand(a *app) *cobra.Command {
	var rememberMe bool

	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Authenticate against the SGDL backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(a.cfg.GetAppName())
			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}
			if err := a.authSvc.Login(cmd.Context(), args[0], password, rememberMe); err != nil {
				return err
			}
			user := a.authSvc.CurrentUser()
			fmt.Printf("Logged in as %s (%s)\n", user.FullName(), user.Perfil)
			return nil
		},
	}
	cmd.Flags().BoolVar(&rememberMe, "remember-me", false, "request an extended refresh token lifetime")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.authSvc.Logout()
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.authSvc.IsAuthenticated() {
				return errors.New("not logged in")
			}
			if err := a.authSvc.FetchCurrentUser(cmd.Context()); err != nil {
				return err
			}
			user := a.authSvc.CurrentUser()
			fmt.Printf("%s\n", user.FullName())
			fmt.Printf("  username: %s\n", user.Username)
			fmt.Printf("  email:    %s\n", user.Email)
			fmt.Printf("  perfil:   %s\n", user.Perfil)
			if user.Secretaria != nil {
				fmt.Printf("  secretaria: %s\n", user.Secretaria.Nome)
			}
			return nil
		},
	}
}

func newPerfilCommand(a *app) *cobra.Command {
	var (
		email     string
		firstName string
		lastName  string
		telefone  string
	)

	cmd := &cobra.Command{
		Use:   "perfil",
		Short: "Update the logged-in user's profile",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			update := users.ProfileUpdate{}
			if cmd.Flags().Changed("email") {
				update.Email = utils.Ptr(email)
			}
			if cmd.Flags().Changed("first-name") {
				update.FirstName = utils.Ptr(firstName)
			}
			if cmd.Flags().Changed("last-name") {
				update.LastName = utils.Ptr(lastName)
			}
			if cmd.Flags().Changed("telefone") {
				update.Telefone = utils.Ptr(telefone)
			}
			user, err := a.authSvc.UpdateProfile(cmd.Context(), update)
			if err != nil {
				return err
			}
			fmt.Printf("Profile updated: %s <%s>\n", user.FullName(), user.Email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "new email address")
	cmd.Flags().StringVar(&firstName, "first-name", "", "new first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "new last name")
	cmd.Flags().StringVar(&telefone, "telefone", "", "new contact phone")
	return cmd
}

func newChangePasswordCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "change-password",
		Short: "Change the logged-in user's password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			oldPassword, err := promptPassword("Current password: ")
			if err != nil {
				return err
			}
			newPassword, err := promptPassword("New password: ")
			if err != nil {
				return err
			}
			if err := a.authSvc.ChangePassword(cmd.Context(), oldPassword, newPassword); err != nil {
				return err
			}
			fmt.Println("Password changed")
			return nil
		},
	}
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	if term.IsTerminal(int(syscall.Stdin)) {
		raw, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", errors.Wrap(err, "[promptPassword] term.ReadPassword")
		}
		return string(raw), nil
	}
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, "[promptPassword] read stdin")
	}
	return strings.TrimSpace(line), nil
}
