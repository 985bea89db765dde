package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"taskapp/internal/tokenfile"
	"taskapp/pkg/taskclient"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func newRegisterCommand(ctx *commandContext) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "register EMAIL",
		Short: "Create an account on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]

			if password == "" {
				first, err := promptPassword(cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}
				second, err := promptPassword(cmd.ErrOrStderr(), "Repeat password: ")
				if err != nil {
					return err
				}
				if first != second {
					return errors.New("passwords do not match")
				}
				password = first
			}

			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			err = ctx.withRetries(cmd.Context(), func(callCtx context.Context) error {
				_, registerErr := client.Register(callCtx, email, password)
				return registerErr
			})
			if err != nil {
				return ctx.decorate(err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "registered %s, log in with `taskcli login %s`\n", email, email)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password, prompted for when omitted")

	return cmd
}

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "login EMAIL",
		Short: "Log in and persist the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			email := args[0]

			if password == "" {
				entered, err := promptPassword(cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}
				password = entered
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.newClient()
			if err != nil {
				return err
			}

			var token string
			err = ctx.withRetries(cmd.Context(), func(callCtx context.Context) error {
				var loginErr error
				token, loginErr = client.Login(callCtx, email, password)
				return loginErr
			})
			if err != nil {
				if errors.Is(err, taskclient.ErrUnauthorized) {
					return errors.New("login failed: wrong email or password")
				}
				return ctx.decorate(err)
			}

			tokens, err := ctx.tokenStore()
			if err != nil {
				return err
			}
			state := tokenfile.State{
				Token:     token,
				Email:     email,
				ServerURL: cfg.ServerURL,
				SavedAt:   time.Now(),
			}
			if err := tokens.Save(state); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", email)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password, prompted for when omitted")

	return cmd
}

func newLogoutCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the persisted session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := ctx.tokenStore()
			if err != nil {
				return err
			}
			if err := tokens.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the configured server and session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			tokens, err := ctx.tokenStore()
			if err != nil {
				return err
			}
			state, err := tokens.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "server:  %s\n", cfg.ServerURL)
			if state.Empty() {
				fmt.Fprintln(out, "session: not logged in")
				return nil
			}
			fmt.Fprintf(out, "session: %s, logged in %s\n", state.Email, state.SavedAt.Format(time.RFC1123))
			return nil
		},
	}
}

func promptPassword(w io.Writer, prompt string) (string, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return "", err
	}
	entered, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(entered), nil
}
