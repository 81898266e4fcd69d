package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/rx3lixir/cepic-app/internal/store"
	"github.com/spf13/cobra"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Check credentials and print the account profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(opts)
			if err != nil {
				return err
			}
			if err := s.login(cmd.Context(), opts); err != nil {
				return err
			}

			u := s.auth.State().User
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s %s <%s> (%s)\n", u.FirstName, u.LastName, u.Email, u.Role)
			return s.auth.Logout(cmd.Context())
		},
	}
}

func newRegisterCmd(opts *rootOptions) *cobra.Command {
	var firstName, lastName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account, asking for the emailed code when two-factor is enabled",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := newSession(opts)
			if err != nil {
				return err
			}

			flow := store.NewRegisterFlow(s.api.Auth, s.auth, s.nav, s.log)
			for name, value := range map[string]string{
				"firstName":       firstName,
				"lastName":        lastName,
				"email":           opts.email,
				"password":        opts.password,
				"confirmPassword": opts.password,
			} {
				if err := flow.SetField(name, value); err != nil {
					return err
				}
			}

			if err := flow.Submit(ctx); err != nil {
				return describe(err, flow.State().Errors)
			}

			out := cmd.OutOrStdout()
			in := bufio.NewReader(cmd.InOrStdin())
			for flow.State().Phase == store.PhaseAwaitingCode {
				fmt.Fprintln(out, flow.State().Notice)
				fmt.Fprint(out, "Verification code (empty line to resend): ")

				line, err := in.ReadString('\n')
				if err != nil && line == "" {
					flow.Cancel()
					return errors.New("registration cancelled")
				}
				line = strings.TrimSpace(line)

				if line == "" {
					if err := flow.Resend(ctx); err != nil {
						return describe(err, nil)
					}
					continue
				}

				flow.SetCode(line)
				if err := flow.Verify(ctx); err != nil {
					// Неверный код: остаемся на вводе
					fmt.Fprintln(out, describe(err, flow.State().Errors))
				}
			}

			u := s.auth.State().User
			if u == nil {
				return errors.New("registration finished without a session")
			}
			fmt.Fprintf(out, "Welcome, %s! Account %s created.\n", u.FirstName, u.Email)
			return nil
		},
	}

	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	return cmd
}
