package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/target/profilegate/internal/bootstrap"
	domainauth "github.com/target/profilegate/internal/domain/auth"
	"github.com/target/profilegate/internal/domain/gate"
	"github.com/target/profilegate/internal/ports"
	"github.com/target/profilegate/internal/service"
)

func newLoginCmd(c *cli) *cobra.Command {
	var (
		phone, password     string
		token, role, userID string
	)
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and resolve the profile gate",
		Long: `Sign in with a phone number and password, or install an existing token
with --token, --role and --user.`,
		Example: `  profilegate login --phone 9876543210 --password secret
  profilegate login --token eyJ... --role district --user 42`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(app *bootstrap.App) error {
				var (
					st  service.State
					err error
				)
				if token != "" {
					st, err = app.Sessions.Login(ctx, service.LoginInput{
						Token:   token,
						RawRole: domainauth.RawRole(role),
						UserID:  userID,
					})
				} else {
					st, err = app.Sessions.SignIn(ctx, ports.SignInInput{Phone: phone, Password: password})
				}
				if err != nil {
					return err
				}
				return c.printStatus(ctx, cmd, app, st)
			})
		},
	}
	cmd.Flags().StringVar(&phone, "phone", "", "Phone number to sign in with")
	cmd.Flags().StringVar(&password, "password", "", "Password to sign in with")
	cmd.Flags().StringVar(&token, "token", "", "Existing bearer token")
	cmd.Flags().StringVar(&role, "role", "", "Raw role for --token")
	cmd.Flags().StringVar(&userID, "user", "", "User id for --token")
	cmd.MarkFlagsRequiredTogether("phone", "password")
	cmd.MarkFlagsRequiredTogether("token", "role", "user")
	cmd.MarkFlagsMutuallyExclusive("phone", "token")
	cmd.MarkFlagsOneRequired("phone", "token")
	return cmd
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the session and its cached entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(app *bootstrap.App) error {
				if err := app.Sessions.Logout(ctx); err != nil {
					return err
				}
				return printState(cmd.OutOrStdout(), app.Sessions.State(), nil)
			})
		},
	}
}

func newStatusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current mode",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(app *bootstrap.App) error {
				return c.printStatus(ctx, cmd, app, app.Sessions.State())
			})
		},
	}
}

func newRefreshCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-check profile completeness against the service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return c.withApp(ctx, func(app *bootstrap.App) error {
				st, err := app.Sessions.Refresh(ctx)
				if err != nil {
					return err
				}
				return c.printStatus(ctx, cmd, app, st)
			})
		},
	}
}

func (c *cli) printStatus(ctx context.Context, cmd *cobra.Command, app *bootstrap.App, st service.State) error {
	var missing []string
	if st.Mode.Kind == gate.KindProfileIncomplete {
		form, err := app.Profiles.LoadForm(ctx, nil)
		if err != nil {
			return err
		}
		if missing, err = form.Missing(); err != nil {
			c.logger.WarnContext(ctx, "list missing fields", "error", err)
		}
	}
	return printState(cmd.OutOrStdout(), st, missing)
}
