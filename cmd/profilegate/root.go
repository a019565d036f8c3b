package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/target/profilegate/config"
	"github.com/target/profilegate/internal/adapters/authroles"
	"github.com/target/profilegate/internal/bootstrap"
	apperrors "github.com/target/profilegate/internal/errors"
)

// Exit codes beyond the generic failure.
const (
	exitFailure      = 1
	exitUnauthorized = 3
	exitRejected     = 4
	exitNetwork      = 5
	exitConfig       = 6
)

type cli struct {
	logger *slog.Logger
	cfg    config.AppConfig
	out    io.Writer
	// newApp defaults to bootstrap.NewApp with the loaded config.
	newApp func(ctx context.Context) (*bootstrap.App, error)
}

func newRootCmd(c *cli) *cobra.Command {
	if c.newApp == nil {
		c.newApp = func(ctx context.Context) (*bootstrap.App, error) {
			return bootstrap.NewApp(ctx, bootstrap.AppOptions{Config: c.cfg, Logger: c.logger})
		}
	}

	root := &cobra.Command{
		Use:   "profilegate",
		Short: "Sign in and complete your profile",
		Long: `Sign in to the profile service and complete the profile your role requires.

The session is kept in a local cache, so later commands pick it up without
signing in again. Employees and retailers stay on the profile form until the
required fields are saved; every other role goes straight to the dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(c.out)

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newStatusCmd(c),
		newRefreshCmd(c),
		newSubmitCmd(c),
		newDocumentsCmd(c),
		newConfirmBankCmd(c),
	)
	return root
}

// withApp builds the app, restores the cached session and runs fn.
func (c *cli) withApp(ctx context.Context, fn func(app *bootstrap.App) error) (err error) {
	app, err := c.newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := app.Close(); cerr != nil {
			c.logger.WarnContext(ctx, "close app", "error", cerr)
		}
	}()

	if _, err := app.Sessions.Rehydrate(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	return fn(app)
}

func exitCode(err error) int {
	var unmapped *authroles.UnmappedRoleError
	switch {
	case errors.As(err, &unmapped):
		return exitConfig
	case apperrors.IsUnauthorized(err):
		return exitUnauthorized
	case apperrors.IsRejected(err):
		return exitRejected
	case apperrors.IsNetwork(err):
		return exitNetwork
	default:
		return exitFailure
	}
}
