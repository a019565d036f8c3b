package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/target/profilegate/config"
	"github.com/target/profilegate/internal/adapters/authroles"
	"github.com/target/profilegate/internal/adapters/devauth"
	"github.com/target/profilegate/internal/adapters/profileapi"
	domainauth "github.com/target/profilegate/internal/domain/auth"
	"github.com/target/profilegate/internal/multipart"
	"github.com/target/profilegate/internal/observability/statsd"
	"github.com/target/profilegate/internal/ports"
	"github.com/target/profilegate/internal/service"
)

// AppOptions groups the inputs for NewApp.
type AppOptions struct {
	Config config.AppConfig
	Logger *slog.Logger
	// Cache overrides the configured session cache. The caller keeps
	// ownership of it.
	Cache ports.SessionCache
	// API overrides the remote client built from Config.API.
	API ports.ProfileAPI
}

// App holds the wired services for one process.
type App struct {
	Config   config.AppConfig
	Logger   *slog.Logger
	Sessions *service.SessionController
	Profiles *service.ProfileService
	Metrics  *statsd.Client

	closers []io.Closer
}

// NewApp builds every dependency described by opts.Config.
func NewApp(ctx context.Context, opts AppOptions) (*App, error) {
	cfg := opts.Config
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	app := &App{Config: cfg, Logger: logger}

	metricsClient, err := statsd.NewClient(ctx, statsd.Config{
		Enabled: cfg.Observability.Metrics.IsEnabled(),
		Address: cfg.Observability.Metrics.StatsdAddress,
		Prefix:  cfg.Observability.Metrics.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.WarnContext(ctx, "statsd disabled", "error", err)
		metricsClient, _ = statsd.NewClient(ctx, statsd.Config{Logger: logger})
	}
	app.Metrics = metricsClient
	app.closers = append(app.closers, metricsClient)

	cache := opts.Cache
	if cache == nil {
		c, closer, cacheErr := OpenCache(ctx, cfg, logger)
		if cacheErr != nil {
			return nil, errors.Join(fmt.Errorf("open session cache: %w", cacheErr), app.Close())
		}
		cache = c
		app.closers = append(app.closers, closer)
	}

	api, err := buildAPI(opts, logger)
	if err != nil {
		return nil, errors.Join(err, app.Close())
	}

	sessions, err := service.NewSessionController(service.SessionControllerOptions{
		Cache:       cache,
		API:         api,
		Roles:       authroles.NewStaticRoleMapper(),
		Logger:      logger,
		Metrics:     metricsClient,
		TokenExpiry: profileapi.TokenExpiry,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create session controller: %w", err), app.Close())
	}

	loader := multipart.NewLoader(multipart.LoaderOptions{
		Concurrency: cfg.Upload.MaxConcurrency,
		Logger:      logger,
	})
	profiles, err := service.NewProfileService(service.ProfileServiceOptions{
		API:                 api,
		Sessions:            sessions,
		Loader:              loader,
		DocumentConcurrency: cfg.Upload.MaxConcurrency,
		Logger:              logger,
		Metrics:             metricsClient,
	})
	if err != nil {
		return nil, errors.Join(fmt.Errorf("create profile service: %w", err), app.Close())
	}

	app.Sessions = sessions
	app.Profiles = profiles
	return app, nil
}

//nolint:ireturn // mock mode decorates the remote client.
func buildAPI(opts AppOptions, logger *slog.Logger) (ports.ProfileAPI, error) {
	cfg := opts.Config
	api := opts.API
	if api == nil {
		client, err := profileapi.NewClient(profileapi.Config{
			BaseURL:         cfg.API.BaseURL,
			Timeout:         cfg.API.Timeout,
			SignInPath:      cfg.API.SignInPath,
			ProfilePath:     cfg.API.ProfilePath,
			DocumentPath:    cfg.API.DocumentPath,
			BankConfirmPath: cfg.API.BankConfirmPath,
			SubmitMethod:    cfg.API.SubmitMethod,
			ProfileExtract:  cfg.API.ProfileExtract,
			Logger:          logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create profile api client: %w", err)
		}
		api = client
	}

	if cfg.Auth.Mode != config.AuthModeMock {
		return api, nil
	}
	logger.Warn("mock sign-in enabled", "user_id", cfg.Auth.DevAuth.UserID, "role", cfg.Auth.DevAuth.RawRole)
	prov, err := devauth.NewProvider(api, devauth.Config{
		UserID:          cfg.Auth.DevAuth.UserID,
		RawRole:         domainauth.RawRole(cfg.Auth.DevAuth.RawRole),
		SessionDuration: cfg.Auth.DevAuth.SessionDuration,
	})
	if err != nil {
		return nil, fmt.Errorf("create dev sign-in: %w", err)
	}
	return prov, nil
}

// DocumentTypes returns the configured document types for the signed-in role.
func (a *App) DocumentTypes() []string {
	return a.Config.API.DocumentsFor(string(a.Sessions.Session().Role))
}

// Close releases the cache and metrics connections in reverse order.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
