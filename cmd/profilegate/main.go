package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/target/profilegate/internal/bootstrap"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := bootstrap.InitLogger(os.Stderr, slog.LevelInfo)
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(ctx, "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}
	logger = bootstrap.InitLogger(os.Stderr, cfg.Observability.Level())

	root := newRootCmd(&cli{
		logger: logger,
		cfg:    cfg,
		out:    os.Stdout,
	})
	if err := root.ExecuteContext(ctx); err != nil {
		logger.ErrorContext(ctx, "command failed", "error", err)
		os.Exit(exitCode(err)) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}
