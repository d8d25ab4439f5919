package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	hyprarrange "github.com/ln64-git/hyprarrange/internal"
	"github.com/ln64-git/hyprarrange/src/cli"
	"github.com/ln64-git/hyprarrange/src/config"
	"github.com/ln64-git/hyprarrange/src/utility"
)

func main() {
	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = config.Default()
	}

	logger := utility.NewLoggerWithDir(cfg.LogMode, cfg.LogDir, utility.ParseLogLevel(string(cfg.LogLevel)))
	defer logger.Close()

	if cfgErr != nil {
		logger.Warn("Failed to load config: %v, using defaults", cfgErr)
	}
	logger.Debug("Config: %s", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := hyprarrange.NewApp(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to start: %v", err)
		os.Exit(1)
	}
	defer app.Close()

	if err := cli.NewCLI(app, logger).CreateCommands().ExecuteContext(ctx); err != nil {
		logger.Error("Error: %v", err)
		app.Close()
		logger.Close()
		os.Exit(1)
	}
}
