package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/ephemeris-bridge/bridge"
	"github.com/wippyai/ephemeris-bridge/config"
	"github.com/wippyai/ephemeris-bridge/engine"
	"github.com/wippyai/ephemeris-bridge/logging"
	"github.com/wippyai/ephemeris-bridge/metrics"
	"github.com/wippyai/ephemeris-bridge/provision"
)

// load reads the configuration and builds the logger it describes.
// --verbose forces debug level.
func (o *RootOptions) load() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, nil, err
	}

	level := cfg.Logging.Level
	if o.Verbose {
		level = "debug"
	}
	logger, err := logging.NewLogger(cfg.Logging.Env, level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	engine.SetLogger(logger)
	return cfg, logger, nil
}

// openBridge is the composition root: loader, provisioner and bridge.
func openBridge(ctx context.Context, cfg config.Config, logger *zap.Logger, m *metrics.Collectors) (*bridge.Bridge, error) {
	loader, err := engine.NewLoader(cfg.Engine.Backend, engine.LoaderConfig{
		ModulePath:       cfg.Engine.Module,
		MemoryLimitPages: cfg.Engine.MemoryLimitPages,
	})
	if err != nil {
		return nil, fmt.Errorf("engine backend: %w", err)
	}

	var assets provision.Provisioner = provision.Existing(cfg.Assets.Dest)
	if cfg.Assets.Source != "" {
		assets = provision.NewDir(os.DirFS(cfg.Assets.Source), cfg.Assets.Dest, provision.WithLogger(logger))
	}

	logger.Debug("opening bridge",
		zap.String("backend", cfg.Engine.Backend),
		zap.String("assets_source", cfg.Assets.Source),
		zap.String("assets_dest", cfg.Assets.Dest),
		zap.Bool("eager_init", cfg.Engine.EagerInit),
	)
	return bridge.New(ctx, bridge.Options{
		Assets:      assets,
		DataPattern: cfg.Assets.Pattern,
		Loader:      loader,
		Logger:      logger,
		Metrics:     m,
		EagerInit:   cfg.Engine.EagerInit,
	})
}
