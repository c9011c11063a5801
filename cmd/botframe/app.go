package main

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/keshon/botframe/internal/commands"
	"github.com/keshon/botframe/internal/config"
	"github.com/keshon/botframe/internal/logger"
	"github.com/keshon/botframe/internal/middleware"
	"github.com/keshon/botframe/internal/storage"
	"github.com/keshon/botframe/pkg/cmd"
	"github.com/keshon/botframe/pkg/handler"
	"github.com/keshon/botframe/pkg/platform"
)

// app is what every subcommand shares: configuration, the root logger and
// the store.
type app struct {
	cfg   *config.Config
	log   zerolog.Logger
	store *storage.Storage
}

func newApp(logOut io.Writer) (*app, error) {
	cfg, loaded, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Pretty:  cfg.LogPretty,
		Console: logOut,
	})
	if !loaded {
		log.Debug().Msg(".env not found, using the environment only")
	}

	store, err := storage.New(cfg.StoragePath, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return &app{cfg: cfg, log: log, store: store}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Error().Err(err).Msg("failed to close storage")
	}
}

// newCore builds a core for client with the bundled units and middleware.
func (a *app) newCore(client platform.Client) (*handler.Core, error) {
	log := a.log
	core := handler.New(client, handler.Options{
		Name:    appName,
		Prefix:  a.cfg.Prefix,
		OwnerID: a.cfg.OwnerID,
		Braces: handler.Braces{
			Open:  a.cfg.ReplacerOpen,
			Close: a.cfg.ReplacerClose,
		},
		IgnoredCodes:  a.cfg.IgnoredErrorCodes,
		MaxInterfaces: a.cfg.MaxInterfaces,
		AllowBots:     a.cfg.AllowBots,
		SendWorkers:   a.cfg.SendWorkers,
		Middlewares: []cmd.Middleware{
			middleware.WithRecover(log),
			middleware.WithCommandLogger(log),
			middleware.WithDisabledCheck(a.store),
			middleware.WithHistory(a.store, log),
		},
		Logger: &log,
	})

	if err := commands.Register(core, commands.Deps{Store: a.store}); err != nil {
		core.Close()
		return nil, fmt.Errorf("register units: %w", err)
	}
	if n := core.LogWarnings(); n > 0 {
		log.Warn().Int("count", n).Msg("units registered with warnings")
	}
	return core, nil
}
