// Package app assembles the portal service and its HTTP and MCP front ends
// from a loaded configuration.
package app

import (
	"strings"

	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/config"
	"github.com/bobmcallan/vox-portal/internal/handlers"
	"github.com/bobmcallan/vox-portal/internal/mcp"
	"github.com/bobmcallan/vox-portal/internal/portal"
)

// App is everything the HTTP server routes to.
type App struct {
	Config  *config.Config
	Logger  *common.Logger
	Service *portal.Service

	PageHandler    *handlers.PageHandler
	HealthHandler  *handlers.HealthHandler
	VersionHandler *handlers.VersionHandler
	StocksHandler  *handlers.StocksHandler
	DogsHandler    *handlers.DogsHandler
	VoiceHandler   *handlers.VoiceHandler
	MCPHandler     *mcp.Handler
}

// New builds the service and its handlers. Configuration problems are
// logged, not fatal, so a dev portal can start with missing keys.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	warnEnvironment(cfg, logger)

	svc := portal.New(cfg, logger)
	commands := len(svc.Router.Patterns())

	a := &App{
		Config:         cfg,
		Logger:         logger,
		Service:        svc,
		PageHandler:    handlers.NewPageHandler(logger, svc, cfg.IsDevMode()),
		HealthHandler:  handlers.NewHealthHandler(logger, cfg, commands),
		VersionHandler: handlers.NewVersionHandler(),
		StocksHandler:  handlers.NewStocksHandler(logger, svc),
		DogsHandler:    handlers.NewDogsHandler(logger, svc),
		VoiceHandler:   handlers.NewVoiceHandler(logger, svc),
		MCPHandler:     mcp.NewHandler(svc, logger),
	}

	logger.Info().
		Str("environment", cfg.Environment).
		Int("voice_commands", commands).
		Msg("portal ready")
	return a, nil
}

func warnEnvironment(cfg *config.Config, logger *common.Logger) {
	switch env := strings.ToLower(strings.TrimSpace(cfg.Environment)); {
	case cfg.IsDevMode():
		logger.Warn().Msg("dev mode: upstream api keys are optional")
	case env != "" && env != "prod":
		logger.Warn().Str("environment", cfg.Environment).Msg("unknown environment, treating as prod")
	}
	for _, issue := range cfg.Validate() {
		logger.Warn().Str("issue", issue).Msg("configuration problem")
	}
}

// Close releases application resources. The portal holds none today.
func (a *App) Close() error {
	return nil
}
