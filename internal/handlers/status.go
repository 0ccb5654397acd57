package handlers

import (
	"net/http"
	"time"

	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/config"
)

// HealthHandler reports liveness plus which upstreams are configured.
// It never calls the upstreams themselves.
type HealthHandler struct {
	logger   *common.Logger
	cfg      *config.Config
	started  time.Time
	commands int
}

// NewHealthHandler creates a health handler. commands is the number of
// registered voice patterns.
func NewHealthHandler(logger *common.Logger, cfg *config.Config, commands int) *HealthHandler {
	return &HealthHandler{logger: logger, cfg: cfg, started: time.Now(), commands: commands}
}

type healthBody struct {
	Status        string          `json:"status"`
	Environment   string          `json:"environment"`
	Uptime        string          `json:"uptime"`
	VoiceCommands int             `json:"voice_commands"`
	Upstreams     map[string]bool `json:"upstreams"`
}

// ServeHTTP handles GET /api/health. Status is "degraded" when the
// aggregates key is missing, since stock charts cannot load without it.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	up := h.cfg.Upstream
	body := healthBody{
		Status:        "ok",
		Environment:   h.cfg.Environment,
		Uptime:        time.Since(h.started).Round(time.Second).String(),
		VoiceCommands: h.commands,
		Upstreams: map[string]bool{
			"polygon":   up.Polygon.BaseURL != "" && up.Polygon.APIKey != "",
			"trending":  up.Trending.URL != "",
			"dogceo":    up.DogCEO.BaseURL != "",
			"thedogapi": up.TheDogAPI.BaseURL != "",
		},
	}
	if !body.Upstreams["polygon"] {
		body.Status = "degraded"
	}
	writeJSON(w, http.StatusOK, body)
}

// VersionHandler reports the build stamped in by the linker.
type VersionHandler struct{}

// NewVersionHandler creates a version handler.
func NewVersionHandler() *VersionHandler {
	return &VersionHandler{}
}

// ServeHTTP handles GET /api/version.
func (h *VersionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, config.Info())
}
