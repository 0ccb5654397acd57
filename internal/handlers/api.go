package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bobmcallan/vox-portal/internal/client"
	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/portal"
	"github.com/bobmcallan/vox-portal/internal/stocks"
)

// statusFor maps a service error to an HTTP status.
func statusFor(err error) int {
	var ne *client.NetworkError
	var dfe *client.DataFormatError
	switch {
	case errors.Is(err, portal.ErrMissingTicker), errors.Is(err, stocks.ErrInvalidRange):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &ne), errors.As(err, &dfe):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError logs err and writes it as a JSON error. Upstream
// failures are reported without their details.
func writeServiceError(w http.ResponseWriter, logger *common.Logger, op string, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		if logger != nil {
			logger.Error().Str("op", op).Int("status", status).Err(err).Msg("request failed")
		}
		msg = "upstream request failed"
	}
	writeError(w, status, msg)
}

// StocksHandler serves the chart and trending JSON endpoints.
type StocksHandler struct {
	logger  *common.Logger
	service *portal.Service
}

// NewStocksHandler creates a new stocks handler.
func NewStocksHandler(logger *common.Logger, service *portal.Service) *StocksHandler {
	return &StocksHandler{logger: logger, service: service}
}

// HandleChart handles GET /api/stocks/chart?ticker=&range=.
func (h *StocksHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	res, err := h.service.StockChart(r.Context(), q.Get("ticker"), q.Get("range"))
	if err != nil {
		writeServiceError(w, h.logger, "stock_chart", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleTrending handles GET /api/stocks/trending.
func (h *StocksHandler) HandleTrending(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	rows, err := h.service.TrendingStocks(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "trending_stocks", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rows": rows})
}

// DogsHandler serves the dog image and breed JSON endpoints.
type DogsHandler struct {
	logger  *common.Logger
	service *portal.Service
}

// NewDogsHandler creates a new dogs handler.
func NewDogsHandler(logger *common.Logger, service *portal.Service) *DogsHandler {
	return &DogsHandler{logger: logger, service: service}
}

// HandleImages handles GET /api/dogs/images.
func (h *DogsHandler) HandleImages(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	images, err := h.service.DogImages(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "dog_images", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"images": images})
}

// HandleBreeds handles GET /api/dogs/breeds.
func (h *DogsHandler) HandleBreeds(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodGet) {
		return
	}
	breeds, err := h.service.DogBreeds(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, "dog_breeds", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"breeds": breeds})
}

// VoiceHandler interprets transcripts posted by the browser.
type VoiceHandler struct {
	logger  *common.Logger
	service *portal.Service
}

// NewVoiceHandler creates a new voice handler.
func NewVoiceHandler(logger *common.Logger, service *portal.Service) *VoiceHandler {
	return &VoiceHandler{logger: logger, service: service}
}

// ServeHTTP handles POST /api/voice. An unmatched phrase is a 200 with
// matched=false and no effects.
func (h *VoiceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !allowMethods(w, r, http.MethodPost) {
		return
	}
	var req portal.VoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Phrases) == 0 {
		writeError(w, http.StatusBadRequest, "phrases is required")
		return
	}
	writeJSON(w, http.StatusOK, h.service.Voice(r.Context(), req))
}
