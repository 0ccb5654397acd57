package handlers

import (
	"bytes"
	"encoding/json"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bobmcallan/vox-portal/internal/common"
	"github.com/bobmcallan/vox-portal/internal/config"
	"github.com/bobmcallan/vox-portal/internal/models"
	"github.com/bobmcallan/vox-portal/internal/page"
	"github.com/bobmcallan/vox-portal/internal/portal"
)

// RangeOptions are the chart ranges offered by the stocks page, in days.
var RangeOptions = []int{7, 30, 90, 180, 365}

// PageHandler builds pages server-side and renders them with Go templates.
type PageHandler struct {
	logger    *common.Logger
	templates *template.Template
	service   *portal.Service
	devMode   bool
}

// NewPageHandler creates a page handler that loads templates from the pages directory.
func NewPageHandler(logger *common.Logger, service *portal.Service, devMode bool) *PageHandler {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	pagesDir := FindPagesDir()

	templates := template.Must(template.ParseGlob(filepath.Join(pagesDir, "*.html")))
	template.Must(templates.ParseGlob(filepath.Join(pagesDir, "partials", "*.html")))

	return &PageHandler{
		logger:    logger,
		templates: templates,
		service:   service,
		devMode:   devMode,
	}
}

// FindPagesDir locates the pages directory.
func FindPagesDir() string {
	dirs := []string{
		"./pages",
		"../pages",
		"../../pages",
		".",
	}

	for _, dir := range dirs {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			abs, _ := filepath.Abs(dir)
			return abs
		}
	}

	return "."
}

// templateName maps a page to its template file.
func templateName(kind page.Kind) string {
	switch kind {
	case page.Stocks:
		return "stocks.html"
	case page.Dogs:
		return "dogs.html"
	default:
		return "index.html"
	}
}

// ServePage builds, bootstraps and renders kind. The stocks page accepts
// ticker and range query parameters and preloads the chart.
func (h *PageHandler) ServePage(kind page.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if kind == page.Home && r.URL.Path != "/" && r.URL.Path != "/index.html" {
			http.NotFound(w, r)
			return
		}
		if !allowMethods(w, r, http.MethodGet) {
			return
		}

		var ticker, rng string
		if kind == page.Stocks {
			ticker = r.URL.Query().Get("ticker")
			rng = r.URL.Query().Get("range")
		}

		doc, report := h.service.BuildPage(r.Context(), kind, ticker, rng)
		defer doc.Close()
		for name, err := range report.Failed {
			h.logger.Warn().Str("page", string(kind)).Str("loader", name).Err(err).Msg("page container left empty")
		}

		var buf bytes.Buffer
		name := templateName(kind)
		if err := h.templates.ExecuteTemplate(&buf, name, h.viewData(doc)); err != nil {
			h.logger.Error().Str("template", name).Err(err).Msg("failed to render page")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		buf.WriteTo(w)
	}
}

type rangeOption struct {
	Days     int
	Selected bool
}

func (h *PageHandler) viewData(doc *page.Document) map[string]interface{} {
	data := map[string]interface{}{
		"Page":    string(doc.Kind),
		"DevMode": h.devMode,
		"Version": config.Version,
	}

	if doc.Trending != nil {
		data["HasTrending"] = true
		data["Trending"] = doc.Trending.Rows()
		data["TrendingLoaded"] = doc.Trending.Loaded()
	}

	if doc.Form != nil {
		ticker, rng := doc.Form.Values()
		selected, _ := strconv.Atoi(rng)
		options := make([]rangeOption, len(RangeOptions))
		for i, days := range RangeOptions {
			options[i] = rangeOption{Days: days, Selected: days == selected}
		}
		data["Ticker"] = ticker
		data["Ranges"] = options
	}

	if doc.Chart != nil {
		if spec, ok := doc.Chart.Current(); ok {
			if b, err := json.Marshal(spec); err == nil {
				data["ChartJSON"] = string(b)
			}
		}
	}

	if doc.Carousel != nil {
		data["Images"] = doc.Carousel.Images()
	}

	if doc.Breeds != nil {
		data["HasBreeds"] = true
		data["Breeds"] = doc.Breeds.Breeds()
		data["Placeholder"] = models.TemperamentPlaceholder
	}

	return data
}

// StaticFileHandler serves static files (CSS, JS, images).
func (h *PageHandler) StaticFileHandler(w http.ResponseWriter, r *http.Request) {
	pagesDir := FindPagesDir()
	staticDir := filepath.Join(pagesDir, "static")

	// Remove /static/ prefix from URL path
	path := r.URL.Path[len("/static/"):]
	fullPath := filepath.Join(staticDir, path)

	// Security: prevent directory traversal
	absStaticDir, _ := filepath.Abs(staticDir)
	absFullPath, _ := filepath.Abs(fullPath)
	if len(absFullPath) < len(absStaticDir) || absFullPath[:len(absStaticDir)] != absStaticDir {
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fullPath)
}
