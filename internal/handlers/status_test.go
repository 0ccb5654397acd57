package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bobmcallan/vox-portal/internal/config"
)

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name   string
		apiKey string
		want   string
	}{
		{"configured", "key", "ok"},
		{"missing aggregates key", "", "degraded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.NewDefaultConfig()
			cfg.Upstream.Polygon.APIKey = tt.apiKey
			handler := NewHealthHandler(nil, cfg, 12)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, httptest.NewRequest("GET", "/api/health", nil))
			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}

			var body healthBody
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to unmarshal: %v", err)
			}
			if body.Status != tt.want {
				t.Errorf("expected status %s, got %s", tt.want, body.Status)
			}
			if body.VoiceCommands != 12 {
				t.Errorf("expected 12 voice commands, got %d", body.VoiceCommands)
			}
			if !body.Upstreams["dogceo"] || !body.Upstreams["trending"] {
				t.Errorf("expected default upstreams configured, got %v", body.Upstreams)
			}
			if tt.apiKey != "" && strings.Contains(w.Body.String(), tt.apiKey+`"`) {
				t.Error("api key leaked into health response")
			}
		})
	}
}

func TestVersionHandler(t *testing.T) {
	w := httptest.NewRecorder()
	NewVersionHandler().ServeHTTP(w, httptest.NewRequest("HEAD", "/api/version", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("HEAD should be served like GET, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	NewVersionHandler().ServeHTTP(w, httptest.NewRequest("GET", "/api/version", nil))
	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}
	if body["name"] != "vox-portal" || body["version"] == "" {
		t.Errorf("unexpected version body %v", body)
	}
}

func TestAllowMethods_SetsAllowHeader(t *testing.T) {
	w := httptest.NewRecorder()
	ok := allowMethods(w, httptest.NewRequest("DELETE", "/api/voice", nil), http.MethodPost)
	if ok {
		t.Fatal("DELETE should not be allowed")
	}
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
	if got := w.Header().Get("Allow"); got != "POST" {
		t.Errorf("expected Allow: POST, got %q", got)
	}
	var body apiError
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body: %v", err)
	}
	if body.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected code 405 in body, got %d", body.Code)
	}
}

func TestWriteJSON_NoStore(t *testing.T) {
	w := httptest.NewRecorder()
	writeJSON(w, http.StatusCreated, map[string]int{"n": 1})
	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("expected no-store, got %q", w.Header().Get("Cache-Control"))
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected application/json, got %s", ct)
	}
}
