package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// allowMethods reports whether r uses one of methods. HEAD is accepted
// wherever GET is. Otherwise it answers 405 with an Allow header.
func allowMethods(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m || (m == http.MethodGet && r.Method == http.MethodHead) {
			return true
		}
	}
	w.Header().Set("Allow", strings.Join(methods, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

// writeJSON encodes v as the response body. Market and dog data change on
// every call, so API responses are never cached by the browser.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// apiError is the body of every non-2xx JSON response.
type apiError struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func writeError(w http.ResponseWriter, status int, msg string) error {
	return writeJSON(w, status, apiError{Error: msg, Code: status})
}
