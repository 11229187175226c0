package web

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/rs/cors"
)

// newStoreProxy forwards /comments to the comment store so the browser
// widget can reach it from the embed page's origin. Listed origins may
// also call it directly.
func newStoreProxy(storeURL string, allowedOrigins []string) (http.Handler, error) {
	target, err := url.Parse(storeURL)
	if err != nil {
		return nil, fmt.Errorf("parsing store URL: %w", err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("store URL must be absolute: %q", storeURL)
	}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			slog.Warn("comment store unreachable", "error", err, "path", r.URL.Path)
			jsonError(w, "comment store unavailable", http.StatusBadGateway)
		},
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type"},
	})
	return c.Handler(proxy), nil
}

// jsonError writes a JSON error response in the store's error shape.
func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		slog.Warn("writing error response", "error", err)
	}
}

// handleHealth reports liveness.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		slog.Warn("writing health response", "error", err)
	}
}
