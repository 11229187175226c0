// Package web provides the HTTP server that hosts the comment widget's
// embed page.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"

	"github.com/evcraddock/commentbox/internal/client"
	"github.com/evcraddock/commentbox/internal/comment"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

// DefaultMaxLength bounds the comment textarea.
const DefaultMaxLength = 2000

// Options configures the embed page.
type Options struct {
	// Identity is the commenter shown next to the form. The form is only
	// rendered when Identity.Name is set. It is the operator's identity and
	// is shown to every visitor, while the store attributes posts to the
	// session cookie each visitor sends, so a host serving other people
	// should leave it empty.
	Identity comment.Identity
	// Provider names the store's sign-in route, /auth/{Provider}.
	Provider string
	// AllowedOrigins may call /comments cross-origin.
	AllowedOrigins []string
	// AssetsDir, when set, is served under /assets/ and must hold
	// wasm_exec.js and widget.wasm. The page then loads the widget in the
	// browser instead of rendering the thread on the server.
	AssetsDir string
	MaxLength int
}

// Server is the embed page HTTP server.
type Server struct {
	store     *client.Client
	opts      Options
	mu        sync.RWMutex
	identity  comment.Identity
	templates *template.Template
	mux       *http.ServeMux
}

// NewServer creates a web server backed by the given comment store.
func NewServer(store *client.Client, opts Options) (*Server, error) {
	if opts.Provider == "" {
		opts.Provider = "github"
	}
	if opts.MaxLength <= 0 {
		opts.MaxLength = DefaultMaxLength
	}

	tmpl, err := template.New("").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}

	proxy, err := newStoreProxy(store.BaseURL(), opts.AllowedOrigins)
	if err != nil {
		return nil, err
	}

	s := &Server{
		store:     store,
		opts:      opts,
		identity:  opts.Identity,
		templates: tmpl,
		mux:       http.NewServeMux(),
	}

	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("creating static sub-fs: %w", err)
	}

	s.mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))
	if opts.AssetsDir != "" {
		s.mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir(opts.AssetsDir))))
	}
	s.mux.HandleFunc("/health", handleHealth)
	s.mux.Handle("/comments", proxy)
	s.mux.HandleFunc("/", s.handlePage)

	return s, nil
}

// SetIdentity replaces the commenter shown on pages rendered from now on.
func (s *Server) SetIdentity(id comment.Identity) {
	s.mu.Lock()
	s.identity = id
	s.mu.Unlock()
}

func (s *Server) currentIdentity() comment.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(port int, h http.Handler) error {
	addr := fmt.Sprintf(":%d", port)
	slog.Info("starting comment widget host", "addr", "http://localhost"+addr, "store", s.store.BaseURL())
	return http.ListenAndServe(addr, h)
}
