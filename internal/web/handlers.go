package web

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/evcraddock/commentbox/internal/comment"
	"github.com/evcraddock/commentbox/internal/dom"
	"github.com/evcraddock/commentbox/internal/query"
	"github.com/evcraddock/commentbox/internal/widget"
)

// PageData feeds the embed page template.
type PageData struct {
	Hostname  string
	Target    string
	Authed    bool
	User      comment.Identity
	Action    string
	LoginURL  string
	Assets    string
	MaxLength int
}

// handlePage renders the embed page. On POST it also submits the form
// value the way a click on the submit button would, for browsers without
// JavaScript.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	doc, err := s.newDocument(r.URL, s.loginURL(requestURL(r)))
	if err != nil {
		http.Error(w, fmt.Sprintf("Error rendering page: %v", err), http.StatusInternalServerError)
		return
	}

	if s.opts.AssetsDir == "" {
		s.mountWidget(r.Context(), doc, r.Header.Get("Cookie"))

		if r.Method == http.MethodPost {
			if err := r.ParseForm(); err != nil {
				http.Error(w, "Bad request", http.StatusBadRequest)
				return
			}
			doc.SetContent(r.PostFormValue("content"))
			doc.Click()
		}
	}

	var out bytes.Buffer
	if err := s.renderDocument(&out, doc); err != nil {
		http.Error(w, fmt.Sprintf("Error rendering page: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := out.WriteTo(w); err != nil {
		slog.Debug("writing page", "error", err)
	}
}

// RenderPage renders the embed page at location with the thread loaded
// from the store, as a GET of that URL would.
func (s *Server) RenderPage(ctx context.Context, w io.Writer, location *url.URL, cookie string) error {
	doc, err := s.newDocument(location, s.loginURL(location))
	if err != nil {
		return err
	}
	s.mountWidget(ctx, doc, cookie)
	return s.renderDocument(w, doc)
}

// mountWidget runs the widget against doc with the visitor's cookie.
func (s *Server) mountWidget(ctx context.Context, doc *dom.Document, cookie string) {
	store := s.store.WithCookie(cookie)
	widget.New(store, doc).Initialize(ctx)
}

// newDocument renders the page template for location into an in-memory
// document.
func (s *Server) newDocument(location *url.URL, loginURL string) (*dom.Document, error) {
	params := query.FromURL(location)
	id := s.currentIdentity()
	data := PageData{
		Hostname:  params.Hostname(),
		Target:    params.Target(),
		Authed:    id.Name != "",
		User:      id,
		Action:    location.RequestURI(),
		LoginURL:  loginURL,
		MaxLength: s.opts.MaxLength,
	}
	if s.opts.AssetsDir != "" {
		data.Assets = "/assets"
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "page", data); err != nil {
		return nil, fmt.Errorf("executing page template: %w", err)
	}
	return dom.Parse(&buf, location)
}

// renderDocument turns the height notifications posted during the render
// into inline scripts and writes the page.
func (s *Server) renderDocument(w io.Writer, doc *dom.Document) error {
	for _, msg := range doc.Messages() {
		var script bytes.Buffer
		if err := s.templates.ExecuteTemplate(&script, "notify", msg.Data); err != nil {
			return fmt.Errorf("rendering notification: %w", err)
		}
		if err := doc.AppendBody(template.HTML(script.String())); err != nil {
			return fmt.Errorf("appending notification: %w", err)
		}
	}
	return doc.Render(w)
}

// loginURL points at the store's sign-in route, returning to back.
func (s *Server) loginURL(back *url.URL) string {
	return fmt.Sprintf("%s/auth/%s?b=%s", s.store.BaseURL(), url.PathEscape(s.opts.Provider), url.QueryEscape(back.String()))
}

// requestURL rebuilds the absolute URL the visitor requested.
func requestURL(r *http.Request) *url.URL {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return &url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: r.URL.RawQuery}
}
