// Package widget implements the embeddable comment widget: it loads the
// comments of a thread into a page and posts new ones from the page's form.
package widget

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/evcraddock/commentbox/internal/client"
	"github.com/evcraddock/commentbox/internal/comment"
	"github.com/evcraddock/commentbox/internal/query"
)

// HeightPadding is added to the body height before it is posted to the
// embedding frame.
const HeightPadding = 300

// Store is the remote comment store.
type Store interface {
	ListComments(ctx context.Context, hostname, target string) ([]*comment.Comment, error)
	PostComment(ctx context.Context, payload comment.Payload) (*comment.Comment, error)
}

// State is a snapshot of the page taken at the start of an operation.
type State struct {
	Content  string
	Params   query.Params
	Identity comment.Identity
}

// Page is the document the widget renders into.
type Page interface {
	// State reads the current form state.
	State() State
	// Valid reports the form's built-in validity, surfacing problems to the
	// user the way the host normally does.
	Valid() bool
	// Append adds rendered comment nodes to the end of the result list.
	Append(fragment template.HTML) error
	// ClearContent empties the comment text field.
	ClearContent()
	// BodyHeight is the current rendered height of the page body.
	BodyHeight() int
	// PostMessage sends v to the parent frame with a wildcard target origin.
	PostMessage(v any)
	// OnSubmit registers fn to run when the submit button is activated.
	OnSubmit(fn func())
}

// Widget binds a page to a comment store.
type Widget struct {
	store Store
	page  Page
	log   *slog.Logger
}

// New creates a widget for page backed by store.
func New(store Store, page Page) *Widget {
	return &Widget{
		store: store,
		page:  page,
		log:   slog.Default().With("component", "widget"),
	}
}

// Initialize wires the submit action and loads the thread. Load failures
// leave the page as it was.
func (w *Widget) Initialize(ctx context.Context) {
	w.page.OnSubmit(func() { w.Submit(ctx) })

	if err := w.RequestComments(ctx, w.page.State()); err != nil {
		w.discard("load comments", err)
	}
}

// Submit is the submit action: it posts the form when the page reports it
// valid. Invalid forms never reach the store. Failures leave the form
// populated.
func (w *Widget) Submit(ctx context.Context) {
	if !w.page.Valid() {
		return
	}
	if err := w.SubmitComment(ctx, w.page.State()); err != nil {
		w.discard("submit comment", err)
	}
}

// RequestComments fetches the thread named by the state's hostname and
// target and appends its comments in the order returned. On error the page
// is left untouched.
func (w *Widget) RequestComments(ctx context.Context, st State) error {
	comments, err := w.store.ListComments(ctx, st.Params.Hostname(), st.Params.Target())
	if err != nil {
		return fmt.Errorf("listing comments: %w", err)
	}

	frag, err := comment.RenderHTML(comments...)
	if err != nil {
		return err
	}
	if err := w.page.Append(frag); err != nil {
		return fmt.Errorf("appending comments: %w", err)
	}

	w.notifyHeight()
	return nil
}

// SubmitComment posts the state's content together with every page
// parameter, then appends the created comment under the local identity and
// clears the text field.
func (w *Widget) SubmitComment(ctx context.Context, st State) error {
	payload := comment.NewPayload(st.Content, st.Params)
	w.log.Debug("posting comment", "hostname", payload.Hostname(), "target", payload.Target(), "length", len(payload.Content()))

	created, err := w.store.PostComment(ctx, payload)
	if err != nil {
		return fmt.Errorf("posting comment: %w", err)
	}

	frag, err := comment.RenderHTML(created.WithIdentity(st.Identity))
	if err != nil {
		return err
	}
	if err := w.page.Append(frag); err != nil {
		return fmt.Errorf("appending comment: %w", err)
	}

	w.page.ClearContent()
	w.notifyHeight()
	return nil
}

func (w *Widget) notifyHeight() {
	w.page.PostMessage(w.page.BodyHeight() + HeightPadding)
}

// discard drops an operation error. Nothing is shown to the user.
func (w *Widget) discard(op string, err error) {
	w.log.Debug("operation failed", "op", op, "kind", Classify(err).String(), "error", err)
}

// Kind classifies operation failures.
type Kind int

const (
	KindUnknown Kind = iota
	KindNetwork
	KindStatus
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindStatus:
		return "status"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// Classify maps an operation error to its kind.
func Classify(err error) Kind {
	var se *client.StatusError
	switch {
	case err == nil:
		return KindUnknown
	case errors.Is(err, client.ErrNetwork):
		return KindNetwork
	case errors.As(err, &se):
		return KindStatus
	case errors.Is(err, client.ErrDecode):
		return KindParse
	default:
		return KindUnknown
	}
}
