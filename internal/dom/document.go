// Package dom provides the pages the comment widget renders into: an
// in-memory HTML document, and the browser DOM when built for js/wasm.
package dom

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/evcraddock/commentbox/internal/comment"
	"github.com/evcraddock/commentbox/internal/query"
	"github.com/evcraddock/commentbox/internal/widget"
)

// Element ids the widget relies on.
const (
	IDContent   = "content"
	IDResult    = "result"
	IDUserImage = "user-image"
	IDUsername  = "username"
	IDSubmit    = "submit"
	IDForm      = "form"
)

// ErrNoElement is returned when a required element is missing from the page.
var ErrNoElement = errors.New("element not found")

// Message is a cross-frame message posted to the parent window.
type Message struct {
	Data         any
	TargetOrigin string
}

// Document is an in-memory HTML page. It is safe for concurrent use.
type Document struct {
	mu       sync.Mutex
	root     *html.Node
	location *url.URL
	messages []Message
	handlers []func()
}

var _ widget.Page = (*Document)(nil)

// Parse reads an HTML page. location is the page's own URL; its query
// string supplies the widget parameters.
func Parse(r io.Reader, location *url.URL) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing page: %w", err)
	}
	if location == nil {
		location = &url.URL{}
	}
	return &Document{root: root, location: location}, nil
}

// State reads the current form state.
func (d *Document) State() widget.State {
	d.mu.Lock()
	defer d.mu.Unlock()

	st := widget.State{Params: query.FromURL(d.location)}
	if n := d.byID(IDContent); n != nil {
		st.Content = value(n)
	}
	st.Identity = comment.Identity{
		Name:  d.textByID(IDUsername),
		Image: attr(d.byID(IDUserImage), "src"),
	}
	return st
}

// Valid checks the required, minlength and maxlength constraints of the
// controls inside the form. A page without a form is valid.
func (d *Document) Valid() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	form := d.byID(IDForm)
	if form == nil {
		return true
	}

	valid := true
	walk(form, func(n *html.Node) bool {
		switch n.DataAtom {
		case atom.Input, atom.Textarea, atom.Select:
		default:
			return true
		}
		if hasAttr(n, "disabled") || attr(n, "type") == "hidden" {
			return true
		}
		if !controlValid(n) {
			valid = false
		}
		return valid
	})
	return valid
}

func controlValid(n *html.Node) bool {
	v := value(n)
	if hasAttr(n, "required") && v == "" {
		return false
	}
	if v == "" {
		return true
	}
	length := utf8.RuneCountInString(v)
	if minLen, err := strconv.Atoi(attr(n, "minlength")); err == nil && length < minLen {
		return false
	}
	if maxLen, err := strconv.Atoi(attr(n, "maxlength")); err == nil && length > maxLen {
		return false
	}
	return true
}

// Append parses fragment and adds its nodes to the end of the result list.
func (d *Document) Append(fragment template.HTML) error {
	return d.appendTo(IDResult, fragment)
}

// AppendBody adds fragment to the end of the body.
func (d *Document) AppendBody(fragment template.HTML) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	body := d.body()
	if body == nil {
		return fmt.Errorf("body: %w", ErrNoElement)
	}
	return appendFragment(body, fragment)
}

func (d *Document) appendTo(id string, fragment template.HTML) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.byID(id)
	if n == nil {
		return fmt.Errorf("#%s: %w", id, ErrNoElement)
	}
	return appendFragment(n, fragment)
}

func appendFragment(parent *html.Node, fragment template.HTML) error {
	ctxNode := &html.Node{Type: html.ElementNode, Data: parent.Data, DataAtom: parent.DataAtom}
	nodes, err := html.ParseFragment(strings.NewReader(string(fragment)), ctxNode)
	if err != nil {
		return fmt.Errorf("parsing fragment: %w", err)
	}
	for _, n := range nodes {
		parent.AppendChild(n)
	}
	return nil
}

// ClearContent empties the comment text field.
func (d *Document) ClearContent() {
	d.SetContent("")
}

// SetContent replaces the value of the comment text field.
func (d *Document) SetContent(v string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := d.byID(IDContent)
	if n == nil {
		return
	}
	if n.DataAtom == atom.Textarea {
		for c := n.FirstChild; c != nil; c = n.FirstChild {
			n.RemoveChild(c)
		}
		if v != "" {
			n.AppendChild(&html.Node{Type: html.TextNode, Data: v})
		}
		return
	}
	setAttr(n, "value", v)
}

// BodyHeight estimates the rendered height of the body.
func (d *Document) BodyHeight() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	body := d.body()
	if body == nil {
		return 0
	}
	return height(body)
}

// PostMessage records a message for the parent frame.
func (d *Document) PostMessage(v any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.messages = append(d.messages, Message{Data: v, TargetOrigin: "*"})
}

// Messages returns the messages posted so far.
func (d *Document) Messages() []Message {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Message(nil), d.messages...)
}

// OnSubmit registers fn to run when the submit button is clicked.
func (d *Document) OnSubmit(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, fn)
}

// Click activates the submit button, running its handlers in registration
// order. It reports false when the page has no submit button.
func (d *Document) Click() bool {
	d.mu.Lock()
	if d.byID(IDSubmit) == nil {
		d.mu.Unlock()
		return false
	}
	handlers := append([]func(){}, d.handlers...)
	d.mu.Unlock()

	for _, fn := range handlers {
		fn()
	}
	return true
}

// Render writes the page as HTML.
func (d *Document) Render(w io.Writer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return html.Render(w, d.root)
}

func (d *Document) byID(id string) *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode && attr(n, "id") == id {
			found = n
			return false
		}
		return true
	})
	return found
}

func (d *Document) body() *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.DataAtom == atom.Body {
			found = n
			return false
		}
		return true
	})
	return found
}

func (d *Document) textByID(id string) string {
	n := d.byID(id)
	if n == nil {
		return ""
	}
	return strings.TrimSpace(text(n))
}

// walk visits n and its descendants depth-first until fn returns false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func text(n *html.Node) string {
	var sb strings.Builder
	walk(n, func(c *html.Node) bool {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		return true
	})
	return sb.String()
}

// value returns the current value of a form control.
func value(n *html.Node) string {
	switch n.DataAtom {
	case atom.Textarea:
		return text(n)
	case atom.Select:
		var first, selected *html.Node
		walk(n, func(c *html.Node) bool {
			if c.DataAtom != atom.Option {
				return true
			}
			if first == nil {
				first = c
			}
			if hasAttr(c, "selected") {
				selected = c
				return false
			}
			return true
		})
		if selected == nil {
			selected = first
		}
		return attr(selected, "value")
	default:
		return attr(n, "value")
	}
}

func attr(n *html.Node, key string) string {
	if n == nil {
		return ""
	}
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return true
		}
	}
	return false
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}
