//go:build js && wasm

package dom

import (
	"fmt"
	"html/template"
	"syscall/js"

	"github.com/evcraddock/commentbox/internal/query"
	"github.com/evcraddock/commentbox/internal/widget"
)

// Browser is the live page the wasm widget runs in.
type Browser struct {
	window   js.Value
	document js.Value
}

var _ widget.Page = (*Browser)(nil)

// NewBrowser binds to the global window and document.
func NewBrowser() *Browser {
	window := js.Global()
	return &Browser{window: window, document: window.Get("document")}
}

// Origin returns the page's origin, e.g. "https://comments.example.com".
func (b *Browser) Origin() string {
	return b.window.Get("location").Get("origin").String()
}

func (b *Browser) byID(id string) js.Value {
	return b.document.Call("getElementById", id)
}

// State reads the current form state.
func (b *Browser) State() widget.State {
	st := widget.State{
		Params: query.Parse(b.window.Get("location").Get("search").String()),
	}
	if el := b.byID(IDContent); truthy(el) {
		st.Content = el.Get("value").String()
	}
	if el := b.byID(IDUserImage); truthy(el) {
		st.Identity.Image = el.Get("src").String()
	}
	if el := b.byID(IDUsername); truthy(el) {
		st.Identity.Name = el.Get("innerText").String()
	}
	return st
}

// Valid runs the form's reportValidity, which also shows the browser's
// validation messages.
func (b *Browser) Valid() bool {
	form := b.byID(IDForm)
	if !truthy(form) {
		return true
	}
	return form.Call("reportValidity").Bool()
}

// Append inserts fragment at the end of the result list.
func (b *Browser) Append(fragment template.HTML) error {
	el := b.byID(IDResult)
	if !truthy(el) {
		return fmt.Errorf("#%s: %w", IDResult, ErrNoElement)
	}
	el.Call("insertAdjacentHTML", "beforeend", string(fragment))
	return nil
}

// ClearContent empties the comment text field.
func (b *Browser) ClearContent() {
	if el := b.byID(IDContent); truthy(el) {
		el.Set("value", "")
	}
}

// BodyHeight returns document.body.offsetHeight.
func (b *Browser) BodyHeight() int {
	return b.document.Get("body").Get("offsetHeight").Int()
}

// PostMessage posts v to the parent window with a wildcard target origin.
func (b *Browser) PostMessage(v any) {
	b.window.Get("parent").Call("postMessage", js.ValueOf(v), "*")
}

// OnSubmit runs fn on clicks of the submit button for the life of the page.
// The default form submission is suppressed. fn runs on its own goroutine because it blocks
// on network I/O, which a js callback must not do.
func (b *Browser) OnSubmit(fn func()) {
	el := b.byID(IDSubmit)
	if !truthy(el) {
		return
	}
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 {
			args[0].Call("preventDefault")
		}
		go fn()
		return nil
	})
	el.Call("addEventListener", "click", cb)
}

func truthy(v js.Value) bool {
	return !v.IsNull() && !v.IsUndefined()
}
