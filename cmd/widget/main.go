//go:build js && wasm

// Package main runs the comment widget inside the embed page, compiled with
// GOOS=js GOARCH=wasm.
package main

import (
	"context"

	"github.com/evcraddock/commentbox/internal/client"
	"github.com/evcraddock/commentbox/internal/dom"
	"github.com/evcraddock/commentbox/internal/logging"
	"github.com/evcraddock/commentbox/internal/widget"
)

func main() {
	logging.Setup(false)

	page := dom.NewBrowser()

	// The page is served next to /comments; the browser supplies the
	// session cookie itself.
	store := client.New(page.Origin(), "")

	widget.New(store, page).Initialize(context.Background())

	// Keep the runtime alive; the submit callback lives as long as the page.
	select {}
}
