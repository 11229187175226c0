// Package comment provides the comment domain model and its HTML rendering.
package comment

import "time"

// Comment is a single entry in a comment thread as served by the store.
type Comment struct {
	ID      int64      `json:"id,omitempty"`
	Content string     `json:"content"`
	Name    string     `json:"name"`
	Image   string     `json:"image"`
	Time    *time.Time `json:"time,omitempty"`
}

// Identity is the local commenter shown next to freshly posted comments.
type Identity struct {
	Name  string `json:"name" yaml:"name"`
	Image string `json:"image" yaml:"image"`
}

// WithIdentity returns a copy of c carrying the given display name and avatar.
// The store does not echo them back on create, so local values always win.
func (c Comment) WithIdentity(id Identity) *Comment {
	c.Name = id.Name
	c.Image = id.Image
	return &c
}

// Payload is the flat body of a create request.
type Payload map[string]string

// NewPayload builds a create request body from the typed content and the
// page's query parameters. Parameters are merged after content and
// override it on key collision.
func NewPayload(content string, params map[string]string) Payload {
	p := Payload{"content": content}
	for k, v := range params {
		p[k] = v
	}
	return p
}

// Content returns the comment text.
func (p Payload) Content() string { return p["content"] }

// Hostname returns the embedding site.
func (p Payload) Hostname() string { return p["hostname"] }

// Target returns the thread identifier on the embedding page.
func (p Payload) Target() string { return p["target"] }
