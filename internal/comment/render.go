package comment

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// RenderHTML renders comments as a sequence of comment nodes, in the order
// given. An empty slice renders to an empty fragment.
func RenderHTML(comments ...*Comment) (template.HTML, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "comments", comments); err != nil {
		return "", fmt.Errorf("rendering comments: %w", err)
	}
	// Output of html/template is already escaped.
	return template.HTML(buf.String()), nil
}
