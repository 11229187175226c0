package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/evcraddock/commentbox/internal/comment"
)

// styles for text output. Bound to the output writer so plain text is
// written when it is not a terminal.
type styles struct {
	header  lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header:  r.NewStyle().Bold(true),
		muted:   r.NewStyle().Faint(true),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
	}
}

// thread is one target's comments, as printed by the comments command.
type thread struct {
	Target   string             `json:"target"`
	Comments []*comment.Comment `json:"comments"`
}

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printHTML writes the comments as the widget would render them.
func printHTML(w io.Writer, comments []*comment.Comment) error {
	frag, err := comment.RenderHTML(comments...)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, frag)
	return err
}

// printCommentList prints comments in text format.
func printCommentList(w io.Writer, comments []*comment.Comment) {
	st := newStyles(w)
	if len(comments) == 0 {
		fmt.Fprintln(w, st.muted.Render("No comments."))
		return
	}

	for _, c := range comments {
		fmt.Fprintf(w, "%s\n  %s\n\n", st.header.Render(commentHeader(c)), indent(c.Content))
	}
}

// printCommentSingle prints a freshly posted comment in text format.
func printCommentSingle(w io.Writer, c *comment.Comment) {
	msg := "Comment posted."
	if c.ID != 0 {
		msg = fmt.Sprintf("Comment #%d posted.", c.ID)
	}
	fmt.Fprintf(w, "%s\n  %s\n", newStyles(w).success.Render(msg), indent(c.Content))
}

// commentHeader formats the author line, e.g. "[2024-01-02 15:04] #3 (Bob)".
func commentHeader(c *comment.Comment) string {
	author := c.Name
	if author == "" {
		author = "anonymous"
	}

	var b strings.Builder
	if c.Time != nil {
		fmt.Fprintf(&b, "[%s] ", c.Time.Local().Format("2006-01-02 15:04"))
	}
	if c.ID != 0 {
		fmt.Fprintf(&b, "#%d ", c.ID)
	}
	fmt.Fprintf(&b, "(%s)", author)
	return b.String()
}

// indent aligns continuation lines of multi-line comments.
func indent(s string) string {
	return strings.ReplaceAll(strings.TrimRight(s, "\n"), "\n", "\n  ")
}
