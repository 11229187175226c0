package dom

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LineHeight is the height of one line of text, in pixels.
const LineHeight = 20

// height is a fixed-rule stand-in for browser layout: block children stack,
// inline children and ".g" rows share a line, images use their height
// attribute and textareas their row count.
func height(n *html.Node) int {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return 0
		}
		return LineHeight
	case html.ElementNode:
	default:
		return 0
	}

	switch n.DataAtom {
	case atom.Script, atom.Style, atom.Head, atom.Template, atom.Noscript:
		return 0
	case atom.Img:
		h, _ := strconv.Atoi(attr(n, "height"))
		return h
	case atom.Textarea:
		rows, err := strconv.Atoi(attr(n, "rows"))
		if err != nil || rows < 1 {
			rows = 2
		}
		return rows * LineHeight
	case atom.Input:
		if attr(n, "type") == "hidden" {
			return 0
		}
		return LineHeight
	case atom.Button, atom.Select:
		return LineHeight
	}

	if isRow(n) {
		return tallestChild(n)
	}
	return stackedChildren(n)
}

func isRow(n *html.Node) bool {
	switch n.DataAtom {
	case atom.Span, atom.A, atom.B, atom.I, atom.Em, atom.Strong, atom.Label, atom.Small, atom.Code:
		return true
	}
	for _, class := range strings.Fields(attr(n, "class")) {
		if class == "g" {
			return true
		}
	}
	return false
}

func tallestChild(n *html.Node) int {
	h := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if ch := height(c); ch > h {
			h = ch
		}
	}
	return h
}

func stackedChildren(n *html.Node) int {
	h := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		h += height(c)
	}
	return h
}
