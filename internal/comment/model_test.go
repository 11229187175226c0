package comment

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNewPayloadMergesParams(t *testing.T) {
	p := NewPayload("hello", map[string]string{
		"hostname": "example.com",
		"target":   "t1",
	})

	if p.Content() != "hello" {
		t.Errorf("content = %q, want hello", p.Content())
	}
	if p.Hostname() != "example.com" {
		t.Errorf("hostname = %q", p.Hostname())
	}
	if p.Target() != "t1" {
		t.Errorf("target = %q", p.Target())
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"content":"hello","hostname":"example.com","target":"t1"}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestNewPayloadParamOverridesContent(t *testing.T) {
	p := NewPayload("typed", map[string]string{"content": "from-query"})
	if p.Content() != "from-query" {
		t.Errorf("content = %q, want from-query", p.Content())
	}
}

func TestNewPayloadKeepsExtraParams(t *testing.T) {
	p := NewPayload("x", map[string]string{"lang": "en"})
	if p["lang"] != "en" {
		t.Errorf("lang = %q, want en", p["lang"])
	}
	if p.Hostname() != "" {
		t.Errorf("hostname = %q, want empty", p.Hostname())
	}
}

func TestWithIdentity(t *testing.T) {
	orig := Comment{ID: 1, Content: "hello", Name: "server", Image: "/server.png"}
	got := orig.WithIdentity(Identity{Name: "Alice", Image: "/alice.png"})

	if got.Name != "Alice" || got.Image != "/alice.png" {
		t.Errorf("identity = %q %q", got.Name, got.Image)
	}
	if got.ID != 1 || got.Content != "hello" {
		t.Errorf("server fields lost: %+v", got)
	}
	if orig.Name != "server" {
		t.Error("receiver comment was modified")
	}
}

func TestCommentDecodesStoreShape(t *testing.T) {
	body := `{"id":7,"content":"hi","time":"2024-01-02T03:04:05Z","name":"Bob","image":"/a.png"}`
	var c Comment
	if err := json.Unmarshal([]byte(body), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.ID != 7 || c.Content != "hi" || c.Name != "Bob" || c.Image != "/a.png" {
		t.Errorf("decoded = %+v", c)
	}
	if c.Time == nil || c.Time.Year() != 2024 {
		t.Errorf("time = %v", c.Time)
	}
}

func TestRenderHTML(t *testing.T) {
	frag, err := RenderHTML(&Comment{Content: "hi", Name: "Bob", Image: "/a.png"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	out := string(frag)
	for _, want := range []string{
		`class="g comment"`,
		`src="/a.png"`,
		`alt="Bob"`,
		`<span class="comment-username">Bob</span>`,
		`<div class="comment-content">hi</div>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHTMLPreservesOrder(t *testing.T) {
	frag, err := RenderHTML(
		&Comment{Content: "first"},
		&Comment{Content: "second"},
	)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(frag)
	if strings.Index(out, "first") > strings.Index(out, "second") {
		t.Error("comments rendered out of order")
	}
	if n := strings.Count(out, `class="g comment"`); n != 2 {
		t.Errorf("rendered %d nodes, want 2", n)
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	frag, err := RenderHTML(&Comment{
		Content: "<script>alert(1)</script>",
		Name:    `"><b>`,
		Image:   "javascript:alert(1)",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(frag)
	if strings.Contains(out, "<script>") {
		t.Error("content was not escaped")
	}
	if strings.Contains(out, "<b>") {
		t.Error("name was not escaped")
	}
	if strings.Contains(out, "javascript:") {
		t.Error("unsafe image URL was not filtered")
	}
}

func TestRenderHTMLEmpty(t *testing.T) {
	frag, err := RenderHTML()
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(string(frag)) != "" {
		t.Errorf("expected empty fragment, got %q", frag)
	}
}
