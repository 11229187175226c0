package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/evcraddock/commentbox/internal/comment"
)

func TestListComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/comments" {
			t.Errorf("path = %q, want /comments", r.URL.Path)
		}
		if got := r.URL.Query().Get("hostname"); got != "example.com" {
			t.Errorf("hostname = %q", got)
		}
		if got := r.URL.Query().Get("target"); got != "t1" {
			t.Errorf("target = %q", got)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("expected X-Request-Id header")
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode([]*comment.Comment{
			{ID: 1, Content: "hi", Name: "Bob", Image: "/a.png"},
			{ID: 2, Content: "yo", Name: "Eve", Image: "/b.png"},
		}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	comments, err := c.ListComments(context.Background(), "example.com", "t1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("got %d comments, want 2", len(comments))
	}
	if comments[0].Content != "hi" || comments[1].Content != "yo" {
		t.Errorf("order = %q, %q", comments[0].Content, comments[1].Content)
	}
}

func TestListCommentsEncodesParams(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "hostname=a+b.com&target=%2Fposts%2F1%3Fx%3D1" {
			t.Errorf("raw query = %q", r.URL.RawQuery)
		}
		if got := r.URL.Query().Get("target"); got != "/posts/1?x=1" {
			t.Errorf("target = %q", got)
		}
		if _, err := w.Write([]byte(`[]`)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "")
	if _, err := c.ListComments(context.Background(), "a b.com", "/posts/1?x=1"); err != nil {
		t.Fatalf("list: %v", err)
	}
}

func TestListCommentsSkipsNullEntries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`[null, {"content":"hi"}]`)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	comments, err := New(srv.URL, "").ListComments(context.Background(), "h", "t")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 1 || comments[0].Content != "hi" {
		t.Errorf("comments = %+v", comments)
	}
}

func TestPostComment(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content-type = %q", ct)
		}
		if r.Header.Get("Cookie") != "is=session" {
			t.Errorf("cookie = %q", r.Header.Get("Cookie"))
		}
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req["content"] != "hello" || req["hostname"] != "example.com" || req["target"] != "t1" {
			t.Errorf("body = %v", req)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(&comment.Comment{ID: 1, Content: "hello"}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer srv.Close()

	c := New(srv.URL, "is=session")
	comm, err := c.PostComment(context.Background(), comment.NewPayload("hello", map[string]string{
		"hostname": "example.com",
		"target":   "t1",
	}))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if comm.ID != 1 || comm.Content != "hello" {
		t.Errorf("comment = %+v", comm)
	}
}

func TestWithCookie(t *testing.T) {
	cookies := make(chan string, 2)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookies <- r.Header.Get("Cookie")
		if _, err := w.Write([]byte(`[]`)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	base := New(srv.URL+"/", "")
	if _, err := base.WithCookie("is=visitor").ListComments(context.Background(), "h", "t"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := <-cookies; got != "is=visitor" {
		t.Errorf("cookie = %q, want is=visitor", got)
	}

	if _, err := base.ListComments(context.Background(), "h", "t"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := <-cookies; got != "" {
		t.Errorf("base client sent cookie %q", got)
	}
	if base.BaseURL() != srv.URL {
		t.Errorf("base url = %q, want trailing slash trimmed", base.BaseURL())
	}
}

func TestServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		if err := json.NewEncoder(w).Encode(map[string]string{"error": "db exploded"}); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").ListComments(context.Background(), "h", "t")
	if err == nil {
		t.Fatal("expected error")
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("error = %T, want *StatusError", err)
	}
	if se.Code != http.StatusInternalServerError {
		t.Errorf("code = %d", se.Code)
	}
	if err.Error() != "db exploded" {
		t.Errorf("error = %q", err.Error())
	}
}

func TestUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").PostComment(context.Background(), comment.NewPayload("x", nil))
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusUnauthorized {
		t.Fatalf("error = %v, want 401 StatusError", err)
	}
	if err.Error() != "server error: Unauthorized" {
		t.Errorf("error = %q", err.Error())
	}
}

func TestMalformedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`<html>not json</html>`)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").ListComments(context.Background(), "h", "t")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
}

func TestNullListIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`null`)); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer srv.Close()

	comments, err := New(srv.URL, "").ListComments(context.Background(), "h", "t")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
	if comments != nil {
		t.Errorf("comments = %v, want nil", comments)
	}
}

func TestEmptyListIsNotNull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`[]`)); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer srv.Close()

	comments, err := New(srv.URL, "").ListComments(context.Background(), "h", "t")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(comments) != 0 {
		t.Errorf("got %d comments, want 0", len(comments))
	}
}

func TestEmptyBodyIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "").PostComment(context.Background(), comment.NewPayload("x", nil))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("error = %v, want ErrDecode", err)
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, "").ListComments(context.Background(), "h", "t")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
}

func TestCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`[]`)); err != nil {
			t.Fatalf("write: %v", err)
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL, "").ListComments(ctx, "h", "t")
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("error = %v, want ErrNetwork", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want wrapped context.Canceled", err)
	}
}
