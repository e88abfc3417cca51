package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewClient_RequiresConfig(t *testing.T) {
	cases := []struct {
		name                   string
		baseURL, apiKey, model string
	}{
		{"missing base url", "", "k", "m"},
		{"missing api key", "http://x", "", "m"},
		{"missing model", "http://x", "k", ""},
	}
	for _, tc := range cases {
		if _, err := NewClient(tc.baseURL, tc.apiKey, tc.model); err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
	}
	if _, err := NewClient("http://x", "k", "m"); err != nil {
		t.Fatalf("full config should succeed: %v", err)
	}
}

func collect(t *testing.T, chunks <-chan string, errs <-chan error) (string, error) {
	t.Helper()
	var sb strings.Builder
	for chunks != nil || errs != nil {
		select {
		case s, ok := <-chunks:
			if !ok {
				chunks = nil
				continue
			}
			sb.WriteString(s)
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if err != nil {
				return sb.String(), err
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("stream did not finish")
		}
	}
	return sb.String(), nil
}

func TestStreamChat_RelaysFragmentsInOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"one \"}}]}\n"))
		_, _ = w.Write([]byte("data: {\"choices\":[{\"delta\":{\"content\":\"two\"}}]}\n"))
		_, _ = w.Write([]byte("data: [DONE]\n"))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, "secret", "test-model")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	chunks, errs := c.StreamChat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	got, err := collect(t, chunks, errs)
	if err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if got != "one two" {
		t.Fatalf("relay = %q, want %q", got, "one two")
	}
}

func TestStreamChat_UpstreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, "secret", "test-model")
	chunks, errs := c.StreamChat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	_, err := collect(t, chunks, errs)
	if err == nil {
		t.Fatalf("expected an error for a 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("error should carry the upstream status: %v", err)
	}
}

func TestStreamChat_EmptyBodyIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, "secret", "test-model")
	chunks, errs := c.StreamChat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	_, err := collect(t, chunks, errs)
	if err == nil || !strings.Contains(err.Error(), "empty response body") {
		t.Fatalf("expected the empty-body error, got %v", err)
	}
}

func TestChat_ReturnsMessageContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello"}}]}`))
	}))
	defer srv.Close()

	c, _ := NewClient(srv.URL, "secret", "test-model")
	got, err := c.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if got != "hello" {
		t.Fatalf("content = %q", got)
	}
}
