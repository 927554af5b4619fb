package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSetHeaderPreserveCase(t *testing.T) {
	hdr := http.Header{}
	setHeaderPreserveCase(hdr, "HTTP-Referer", "https://example.com/app")
	if vals := hdr["HTTP-Referer"]; len(vals) != 1 || vals[0] != "https://example.com/app" {
		t.Fatalf("expected HTTP-Referer slice to be preserved, got %+v", vals)
	}
	if _, exists := hdr["Http-Referer"]; exists {
		t.Fatalf("unexpected canonical header variant present: %+v", hdr)
	}

	setHeaderPreserveCase(hdr, "Referer", "https://example.com/app")
	if got := hdr.Get("Referer"); got != "https://example.com/app" {
		t.Fatalf("expected Referer to be set via canonical path, got %q", got)
	}

	// Blank values should be ignored.
	setHeaderPreserveCase(hdr, "  ", "value")
	setHeaderPreserveCase(hdr, "X-Test", "   ")
	if _, exists := hdr[" "]; exists {
		t.Fatalf("expected blank header keys to be ignored")
	}
	if got := hdr.Get("X-Test"); got != "" {
		t.Fatalf("expected blank header values to be skipped, got %q", got)
	}
}

func testConfig(url string) Config {
	return Config{
		BaseURL:      url,
		APIKey:       "sk-test",
		Model:        DefaultModel,
		Temperature:  DefaultTemperature,
		Timeout:      2 * time.Second,
		HeaderName:   "Authorization",
		HeaderPrefix: "Bearer ",
	}
}

func TestCompleteSendsSingleUserMessage(t *testing.T) {
	var got struct {
		Model       string              `json:"model"`
		Temperature float64             `json:"temperature"`
		N           int                 `json:"n"`
		Messages    []map[string]string `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"My clue is Ocean."}}]}`))
	}))
	defer srv.Close()

	text, err := New(testConfig(srv.URL)).Complete(context.Background(), "give a clue")
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if text != "My clue is Ocean." {
		t.Fatalf("unexpected completion %q", text)
	}
	if got.Model != DefaultModel || got.Temperature != DefaultTemperature || got.N != 1 {
		t.Fatalf("unexpected request knobs: %+v", got)
	}
	if len(got.Messages) != 1 || got.Messages[0]["role"] != "user" || got.Messages[0]["content"] != "give a clue" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
}

func TestCompleteHTTPErrorIsCompletionError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"bad key"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL)).Complete(context.Background(), "hi")
	var ce *CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompletionError, got %T %v", err, err)
	}
	if ce.Status != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", ce.Status)
	}
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := New(testConfig(srv.URL)).Complete(context.Background(), "hi")
	var ce *CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompletionError, got %T %v", err, err)
	}
}

func TestCompleteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	_, err := New(cfg).Complete(context.Background(), "hi")
	var ce *CompletionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompletionError, got %T %v", err, err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
