package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/textproto"
	"strings"
)

// CompletionError is any failure to get text back from the endpoint:
// transport, non-2xx status, or an unreadable body. Not retried.
type CompletionError struct {
	Status int
	Body   string
	Err    error
}

func (e *CompletionError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("completion http %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("completion failed: %v", e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

// Client sends single-message chat completions.
type Client struct {
	cfg  Config
	http *http.Client
}

func New(cfg Config) *Client {
	return &Client{cfg: cfg, http: &http.Client{}}
}

func (c *Client) Model() string { return c.cfg.Model }

// Complete sends prompt as one user message and returns the first choice.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	payload := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"n":           1,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	if c.cfg.TopP != nil {
		payload["top_p"] = *c.cfg.TopP
	}
	if c.cfg.MaxTokens != nil {
		payload["max_tokens"] = *c.cfg.MaxTokens
	}

	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(b))
	if err != nil {
		return "", &CompletionError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(c.cfg.HeaderName, c.cfg.HeaderPrefix+c.cfg.APIKey)
	if c.cfg.Organization != "" {
		req.Header.Set("OpenAI-Organization", c.cfg.Organization)
	}
	for k, v := range c.cfg.ExtraHeaders {
		setHeaderPreserveCase(req.Header, k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &CompletionError{Err: err}
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return "", &CompletionError{Status: resp.StatusCode, Err: err}
	}
	body := buf.Bytes()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &CompletionError{Status: resp.StatusCode, Body: truncate(string(body), 800)}
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &cc); err != nil {
		return "", &CompletionError{Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(cc.Choices) == 0 {
		return "", &CompletionError{Err: errors.New("no choices returned")}
	}
	text := cc.Choices[0].Message.Content
	if c.cfg.Debug {
		log.Printf("[llm] raw completion: %s", truncate(text, 2000))
	}
	return text, nil
}

// setHeaderPreserveCase keeps spellings like "HTTP-Referer" that some gateways
// match case-sensitively; canonical names go through Header.Set.
func setHeaderPreserveCase(h http.Header, key, value string) {
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if key == "" || value == "" {
		return
	}
	if textproto.CanonicalMIMEHeaderKey(key) == key {
		h.Set(key, value)
		return
	}
	h[key] = []string{value}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
