package llm

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type providerKind int

const (
	providerOpenAI providerKind = iota
	providerOpenRouter
)

const (
	DefaultModel       = "n/a"
	DefaultTemperature = 0.5
	DefaultTimeout     = 45 * time.Second

	defaultSiteURL = "https://github.com/libklein/llm-fishtank"
	defaultTitle   = "LLM Fishtank"
)

var ErrMissingCredentials = errors.New("please specify LLM endpoint and API key")

// Config describes one OpenAI-compatible chat completions endpoint.
type Config struct {
	Kind         providerKind
	BaseURL      string
	APIKey       string
	Model        string
	Temperature  float64
	TopP         *float64
	MaxTokens    *int
	Timeout      time.Duration
	HeaderName   string
	HeaderPrefix string
	Organization string
	ExtraHeaders map[string]string
	Debug        bool
}

// ResolveConfig prefers explicit values and falls back to the usual
// OPENAI_* / OPENROUTER_* environment variables.
func ResolveConfig(endpoint, apiKey, model string) (Config, error) {
	cfg := Config{
		Model:        strings.TrimSpace(model),
		Temperature:  DefaultTemperature,
		Timeout:      DefaultTimeout,
		ExtraHeaders: map[string]string{},
	}
	if cfg.Model == "" {
		cfg.Model = firstNonEmpty(os.Getenv("OPENAI_MODEL"), os.Getenv("OPENROUTER_MODEL"), DefaultModel)
	}

	cfg.BaseURL = strings.TrimRight(firstNonEmpty(
		endpoint,
		os.Getenv("OPENAI_API_BASE"),
		os.Getenv("OPENAI_BASE_URL"),
		os.Getenv("OPENROUTER_API_BASE"),
		os.Getenv("OPENROUTER_BASE_URL"),
	), "/")
	if strings.Contains(strings.ToLower(cfg.BaseURL), "openrouter") {
		cfg.Kind = providerOpenRouter
	}

	switch cfg.Kind {
	case providerOpenRouter:
		cfg.APIKey = firstNonEmpty(apiKey, os.Getenv("OPENROUTER_API_KEY"), os.Getenv("OPENAI_API_KEY"))
	default:
		cfg.APIKey = firstNonEmpty(apiKey, os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENROUTER_API_KEY"))
	}
	if cfg.BaseURL == "" || cfg.APIKey == "" {
		return Config{}, ErrMissingCredentials
	}

	headerName := firstNonEmpty(os.Getenv("OPENAI_API_KEY_HEADER"), os.Getenv("OPENROUTER_API_KEY_HEADER"))
	if headerName == "" {
		headerName = "Authorization"
	}
	prefix := os.Getenv("OPENAI_API_KEY_PREFIX")
	if prefix == "" {
		prefix = os.Getenv("OPENROUTER_API_KEY_PREFIX")
	}
	if headerName == "Authorization" && strings.TrimSpace(prefix) == "" {
		prefix = "Bearer "
	}
	cfg.HeaderName = headerName
	cfg.HeaderPrefix = prefix
	cfg.Organization = strings.TrimSpace(os.Getenv("OPENAI_ORG"))

	if cfg.Kind == providerOpenRouter {
		site := firstNonEmpty(os.Getenv("OPENROUTER_SITE_URL"), defaultSiteURL)
		cfg.ExtraHeaders["HTTP-Referer"] = site
		cfg.ExtraHeaders["Referer"] = site
		cfg.ExtraHeaders["X-Title"] = firstNonEmpty(os.Getenv("OPENROUTER_TITLE"), defaultTitle)
	}

	if v := firstNonEmpty(os.Getenv("OPENAI_TOP_P"), os.Getenv("OPENROUTER_TOP_P")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.TopP = &f
		}
	}
	if v := firstNonEmpty(os.Getenv("OPENAI_MAX_OUTPUT_TOKENS"), os.Getenv("OPENROUTER_MAX_OUTPUT_TOKENS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxTokens = &n
		}
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
