// Package provider resolves configuration into a concrete llm.Client.
package provider

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/jasonzFong/aura-editor/pkg/llm"
	"github.com/jasonzFong/aura-editor/pkg/llm/provider/anthropic"
	"github.com/jasonzFong/aura-editor/pkg/llm/provider/mock"
	"github.com/jasonzFong/aura-editor/pkg/llm/provider/ollama"
	"github.com/jasonzFong/aura-editor/pkg/llm/provider/openai"
)

// Supported provider names.
const (
	DeepSeek  = "deepseek"
	OpenAI    = "openai"
	Anthropic = "anthropic"
	Ollama    = "ollama"
	Mock      = "mock"
)

// SupportedProviders returns the list of all supported provider names.
func SupportedProviders() []string {
	return []string{DeepSeek, OpenAI, Anthropic, Ollama, Mock}
}

// Config selects and configures a provider.
type Config struct {
	Provider string // one of SupportedProviders, defaults to deepseek
	Model    string // provider default when empty
	APIKey   string // explicit key, highest priority
	BaseURL  string // override base URL

	HTTPClient *http.Client
	Logger     *slog.Logger
}

// placeholderKeys are template values shipped in sample configs.
var placeholderKeys = map[string]bool{
	"your_key_here":       true,
	"your_api_key":        true,
	"your_api_key_here":   true,
	"sk-your-key-here":    true,
	"<your-api-key-here>": true,
}

// New creates a client for cfg. Resolution order for the API key:
//  1. Explicit APIKey in config
//  2. Environment (DEEPSEEK_API_KEY, OPENAI_API_KEY, ANTHROPIC_API_KEY)
//  3. Fall back to the mock client
//
// Ollama needs no key.
func New(cfg Config) (llm.Client, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = DeepSeek
	}
	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	switch name {
	case Mock:
		return mock.New(), nil
	case Ollama:
		return ollama.New(orDefault(cfg.Model, "llama3.2"), orDefault(cfg.BaseURL, ollama.DefaultBaseURL), cfg.HTTPClient), nil
	case DeepSeek, OpenAI, Anthropic:
	default:
		return nil, fmt.Errorf("unknown provider: %q (supported: %v)", cfg.Provider, SupportedProviders())
	}

	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		key = os.Getenv(envKey(name))
	}
	if key == "" || placeholderKeys[strings.ToLower(key)] {
		log.Warn("no API key configured, using mock LLM client", "provider", name)
		return mock.New(), nil
	}

	switch name {
	case DeepSeek:
		return openai.New(key, orDefault(cfg.Model, "deepseek-chat"), orDefault(cfg.BaseURL, openai.DeepSeekBaseURL), cfg.HTTPClient), nil
	case OpenAI:
		return openai.New(key, orDefault(cfg.Model, "gpt-4o-mini"), orDefault(cfg.BaseURL, openai.OpenAIBaseURL), cfg.HTTPClient), nil
	default:
		return anthropic.New(key, orDefault(cfg.Model, "claude-haiku-4-5-20251001"), cfg.BaseURL), nil
	}
}

// HasCredentials reports whether New would return a real provider.
func HasCredentials(cfg Config) bool {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		name = DeepSeek
	}
	switch name {
	case Ollama:
		return true
	case Mock:
		return false
	}
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		key = os.Getenv(envKey(name))
	}
	return key != "" && !placeholderKeys[strings.ToLower(key)]
}

func envKey(name string) string {
	switch name {
	case OpenAI:
		return "OPENAI_API_KEY"
	case Anthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "DEEPSEEK_API_KEY"
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
