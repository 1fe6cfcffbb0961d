package llm

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
)

// LLMProvider interface untuk multiple AI providers
type LLMProvider interface {
	// Invoke sends the user message with a system prompt and prior turns.
	// An empty history makes the call independent of any conversation.
	Invoke(ctx context.Context, userMessage, systemPrompt string, history []Message) (*Completion, error)
	GetProviderName() string
}

type ProviderType string

const (
	ProviderOpenAI   ProviderType = "openai"
	ProviderGemini   ProviderType = "gemini"
	ProviderGroq     ProviderType = "groq"
	ProviderDeepSeek ProviderType = "deepseek"
	ProviderClaude   ProviderType = "claude"
	ProviderOllama   ProviderType = "ollama"
)

const (
	defaultOpenAIModel   = "gpt-4o-mini"
	defaultGeminiModel   = "gemini-2.5-flash"
	defaultGroqModel     = "llama-3.1-8b-instant"
	defaultDeepSeekModel = "deepseek-chat"
	defaultClaudeModel   = "claude-3-5-sonnet-20241022"
	defaultOllamaModel   = "llama3.1"
)

// Low temperature keeps JSON extraction stable
const (
	defaultTemperature = 0.3
	defaultMaxTokens   = 1024
	defaultTimeout     = 30 * time.Second
)

// ProviderConfig untuk create provider
type ProviderConfig struct {
	Type ProviderType

	// APIKey is read from the provider's own env var, e.g. GROQ_API_KEY
	APIKey string

	// Ollama runs locally and needs no key
	OllamaBaseURL string

	Model       string
	Temperature float32
	MaxTokens   int

	// Timeout bounds every call; the caller degrades to heuristics when it fires
	Timeout time.Duration
}

type providerEntry struct {
	keyEnv       string // empty when no key is needed
	defaultModel string
	build        func(cfg *ProviderConfig) LLMProvider
}

var providers = map[ProviderType]providerEntry{
	ProviderOpenAI: {"OPENAI_API_KEY", defaultOpenAIModel, func(c *ProviderConfig) LLMProvider {
		return NewOpenAIProvider(c.APIKey, c.Model, c.Temperature, c.MaxTokens)
	}},
	ProviderGemini: {"GEMINI_API_KEY", defaultGeminiModel, func(c *ProviderConfig) LLMProvider {
		return NewGeminiProvider(c.APIKey, c.Model, c.Temperature, c.MaxTokens)
	}},
	ProviderGroq: {"GROQ_API_KEY", defaultGroqModel, func(c *ProviderConfig) LLMProvider {
		return NewGroqProvider(c.APIKey, c.Model, c.Temperature, c.MaxTokens)
	}},
	ProviderDeepSeek: {"DEEPSEEK_API_KEY", defaultDeepSeekModel, func(c *ProviderConfig) LLMProvider {
		return NewDeepSeekProvider(c.APIKey, c.Model, c.Temperature, c.MaxTokens)
	}},
	ProviderClaude: {"CLAUDE_API_KEY", defaultClaudeModel, func(c *ProviderConfig) LLMProvider {
		return NewClaudeProvider(c.APIKey, c.Model, c.Temperature, c.MaxTokens)
	}},
	ProviderOllama: {"", defaultOllamaModel, func(c *ProviderConfig) LLMProvider {
		return NewOllamaProvider(c.OllamaBaseURL, c.Model, c.Temperature, c.MaxTokens)
	}},
}

// SupportedProviders lists valid LLM_PROVIDER values, sorted
func SupportedProviders() []string {
	names := make([]string, 0, len(providers))
	for t := range providers {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// NewProvider factory untuk create LLM provider
func NewProvider(cfg *ProviderConfig) (LLMProvider, error) {
	entry, ok := providers[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider type: %s (supported: %s)", cfg.Type, strings.Join(SupportedProviders(), ", "))
	}
	if entry.keyEnv != "" && cfg.APIKey == "" {
		return nil, fmt.Errorf("%s is required", entry.keyEnv)
	}
	return entry.build(cfg), nil
}

// LoadProviderFromEnv load config dari environment variables
func LoadProviderFromEnv() (*ProviderConfig, error) {
	providerType := ProviderType(strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER"))))
	if providerType == "" {
		providerType = ProviderGroq
	}
	entry, ok := providers[providerType]
	if !ok {
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", providerType)
	}

	cfg := &ProviderConfig{
		Type:          providerType,
		OllamaBaseURL: os.Getenv("OLLAMA_BASE_URL"),
		Model:         os.Getenv("LLM_MODEL"),
		Temperature:   defaultTemperature,
		MaxTokens:     defaultMaxTokens,
		Timeout:       defaultTimeout,
	}
	if entry.keyEnv != "" {
		cfg.APIKey = os.Getenv(entry.keyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = entry.defaultModel
	}

	if raw := os.Getenv("LLM_TIMEOUT_SECONDS"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("invalid LLM_TIMEOUT_SECONDS: %q", raw)
		}
		cfg.Timeout = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}
