package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Service wraps LLM provider untuk dependency injection
type Service struct {
	provider LLMProvider
	timeout  time.Duration
}

// NewService creates LLM service with provider from environment
func NewService() (*Service, error) {
	cfg, err := LoadProviderFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load LLM config: %w", err)
	}

	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM provider: %w", err)
	}

	log.Info().
		Str("provider", provider.GetProviderName()).
		Str("model", cfg.Model).
		Dur("timeout", cfg.Timeout).
		Msg("🤖 LLM provider ready")

	return &Service{provider: provider, timeout: cfg.Timeout}, nil
}

// NewServiceWithProvider creates service with custom provider (for testing)
func NewServiceWithProvider(provider LLMProvider) *Service {
	return &Service{provider: provider}
}

// Invoke runs one completion, bounded by the configured timeout
func (s *Service) Invoke(ctx context.Context, userMessage, systemPrompt string, history []Message) (*Completion, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.provider.Invoke(ctx, userMessage, systemPrompt, history)
}

// GenerateResponse is Invoke without history, returning only the reply text
func (s *Service) GenerateResponse(ctx context.Context, systemPrompt, userMessage string) (string, error) {
	completion, err := s.Invoke(ctx, userMessage, systemPrompt, nil)
	if err != nil {
		return "", err
	}
	return completion.Reply, nil
}

// GetProviderName returns current provider name
func (s *Service) GetProviderName() string {
	return s.provider.GetProviderName()
}
