package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// compatibleEndpoint describes one backend that speaks the OpenAI chat API
type compatibleEndpoint struct {
	name         string
	baseURL      string // empty means api.openai.com
	defaultModel string
	maxTokens    int
}

var (
	openAIEndpoint   = compatibleEndpoint{name: "OpenAI", defaultModel: defaultOpenAIModel, maxTokens: 1024}
	groqEndpoint     = compatibleEndpoint{name: "Groq", baseURL: "https://api.groq.com/openai/v1", defaultModel: defaultGroqModel, maxTokens: 2048}
	deepSeekEndpoint = compatibleEndpoint{name: "DeepSeek", baseURL: "https://api.deepseek.com", defaultModel: defaultDeepSeekModel, maxTokens: 2048}
)

// CompatibleProvider serves OpenAI, Groq, DeepSeek and Ollama through one go-openai client
type CompatibleProvider struct {
	client      *openai.Client
	name        string
	model       string
	temperature float32
	maxTokens   int
}

func newCompatibleProvider(ep compatibleEndpoint, apiKey, model string, temperature float32, maxTokens int) *CompatibleProvider {
	if model == "" {
		model = ep.defaultModel
	}
	if temperature == 0 {
		temperature = defaultTemperature
	}
	if maxTokens == 0 {
		maxTokens = ep.maxTokens
	}

	config := openai.DefaultConfig(apiKey)
	if ep.baseURL != "" {
		config.BaseURL = ep.baseURL
	}
	config.HTTPClient = &http.Client{Timeout: 60 * time.Second}

	return &CompatibleProvider{
		client:      openai.NewClientWithConfig(config),
		name:        ep.name,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

func NewOpenAIProvider(apiKey, model string, temperature float32, maxTokens int) *CompatibleProvider {
	return newCompatibleProvider(openAIEndpoint, apiKey, model, temperature, maxTokens)
}

func NewGroqProvider(apiKey, model string, temperature float32, maxTokens int) *CompatibleProvider {
	return newCompatibleProvider(groqEndpoint, apiKey, model, temperature, maxTokens)
}

func NewDeepSeekProvider(apiKey, model string, temperature float32, maxTokens int) *CompatibleProvider {
	return newCompatibleProvider(deepSeekEndpoint, apiKey, model, temperature, maxTokens)
}

// NewOllamaProvider talks to a local Ollama server. Ollama ignores the key but the client requires one.
func NewOllamaProvider(baseURL, model string, temperature float32, maxTokens int) *CompatibleProvider {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	ep := compatibleEndpoint{
		name:         "Ollama",
		baseURL:      strings.TrimSuffix(baseURL, "/") + "/v1",
		defaultModel: defaultOllamaModel,
		maxTokens:    1024,
	}
	return newCompatibleProvider(ep, "ollama", model, temperature, maxTokens)
}

func (p *CompatibleProvider) GetProviderName() string {
	return p.name
}

func (p *CompatibleProvider) Invoke(ctx context.Context, userMessage, systemPrompt string, history []Message) (*Completion, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    buildChatMessages(userMessage, systemPrompt, history),
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("%s error: %w", strings.ToLower(p.name), err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from %s", strings.ToLower(p.name))
	}

	usedModel := resp.Model
	if usedModel == "" {
		usedModel = p.model
	}

	return &Completion{
		Reply:      resp.Choices[0].Message.Content,
		TokensUsed: resp.Usage.TotalTokens,
		Model:      usedModel,
	}, nil
}

// buildChatMessages lays out system prompt, history and the new user turn
// in the order OpenAI-compatible APIs expect.
func buildChatMessages(userMessage, systemPrompt string, history []Message) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	}
	for _, m := range history {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userMessage})
	return messages
}
