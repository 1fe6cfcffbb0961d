package llm

import (
	"context"
	"errors"
	"net/http"
)

const anthropicVersion = "2023-06-01"

type ClaudeProvider struct {
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
	baseURL     string
	client      *http.Client
}

func NewClaudeProvider(apiKey string, model string, temperature float32, maxTokens int) *ClaudeProvider {
	if model == "" {
		model = defaultClaudeModel
	}
	if temperature == 0 {
		temperature = defaultTemperature
	}
	if maxTokens == 0 {
		maxTokens = 2048
	}

	return &ClaudeProvider{
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		baseURL:     "https://api.anthropic.com/v1",
		client:      &http.Client{Timeout: restTimeout},
	}
}

func (p *ClaudeProvider) GetProviderName() string {
	return "Anthropic Claude"
}

type claudeRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float32   `json:"temperature"`
	Messages    []Message `json:"messages"`
	System      string    `json:"system,omitempty"`
}

type claudeResponse struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// Message already serialises as {"role","content"}, which is what /messages takes
func (p *ClaudeProvider) Invoke(ctx context.Context, userMessage, systemPrompt string, history []Message) (*Completion, error) {
	messages := append(append(make([]Message, 0, len(history)+1), history...), Message{Role: RoleUser, Content: userMessage})

	call := restCall{
		client:   p.client,
		provider: "claude",
		model:    p.model,
		url:      p.baseURL + "/messages",
		headers: map[string]string{
			"x-api-key":         p.apiKey,
			"anthropic-version": anthropicVersion,
		},
	}

	var resp claudeResponse
	err := call.do(ctx, claudeRequest{
		Model:       p.model,
		MaxTokens:   p.maxTokens,
		Temperature: p.temperature,
		Messages:    messages,
		System:      systemPrompt,
	}, &resp)
	if err != nil {
		return nil, err
	}

	var reply string
	for _, block := range resp.Content {
		if block.Type == "" || block.Type == "text" {
			reply += block.Text
		}
	}
	if reply == "" {
		return nil, errors.New("no response from Claude")
	}

	model := resp.Model
	if model == "" {
		model = p.model
	}
	return &Completion{
		Reply:      reply,
		TokensUsed: resp.Usage.InputTokens + resp.Usage.OutputTokens,
		Model:      model,
	}, nil
}
