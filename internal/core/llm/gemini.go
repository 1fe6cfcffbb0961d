package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

type GeminiProvider struct {
	apiKey      string
	model       string
	temperature float32
	maxTokens   int
	baseURL     string
	client      *http.Client
}

func NewGeminiProvider(apiKey string, model string, temperature float32, maxTokens int) *GeminiProvider {
	if model == "" {
		model = defaultGeminiModel
	}
	if temperature == 0 {
		temperature = defaultTemperature
	}
	if maxTokens == 0 {
		maxTokens = 2048
	}

	return &GeminiProvider{
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		maxTokens:   maxTokens,
		baseURL:     "https://generativelanguage.googleapis.com/v1",
		client:      &http.Client{Timeout: restTimeout},
	}
}

func (p *GeminiProvider) GetProviderName() string {
	return "Google Gemini"
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig struct {
		Temperature     float32 `json:"temperature"`
		MaxOutputTokens int     `json:"maxOutputTokens"`
	} `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		TotalTokenCount int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

// geminiContents maps history onto user/model turns. The v1 API has no system
// role, so the prompt is folded into the first user turn.
func geminiContents(userMessage, systemPrompt string, history []Message) []geminiContent {
	contents := make([]geminiContent, 0, len(history)+1)
	prefix := ""
	if systemPrompt != "" {
		prefix = systemPrompt + "\n\n"
	}
	turn := func(role, text string) {
		if role == "user" {
			text, prefix = prefix+text, ""
		}
		contents = append(contents, geminiContent{Parts: []geminiPart{{Text: text}}, Role: role})
	}
	for _, m := range history {
		if m.Role == RoleAssistant {
			turn("model", m.Content)
		} else {
			turn("user", m.Content)
		}
	}
	turn("user", userMessage)
	return contents
}

func (p *GeminiProvider) Invoke(ctx context.Context, userMessage, systemPrompt string, history []Message) (*Completion, error) {
	var req geminiRequest
	req.Contents = geminiContents(userMessage, systemPrompt, history)
	req.GenerationConfig.Temperature = p.temperature
	req.GenerationConfig.MaxOutputTokens = p.maxTokens

	call := restCall{
		client:   p.client,
		provider: "gemini",
		model:    p.model,
		url:      fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, p.model, url.QueryEscape(p.apiKey)),
	}

	var resp geminiResponse
	if err := call.do(ctx, req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("no response from Gemini (candidates: %d)", len(resp.Candidates))
	}

	model := resp.ModelVersion
	if model == "" {
		model = p.model
	}
	return &Completion{
		Reply:      resp.Candidates[0].Content.Parts[0].Text,
		TokensUsed: resp.UsageMetadata.TotalTokenCount,
		Model:      model,
	}, nil
}
