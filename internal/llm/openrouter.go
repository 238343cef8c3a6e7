package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// openrouterProvider speaks the OpenAI-compatible chat completions API.
type openrouterProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  http.Client
}

type orMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type orRequest struct {
	Model       string      `json:"model"`
	Messages    []orMessage `json:"messages"`
	MaxTokens   int         `json:"max_tokens,omitempty"`
	Temperature float64     `json:"temperature"`
}

type orChoice struct {
	Message      orMessage `json:"message"`
	FinishReason string    `json:"finish_reason"`
}

type orResponse struct {
	Choices []orChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (o *openrouterProvider) Name() string {
	return "openrouter/" + o.model
}

func (o *openrouterProvider) Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error) {
	req := orRequest{
		Model:       o.model,
		Temperature: opts.Temperature,
		MaxTokens:   max(opts.MaxTokens, 0),
	}
	if opts.Model != "" {
		req.Model = opts.Model
	}
	if opts.System != "" {
		req.Messages = append(req.Messages, orMessage{Role: "system", Content: opts.System})
	}
	req.Messages = append(req.Messages, orMessage{Role: "user", Content: prompt})

	headers := map[string]string{
		"Authorization": "Bearer " + o.apiKey,
		"X-Title":       "factdice",
	}
	var resp orResponse
	if err := postJSON(ctx, &o.client, "openrouter", o.baseURL+"/chat/completions", headers, req, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("openrouter API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
