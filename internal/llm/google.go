package llm

import (
	"context"
	"fmt"
	"net/http"
)

// googleProvider calls the Gemini generateContent REST endpoint. The key goes
// in the x-goog-api-key header, never in the URL.
type googleProvider struct {
	apiKey  string
	model   string
	baseURL string
	client  http.Client
}

type googleRequest struct {
	Contents          []googleContent  `json:"contents"`
	SystemInstruction *googleContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  *googleGenConfig `json:"generationConfig,omitempty"`
}

type googleContent struct {
	Parts []googlePart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type googlePart struct {
	Text string `json:"text"`
}

type googleGenConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type googleCandidate struct {
	Content struct {
		Parts []googlePart `json:"parts"`
	} `json:"content"`
	FinishReason string `json:"finishReason,omitempty"`
}

type googleResponse struct {
	Candidates []googleCandidate `json:"candidates"`
	Error      *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

func textContent(role, text string) googleContent {
	return googleContent{Role: role, Parts: []googlePart{{Text: text}}}
}

func (g *googleProvider) Name() string {
	return "google/" + g.model
}

func (g *googleProvider) Complete(ctx context.Context, prompt string, opts CompletionOpts) (string, error) {
	model := g.model
	if opts.Model != "" {
		model = opts.Model
	}

	req := googleRequest{Contents: []googleContent{textContent("", prompt)}}
	if opts.System != "" {
		sys := textContent("", opts.System)
		req.SystemInstruction = &sys
	}
	if opts.MaxTokens > 0 || opts.Temperature > 0 {
		req.GenerationConfig = &googleGenConfig{MaxOutputTokens: opts.MaxTokens, Temperature: opts.Temperature}
	}

	var resp googleResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, model)
	if err := postJSON(ctx, &g.client, "google", url, map[string]string{"x-goog-api-key": g.apiKey}, req, &resp); err != nil {
		return "", err
	}
	if resp.Error != nil {
		return "", fmt.Errorf("google API error: %s (code %d)", resp.Error.Message, resp.Error.Code)
	}

	// candidates[0].content.parts[0].text
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
