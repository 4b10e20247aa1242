package agents

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider calls the Gemini API through the official GenAI SDK, with
// optional Vertex AI Search grounding against the filings datastore.
type GeminiProvider struct {
	APIKey string
	Model  string
}

var _ Provider = (*GeminiProvider)(nil)

func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini provider: API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiProvider{APIKey: apiKey, Model: model}, nil
}

func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, opts GenerateOptions) (string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	temperature := float32(0.1)
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}

	if opts.DatastorePath != "" {
		config.Tools = []*genai.Tool{{
			Retrieval: &genai.Retrieval{
				VertexAISearch: &genai.VertexAISearch{
					Datastore: opts.DatastorePath,
				},
			},
		}}
	} else if opts.JSONOutput {
		config.ResponseMIMEType = "application/json"
	}

	result, err := client.Models.GenerateContent(ctx, p.Model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}
	return result.Text(), nil
}
