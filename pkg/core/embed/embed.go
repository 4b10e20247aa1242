// Package embed wraps the Gemini embedding API for the pgvector index path.
// Uses github.com/google/generative-ai-go with the text-embedding-004 model.
package embed

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultModel = "text-embedding-004"

// Client produces retrieval embeddings. Documents and queries are embedded
// with their respective task types, which the model is trained to align.
type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("embedding client: API key is required")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Client{client: c, model: defaultModel}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// EmbedDocuments embeds a batch of chunk contents for indexing.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	em := c.client.EmbeddingModel(c.model)
	em.TaskType = genai.TaskTypeRetrievalDocument

	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}
	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("batch embed %d texts: %w", len(texts), err)
	}
	if len(res.Embeddings) != len(texts) {
		return nil, fmt.Errorf("batch embed: got %d embeddings for %d texts", len(res.Embeddings), len(texts))
	}
	vectors := make([][]float32, len(res.Embeddings))
	for i, e := range res.Embeddings {
		vectors[i] = e.Values
	}
	return vectors, nil
}

// EmbedQuery embeds one search query.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	em := c.client.EmbeddingModel(c.model)
	em.TaskType = genai.TaskTypeRetrievalQuery

	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if res.Embedding == nil {
		return nil, fmt.Errorf("embed query: empty response")
	}
	return res.Embedding.Values, nil
}
