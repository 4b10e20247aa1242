package agents

import "context"

// GenerateOptions tunes one model call.
type GenerateOptions struct {
	// Temperature overrides the default 0.1 when non-nil.
	Temperature *float32
	// JSONOutput requests an application/json response. Ignored when
	// grounding is active; the API rejects the combination.
	JSONOutput bool
	// DatastorePath enables Vertex AI Search grounding against that
	// datastore when non-empty.
	DatastorePath string
}

// Provider is the LLM surface the agents run against. Implemented by
// GeminiProvider for real calls and by fakes in tests.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt, systemPrompt string, opts GenerateOptions) (string, error)
}
