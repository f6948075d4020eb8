package engine

import "context"

// TextModel is the external generative capability behind the adapters.
// Implementations return the model's raw reply string; the adapters own all
// normalization and failure handling, so implementations are free to fail.
type TextModel interface {
	// Classify asks the model to label text as SAFE or UNSAFE and returns
	// the raw reply string.
	Classify(ctx context.Context, text string) (string, error)

	// Generate asks the model to respond to text and returns the raw reply.
	Generate(ctx context.Context, text string) (string, error)
}
