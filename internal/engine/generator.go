package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	// PlaceholderReply substitutes for an empty or whitespace-only model reply.
	PlaceholderReply = "No response generated."

	// ErrorReply substitutes for a failed generation call. The safety decision
	// and the generation step are independent once ALLOWED has been decided,
	// so a generator failure never flips the verdict.
	ErrorReply = "Error generating response."
)

// ResponseGenerator adapts the external text model for reply generation.
// Generate never returns an error past this boundary.
type ResponseGenerator struct {
	model  TextModel
	logger *zap.Logger
}

// NewResponseGenerator creates a generator adapter over the given model.
func NewResponseGenerator(model TextModel, logger *zap.Logger) *ResponseGenerator {
	return &ResponseGenerator{model: model, logger: logger}
}

// Generate asks the model to respond to the raw text. Failures map to the
// fixed error reply; empty replies map to the fixed placeholder.
func (g *ResponseGenerator) Generate(ctx context.Context, text string) string {
	raw, err := g.model.Generate(ctx, text)
	if err != nil {
		g.logger.Warn("generator backend error, substituting error reply",
			zap.Error(err),
		)
		return ErrorReply
	}
	reply := strings.TrimSpace(raw)
	if reply == "" {
		return PlaceholderReply
	}
	return reply
}
