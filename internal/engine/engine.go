package engine

import (
	"context"
	"time"

	"github.com/triage-ai/bastion/internal/cache"
	"go.uber.org/zap"
)

// FirewallEngine sequences the safety pipeline: rule checks short-circuit to
// a block, otherwise the cached classifier feeds the decision policy, and only
// an allowed verdict reaches the response generator. The engine owns no state
// of its own; the classification cache is the sole shared mutable resource.
type FirewallEngine struct {
	rules      *RuleMatcher
	classifier *SafetyClassifier
	generator  *ResponseGenerator
	cache      *cache.Cache[Classification]
	policy     PolicyConfig
	logger     *zap.Logger
}

// NewFirewallEngine creates an engine with the given collaborators.
func NewFirewallEngine(
	rules *RuleMatcher,
	classifier *SafetyClassifier,
	generator *ResponseGenerator,
	clsCache *cache.Cache[Classification],
	policy PolicyConfig,
	logger *zap.Logger,
) *FirewallEngine {
	return &FirewallEngine{
		rules:      rules,
		classifier: classifier,
		generator:  generator,
		cache:      clsCache,
		policy:     policy,
		logger:     logger,
	}
}

// Evaluate runs the full pipeline for one request and returns the verdict
// plus elapsed time.
//
// Rule-blocked text never reaches the classifier, so the cache is not
// populated for it. The cache lock is never held while the classifier call is
// in flight; concurrent misses on the same text may each pay for a model
// call. If ctx is cancelled mid-call the in-flight classification may still
// complete and populate the cache — population is idempotent, so that is
// harmless.
func (e *FirewallEngine) Evaluate(ctx context.Context, req Request) (Verdict, time.Duration) {
	start := time.Now()

	if reason, matched := e.rules.Match(req.Text); matched {
		v := Decide(reason, true, Classification{}, e.policy)
		e.logVerdict(req, v, time.Since(start))
		return v, time.Since(start)
	}

	cls, hit := e.cache.GetOrCompute(req.Text, func(text string) Classification {
		return e.classifier.Classify(ctx, text)
	})

	v := Decide("", false, cls, e.policy)
	v.CacheHit = hit
	if v.Status == StatusAllowed {
		v.Reply = e.generator.Generate(ctx, req.Text)
	}

	e.logVerdict(req, v, time.Since(start))
	return v, time.Since(start)
}

func (e *FirewallEngine) logVerdict(req Request, v Verdict, elapsed time.Duration) {
	caller := req.CallerID
	if caller == "" {
		caller = "anonymous"
	}
	e.logger.Info("input evaluated",
		zap.String("caller_id", caller),
		zap.String("text_preview", preview(req.Text, 50)),
		zap.String("status", v.Status.String()),
		zap.String("reason", v.Reason),
		zap.Bool("cache_hit", v.CacheHit),
		zap.Duration("elapsed", elapsed),
	)
}

// preview returns the first n runes of s, never splitting a multi-byte
// character.
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
