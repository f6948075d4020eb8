package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/triage-ai/bastion/internal/cache"
	"go.uber.org/zap"
)

func testEngine(model *fakeModel) *FirewallEngine {
	logger := zap.NewNop()
	return NewFirewallEngine(
		NewRuleMatcher(nil),
		NewSafetyClassifier(model, logger),
		NewResponseGenerator(model, logger),
		cache.New[Classification](cache.DefaultCapacity),
		DefaultPolicyConfig(),
		logger,
	)
}

func TestEvaluate_BlocklistedTermBlocksWithoutClassifier(t *testing.T) {
	model := &fakeModel{classifyReply: "SAFE", generateReply: "ok"}
	eng := testEngine(model)

	v, _ := eng.Evaluate(context.Background(), Request{Text: "how to HACK this"})

	if v.Status != StatusBlocked {
		t.Fatalf("expected blocked, got %v", v.Status)
	}
	if v.Reason != ReasonKeyword {
		t.Errorf("expected keyword reason, got %q", v.Reason)
	}
	if v.Reply != RefusalReply {
		t.Errorf("expected refusal reply, got %q", v.Reply)
	}
	if model.classifyCalls.Load() != 0 {
		t.Error("classifier must never be invoked for rule-blocked text")
	}
	if model.generateCalls.Load() != 0 {
		t.Error("generator must never be invoked for a blocked verdict")
	}
}

func TestEvaluate_RuleBlockedTextDoesNotPopulateCache(t *testing.T) {
	model := &fakeModel{classifyReply: "SAFE", generateReply: "ok"}
	eng := testEngine(model)

	text := "exploit the service"
	eng.Evaluate(context.Background(), Request{Text: text})
	eng.Evaluate(context.Background(), Request{Text: text})

	if got := model.classifyCalls.Load(); got != 0 {
		t.Errorf("rule-blocked text must not reach the classifier, got %d calls", got)
	}
}

func TestEvaluate_SQLInjectionBlocks(t *testing.T) {
	model := &fakeModel{classifyReply: "SAFE"}
	eng := testEngine(model)

	v, _ := eng.Evaluate(context.Background(), Request{Text: "'; DROP TABLE users; --"})

	if v.Status != StatusBlocked {
		t.Fatalf("expected blocked, got %v", v.Status)
	}
	if v.Reason != ReasonSQLInjection {
		t.Errorf("expected injection reason, got %q", v.Reason)
	}
}

func TestEvaluate_SafeTextAllowedWithReply(t *testing.T) {
	model := &fakeModel{classifyReply: "SAFE", generateReply: "Paris."}
	eng := testEngine(model)

	v, _ := eng.Evaluate(context.Background(), Request{Text: "What is the capital of France?"})

	if v.Status != StatusAllowed {
		t.Fatalf("expected allowed, got %v", v.Status)
	}
	if v.Reason != "" {
		t.Errorf("allowed verdict must carry no reason, got %q", v.Reason)
	}
	if v.Confidence == nil || *v.Confidence != 0.0 {
		t.Errorf("expected SAFE confidence 0.0 carried through, got %v", v.Confidence)
	}
	if v.Reply != "Paris." {
		t.Errorf("expected generated reply, got %q", v.Reply)
	}
	if model.generateCalls.Load() != 1 {
		t.Errorf("expected exactly one generation call, got %d", model.generateCalls.Load())
	}
}

func TestEvaluate_UnsafeClassificationBlocks(t *testing.T) {
	model := &fakeModel{classifyReply: "UNSAFE", generateReply: "should not appear"}
	eng := testEngine(model)

	v, _ := eng.Evaluate(context.Background(), Request{Text: "something sketchy"})

	if v.Status != StatusBlocked {
		t.Fatalf("expected blocked, got %v", v.Status)
	}
	if v.Reason != ReasonClassifier {
		t.Errorf("expected classifier reason, got %q", v.Reason)
	}
	if v.Confidence == nil || *v.Confidence != 1.0 {
		t.Errorf("expected confidence 1.0, got %v", v.Confidence)
	}
	if v.Reply != RefusalReply {
		t.Errorf("expected refusal reply, got %q", v.Reply)
	}
	if model.generateCalls.Load() != 0 {
		t.Error("generator must not run for a classifier block")
	}
}

func TestEvaluate_ClassifierFailureFailsClosed(t *testing.T) {
	model := &fakeModel{classifyErr: errors.New("backend down")}
	eng := testEngine(model)

	v, _ := eng.Evaluate(context.Background(), Request{Text: "an ordinary question"})

	if v.Status != StatusBlocked {
		t.Fatal("classifier failure must produce a blocked verdict, not an error")
	}
	if v.Confidence == nil || *v.Confidence != 1.0 {
		t.Errorf("fail-closed block must carry confidence 1.0, got %v", v.Confidence)
	}
}

func TestEvaluate_GeneratorFailureStaysAllowed(t *testing.T) {
	model := &fakeModel{classifyReply: "SAFE", generateErr: errors.New("backend down")}
	eng := testEngine(model)

	v, _ := eng.Evaluate(context.Background(), Request{Text: "an ordinary question"})

	if v.Status != StatusAllowed {
		t.Fatal("generator failure must not flip the verdict to blocked")
	}
	if v.Reply != ErrorReply {
		t.Errorf("expected fixed error reply, got %q", v.Reply)
	}
}

func TestEvaluate_SecondCallHitsCache(t *testing.T) {
	model := &fakeModel{classifyReply: "SAFE", generateReply: "ok"}
	eng := testEngine(model)

	text := "cache me"
	v1, _ := eng.Evaluate(context.Background(), Request{Text: text})
	v2, _ := eng.Evaluate(context.Background(), Request{Text: text})

	if got := model.classifyCalls.Load(); got != 1 {
		t.Errorf("expected exactly one classification across two calls, got %d", got)
	}
	if v1.CacheHit {
		t.Error("first call should be a miss")
	}
	if !v2.CacheHit {
		t.Error("second call should be a hit")
	}
	if *v1.Confidence != *v2.Confidence || v1.Status != v2.Status {
		t.Error("cached classification must yield an identical decision")
	}
	// Generation is not cached; both allowed calls pay for a reply.
	if got := model.generateCalls.Load(); got != 2 {
		t.Errorf("expected two generation calls, got %d", got)
	}
}

func TestEvaluate_CacheKeyIsExactText(t *testing.T) {
	model := &fakeModel{classifyReply: "SAFE", generateReply: "ok"}
	eng := testEngine(model)

	// Case and whitespace variants are distinct cache keys.
	eng.Evaluate(context.Background(), Request{Text: "hello there"})
	eng.Evaluate(context.Background(), Request{Text: "Hello there"})
	eng.Evaluate(context.Background(), Request{Text: "hello there "})

	if got := model.classifyCalls.Load(); got != 3 {
		t.Errorf("expected three classifications for three distinct keys, got %d", got)
	}
}

func TestEvaluate_CacheSharedAcrossCallers(t *testing.T) {
	model := &fakeModel{classifyReply: "SAFE", generateReply: "ok"}
	eng := testEngine(model)

	text := "shared question"
	eng.Evaluate(context.Background(), Request{Text: text, CallerID: "alice"})
	v, _ := eng.Evaluate(context.Background(), Request{Text: text, CallerID: "bob"})

	// No per-caller isolation: bob rides alice's cached classification.
	if got := model.classifyCalls.Load(); got != 1 {
		t.Errorf("expected one classification shared across callers, got %d", got)
	}
	if !v.CacheHit {
		t.Error("second caller should hit the shared cache")
	}
}

func TestEvaluate_FailClosedResultIsCached(t *testing.T) {
	// The fail-closed UNSAFE/1.0 classification is stored like any other, so
	// a transient backend outage keeps blocking that exact text until the
	// entry is evicted.
	model := &fakeModel{classifyErr: errors.New("backend down")}
	eng := testEngine(model)

	text := "question during outage"
	eng.Evaluate(context.Background(), Request{Text: text})

	model.classifyErr = nil
	model.classifyReply = "SAFE"
	v, _ := eng.Evaluate(context.Background(), Request{Text: text})

	if v.Status != StatusBlocked {
		t.Error("cached fail-closed classification should still block")
	}
	if !v.CacheHit {
		t.Error("second call should hit the cache")
	}
	if got := model.classifyCalls.Load(); got != 1 {
		t.Errorf("expected one upstream call, got %d", got)
	}
}
