package engine

// ReasonClassifier is the fixed reason attached to classifier-driven blocks.
const ReasonClassifier = "Ollama classified as unsafe"

// RefusalReply is the fixed reply carried by every blocked verdict.
const RefusalReply = "This prompt is unsafe, can't answer."

// PolicyConfig holds the threshold for verdict determination.
type PolicyConfig struct {
	// BlockThreshold blocks an UNSAFE classification only when its confidence
	// is strictly greater than this value. Confidence exactly equal to the
	// threshold is allowed.
	BlockThreshold float64
}

// DefaultPolicyConfig returns the default threshold.
func DefaultPolicyConfig() PolicyConfig {
	return PolicyConfig{BlockThreshold: 0.8}
}

// Decide combines the rule matcher output and the classification into a
// verdict without a reply. Rules are evaluated in strict order:
//
//  1. A rule reason blocks immediately; the classifier never ran for such
//     text, so the verdict carries no confidence.
//  2. An UNSAFE classification with confidence strictly above BlockThreshold
//     blocks with the fixed classifier reason.
//  3. Everything else is allowed, carrying the classification confidence.
//
// ruleMatched distinguishes "no rule fired" from an empty reason.
func Decide(ruleReason string, ruleMatched bool, cls Classification, cfg PolicyConfig) Verdict {
	if ruleMatched {
		return Verdict{
			Status: StatusBlocked,
			Reason: ruleReason,
			Reply:  RefusalReply,
		}
	}

	conf := cls.Confidence
	if cls.Label == LabelUnsafe && conf > cfg.BlockThreshold {
		return Verdict{
			Status:     StatusBlocked,
			Reason:     ReasonClassifier,
			Confidence: &conf,
			Reply:      RefusalReply,
		}
	}

	return Verdict{
		Status:     StatusAllowed,
		Confidence: &conf,
	}
}
