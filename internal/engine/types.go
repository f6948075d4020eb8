package engine

// Status represents the final enforcement decision for an input.
type Status int

const (
	StatusAllowed Status = iota + 1
	StatusBlocked
)

// String returns the lowercase wire name of the status.
func (s Status) String() string {
	switch s {
	case StatusAllowed:
		return "allowed"
	case StatusBlocked:
		return "blocked"
	default:
		return "unspecified"
	}
}

// Label is the safety label produced by the classifier.
type Label int

const (
	LabelSafe Label = iota + 1
	LabelUnsafe
)

// String returns the uppercase label token as the model is instructed to emit it.
func (l Label) String() string {
	switch l {
	case LabelSafe:
		return "SAFE"
	case LabelUnsafe:
		return "UNSAFE"
	default:
		return "UNKNOWN"
	}
}

// Classification is the normalized output of the safety classifier.
// Confidence is defined for every label, including the fail-closed default.
type Classification struct {
	Label      Label
	Confidence float64 // 0.0 – 1.0
}

// Request is a single input to evaluate. Immutable once created; passed by
// value into the engine.
type Request struct {
	Text     string
	CallerID string // optional; "" means anonymous
}

// Verdict is the engine's structured decision.
//
// Invariants: Reason is non-empty exactly when Status is StatusBlocked.
// A blocked verdict always carries the fixed refusal text in Reply, and the
// generator is never invoked for it. Confidence is nil for rule-based blocks
// (the classifier never ran for that text) and set otherwise.
type Verdict struct {
	Status     Status
	Reason     string
	Confidence *float64
	Reply      string
	CacheHit   bool // true when the classification came from the cache
}
