package storage

import "time"

// EventWriter is the interface for persisting decision events.
// Write() must NEVER block the caller.
type EventWriter interface {
	Write(event *DecisionEvent)
	Close()
}

// DecisionEvent records a single evaluation verdict for the audit trail.
type DecisionEvent struct {
	RequestID   string
	CallerID    string
	Timestamp   time.Time
	TextPreview string // first 500 runes
	TextHash    string // SHA-256 of the full input text
	TextSize    uint32
	Status      string
	Reason      string
	Confidence  *float64 // nil when the classifier never ran (rule block)
	CacheHit    bool
	LatencyMs   float32
}

// TextPreviewLength is the max runes stored in text_preview.
const TextPreviewLength = 500

// TruncateText returns the first N runes of the input text for preview
// storage. It never splits a multi-byte UTF-8 character.
func TruncateText(text string, maxLen int) string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return string(runes[:maxLen])
}
