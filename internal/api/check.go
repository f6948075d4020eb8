package api

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/triage-ai/bastion/internal/engine"
	"github.com/triage-ai/bastion/internal/storage"
)

// handleCheck implements POST /v1/check-input.
//
// Blank text is rejected here with a 400 rather than fed to the engine: the
// engine itself would pass it through the full pipeline, but a request with
// no text after trimming carries no question worth classifying or paying a
// model call for.
func (d *Dependencies) handleCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CheckRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "text is required"})
		return
	}

	verdict, engineElapsed := d.Engine.Evaluate(r.Context(), engine.Request{
		Text:     req.Text,
		CallerID: req.CallerID,
	})

	requestID := uuid.New().String()

	// Fire-and-forget: write the decision event to the audit trail.
	d.writeDecisionEvent(req, requestID, verdict, engineElapsed)

	var reason *string
	if verdict.Reason != "" {
		reason = &verdict.Reason
	}

	writeJSON(w, http.StatusOK, CheckResponse{
		Status:     verdict.Status.String(),
		Reason:     reason,
		Confidence: verdict.Confidence,
		Reply:      verdict.Reply,
		RequestID:  requestID,
		LatencyMs:  float64(time.Since(start)) / float64(time.Millisecond),
	})
}

// writeDecisionEvent builds a DecisionEvent and fires it to the async writer.
func (d *Dependencies) writeDecisionEvent(
	req CheckRequest,
	requestID string,
	verdict engine.Verdict,
	elapsed time.Duration,
) {
	hashBytes := sha256.Sum256([]byte(req.Text))

	d.Writer.Write(&storage.DecisionEvent{
		RequestID:   requestID,
		CallerID:    req.CallerID,
		Timestamp:   time.Now(),
		TextPreview: storage.TruncateText(req.Text, storage.TextPreviewLength),
		TextHash:    hex.EncodeToString(hashBytes[:]),
		TextSize:    uint32(len(req.Text)),
		Status:      verdict.Status.String(),
		Reason:      verdict.Reason,
		Confidence:  verdict.Confidence,
		CacheHit:    verdict.CacheHit,
		LatencyMs:   float32(elapsed) / float32(time.Millisecond),
	})
}
