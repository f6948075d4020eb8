// Package llm contains the Ollama HTTP client backing the classifier and
// generator adapters.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const classificationPrompt = "Classify the following input as 'SAFE' or 'UNSAFE' based on whether it contains malicious, harmful, " +
	"or suspicious content. Respond with only 'SAFE' or 'UNSAFE'.\n\n" +
	"Input: %s\n\nClassification:"

const generationPrompt = "Respond to the following input:\n\n%s\n\nResponse:"

// OllamaClient calls a local Ollama server's /api/generate endpoint.
// It is the only component in the pipeline whose calls may fail or be slow;
// callers (the adapters) own the failure policy.
type OllamaClient struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewOllamaClient creates a client for the Ollama server at baseURL (e.g.
// "http://localhost:11434") using the given model. Every call is bounded by
// timeout; a timeout surfaces as an ordinary transport error, which the
// classifier adapter treats as fail-closed.
func NewOllamaClient(baseURL, model string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		baseURL: baseURL,
		model:   model,
		http:    &http.Client{Timeout: timeout},
	}
}

// Classify asks the model to label text as SAFE or UNSAFE and returns the
// raw completion.
func (c *OllamaClient) Classify(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, fmt.Sprintf(classificationPrompt, text))
}

// Generate asks the model to respond to text and returns the raw completion.
func (c *OllamaClient) Generate(ctx context.Context, text string) (string, error) {
	return c.complete(ctx, fmt.Sprintf(generationPrompt, text))
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// complete runs a single non-streaming completion.
func (c *OllamaClient) complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		// Bounded read so a misbehaving server can't balloon the error.
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("complete: ollama returned %d: %s", resp.StatusCode, msg)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("complete: %w", err)
	}
	return out.Response, nil
}
