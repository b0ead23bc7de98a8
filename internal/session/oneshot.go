package session

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Analyzer answers a one-shot question about a single court snapshot. It is
// independent of the live session; its failures are logged, never fatal.
type Analyzer interface {
	Analyze(ctx context.Context, jpeg []byte) (string, error)
}

// GeminiAnalyzer runs deep analysis against a non-streaming model.
type GeminiAnalyzer struct {
	APIKey string
	Model  string
}

// Analyze sends one frame plus the fixed analysis prompt and returns the
// model's text.
func (a *GeminiAnalyzer) Analyze(ctx context.Context, jpeg []byte) (string, error) {
	if len(jpeg) == 0 {
		return "", errors.New("no frame available to analyze")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  a.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("create genai client: %w", err)
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{
			genai.NewPartFromBytes(jpeg, frameMIMEType),
			genai.NewPartFromText(analysisPrompt),
		},
	}}
	resp, err := client.Models.GenerateContent(ctx, a.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("deep analysis request: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", errors.New("deep analysis returned no text")
	}
	return text, nil
}
