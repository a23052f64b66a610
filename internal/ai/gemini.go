// Package ai provides the external commentary collaborator. The Gemini
// client implements insights.Summarizer; when no API key is configured the
// Disabled implementation is wired instead and commentary stays empty.
package ai

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

// DefaultModel is the Gemini model used for statement commentary.
const DefaultModel = "gemini-2.0-flash"

const systemInstruction = "Você é um assistente financeiro. Com base no resumo " +
	"de gastos abaixo, escreva um parágrafo curto em português com observações " +
	"e conselhos práticos de economia. Não invente valores."

// Gemini generates free-text commentary over a spending digest.
type Gemini struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGemini dials the Gemini API. The key must be non-empty; callers decide
// whether a missing key means Disabled or a startup error.
func NewGemini(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}

	return &Gemini{client: client, model: model, logger: logger}, nil
}

// Summarize sends the digest to the model and returns its plain-text reply.
func (g *Gemini) Summarize(ctx context.Context, digest string) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: systemInstruction},
				{Text: digest},
			},
		},
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: empty response from model")
	}

	g.logger.Debug("commentary generated", slog.String("model", g.model), slog.Int("chars", len(text)))
	return text, nil
}

// Disabled is the no-op summarizer used when no API key is configured.
type Disabled struct{}

// Summarize always returns empty commentary.
func (Disabled) Summarize(context.Context, string) (string, error) {
	return "", nil
}
