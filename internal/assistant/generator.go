package assistant

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"replify_backend/internal/conversation/domain"
	"replify_backend/platform/config"
)

// Generator produces one reply from a system instruction and conversation
// turns. Implementations are treated as fallible; the resolver recovers from
// any error.
type Generator interface {
	Generate(ctx context.Context, systemInstruction string, turns []Turn) (string, error)
}

// GeminiGenerator generates replies with the Gemini API.
type GeminiGenerator struct {
	client *genai.Client
	cfg    config.AIConfig
}

// NewGeminiGenerator creates a Gemini-backed generator.
func NewGeminiGenerator(ctx context.Context, cfg config.AIConfig) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GetGeminiAPIKey(),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client, cfg: cfg}, nil
}

var _ Generator = (*GeminiGenerator)(nil)

// Generate calls the model with a bounded timeout and output length. Empty
// responses are errors so the resolver's apology path handles them.
func (g *GeminiGenerator) Generate(ctx context.Context, systemInstruction string, turns []Turn) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.GetAITimeout())
	defer cancel()

	contents := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := genai.RoleUser
		if t.Role == domain.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: t.Content}},
		})
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.cfg.GetGeminiModel(), contents, &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		MaxOutputTokens: g.cfg.GetAIMaxOutputTokens(),
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty generation response")
	}
	return text, nil
}
