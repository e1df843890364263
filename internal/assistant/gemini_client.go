package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"jianji/ledger-assistant/internal/models"
)

// GeminiCompleter implements Completer on the Google Generative AI API.
// Gemini has no separate system role in this client version, so the system
// prompt and the conversation are flattened into a single prompt text.
type GeminiCompleter struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiCompleter creates a client for the given model name.
func NewGeminiCompleter(ctx context.Context, apiKey, model string) (*GeminiCompleter, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiCompleter{client: client, model: client.GenerativeModel(model)}, nil
}

// Complete sends the flattened conversation and returns the first candidate's
// text.
func (g *GeminiCompleter) Complete(ctx context.Context, system string, turns []Turn) (string, error) {
	prompt := flattenTurns(system, turns)

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from Gemini API")
	}
	return fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]), nil
}

// Close releases the underlying connection.
func (g *GeminiCompleter) Close() error {
	return g.client.Close()
}

func flattenTurns(system string, turns []Turn) string {
	var b strings.Builder
	b.WriteString(system)
	b.WriteString("\n\n")
	for _, turn := range turns {
		speaker := "用户"
		if turn.Role == models.RoleAssistant {
			speaker = "助手"
		}
		fmt.Fprintf(&b, "%s：%s\n", speaker, turn.Content)
	}
	b.WriteString("助手：")
	return b.String()
}
