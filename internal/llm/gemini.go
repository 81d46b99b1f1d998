// Package llm wraps the Gemini API behind a small text-in, text-out
// gateway. All payload unpacking happens here; callers only ever see a
// plain string or an error.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/shauryapandit/tutor-api-gdg/internal/config"
	"github.com/shauryapandit/tutor-api-gdg/internal/models"

	"google.golang.org/genai"
)

// Generator is the gateway surface the services consume. Tests substitute
// fakes for it.
type Generator interface {
	// Generate runs a single-shot prompt. An empty result with a nil error
	// means the model produced no usable text; callers apply their own
	// fallback string.
	Generate(ctx context.Context, prompt string) (string, error)

	// Chat runs a multi-turn generation under a system instruction. The
	// history carries prior user/model turns in order; message is the new
	// user turn.
	Chat(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error)
}

// GeminiClient implements Generator against the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient builds the gateway from config. The API key is required.
func NewGeminiClient(ctx context.Context, cfg config.GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: cfg.Model}, nil
}

func (g *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Role:  models.RoleUser,
		Parts: []*genai.Part{{Text: prompt}},
	}}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	return strings.TrimSpace(result.Text()), nil
}

func (g *GeminiClient) Chat(ctx context.Context, system string, history []models.ChatMessage, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, &genai.Content{
			Role:  m.Role,
			Parts: []*genai.Part{{Text: m.Text}},
		})
	}
	contents = append(contents, &genai.Content{
		Role:  models.RoleUser,
		Parts: []*genai.Part{{Text: message}},
	})

	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		}
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	return strings.TrimSpace(result.Text()), nil
}
