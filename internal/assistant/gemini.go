// AngelaMos | 2026
// gemini.go

package assistant

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/config"
)

// Generator produces a reply to message under the given system instruction.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, message string) (string, error)
}

// GeminiClient answers through the Gemini generateContent API.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, cfg config.AssistantConfig) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    cfg.Endpoint,
			APIVersion: cfg.APIVersion,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: cfg.Model}, nil
}

func (c *GeminiClient) Generate(
	ctx context.Context,
	systemPrompt, message string,
) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(message),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		},
	)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	reply := strings.TrimSpace(resp.Text())
	if reply == "" {
		return "", fmt.Errorf("generate content: %w", ErrEmptyReply)
	}

	return reply, nil
}
