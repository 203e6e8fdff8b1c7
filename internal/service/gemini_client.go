package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/Kadabra/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

// CompletionOptions tune a single oracle call. Zero values fall back to the
// configured defaults.
type CompletionOptions struct {
	Model       string
	MaxTokens   int32
	Temperature float32
}

// GeminiClient is the text oracle adapter: one synchronous completion call,
// raising on transport or auth failure. Structure in the output is enforced
// by the callers' prompts and defensive parsing, never by the adapter.
type GeminiClient interface {
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)
}

type geminiClient struct {
	client *genai.Client
	cfg    *config.Config
}

func NewGeminiClient(cfg *config.Config) (GeminiClient, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. GeminiClient will be non-functional.")
		return &geminiClient{cfg: cfg, client: nil}, nil
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}
	return &geminiClient{client: client, cfg: cfg}, nil
}

func (c *geminiClient) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	if c.client == nil {
		return "", errors.New("gemini client not initialized (GEMINI_API_KEY missing)")
	}

	name := opts.Model
	if name == "" {
		name = c.cfg.GeminiModel
	}
	model := c.client.GenerativeModel(name)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxTokens)
	}
	model.SetTemperature(opts.Temperature)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini API call failed: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Str("model", name).Msg("Gemini returned no candidates or parts in response")
		return "", errors.New("gemini returned no content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("gemini returned no text content")
	}
	return sb.String(), nil
}
