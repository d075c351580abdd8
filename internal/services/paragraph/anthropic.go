package paragraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	// DefaultAnthropicModel is used when no model is configured
	DefaultAnthropicModel = "claude-3-5-haiku-latest"

	paragraphPrompt = "Write a single paragraph of plain English prose of about 60 words " +
		"for a typing speed test. Use ordinary vocabulary and punctuation, no lists, " +
		"no headings, no quotation marks and no line breaks. Reply with the paragraph only."

	paragraphMaxTokens = 400
)

// AnthropicConfig holds settings for the Anthropic paragraph provider
type AnthropicConfig struct {
	APIKey string
	Model  string

	// Options are appended to the client options (base URL, retries, ...)
	Options []option.RequestOption
}

// AnthropicProvider generates paragraphs with the Anthropic Messages API
type AnthropicProvider struct {
	client anthropic.Client
	model  string
	logger *slog.Logger
}

// NewAnthropicProvider creates an AnthropicProvider
func NewAnthropicProvider(cfg AnthropicConfig, logger *slog.Logger) *AnthropicProvider {
	model := cfg.Model
	if model == "" {
		model = DefaultAnthropicModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	opts = append(opts, cfg.Options...)

	return &AnthropicProvider{
		client: anthropic.NewClient(opts...),
		model:  model,
		logger: logger.With(slog.String("component", "paragraph-anthropic")),
	}
}

// Paragraph asks the model for a fresh paragraph
func (p *AnthropicProvider) Paragraph(ctx context.Context) (string, error) {
	msg, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: paragraphMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(paragraphPrompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("generate paragraph: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		if paragraph := Normalize(block.Text); paragraph != "" {
			p.logger.Debug("paragraph generated",
				slog.String("model", p.model),
				slog.Int("length", len(paragraph)))
			return paragraph, nil
		}
	}

	return "", errors.New("generate paragraph: model returned no text")
}
