package paragraph

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Provider supplies the target paragraph for a round.
// Implementations may be slow (network calls) and must honour ctx.
type Provider interface {
	Paragraph(ctx context.Context) (string, error)
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func(ctx context.Context) (string, error)

// Paragraph calls f
func (f ProviderFunc) Paragraph(ctx context.Context) (string, error) {
	return f(ctx)
}

// Static returns a provider that always yields the given paragraph
func Static(paragraph string) Provider {
	return ProviderFunc(func(context.Context) (string, error) {
		return paragraph, nil
	})
}

// Chain tries providers in order and returns the first paragraph obtained
type Chain struct {
	providers []Provider
	logger    *slog.Logger
}

// NewChain creates a Chain over the given providers
func NewChain(logger *slog.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger.With(slog.String("component", "paragraph-chain")),
	}
}

// Paragraph returns the first successful paragraph, or all errors joined
func (c *Chain) Paragraph(ctx context.Context) (string, error) {
	var errs []error
	for i, p := range c.providers {
		paragraph, err := p.Paragraph(ctx)
		if err == nil {
			return paragraph, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
		c.logger.Warn("paragraph provider failed, trying next",
			slog.Int("provider", i),
			slog.Any("error", err))
	}
	if len(errs) == 0 {
		return "", errors.New("no paragraph providers configured")
	}
	return "", fmt.Errorf("all paragraph providers failed: %w", errors.Join(errs...))
}

// Normalize collapses all whitespace runs to single spaces and trims
// surrounding quotes so paragraphs split cleanly into words.
func Normalize(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return strings.Trim(text, "\"'")
}
