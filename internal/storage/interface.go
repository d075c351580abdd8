package storage

import (
	"context"
)

// Storage defines the interface for paragraph persistence.
// Session state is never stored here; sessions live in memory only.
type Storage interface {
	// Corpus operations
	GetCorpus(ctx context.Context) ([]string, error)
	SaveCorpus(ctx context.Context, paragraphs []string) error

	// Paragraph pool operations, first in first out
	PushParagraphs(ctx context.Context, paragraphs ...string) error
	PopParagraph(ctx context.Context) (string, error)
	PoolSize(ctx context.Context) (int, error)
}
