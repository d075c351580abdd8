package memory

import (
	"context"
	"sync"

	"github.com/mcoot/typerace/internal/model"
	"github.com/mcoot/typerace/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	corpus       []string
	corpusLoaded bool
	pool         []string
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Corpus operations

func (s *Storage) GetCorpus(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.corpusLoaded {
		return nil, model.ErrCorpusEmpty
	}
	corpus := make([]string, len(s.corpus))
	copy(corpus, s.corpus)
	return corpus, nil
}

func (s *Storage) SaveCorpus(ctx context.Context, paragraphs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.corpus = make([]string, len(paragraphs))
	copy(s.corpus, paragraphs)
	s.corpusLoaded = true
	return nil
}

// Paragraph pool operations

func (s *Storage) PushParagraphs(ctx context.Context, paragraphs ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pool = append(s.pool, paragraphs...)
	return nil
}

func (s *Storage) PopParagraph(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pool) == 0 {
		return "", model.ErrPoolEmpty
	}
	paragraph := s.pool[0]
	s.pool = s.pool[1:]
	return paragraph, nil
}

func (s *Storage) PoolSize(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pool), nil
}
