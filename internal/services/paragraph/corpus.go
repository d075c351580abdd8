package paragraph

import (
	"bufio"
	"context"
	"os"
	"sync"

	"github.com/mcoot/typerace/internal/dependencies/random"
	"github.com/mcoot/typerace/internal/model"
	"github.com/mcoot/typerace/internal/storage"
)

// CorpusProvider picks paragraphs at random from a local corpus
type CorpusProvider struct {
	storage storage.Storage
	random  random.Random

	mu         sync.RWMutex
	paragraphs []string
}

// NewCorpusProvider creates an empty CorpusProvider
func NewCorpusProvider(storage storage.Storage, random random.Random) *CorpusProvider {
	return &CorpusProvider{
		storage: storage,
		random:  random,
	}
}

// LoadFromStorage loads the corpus saved by a previous LoadFromFile
func (p *CorpusProvider) LoadFromStorage(ctx context.Context) error {
	paragraphs, err := p.storage.GetCorpus(ctx)
	if err != nil {
		return err
	}
	p.LoadParagraphs(paragraphs)
	return nil
}

// LoadFromFile loads paragraphs from a file (one paragraph per line)
func (p *CorpusProvider) LoadFromFile(ctx context.Context, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	var paragraphs []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		paragraph := Normalize(scanner.Text())
		if paragraph != "" {
			paragraphs = append(paragraphs, paragraph)
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	// Save to storage so other instances can load without the file
	if err := p.storage.SaveCorpus(ctx, paragraphs); err != nil {
		return err
	}

	p.LoadParagraphs(paragraphs)
	return nil
}

// LoadParagraphs replaces the corpus with the given paragraphs
func (p *CorpusProvider) LoadParagraphs(paragraphs []string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.paragraphs = make([]string, 0, len(paragraphs))
	for _, paragraph := range paragraphs {
		if paragraph = Normalize(paragraph); paragraph != "" {
			p.paragraphs = append(p.paragraphs, paragraph)
		}
	}
}

// Count returns the number of paragraphs in the corpus
func (p *CorpusProvider) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.paragraphs)
}

// Paragraph returns a random corpus paragraph
func (p *CorpusProvider) Paragraph(ctx context.Context) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if len(p.paragraphs) == 0 {
		return "", model.ErrCorpusEmpty
	}
	return p.paragraphs[p.random.Intn(len(p.paragraphs))], nil
}
