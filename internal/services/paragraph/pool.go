package paragraph

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mcoot/typerace/internal/model"
	"github.com/mcoot/typerace/internal/storage"
)

// DefaultRefillTimeout bounds a single background refill
const DefaultRefillTimeout = 2 * time.Minute

// PoolProvider serves prefetched paragraphs from storage so a round start
// rarely waits on the upstream provider. The pool is topped back up to its
// target size in the background after each paragraph is taken.
type PoolProvider struct {
	storage  storage.Storage
	upstream Provider
	target   int
	logger   *slog.Logger

	refillTimeout time.Duration
	refilling     atomic.Bool
	wg            sync.WaitGroup
}

// NewPoolProvider creates a PoolProvider keeping target paragraphs ready
func NewPoolProvider(storage storage.Storage, upstream Provider, target int, logger *slog.Logger) *PoolProvider {
	return &PoolProvider{
		storage:       storage,
		upstream:      upstream,
		target:        target,
		logger:        logger.With(slog.String("component", "paragraph-pool")),
		refillTimeout: DefaultRefillTimeout,
	}
}

// Paragraph pops a pooled paragraph, asking upstream directly when the
// pool is empty or unreachable
func (p *PoolProvider) Paragraph(ctx context.Context) (string, error) {
	paragraph, err := p.storage.PopParagraph(ctx)
	if err != nil {
		if !errors.Is(err, model.ErrPoolEmpty) {
			p.logger.Warn("paragraph pool unavailable", slog.Any("error", err))
		}
		paragraph, err = p.upstream.Paragraph(ctx)
		if err != nil {
			return "", err
		}
	}

	p.Refill()
	return paragraph, nil
}

// Refill starts a background top-up unless one is already running
func (p *PoolProvider) Refill() {
	if p.target <= 0 || !p.refilling.CompareAndSwap(false, true) {
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer p.refilling.Store(false)

		ctx, cancel := context.WithTimeout(context.Background(), p.refillTimeout)
		defer cancel()

		if err := p.Fill(ctx); err != nil {
			p.logger.Warn("paragraph pool refill failed", slog.Any("error", err))
		}
	}()
}

// Fill synchronously tops the pool up to its target size
func (p *PoolProvider) Fill(ctx context.Context) error {
	size, err := p.storage.PoolSize(ctx)
	if err != nil {
		return err
	}

	added := 0
	for ; size < p.target; size++ {
		paragraph, err := p.upstream.Paragraph(ctx)
		if err != nil {
			return err
		}
		if err := p.storage.PushParagraphs(ctx, paragraph); err != nil {
			return err
		}
		added++
	}

	if added > 0 {
		p.logger.Debug("paragraph pool refilled",
			slog.Int("added", added),
			slog.Int("size", size))
	}
	return nil
}

// Wait blocks until any background refill has finished
func (p *PoolProvider) Wait() {
	p.wg.Wait()
}
