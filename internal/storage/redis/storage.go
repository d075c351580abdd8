package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/typerace/internal/model"
	"github.com/mcoot/typerace/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Corpus operations

func (s *Storage) GetCorpus(ctx context.Context) ([]string, error) {
	key := corpusKey()

	exists, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrCorpusEmpty
	}

	return s.client.SMembers(ctx, key).Result()
}

func (s *Storage) SaveCorpus(ctx context.Context, paragraphs []string) error {
	key := corpusKey()

	// Replace the existing corpus atomically
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)

	if len(paragraphs) > 0 {
		members := make([]interface{}, len(paragraphs))
		for i, p := range paragraphs {
			members[i] = p
		}
		pipe.SAdd(ctx, key, members...)
	}

	_, err := pipe.Exec(ctx)
	return err
}

// Paragraph pool operations

func (s *Storage) PushParagraphs(ctx context.Context, paragraphs ...string) error {
	if len(paragraphs) == 0 {
		return nil
	}

	key := poolKey()
	values := make([]interface{}, len(paragraphs))
	for i, p := range paragraphs {
		values[i] = p
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	if s.cfg.PoolTTL > 0 {
		pipe.Expire(ctx, key, s.cfg.PoolTTL)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) PopParagraph(ctx context.Context) (string, error) {
	paragraph, err := s.client.LPop(ctx, poolKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", model.ErrPoolEmpty
		}
		return "", err
	}
	return paragraph, nil
}

func (s *Storage) PoolSize(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, poolKey()).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
