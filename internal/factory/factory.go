package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/mcoot/typerace/internal/api"
	"github.com/mcoot/typerace/internal/config"
	"github.com/mcoot/typerace/internal/dependencies/clock"
	"github.com/mcoot/typerace/internal/dependencies/random"
	"github.com/mcoot/typerace/internal/services/paragraph"
	"github.com/mcoot/typerace/internal/services/scoring"
	"github.com/mcoot/typerace/internal/services/session"
	"github.com/mcoot/typerace/internal/storage"
	"github.com/mcoot/typerace/internal/storage/memory"
	redisstorage "github.com/mcoot/typerace/internal/storage/redis"
	"github.com/mcoot/typerace/internal/web/sse"
	"github.com/mcoot/typerace/internal/web/ws"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Paragraph providers
	Corpus   *paragraph.CorpusProvider
	Pool     *paragraph.PoolProvider // Nil when pooling is disabled
	Provider paragraph.Provider

	// Services
	ScoringService *scoring.Service
	Registry       *session.Registry

	// Transport
	WSHubs    *ws.HubManager
	SSEHubs   *sse.HubManager
	WSHandler *ws.Handler

	logger *slog.Logger
}

// ParagraphConfig selects and tunes the paragraph providers
type ParagraphConfig struct {
	// CorpusPath is a file of paragraphs, one per line (optional)
	// If empty or unreadable, the corpus is loaded from storage
	CorpusPath string
	// AnthropicKey enables generated paragraphs when set
	AnthropicKey   string
	AnthropicModel string
	// PoolSize is the number of paragraphs kept prefetched (0 disables the pool)
	PoolSize int
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config

	Session   session.Config
	WS        ws.Config
	Paragraph ParagraphConfig
}

// ConfigFromEnv builds a factory Config from the loaded environment config
func ConfigFromEnv(cfg config.Config, logger *slog.Logger) Config {
	out := Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
		Session: session.Config{
			RoundDuration:    cfg.RoundDuration,
			ParagraphTimeout: cfg.ParagraphTimeout,
		},
		WS: ws.Config{
			AllowedOrigins:    cfg.AllowedOrigins,
			MaxMessageSize:    cfg.MaxMessageSize,
			RateLimitBurst:    cfg.RateLimitBurst,
			RateLimitInterval: cfg.RateLimitInterval,
		},
		Paragraph: ParagraphConfig{
			CorpusPath:     cfg.CorpusPath,
			AnthropicKey:   cfg.AnthropicKey,
			AnthropicModel: cfg.AnthropicModel,
			PoolSize:       cfg.PoolSize,
		},
	}

	if cfg.StorageType == config.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		out.RedisConfig = &redisCfg
	}
	return out
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = config.StorageTypeMemory
	}

	switch storageType {
	case config.StorageTypeMemory:
		store = memory.New()
	case config.StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Create external dependencies
	clk := clock.New()
	rnd := random.New()

	corpus := paragraph.NewCorpusProvider(store, rnd)
	if err := loadCorpus(ctx, corpus, cfg.Paragraph.CorpusPath, logger); err != nil {
		return nil, err
	}

	var upstream paragraph.Provider = corpus
	if cfg.Paragraph.AnthropicKey != "" {
		generated := paragraph.NewAnthropicProvider(paragraph.AnthropicConfig{
			APIKey: cfg.Paragraph.AnthropicKey,
			Model:  cfg.Paragraph.AnthropicModel,
		}, logger)
		upstream = paragraph.NewChain(logger, generated, corpus)
	}

	var pool *paragraph.PoolProvider
	provider := upstream
	if cfg.Paragraph.PoolSize > 0 {
		pool = paragraph.NewPoolProvider(store, upstream, cfg.Paragraph.PoolSize, logger)
		provider = pool
	}

	app := newWithDependencies(store, clk, rnd, provider, sessionConfig(cfg.Session), wsConfig(cfg.WS), logger)
	app.Corpus = corpus
	app.Pool = pool
	return app, nil
}

// loadCorpus loads paragraphs from path, falling back to those saved in
// storage by another instance
func loadCorpus(ctx context.Context, corpus *paragraph.CorpusProvider, path string, logger *slog.Logger) error {
	if path != "" {
		err := corpus.LoadFromFile(ctx, path)
		if err == nil {
			logger.Info("paragraph corpus loaded",
				slog.String("path", path),
				slog.Int("paragraphs", corpus.Count()))
			return nil
		}
		logger.Warn("could not load paragraph corpus file",
			slog.String("path", path),
			slog.Any("error", err))
	}

	if err := corpus.LoadFromStorage(ctx); err != nil {
		return fmt.Errorf("no paragraph corpus available: %w", err)
	}
	logger.Info("paragraph corpus loaded from storage", slog.Int("paragraphs", corpus.Count()))
	return nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	provider paragraph.Provider,
	sessionCfg session.Config,
	wsCfg ws.Config,
	logger *slog.Logger,
) *App {
	scoringService := scoring.New()
	wsHubs := ws.NewHubManager(logger)
	sseHubs := sse.NewHubManager(logger)
	registry := session.NewRegistry(sessionCfg, provider, scoringService,
		session.Fanout{wsHubs, sseHubs}, clk, rnd, logger)
	wsHandler := ws.NewHandler(registry, wsHubs, clk, rnd, wsCfg, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		Provider:       provider,
		ScoringService: scoringService,
		Registry:       registry,
		WSHubs:         wsHubs,
		SSEHubs:        sseHubs,
		WSHandler:      wsHandler,
		logger:         logger,
	}
}

// Router returns the HTTP handler serving the API for a server on addr
func (a *App) Router(addr string) http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:     a.logger,
		Addr:       addr,
		Registry:   a.Registry,
		WSHandler:  a.WSHandler,
		HubManager: a.SSEHubs,
		Random:     a.Random,
	})
}

// WarmUp fills the paragraph pool in the background
func (a *App) WarmUp() {
	if a.Pool != nil {
		a.Pool.Refill()
	}
}

// Close releases background resources
func (a *App) Close() error {
	a.SSEHubs.Close()
	if a.Pool != nil {
		a.Pool.Wait()
	}
	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// sessionConfig fills unset session settings with their defaults
func sessionConfig(cfg session.Config) session.Config {
	defaults := session.DefaultConfig()
	if cfg.RoundDuration == 0 {
		cfg.RoundDuration = defaults.RoundDuration
	}
	if cfg.ParagraphTimeout == 0 {
		cfg.ParagraphTimeout = defaults.ParagraphTimeout
	}
	return cfg
}

// wsConfig fills unset transport settings with their defaults
func wsConfig(cfg ws.Config) ws.Config {
	defaults := ws.DefaultConfig()
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = defaults.AllowedOrigins
	}
	if cfg.MaxMessageSize == 0 {
		cfg.MaxMessageSize = defaults.MaxMessageSize
	}
	if cfg.RateLimitBurst == 0 {
		cfg.RateLimitBurst = defaults.RateLimitBurst
	}
	if cfg.RateLimitInterval == 0 {
		cfg.RateLimitInterval = defaults.RateLimitInterval
	}
	return cfg
}
