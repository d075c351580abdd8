package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"
)

type ConfigSuite struct {
	suite.Suite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := LoadFrom(map[string]string{})
	s.Require().NoError(err)

	s.Equal(9876, cfg.Port)
	s.Equal(":9876", cfg.Addr())
	s.Equal(slog.LevelInfo, cfg.Level())
	s.Equal(60*time.Second, cfg.RoundDuration)
	s.Equal(20*time.Second, cfg.ParagraphTimeout)
	s.Equal(StorageTypeMemory, cfg.StorageType)
	s.Equal(5, cfg.PoolSize)
	s.Equal("data/paragraphs.txt", cfg.CorpusPath)
	s.Equal([]string{"*"}, cfg.AllowedOrigins)
	s.Equal(int64(4096), cfg.MaxMessageSize)
	s.Equal(20, cfg.RateLimitBurst)
	s.Equal(time.Second, cfg.RateLimitInterval)
	s.Empty(cfg.AnthropicKey)
}

func (s *ConfigSuite) TestOverrides() {
	cfg, err := LoadFrom(map[string]string{
		"PORT":                    "8080",
		"LOG_LEVEL":               "DEBUG",
		"TYPERACE_ROUND_DURATION": "90s",
		"STORAGE_TYPE":            "redis",
		"REDIS_URL":               "redis://localhost:6379/0",
		"ALLOWED_ORIGINS":         "https://a.example,https://b.example",
		"ANTHROPIC_API_KEY":       "sk-test",
	})
	s.Require().NoError(err)

	s.Equal(8080, cfg.Port)
	s.Equal(slog.LevelDebug, cfg.Level())
	s.Equal(90*time.Second, cfg.RoundDuration)
	s.Equal(StorageTypeRedis, cfg.StorageType)
	s.Equal([]string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	s.Equal("sk-test", cfg.AnthropicKey)
}

func (s *ConfigSuite) TestRedisRequiresURL() {
	_, err := LoadFrom(map[string]string{"STORAGE_TYPE": "redis"})
	s.ErrorContains(err, "REDIS_URL")
}

func (s *ConfigSuite) TestInvalidValues() {
	_, err := LoadFrom(map[string]string{
		"STORAGE_TYPE":            "postgres",
		"LOG_LEVEL":               "loud",
		"TYPERACE_ROUND_DURATION": "0s",
	})
	s.Require().Error(err)
	s.ErrorContains(err, "STORAGE_TYPE")
	s.ErrorContains(err, "LOG_LEVEL")
	s.ErrorContains(err, "TYPERACE_ROUND_DURATION")
}

func (s *ConfigSuite) TestUnparseableValue() {
	_, err := LoadFrom(map[string]string{"PORT": "not-a-number"})
	s.ErrorContains(err, "parse env")
}

func (s *ConfigSuite) TestParseLevel() {
	for name, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warning": slog.LevelWarn,
		"Error":   slog.LevelError,
	} {
		got, err := ParseLevel(name)
		s.NoError(err, name)
		s.Equal(want, got, name)
	}
}

// Any port in range with positive timings validates
func TestValidPortsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg, err := LoadFrom(map[string]string{})
		if err != nil {
			t.Fatal(err)
		}
		cfg.Port = rapid.IntRange(1, 65535).Draw(t, "port")
		cfg.RoundDuration = time.Duration(rapid.Int64Range(1, int64(time.Hour)).Draw(t, "round"))

		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid config rejected: %v", err)
		}
	})
}

// Ports outside the valid range are always rejected
func TestInvalidPortsProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg, _ := LoadFrom(map[string]string{})
		cfg.Port = rapid.OneOf(rapid.IntRange(-100000, 0), rapid.IntRange(65536, 1000000)).Draw(t, "port")

		if cfg.Validate() == nil {
			t.Fatalf("port %d accepted", cfg.Port)
		}
	})
}
