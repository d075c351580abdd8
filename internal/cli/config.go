package cli

import (
	"fmt"
	"os"
)

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds CLI configuration. Defaults come from the environment and
// are overridden by flags.
type Config struct {
	ServerURL string
	Name      string // Default player name for play
	Output    string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("TYPERACE_SERVER", "http://localhost:9876"),
		Name:      os.Getenv("TYPERACE_NAME"),
		Output:    getEnvOrDefault("TYPERACE_OUTPUT", OutputText),
	}
}

// Validate rejects unknown output formats and an empty server URL
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server URL must not be empty")
	}
	switch c.Output {
	case OutputText, OutputJSON:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want %s or %s)", c.Output, OutputText, OutputJSON)
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
