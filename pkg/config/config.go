// Package config loads and validates tinyclaw configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mczabca-boop/tinyclaw/pkg/logger"
)

// Config represents the application configuration.
type Config struct {
	// Memory configuration
	Memory *MemoryConfig `json:"memory,omitempty"`

	// DataDir is the root directory holding per-agent turn history.
	DataDir string `json:"dataDir,omitempty"`

	// Logging configuration
	Log *LogConfig `json:"log,omitempty"`
}

// LogConfig contains logging configuration.
type LogConfig struct {
	Level  string `json:"level,omitempty"`  // Log level: debug, info, warn, error
	File   string `json:"file,omitempty"`   // Log file path (empty = no file logging)
	Prefix string `json:"prefix,omitempty"` // Log prefix
}

// MemoryConfig contains memory retrieval settings.
type MemoryConfig struct {
	Enabled               bool    `json:"enabled"`
	BackendPath           string  `json:"backendPath,omitempty"`   // Explicit search backend executable (empty = auto-detect)
	TopK                  int     `json:"topK"`                    // Results requested from the backend
	MinScore              float64 `json:"minScore"`                // Minimum relevance score passed to the backend
	PromptMaxChars        int     `json:"promptMaxChars"`          // Character budget for the composed memory block
	RefreshIntervalSecs   int     `json:"refreshIntervalSecs"`     // Minimum seconds between index refreshes
	SemanticEnabled       bool    `json:"semanticEnabled"`         // Allow vector search
	DisableQueryExpansion bool    `json:"disableQueryExpansion"`   // Ask the backend to skip automatic query expansion
	UnsafeAllowSemantic   bool    `json:"unsafeAllowSemantic"`     // Use vector search even without expansion suppression
	PrecheckEnabled       bool    `json:"precheckEnabled"`         // Cheap lexical existence check before the real query
	PrecheckTimeoutSecs   int     `json:"precheckTimeoutSecs"`     // Timeout for the precheck query
	SearchTimeoutSecs     int     `json:"searchTimeoutSecs"`       // Timeout for keyword search
	VectorTimeoutSecs     int     `json:"vectorTimeoutSecs"`       // Timeout for vector search (kept above the keyword timeout)
	Debug                 bool    `json:"debug,omitempty"`
}

// DefaultMemoryConfig returns default memory settings.
func DefaultMemoryConfig() *MemoryConfig {
	return &MemoryConfig{
		Enabled:               true,
		TopK:                  5,
		MinScore:              0.35,
		PromptMaxChars:        2000,
		RefreshIntervalSecs:   300,
		SemanticEnabled:       false,
		DisableQueryExpansion: true,
		PrecheckEnabled:       true,
		PrecheckTimeoutSecs:   5,
		SearchTimeoutSecs:     15,
		VectorTimeoutSecs:     45,
	}
}

// Normalize clamps every numeric field to its floor so the engine never
// sees a zero or negative limit.
func (m *MemoryConfig) Normalize() {
	if m.TopK < 1 {
		m.TopK = 1
	}
	if m.MinScore < 0 {
		m.MinScore = 0
	}
	if m.PromptMaxChars < 500 {
		m.PromptMaxChars = 500
	}
	if m.RefreshIntervalSecs < 10 {
		m.RefreshIntervalSecs = 10
	}
	if m.PrecheckTimeoutSecs < 1 {
		m.PrecheckTimeoutSecs = 1
	}
	if m.SearchTimeoutSecs < 1 {
		m.SearchTimeoutSecs = 1
	}
	// Vector search is slower than keyword search; its timeout must
	// stay strictly above the keyword timeout.
	if m.VectorTimeoutSecs <= m.SearchTimeoutSecs {
		m.VectorTimeoutSecs = m.SearchTimeoutSecs * 2
	}
}

// DefaultLogConfig returns default logging configuration.
func DefaultLogConfig() *LogConfig {
	homeDir, _ := os.UserHomeDir()
	return &LogConfig{
		Level:  "info",
		File:   filepath.Join(homeDir, ".tinyclaw", "tinyclaw.log"),
		Prefix: "[tinyclaw] ",
	}
}

// CreateLogger creates a logger from the log configuration.
func (c *LogConfig) CreateLogger() (*logger.Logger, error) {
	if c == nil {
		c = DefaultLogConfig()
	}

	cfg := &logger.Config{
		Level:    logger.ParseLogLevel(c.Level),
		Prefix:   c.Prefix,
		Console:  true,
		File:     c.File != "",
		FilePath: c.File,
	}

	return logger.NewLogger(cfg)
}

// Load loads configuration from file and merges with environment variables.
// Environment variables take precedence over config file values.
func Load(configPath string) (*Config, error) {
	homeDir, _ := os.UserHomeDir()
	cfg := &Config{
		Memory:  DefaultMemoryConfig(),
		DataDir: filepath.Join(homeDir, ".tinyclaw", "memory"),
		Log:     DefaultLogConfig(),
	}

	// Load from file if exists
	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		// Merge with defaults (file values override defaults)
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Environment variables override config file
	if val := os.Getenv("TINYCLAW_DATA_DIR"); val != "" {
		cfg.DataDir = val
	}
	if val := os.Getenv("TINYCLAW_MEMORY_BACKEND"); val != "" {
		if cfg.Memory == nil {
			cfg.Memory = DefaultMemoryConfig()
		}
		cfg.Memory.BackendPath = val
	}

	if cfg.Memory == nil {
		cfg.Memory = DefaultMemoryConfig()
	}
	cfg.Memory.Normalize()

	return cfg, nil
}

// Save saves configuration to file.
func Save(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, ".tinyclaw", "config.json"), nil
}
