// Package config loads argus's layered TOML configuration.
//
// Resolution order, lowest to highest precedence: built-in defaults, the
// user-level config (`$XDG_CONFIG_HOME/argus/config.toml` or
// `~/.config/argus/config.toml`), the project config (`<repo>/.argus.toml`),
// then environment variables prefixed `ARGUS_`.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	argerrors "github.com/argus-dev/argus/internal/errors"
)

// ProjectConfigFile is the project-level config file name.
const ProjectConfigFile = ".argus.toml"

// EmbeddingConfig controls the remote embedding service.
type EmbeddingConfig struct {
	Provider   string `toml:"provider"`
	APIKey     string `toml:"api_key"`
	Model      string `toml:"model"`
	Dimensions int    `toml:"dimensions"`
}

// SearchConfig controls hybrid-search weighting and fusion.
type SearchConfig struct {
	BM25Weight     float64 `toml:"bm25_weight"`
	SemanticWeight float64 `toml:"semantic_weight"`
	RRFConstant    int     `toml:"rrf_constant"`
	MaxResults     int     `toml:"max_results"`
}

// PerformanceConfig controls indexing resource usage.
type PerformanceConfig struct {
	Workers          int   `toml:"workers"`
	MaxFileSizeBytes int64 `toml:"max_file_size_bytes"`
}

// ServerConfig controls the MCP tool server.
type ServerConfig struct {
	Transport string `toml:"transport"`
}

// PathsConfig controls which files the Walker considers.
type PathsConfig struct {
	Exclude []string `toml:"exclude"`
	Include []string `toml:"include"`
}

// Config is the fully resolved argus configuration.
type Config struct {
	Version     int               `toml:"version"`
	LogLevel    string            `toml:"log_level"`
	Paths       PathsConfig       `toml:"paths"`
	Embedding   EmbeddingConfig   `toml:"embedding"`
	Search      SearchConfig      `toml:"search"`
	Performance PerformanceConfig `toml:"performance"`
	Server      ServerConfig      `toml:"server"`
}

// New returns a Config populated with defaults.
func New() *Config {
	return &Config{
		Version:  1,
		LogLevel: "info",
		Paths: PathsConfig{
			Exclude: defaultExcludePatterns(),
		},
		Embedding: EmbeddingConfig{
			Provider:   "voyage",
			Model:      "voyage-code-3",
			Dimensions: 1024,
		},
		Search: SearchConfig{
			BM25Weight:     0.65,
			SemanticWeight: 0.35,
			RRFConstant:    60,
			MaxResults:     20,
		},
		Performance: PerformanceConfig{
			Workers:          4,
			MaxFileSizeBytes: 1 << 20,
		},
		Server: ServerConfig{
			Transport: "stdio",
		},
	}
}

func defaultExcludePatterns() []string {
	return []string{
		".git/", "node_modules/", "vendor/", "dist/", "build/",
		"target/", ".argus/", "__pycache__/", ".venv/",
	}
}

// Load resolves the layered configuration for the project rooted at dir.
func Load(dir string) (*Config, error) {
	cfg := New()

	if userPath, err := UserConfigPath(); err == nil {
		if fileExists(userPath) {
			if err := mergeFromFile(cfg, userPath); err != nil {
				return nil, err
			}
		}
	}

	projectPath := filepath.Join(dir, ProjectConfigFile)
	if fileExists(projectPath) {
		if err := mergeFromFile(cfg, projectPath); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromString parses TOML content directly, applying it over defaults.
// Used by tests, and by the CLI to apply an explicit --config file in
// place of the layered lookup.
func LoadFromString(content string) (*Config, error) {
	cfg := New()
	if _, err := toml.Decode(content, cfg); err != nil {
		return nil, argerrors.Config("malformed config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return argerrors.IO(fmt.Sprintf("failed to read config %q", path), err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return argerrors.Config(fmt.Sprintf("malformed config %q", path), err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ARGUS_EMBEDDING_PROVIDER"); v != "" {
		cfg.Embedding.Provider = v
	}
	if v := os.Getenv("ARGUS_EMBEDDING_API_KEY"); v != "" {
		cfg.Embedding.APIKey = v
	}
	if v := os.Getenv("ARGUS_EMBEDDING_MODEL"); v != "" {
		cfg.Embedding.Model = v
	}
	if v := os.Getenv("ARGUS_EMBEDDING_DIMENSIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Embedding.Dimensions = n
		}
	}
	if v := os.Getenv("ARGUS_BM25_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.BM25Weight = f
		}
	}
	if v := os.Getenv("ARGUS_SEMANTIC_WEIGHT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.SemanticWeight = f
		}
	}
	if v := os.Getenv("ARGUS_RRF_CONSTANT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.RRFConstant = n
		}
	}
	if v := os.Getenv("ARGUS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("ARGUS_TRANSPORT"); v != "" {
		cfg.Server.Transport = v
	}
}

// ResolveAPIKey returns the configured API key, falling back to the
// service-specific environment variable (e.g. VOYAGE_API_KEY) per §6.
func (c *Config) ResolveAPIKey() (string, error) {
	if c.Embedding.APIKey != "" {
		return c.Embedding.APIKey, nil
	}
	envVar := strings.ToUpper(c.Embedding.Provider) + "_API_KEY"
	if v := os.Getenv(envVar); v != "" {
		return v, nil
	}
	return "", argerrors.Config(
		fmt.Sprintf("no embedding API key: set embedding.api_key in %s or export %s", ProjectConfigFile, envVar),
		nil,
	).WithSuggestion("check API key")
}

// Validate checks the configuration for internally-inconsistent values.
func (c *Config) Validate() error {
	if c.Search.BM25Weight < 0 || c.Search.SemanticWeight < 0 {
		return argerrors.Config("search weights must be non-negative", nil)
	}
	if c.Search.RRFConstant <= 0 {
		return argerrors.Config("search.rrf_constant must be positive", nil)
	}
	if c.Performance.Workers <= 0 {
		return argerrors.Config("performance.workers must be positive", nil)
	}
	switch c.Server.Transport {
	case "stdio", "sse", "http":
	default:
		return argerrors.Config(fmt.Sprintf("unknown server.transport %q", c.Server.Transport), nil)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return argerrors.Config(fmt.Sprintf("unknown log_level %q", c.LogLevel), nil)
	}
	return nil
}

// WriteTOML serializes cfg to path in TOML form.
func WriteTOML(cfg *Config, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return argerrors.IO(fmt.Sprintf("failed to create %q", path), err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return argerrors.IO(fmt.Sprintf("failed to write %q", path), err)
	}
	return nil
}

// UserConfigDir returns the XDG-aware user config directory for argus.
func UserConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "argus"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", argerrors.IO("cannot resolve home directory", err)
	}
	return filepath.Join(home, ".config", "argus"), nil
}

// UserConfigPath returns the path of the user-level config.toml.
func UserConfigPath() (string, error) {
	dir, err := UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// FindProjectRoot walks up from dir looking for a .git directory or an
// existing .argus.toml, falling back to dir itself.
func FindProjectRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", argerrors.IO("cannot resolve path", err)
	}

	cur := abs
	for {
		if fileExists(filepath.Join(cur, ProjectConfigFile)) || dirExists(filepath.Join(cur, ".git")) {
			return cur, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return abs, nil
		}
		cur = parent
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
