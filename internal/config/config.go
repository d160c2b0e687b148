// Package config loads and validates hivesearch configuration.
//
// Configuration hierarchy, lowest priority first:
//  1. Hardcoded defaults (NewConfig)
//  2. Project config (.hivesearch.yaml at the search root)
//  3. Environment variables (HIVESEARCH_*)
//
// Every tunable is clamped into a safe range during Validate, so a bad
// config degrades to defaults instead of failing a request.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ProjectConfigFile is the per-project config filename.
const ProjectConfigFile = ".hivesearch.yaml"

// Policy constant defaults. Chunk size, minimum token length, and top-K
// follow conventional information-retrieval defaults.
const (
	DefaultChunkLines     = 40
	DefaultMinTokenLength = 2
	DefaultTopK           = 10
	DefaultMaxFileSizeKB  = 1024
	DefaultBLASThreshold  = 4096

	maxChunkLines = 400
	maxTopK       = 100
	maxWorkers    = 128
)

// Config is the complete hivesearch configuration.
type Config struct {
	Chunking ChunkingConfig `yaml:"chunking"`
	Search   SearchConfig   `yaml:"search"`
	Paths    PathsConfig    `yaml:"paths"`
	Backend  BackendConfig  `yaml:"backend"`
}

// ChunkingConfig controls how files are split into pieces.
type ChunkingConfig struct {
	// Lines is the target line budget per piece.
	Lines int `yaml:"lines"`
	// MinTokenLength is the shortest token kept during normalization.
	MinTokenLength int `yaml:"min_token_length"`
}

// SearchConfig controls scoring and result shaping.
type SearchConfig struct {
	// TopK is the maximum number of ranked results returned.
	TopK int `yaml:"top_k"`
	// Workers bounds the worker pool shared by indexing and scoring.
	// 0 means the number of CPU cores.
	Workers int `yaml:"workers"`
}

// PathsConfig controls which files enter the corpus.
type PathsConfig struct {
	// Extensions is the source-file allowlist (empty = built-in default).
	Extensions []string `yaml:"extensions"`
	// Exclude are extra gitignore-style exclusions.
	Exclude []string `yaml:"exclude"`
	// MaxFileSizeKB skips files larger than this many kilobytes.
	MaxFileSizeKB int `yaml:"max_file_size_kb"`
	// RespectGitignore enables .gitignore handling (default true).
	RespectGitignore *bool `yaml:"respect_gitignore"`
}

// BackendConfig controls compute backend selection.
type BackendConfig struct {
	// Mode is "auto", "cpu", or "blas".
	Mode string `yaml:"mode"`
	// BLASThreshold is the corpus piece count above which the bulk
	// backend is preferred when available.
	BLASThreshold int `yaml:"blas_threshold"`
}

// NewConfig returns the hardcoded defaults.
func NewConfig() *Config {
	respect := true
	return &Config{
		Chunking: ChunkingConfig{
			Lines:          DefaultChunkLines,
			MinTokenLength: DefaultMinTokenLength,
		},
		Search: SearchConfig{
			TopK:    DefaultTopK,
			Workers: 0,
		},
		Paths: PathsConfig{
			MaxFileSizeKB:    DefaultMaxFileSizeKB,
			RespectGitignore: &respect,
		},
		Backend: BackendConfig{
			Mode:          "auto",
			BLASThreshold: DefaultBLASThreshold,
		},
	}
}

// Load reads the project config under root, applies environment
// overrides, and validates. A missing config file is not an error.
func Load(root string) (*Config, error) {
	cfg := NewConfig()

	path := filepath.Join(root, ProjectConfigFile)
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", ProjectConfigFile, err)
		}
	}

	cfg.applyEnv()
	cfg.Validate()
	return cfg, nil
}

// applyEnv applies HIVESEARCH_* environment overrides.
func (c *Config) applyEnv() {
	if v, ok := envInt("HIVESEARCH_CHUNK_LINES"); ok {
		c.Chunking.Lines = v
	}
	if v, ok := envInt("HIVESEARCH_MIN_TOKEN_LENGTH"); ok {
		c.Chunking.MinTokenLength = v
	}
	if v, ok := envInt("HIVESEARCH_TOP_K"); ok {
		c.Search.TopK = v
	}
	if v, ok := envInt("HIVESEARCH_WORKERS"); ok {
		c.Search.Workers = v
	}
	if v := os.Getenv("HIVESEARCH_BACKEND"); v != "" {
		c.Backend.Mode = v
	}
}

// Validate clamps every tunable into its safe range.
func (c *Config) Validate() {
	if c.Chunking.Lines < 1 || c.Chunking.Lines > maxChunkLines {
		c.Chunking.Lines = DefaultChunkLines
	}
	if c.Chunking.MinTokenLength < 1 {
		c.Chunking.MinTokenLength = DefaultMinTokenLength
	}
	if c.Search.TopK < 1 || c.Search.TopK > maxTopK {
		c.Search.TopK = DefaultTopK
	}
	if c.Search.Workers < 0 || c.Search.Workers > maxWorkers {
		c.Search.Workers = 0
	}
	if c.Paths.MaxFileSizeKB < 1 {
		c.Paths.MaxFileSizeKB = DefaultMaxFileSizeKB
	}
	if c.Paths.RespectGitignore == nil {
		respect := true
		c.Paths.RespectGitignore = &respect
	}
	switch c.Backend.Mode {
	case "auto", "cpu", "blas":
	default:
		c.Backend.Mode = "auto"
	}
	if c.Backend.BLASThreshold < 0 {
		c.Backend.BLASThreshold = DefaultBLASThreshold
	}
}

// EffectiveWorkers resolves the worker count: configured cap or the number
// of CPU cores.
func (c *Config) EffectiveWorkers() int {
	if c.Search.Workers > 0 {
		return c.Search.Workers
	}
	return runtime.NumCPU()
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
