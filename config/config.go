package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Store    StoreConfig    `yaml:"store"`
	Minio    MinioConfig    `yaml:"minio"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Backend identifiers for LLMConfig.Backend
const (
	BackendOpenAI = "openai"
	BackendOllama = "ollama"
	BackendBasic  = "basic"
)

type LLMConfig struct {
	Backend          string `yaml:"backend"`             // openai, ollama or basic
	Model            string `yaml:"model"`               // chat model name
	BaseURL          string `yaml:"base_url"`            // optional OpenAI-compatible endpoint override
	OllamaURL        string `yaml:"ollama_url"`          // local Ollama service
	MaxRetries       int    `yaml:"max_retries"`         // rate-limit / transient retry attempts
	RetryBaseDelayMS int    `yaml:"retry_base_delay_ms"` // backoff base delay
	TimeoutSeconds   int    `yaml:"timeout_seconds"`     // per-call HTTP timeout
	// DisableDegradedFallback turns off the offline heuristic substitution
	// when the remote backend reports exhausted quota.
	DisableDegradedFallback bool `yaml:"disable_degraded_fallback"`
}

// Chunk failure policies for PipelineConfig.OnChunkError
const (
	PolicyStopOnRateLimit = "stop_on_rate_limit"
	PolicyContinue        = "continue"
)

type PipelineConfig struct {
	ChunkSize    int    `yaml:"chunk_size"`     // max characters per window
	ChunkOverlap int    `yaml:"chunk_overlap"`  // characters shared with previous window
	MaxChunks    int    `yaml:"max_chunks"`     // cap for very large documents, 0 = unlimited
	ChunkDelayMS int    `yaml:"chunk_delay_ms"` // pause between chunk calls
	OnChunkError string `yaml:"on_chunk_error"` // stop_on_rate_limit or continue
}

// ChunkDelay returns the configured inter-chunk pause as a duration.
func (p *PipelineConfig) ChunkDelay() time.Duration {
	return time.Duration(p.ChunkDelayMS) * time.Millisecond
}

type StoreConfig struct {
	MaxResults int `yaml:"max_results"`
}

type MinioConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	ExpireDays int    `yaml:"expire_days"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.LLM.Backend == "" {
		c.LLM.Backend = BackendOpenAI
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.OllamaURL == "" {
		c.LLM.OllamaURL = "http://localhost:11434"
	}
	if c.LLM.MaxRetries == 0 {
		c.LLM.MaxRetries = 3
	}
	if c.LLM.RetryBaseDelayMS == 0 {
		c.LLM.RetryBaseDelayMS = 1000
	}
	if c.LLM.TimeoutSeconds == 0 {
		c.LLM.TimeoutSeconds = 120
	}
	if c.Pipeline.ChunkSize == 0 {
		c.Pipeline.ChunkSize = 3000
	}
	if c.Pipeline.ChunkOverlap == 0 {
		c.Pipeline.ChunkOverlap = 300
	}
	if c.Pipeline.MaxChunks == 0 {
		c.Pipeline.MaxChunks = 20
	}
	if c.Pipeline.ChunkDelayMS == 0 {
		c.Pipeline.ChunkDelayMS = 500
	}
	if c.Pipeline.OnChunkError == "" {
		c.Pipeline.OnChunkError = PolicyStopOnRateLimit
	}
	if c.Store.MaxResults == 0 {
		c.Store.MaxResults = 100
	}
	if c.Minio.ExpireDays == 0 {
		c.Minio.ExpireDays = 7
	}
}

// Validate rejects configurations that would break the pipeline at runtime,
// in particular chunk_overlap >= chunk_size which makes slicing degenerate.
func (c *Config) Validate() error {
	switch c.LLM.Backend {
	case BackendOpenAI, BackendOllama, BackendBasic:
	default:
		return fmt.Errorf("unknown llm backend %q", c.LLM.Backend)
	}
	if c.Pipeline.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.Pipeline.ChunkSize)
	}
	if c.Pipeline.ChunkOverlap < 0 || c.Pipeline.ChunkOverlap >= c.Pipeline.ChunkSize {
		return fmt.Errorf("chunk_overlap must satisfy 0 <= overlap < chunk_size, got %d/%d",
			c.Pipeline.ChunkOverlap, c.Pipeline.ChunkSize)
	}
	switch c.Pipeline.OnChunkError {
	case PolicyStopOnRateLimit, PolicyContinue:
	default:
		return fmt.Errorf("unknown on_chunk_error policy %q", c.Pipeline.OnChunkError)
	}
	if c.Minio.Enabled && c.Minio.Endpoint == "" {
		return fmt.Errorf("minio is enabled but endpoint is empty")
	}
	return nil
}
