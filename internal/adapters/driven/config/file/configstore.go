package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultEmbeddingProvider = "openai"
	DefaultLLMProvider       = "openai"
	DefaultChunkSize         = 1000
	DefaultChunkOverlap      = 200
	DefaultRetrievalK        = 5
)

// Config is the application configuration, persisted as TOML at
// ~/.grantrag/config.toml by default.
type Config struct {
	// ProjectsDir is the root directory holding one folder per project.
	ProjectsDir string `toml:"projects_dir"`

	// DataDir holds the SQLite index and session state.
	DataDir string `toml:"data_dir"`

	Embedding ProviderConfig `toml:"embedding"`
	LLM       ProviderConfig `toml:"llm"`
	Ingest    IngestConfig   `toml:"ingest"`
	Retrieval RetrieveConfig `toml:"retrieval"`
}

// ProviderConfig selects and configures a model provider.
type ProviderConfig struct {
	// Provider is one of: openai, anthropic, ollama.
	Provider string `toml:"provider"`

	// Model overrides the provider's default model.
	Model string `toml:"model"`

	// BaseURL overrides the provider's default endpoint.
	BaseURL string `toml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `toml:"api_key_env"`
}

// IngestConfig tunes document chunking.
type IngestConfig struct {
	ChunkSize    int `toml:"chunk_size"`
	ChunkOverlap int `toml:"chunk_overlap"`
}

// RetrieveConfig tunes similarity search.
type RetrieveConfig struct {
	// TopK is the number of chunks retrieved per query.
	TopK int `toml:"top_k"`
}

// APIKey resolves the provider's API key from the environment.
func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(p.APIKeyEnv)
}

// DefaultConfigDir returns ~/.grantrag.
func DefaultConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".grantrag"), nil
}

// defaultConfig returns a config with every field at its default.
func defaultConfig(configDir string) *Config {
	return &Config{
		ProjectsDir: filepath.Join(configDir, "projects"),
		DataDir:     filepath.Join(configDir, "data"),
		Embedding: ProviderConfig{
			Provider:  DefaultEmbeddingProvider,
			APIKeyEnv: "OPENAI_API_KEY",
		},
		LLM: ProviderConfig{
			Provider:  DefaultLLMProvider,
			APIKeyEnv: "OPENAI_API_KEY",
		},
		Ingest: IngestConfig{
			ChunkSize:    DefaultChunkSize,
			ChunkOverlap: DefaultChunkOverlap,
		},
		Retrieval: RetrieveConfig{
			TopK: DefaultRetrievalK,
		},
	}
}

// LoadConfig reads the TOML config from configDir, creating the file with
// defaults when it does not exist. An empty configDir means ~/.grantrag.
func LoadConfig(configDir string) (*Config, error) {
	if configDir == "" {
		var err error
		configDir, err = DefaultConfigDir()
		if err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	cfg := defaultConfig(configDir)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := SaveConfig(configDir, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// Backfill zero values so a sparse user config still works
	if cfg.Ingest.ChunkSize <= 0 {
		cfg.Ingest.ChunkSize = DefaultChunkSize
	}
	if cfg.Ingest.ChunkOverlap < 0 {
		cfg.Ingest.ChunkOverlap = DefaultChunkOverlap
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = DefaultRetrievalK
	}
	if cfg.ProjectsDir == "" {
		cfg.ProjectsDir = filepath.Join(configDir, "projects")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = filepath.Join(configDir, "data")
	}

	return cfg, nil
}

// SaveConfig writes the config as TOML with restricted permissions.
func SaveConfig(configDir string, cfg *Config) error {
	if configDir == "" {
		var err error
		configDir, err = DefaultConfigDir()
		if err != nil {
			return err
		}
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
