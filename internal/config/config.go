package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultDotenvFile holds provider API keys outside the YAML config.
const DefaultDotenvFile = "api_keys.env"

// Config holds the hotel search configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	Index     IndexConfig     `yaml:"index"`
	Search    SearchConfig    `yaml:"search"`
	Loader    LoaderConfig    `yaml:"loader"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// DatabaseConfig holds Redis connection settings.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the OpenAI-compatible provider that vectorizes facilities text.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"`
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	MaxBatch    int    `yaml:"max_batch"`
	TimeoutSec  int    `yaml:"timeout_sec"`
	CacheTTLSec int    `yaml:"cache_ttl_sec"` // 0 = no expiry, -1 = cache disabled
}

// CacheEnabled reports whether query embeddings are cached in Redis.
func (e EmbeddingConfig) CacheEnabled() bool { return e.CacheTTLSec >= 0 }

// IndexConfig holds the hotel FT index layout.
type IndexConfig struct {
	Name            string `yaml:"name"`
	KeyPrefix       string `yaml:"key_prefix"`
	Language        string `yaml:"language"`
	Distance        string `yaml:"distance"`
	Scorer          string `yaml:"scorer"`
	HNSWM           int    `yaml:"hnsw_m"`
	HNSWEFConstruct int    `yaml:"hnsw_ef_construction"`
}

// SearchConfig holds retrieval pipeline settings.
type SearchConfig struct {
	RRFK              int    `yaml:"rrf_k"`
	OverFetch         int    `yaml:"over_fetch"`
	DefaultLimit      int    `yaml:"default_limit"`
	MaxLimit          int    `yaml:"max_limit"`
	FacilityPrefix    string `yaml:"facility_prefix"`
	FacilitySeparator string `yaml:"facility_separator"`
}

// LoaderConfig holds bulk loading settings for cmd/hotelload.
type LoaderConfig struct {
	Source        string  `yaml:"source"`       // local path of hotel.json
	SourceURL     string  `yaml:"source_url"`   // downloaded when Source does not exist
	BatchSize     int     `yaml:"batch_size"`   // hotels per embedding call and HSET pipeline
	Workers       int     `yaml:"workers"`      // concurrent batches
	RatePerSecond float64 `yaml:"rate_per_sec"` // embedding calls per second, 0 = unlimited
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from the given YAML file.
// Variables from the dotenv file (DOTENV_FILE, default api_keys.env) are loaded first
// so that ${VAR} references can see them; existing environment variables win.
func LoadFile(configPath string) (Config, error) {
	if err := loadDotenv(); err != nil {
		return Config{}, err
	}

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	c.applyEmbeddingDefaults()
	c.applyIndexDefaults()
	c.applySearchDefaults()
	c.applyLoaderDefaults()
}

func (c *Config) applyEmbeddingDefaults() {
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "dashscope"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-v3"
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = 1024
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}
}

func (c *Config) applyIndexDefaults() {
	if c.Index.Name == "" {
		c.Index.Name = "hotels"
	}
	if c.Index.KeyPrefix == "" {
		c.Index.KeyPrefix = "hotel:"
	}
	if c.Index.Distance == "" {
		c.Index.Distance = "COSINE"
	}
	if c.Index.HNSWM <= 0 {
		c.Index.HNSWM = 32
	}
	if c.Index.HNSWEFConstruct <= 0 {
		c.Index.HNSWEFConstruct = 400
	}
}

func (c *Config) applySearchDefaults() {
	if c.Search.RRFK <= 0 {
		c.Search.RRFK = 60
	}
	if c.Search.OverFetch <= 0 {
		c.Search.OverFetch = 10
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 5
	}
	if c.Search.MaxLimit == 0 {
		c.Search.MaxLimit = 50
	}
	if c.Search.FacilityPrefix == "" {
		c.Search.FacilityPrefix = "酒店提供："
	}
	if c.Search.FacilitySeparator == "" {
		c.Search.FacilitySeparator = "，"
	}
}

func (c *Config) applyLoaderDefaults() {
	if c.Loader.Source == "" {
		c.Loader.Source = "hotel.json"
	}
	if c.Loader.BatchSize <= 0 {
		c.Loader.BatchSize = 10
	}
	if c.Loader.Workers <= 0 {
		c.Loader.Workers = 4
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Database.Addrs) == 0 {
		return errors.New("database.addrs is required")
	}
	switch strings.ToUpper(c.Index.Distance) {
	case "", "COSINE", "L2", "IP":
	default:
		return fmt.Errorf("index.distance must be COSINE, L2 or IP, got %q", c.Index.Distance)
	}
	if c.Search.DefaultLimit > 0 && c.Search.MaxLimit > 0 && c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit %d exceeds search.max_limit %d",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	if c.Loader.RatePerSecond < 0 {
		return fmt.Errorf("loader.rate_per_sec must not be negative, got %g", c.Loader.RatePerSecond)
	}
	return nil
}

// loadDotenv loads the dotenv file when present. A missing file is not an error.
func loadDotenv() error {
	path := os.Getenv("DOTENV_FILE")
	if path == "" {
		path = DefaultDotenvFile
	}
	if !fileExists(path) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
