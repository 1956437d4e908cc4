package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" env:"SERVER"`
	Session    SessionConfig    `yaml:"session" env:"SESSION"`
	LLM        LLMConfig        `yaml:"llm" env:"LLM"`
	Classifier ClassifierConfig `yaml:"classifier" env:"CLASSIFIER"`
	Speech     SpeechConfig     `yaml:"speech" env:"SPEECH"`
	Memory     MemoryConfig     `yaml:"memory" env:"MEMORY"`
	Redis      RedisConfig      `yaml:"redis" env:"REDIS"`
	Log        LogConfig        `yaml:"log" env:"LOG"`
}

// ServerConfig tunes the HTTP listener.
type ServerConfig struct {
	HTTPPort        int           `yaml:"http_port" env:"HTTP_PORT"`
	MetricsPort     int           `yaml:"metrics_port" env:"METRICS_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// MaxUploadBytes bounds multipart interaction bodies (audio + image).
	MaxUploadBytes int64 `yaml:"max_upload_bytes" env:"MAX_UPLOAD_BYTES"`
	// RateLimitRPS caps requests per second per client; zero disables.
	RateLimitRPS   float64 `yaml:"rate_limit_rps" env:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `yaml:"rate_limit_burst" env:"RATE_LIMIT_BURST"`
	// CORSOrigins lists the allowed cross-origin hosts. Empty means no
	// CORS headers are set, so browsers reject cross-origin calls.
	CORSOrigins []string `yaml:"cors_origins" env:"CORS_ORIGINS"`
}

// SessionConfig tunes the session registry and per-call deadlines.
type SessionConfig struct {
	MaxSessions        int           `yaml:"max_sessions" env:"MAX_SESSIONS"`
	ModerationTimeout  time.Duration `yaml:"moderation_timeout" env:"MODERATION_TIMEOUT"`
	AffectTimeout      time.Duration `yaml:"affect_timeout" env:"AFFECT_TIMEOUT"`
	MemoryTimeout      time.Duration `yaml:"memory_timeout" env:"MEMORY_TIMEOUT"`
	GenerationTimeout  time.Duration `yaml:"generation_timeout" env:"GENERATION_TIMEOUT"`
	TranscribeTimeout  time.Duration `yaml:"transcribe_timeout" env:"TRANSCRIBE_TIMEOUT"`
	SynthesisTimeout   time.Duration `yaml:"synthesis_timeout" env:"SYNTHESIS_TIMEOUT"`
	ContextTokenBudget int           `yaml:"context_token_budget" env:"CONTEXT_TOKEN_BUDGET"`
}

// LLMConfig configures the chat-completion provider.
type LLMConfig struct {
	APIKey       string        `yaml:"api_key" env:"API_KEY"`
	BaseURL      string        `yaml:"base_url" env:"BASE_URL"`
	Model        string        `yaml:"model" env:"MODEL"`
	Organization string        `yaml:"organization" env:"ORGANIZATION"`
	Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// ClassifierConfig configures the hosted text classifiers used for the
// moderation gate and affect analysis.
type ClassifierConfig struct {
	APIKey        string        `yaml:"api_key" env:"API_KEY"`
	BaseURL       string        `yaml:"base_url" env:"BASE_URL"`
	ToxicityModel string        `yaml:"toxicity_model" env:"TOXICITY_MODEL"`
	EmotionModel  string        `yaml:"emotion_model" env:"EMOTION_MODEL"`
	Timeout       time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// SpeechConfig configures synthesis and transcription.
type SpeechConfig struct {
	ElevenLabsAPIKey  string        `yaml:"elevenlabs_api_key" env:"ELEVENLABS_API_KEY"`
	ElevenLabsBaseURL string        `yaml:"elevenlabs_base_url" env:"ELEVENLABS_BASE_URL"`
	SynthesisModel    string        `yaml:"synthesis_model" env:"SYNTHESIS_MODEL"`
	WhisperAPIKey     string        `yaml:"whisper_api_key" env:"WHISPER_API_KEY"`
	WhisperBaseURL    string        `yaml:"whisper_base_url" env:"WHISPER_BASE_URL"`
	WhisperModel      string        `yaml:"whisper_model" env:"WHISPER_MODEL"`
	Timeout           time.Duration `yaml:"timeout" env:"TIMEOUT"`
}

// MemoryConfig configures the vector store and the embedding provider
// behind long-term memory.
type MemoryConfig struct {
	Enabled         bool          `yaml:"enabled" env:"ENABLED"`
	QdrantURL       string        `yaml:"qdrant_url" env:"QDRANT_URL"`
	QdrantAPIKey    string        `yaml:"qdrant_api_key" env:"QDRANT_API_KEY"`
	EmbeddingAPIKey string        `yaml:"embedding_api_key" env:"EMBEDDING_API_KEY"`
	EmbeddingModel  string        `yaml:"embedding_model" env:"EMBEDDING_MODEL"`
	Timeout         time.Duration `yaml:"timeout" env:"TIMEOUT"`
	// CacheTTL enables the Redis query cache when positive.
	CacheTTL time.Duration `yaml:"cache_ttl" env:"CACHE_TTL"`
}

// RedisConfig configures the optional query cache.
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	PoolSize int    `yaml:"pool_size" env:"POOL_SIZE"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`   // debug, info, warn, error
	Format string `yaml:"format" env:"FORMAT"` // json, console
}

// Loader loads configuration with builder-style options.
//
// Priority: defaults, then the YAML file, then environment variables.
type Loader struct {
	configPath string
	envPrefix  string
	validators []func(*Config) error
}

// NewLoader creates a loader with the default env prefix.
func NewLoader() *Loader {
	return &Loader{envPrefix: "TUTOR"}
}

// WithConfigPath sets the YAML file path. A missing file is not an error.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithEnvPrefix overrides the environment variable prefix.
func (l *Loader) WithEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// WithValidator appends a validation hook run after loading.
func (l *Loader) WithValidator(v func(*Config) error) *Loader {
	l.validators = append(l.validators, v)
	return l
}

// Load resolves the final configuration.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.setFieldsFromEnv(reflect.ValueOf(cfg).Elem(), l.envPrefix); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, v := range l.validators {
		if err := v(cfg); err != nil {
			return nil, fmt.Errorf("config validation failed: %w", err)
		}
	}
	return cfg, nil
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func (l *Loader) setFieldsFromEnv(v reflect.Value, prefix string) error {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		envTag := fieldType.Tag.Get("env")
		if envTag == "" || envTag == "-" {
			continue
		}
		envKey := prefix + "_" + envTag

		if field.Kind() == reflect.Struct {
			if err := l.setFieldsFromEnv(field, envKey); err != nil {
				return err
			}
			continue
		}

		envValue := os.Getenv(envKey)
		if envValue == "" {
			continue
		}
		if err := setFieldValue(field, envValue); err != nil {
			return fmt.Errorf("failed to set %s: %w", envKey, err)
		}
	}
	return nil
}

func setFieldValue(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if field.Type() == reflect.TypeOf(time.Duration(0)) {
			d, err := time.ParseDuration(value)
			if err != nil {
				return err
			}
			field.SetInt(int64(d))
		} else {
			i, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return err
			}
			field.SetInt(i)
		}
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
	return nil
}

// MustLoad loads configuration from path and panics on failure.
func MustLoad(path string) *Config {
	cfg, err := NewLoader().WithConfigPath(path).Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
	return cfg
}

// Validate checks invariants that would make the service unable to start.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		errs = append(errs, "invalid HTTP port")
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		errs = append(errs, "invalid metrics port")
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, "max_upload_bytes must be positive")
	}
	if c.Session.MaxSessions < 0 {
		errs = append(errs, "max_sessions must not be negative")
	}
	if c.LLM.APIKey == "" {
		errs = append(errs, "llm api_key is required")
	}
	if c.Speech.ElevenLabsAPIKey == "" {
		errs = append(errs, "elevenlabs api_key is required")
	}
	if c.Memory.Enabled && c.Memory.QdrantURL == "" {
		errs = append(errs, "qdrant_url is required when memory is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors: %s", strings.Join(errs, "; "))
	}
	return nil
}
