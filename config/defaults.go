package config

import "time"

// DefaultConfig returns the baseline configuration. Credentials are
// intentionally empty and must come from the file or the environment.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8000,
			MetricsPort:     9090,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    120 * time.Second,
			ShutdownTimeout: 15 * time.Second,
			MaxUploadBytes:  20 << 20,
			RateLimitRPS:    10,
			RateLimitBurst:  20,
		},
		Session: SessionConfig{
			MaxSessions:        1000,
			ModerationTimeout:  5 * time.Second,
			AffectTimeout:      5 * time.Second,
			MemoryTimeout:      5 * time.Second,
			GenerationTimeout:  60 * time.Second,
			TranscribeTimeout:  30 * time.Second,
			SynthesisTimeout:   30 * time.Second,
			ContextTokenBudget: 512,
		},
		LLM: LLMConfig{
			BaseURL: "https://api.openai.com",
			Model:   "gpt-4o",
			Timeout: 60 * time.Second,
		},
		Classifier: ClassifierConfig{
			BaseURL:       "https://api-inference.huggingface.co",
			ToxicityModel: "unitary/toxic-bert",
			EmotionModel:  "j-hartmann/emotion-english-distilroberta-base",
			Timeout:       10 * time.Second,
		},
		Speech: SpeechConfig{
			ElevenLabsBaseURL: "https://api.elevenlabs.io",
			SynthesisModel:    "eleven_multilingual_v2",
			WhisperBaseURL:    "https://api.openai.com",
			WhisperModel:      "whisper-1",
			Timeout:           30 * time.Second,
		},
		Memory: MemoryConfig{
			Enabled:        true,
			QdrantURL:      "http://localhost:6333",
			EmbeddingModel: "text-embedding-3-small",
			Timeout:        10 * time.Second,
			CacheTTL:       5 * time.Minute,
		},
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			DB:       0,
			PoolSize: 10,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
