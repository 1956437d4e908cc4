package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/EllouziMedAmin/Pedagogical-RAG/api/handlers"
	"github.com/EllouziMedAmin/Pedagogical-RAG/config"
	"github.com/EllouziMedAmin/Pedagogical-RAG/internal/metrics"
	"github.com/EllouziMedAmin/Pedagogical-RAG/internal/server"
	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/classify"
	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/embedding"
	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/providers/openai"
	"github.com/EllouziMedAmin/Pedagogical-RAG/llm/speech"
	"github.com/EllouziMedAmin/Pedagogical-RAG/memory"
	"github.com/EllouziMedAmin/Pedagogical-RAG/tutor"
	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Server wires the tutoring service together: providers, registry,
// HTTP handlers and the managed listener.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager    *server.Manager
	metricsManager *server.Manager

	registry *tutor.Registry
	service  *tutor.InteractionService

	sessionHandler *handlers.SessionHandler
	healthHandler  *handlers.HealthHandler

	promRegistry *prometheus.Registry
	collector    *metrics.Collector

	redisClient *redis.Client

	lifecycleCancel context.CancelFunc
	wg              sync.WaitGroup
}

// NewServer creates a server from validated configuration.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

// Start builds every dependency and starts the HTTP listener.
func (s *Server) Start() error {
	s.promRegistry = prometheus.NewRegistry()
	s.collector = metrics.NewCollector("tutor", s.promRegistry, s.logger)

	if err := s.initService(); err != nil {
		return fmt.Errorf("failed to init tutoring service: %w", err)
	}

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("Server started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.String("model", s.cfg.LLM.Model),
		zap.Bool("memory_enabled", s.cfg.Memory.Enabled),
	)
	return nil
}

// initService constructs the upstream providers and the interaction
// service around them.
func (s *Server) initService() error {
	llmProvider := openai.NewProvider(openai.Config{
		APIKey:       s.cfg.LLM.APIKey,
		BaseURL:      s.cfg.LLM.BaseURL,
		Model:        s.cfg.LLM.Model,
		Organization: s.cfg.LLM.Organization,
		Timeout:      s.cfg.LLM.Timeout,
	}, s.logger)

	services := tutor.Services{
		LLM: llmProvider,
		Synthesizer: speech.NewElevenLabsProvider(speech.ElevenLabsConfig{
			APIKey:  s.cfg.Speech.ElevenLabsAPIKey,
			BaseURL: s.cfg.Speech.ElevenLabsBaseURL,
			Model:   s.cfg.Speech.SynthesisModel,
			Timeout: s.cfg.Speech.Timeout,
		}),
	}

	if s.cfg.Classifier.APIKey != "" {
		services.Toxicity = classify.NewHFProvider(classify.HFConfig{
			APIKey:  s.cfg.Classifier.APIKey,
			BaseURL: s.cfg.Classifier.BaseURL,
			Model:   s.cfg.Classifier.ToxicityModel,
			Timeout: s.cfg.Classifier.Timeout,
		})
		services.Affect = classify.NewHFProvider(classify.HFConfig{
			APIKey:  s.cfg.Classifier.APIKey,
			BaseURL: s.cfg.Classifier.BaseURL,
			Model:   s.cfg.Classifier.EmotionModel,
			Timeout: s.cfg.Classifier.Timeout,
		})
	} else {
		s.logger.Warn("Classifier API key not configured, moderation and affect run degraded")
	}

	if s.cfg.Speech.WhisperAPIKey != "" {
		services.Transcriber = speech.NewWhisperProvider(speech.WhisperConfig{
			APIKey:  s.cfg.Speech.WhisperAPIKey,
			BaseURL: s.cfg.Speech.WhisperBaseURL,
			Model:   s.cfg.Speech.WhisperModel,
			Timeout: s.cfg.Speech.Timeout,
		})
	} else {
		s.logger.Warn("Whisper API key not configured, audio turns will not be transcribed")
	}

	if s.cfg.Memory.Enabled {
		services.MemoryForSubject = s.buildMemoryFactory()
	} else {
		s.logger.Info("Long-term memory disabled, replies use conversation state only")
	}

	timeouts := tutor.CallTimeouts{
		Moderation:    s.cfg.Session.ModerationTimeout,
		Affect:        s.cfg.Session.AffectTimeout,
		Memory:        s.cfg.Session.MemoryTimeout,
		Generation:    s.cfg.Session.GenerationTimeout,
		Transcription: s.cfg.Session.TranscribeTimeout,
		Synthesis:     s.cfg.Session.SynthesisTimeout,
	}

	composer := tutor.NewPromptComposer(s.loadEncoder()).
		WithContextBudget(s.cfg.Session.ContextTokenBudget)

	s.registry = tutor.NewRegistry(services, composer, tutor.RegistryConfig{
		MaxSessions: s.cfg.Session.MaxSessions,
		Timeouts:    timeouts,
	}, s.logger)

	normalizer := tutor.NewNormalizer(services.Transcriber, timeouts, s.logger)
	synth := tutor.NewSynthesizer(services.Synthesizer, timeouts, s.logger)
	s.service = tutor.NewInteractionService(s.registry, normalizer, synth, s.collector, s.logger)

	s.sessionHandler = handlers.NewSessionHandler(s.service, s.cfg.Server.MaxUploadBytes, s.logger)
	s.healthHandler = handlers.NewHealthHandler(s.registry, s.cfg.LLM.Model, s.logger)
	return nil
}

// buildMemoryFactory returns a memoized per-subject store factory. Each
// subject maps to its own Qdrant collection; when a cache TTL is set,
// stores share one Redis connection pool for the query cache.
func (s *Server) buildMemoryFactory() func(subject string) memory.Store {
	embedder := embedding.NewOpenAIProvider(embedding.OpenAIConfig{
		APIKey:  s.cfg.Memory.EmbeddingAPIKey,
		Model:   s.cfg.Memory.EmbeddingModel,
		Timeout: s.cfg.Memory.Timeout,
	})

	if s.cfg.Memory.CacheTTL > 0 {
		s.redisClient = redis.NewClient(&redis.Options{
			Addr:     s.cfg.Redis.Addr,
			Password: s.cfg.Redis.Password,
			DB:       s.cfg.Redis.DB,
			PoolSize: s.cfg.Redis.PoolSize,
		})
	}

	var (
		mu     sync.Mutex
		stores = make(map[string]memory.Store)
	)
	return func(subject string) memory.Store {
		collection := memory.CollectionForSubject(subject)
		mu.Lock()
		defer mu.Unlock()
		if store, ok := stores[collection]; ok {
			return store
		}
		var store memory.Store = memory.NewQdrantStore(memory.QdrantConfig{
			BaseURL:    s.cfg.Memory.QdrantURL,
			APIKey:     s.cfg.Memory.QdrantAPIKey,
			Collection: collection,
			Timeout:    s.cfg.Memory.Timeout,
		}, embedder, s.logger)
		if s.redisClient != nil {
			store = memory.NewCachedStoreWithClient(store, s.redisClient, s.cfg.Memory.CacheTTL, s.logger)
		}
		stores[collection] = store
		return store
	}
}

// loadEncoder loads the tokenizer used to budget retrieved context.
// Missing encoding data falls back to the composer's heuristic count.
func (s *Server) loadEncoder() *tiktoken.Tiktoken {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		s.logger.Warn("Failed to load token encoder, using heuristic token counts", zap.Error(err))
		return nil
	}
	return enc
}

func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /session", s.sessionHandler.HandleCreate)
	mux.HandleFunc("POST /session/{id}/interact", s.sessionHandler.HandleInteract)
	mux.HandleFunc("GET /health", s.healthHandler.HandleHealth)
	mux.HandleFunc("GET /version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))

	lifecycleCtx, cancel := context.WithCancel(context.Background())
	s.lifecycleCancel = cancel
	s.startSessionGauge(lifecycleCtx)

	handler := Chain(mux,
		Recovery(s.logger),
		RequestID(),
		SecurityHeaders(),
		RequestLogger(s.logger),
		MetricsMiddleware(s.collector),
		CORS(s.cfg.Server.CORSOrigins),
		RateLimiter(lifecycleCtx, s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, s.logger),
	)

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.HTTPPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		IdleTimeout:     2 * s.cfg.Server.ReadTimeout,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

// startMetricsServer exposes the Prometheus registry on its own port so
// scrapes never compete with learner traffic.
func (s *Server) startMetricsServer() error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))

	serverConfig := server.Config{
		Addr:            fmt.Sprintf(":%d", s.cfg.Server.MetricsPort),
		ReadTimeout:     s.cfg.Server.ReadTimeout,
		WriteTimeout:    s.cfg.Server.WriteTimeout,
		ShutdownTimeout: s.cfg.Server.ShutdownTimeout,
	}

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)
	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// startSessionGauge keeps the live-session gauge in step with the registry.
func (s *Server) startSessionGauge(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.collector.SetActiveSessions(s.registry.Count())
			}
		}
	}()
}

// WaitForShutdown blocks until a termination signal, then shuts down.
func (s *Server) WaitForShutdown() {
	if s.httpManager != nil {
		s.httpManager.WaitForShutdown()
	}
	s.Shutdown()
}

// Shutdown stops the listener and background goroutines.
func (s *Server) Shutdown() {
	s.logger.Info("Starting graceful shutdown...")

	if s.lifecycleCancel != nil {
		s.lifecycleCancel()
	}

	if s.httpManager != nil {
		if err := s.httpManager.Shutdown(context.Background()); err != nil {
			s.logger.Error("HTTP server shutdown error", zap.Error(err))
		}
	}

	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(context.Background()); err != nil {
			s.logger.Error("Metrics server shutdown error", zap.Error(err))
		}
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			s.logger.Error("Redis client close error", zap.Error(err))
		}
	}

	s.wg.Wait()
	s.logger.Info("Graceful shutdown completed")
}
