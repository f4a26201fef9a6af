package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"longcatnode/internal/cache"
	"longcatnode/internal/config"
	"longcatnode/internal/core"
	logpkg "longcatnode/internal/log"
	"longcatnode/internal/metrics"
	"longcatnode/internal/normalize"
	"longcatnode/internal/process"
	"longcatnode/internal/resolve"
	"longcatnode/internal/transport"
	"longcatnode/internal/util"

	"github.com/gin-gonic/gin"
)

// Server application server
type Server struct {
	port    string
	ginMode string

	router *gin.Engine

	cache          *cache.CacheService
	metricsService *metrics.MetricsService

	validClientKeys map[string]bool
	modelsData      core.ModelList
	modelsConfig    core.ModelsConfig

	executor *process.Executor
	provider *transport.Provider

	config config.ServerConfig

	rateLimiter *rateLimiter

	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
	closeOnce      sync.Once
	closeErr       error
}

// NewServer creates a new server instance
func NewServer(cfg config.ServerConfig) (*Server, error) {
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger is required in ServerConfig")
	}
	if cfg.Storage == nil {
		return nil, fmt.Errorf("storage is required in ServerConfig")
	}

	modelsConfig, err := config.LoadModelsConfig(cfg.ModelsConfigPath, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load models config: %w", err)
	}
	cfg.Logger.Info("Loaded %d models into the capability table", len(modelsConfig.Models))

	if cfg.Credentials.Valid() {
		cfg.Logger.Info("LongCat credentials configured (%s)", util.GetKeyDisplayName(cfg.Credentials.APIKey))
	} else {
		cfg.Logger.Warn("LONGCAT_API_KEY is not set, executions will fail")
	}

	cacheService := cache.NewCacheService()

	metricsService := metrics.NewMetricsService(metrics.MetricsConfig{
		SaveInterval: core.MinSaveInterval,
		HistorySize:  core.HistoryBufferSize,
		Storage:      cfg.Storage,
		Logger:       cfg.Logger,
	})

	if err := metricsService.LoadStats(); err != nil {
		cfg.Logger.Warn("Failed to load historical stats: %v", err)
	}

	upstream := cfg.Transport
	if upstream == nil {
		upstream = transport.NewClient(transport.NewHTTPClient(cfg.HTTPClientSettings), logpkg.Component(cfg.Logger, "transport"))
	}

	resolver := resolve.NewResolver(modelsConfig, cacheService, metricsService, logpkg.Component(cfg.Logger, "resolver"))
	executor, err := process.NewExecutor(process.ExecutorConfig{
		Resolver:   resolver,
		Transport:  upstream,
		Creds:      cfg.Credentials,
		Normalizer: normalize.NewNormalizer(logpkg.Component(cfg.Logger, "normalizer")),
		Metrics:    metricsService,
		Logger:     logpkg.Component(cfg.Logger, "executor"),
	})
	if err != nil {
		_ = metricsService.Close()
		_ = cacheService.Close()
		return nil, fmt.Errorf("failed to create executor: %w", err)
	}

	validClientKeys := make(map[string]bool)
	for _, key := range cfg.ClientAPIKeys {
		validClientKeys[key] = true
	}

	if len(validClientKeys) == 0 {
		cfg.Logger.Warn("No client API keys configured")
	} else {
		cfg.Logger.Info("Loaded %d client API keys", len(validClientKeys))
	}

	rateLimit := cfg.RateLimit
	if rateLimit <= 0 {
		rateLimit = config.DefaultRateLimit
	}

	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())

	server := &Server{
		port:            cfg.Port,
		ginMode:         cfg.GinMode,
		cache:           cacheService,
		metricsService:  metricsService,
		validClientKeys: validClientKeys,
		modelsData:      config.BuildModelList(modelsConfig),
		modelsConfig:    modelsConfig,
		executor:        executor,
		provider:        transport.NewProvider(upstream, cfg.Credentials, modelsConfig),
		config:          cfg,
		rateLimiter:     newRateLimiter(rateLimit),
		shutdownCtx:     shutdownCtx,
		shutdownCancel:  shutdownCancel,
	}

	server.setupRoutes()

	return server, nil
}

// Run runs the server
func (s *Server) Run() error {
	s.setupGracefulShutdown()

	srv := &http.Server{
		Addr:              ":" + s.port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      core.HTTPRequestTimeout + 30*time.Second,
	}

	go func() {
		<-s.shutdownCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			s.config.Logger.Error("Server shutdown error: %v", err)
		}
	}()

	s.config.Logger.Info("Server starting on port %s", s.port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) setupGracefulShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		s.config.Logger.Info("Shutdown signal received, shutting down gracefully...")
		s.shutdownCancel()
	}()
}

func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"provider":    core.ProviderName,
		"credentials": s.provider.ValidateConfig(),
	})
}

func (s *Server) getStatsData(c *gin.Context) {
	stats := s.metricsService.GetRequestStats()
	periodStats := metrics.GetPeriodStats(stats.RequestHistory, 24, 24*7, 24*30)
	currentQPS := s.metricsService.GetQPS()

	c.JSON(http.StatusOK, gin.H{
		"currentTime":   time.Now().Format(core.TimeFormatDateTime),
		"currentQPS":    fmt.Sprintf("%.3f", currentQPS),
		"totalRequests": stats.TotalRequests,
		"totalRecords":  len(stats.RequestHistory),
		"stats24h":      periodStats[24],
		"stats7d":       periodStats[24*7],
		"stats30d":      periodStats[24*30],
		"cacheStats":    s.metricsService.GetCacheStats(),
		"tokenStats":    s.metricsService.GetTokenStats(),
		"modelCounts":   metrics.CountByModel(stats.RequestHistory),
	})
}

// Close closes the server
func (s *Server) Close() error {
	s.closeOnce.Do(func() {
		if s.shutdownCancel != nil {
			s.shutdownCancel()
		}

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		if s.metricsService != nil {
			if err := s.metricsService.Close(); err != nil {
				s.closeErr = errors.Join(s.closeErr, fmt.Errorf("close metrics service: %w", err))
			}
		}

		if s.cache != nil {
			if err := s.cache.Close(); err != nil {
				s.closeErr = errors.Join(s.closeErr, fmt.Errorf("close cache service: %w", err))
			}
		}
	})
	return s.closeErr
}
