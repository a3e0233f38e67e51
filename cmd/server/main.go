package main

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"homeworth/server/config"
	"homeworth/server/internal/api"
	"homeworth/server/internal/cache"
	"homeworth/server/internal/llm"
	"homeworth/server/internal/providers"
	"homeworth/server/internal/ratelimit"
	"homeworth/server/internal/resolver"
	"homeworth/server/internal/strategy"
	"homeworth/server/internal/valuation"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	// Local development convenience; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	store := buildCache(cfg, logger)
	defer store.Close()

	interpreter := buildInterpreter(cfg, logger)

	orchestrator := valuation.New(
		resolver.New(interpreter, logger),
		buildGeocoder(cfg, logger),
		buildComps(cfg, logger),
		buildTrends(cfg, logger),
		buildStrategy(cfg, interpreter, logger),
		store,
		time.Duration(cfg.CacheTTLSeconds)*time.Second,
		cfg.Currency,
		logger,
	)

	limiter := ratelimit.New(store, cfg.RateLimitRPM, logger)
	handler := api.NewHandler(orchestrator, limiter, cfg.APIKey, logger)

	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware(cfg))
	api.SetupRoutes(router, handler, logger)

	logger.Infof("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if len(cfg.AllowOrigins) == 1 && cfg.AllowOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "x-api-key", "If-None-Match", "X-Request-Id")
	corsCfg.ExposeHeaders = []string{"ETag", "X-Request-Id"}
	return cors.New(corsCfg)
}

func buildCache(cfg *config.Config, logger *logrus.Logger) cache.Store {
	if cfg.UseRedis {
		store, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		logger.Info("Using Redis cache backend")
		return store
	}
	return cache.NewMemory(cfg.CacheMaxEntries)
}

func buildInterpreter(cfg *config.Config, logger *logrus.Logger) llm.Client {
	client, err := llm.NewAnthropic(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
	if err != nil {
		// No credential: the resolver falls back to local rules only.
		logger.Info("Hosted interpreter not configured, address resolution uses local rules")
		return nil
	}
	return client
}

func buildGeocoder(cfg *config.Config, logger *logrus.Logger) providers.Geocoder {
	if cfg.Geo.Provider == "http" && cfg.Geo.BaseURL != "" {
		logger.WithField("base_url", cfg.Geo.BaseURL).Info("Using HTTP geocode provider")
		return providers.NewHTTPGeocoder(cfg.Geo.BaseURL)
	}
	return providers.MockGeocoder{}
}

func buildComps(cfg *config.Config, logger *logrus.Logger) providers.CompsSource {
	switch {
	case cfg.Comps.Provider == "http" && cfg.Comps.BaseURL != "":
		logger.WithField("base_url", cfg.Comps.BaseURL).Info("Using HTTP comps provider")
		return providers.NewHTTPComps(cfg.Comps.BaseURL)
	case cfg.Comps.Provider == "db":
		comps, err := providers.NewDBComps(cfg.Comps.DBPath, logger)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open sales database")
		}
		logger.WithField("path", cfg.Comps.DBPath).Info("Using sales database comps provider")
		return comps
	default:
		return providers.MockComps{}
	}
}

func buildTrends(cfg *config.Config, logger *logrus.Logger) providers.TrendsSource {
	if cfg.Trends.Provider == "http" && cfg.Trends.BaseURL != "" {
		logger.WithField("base_url", cfg.Trends.BaseURL).Info("Using HTTP trends provider")
		return providers.NewHTTPTrends(cfg.Trends.BaseURL)
	}
	return providers.MockTrends{}
}

func buildStrategy(cfg *config.Config, interpreter llm.Client, logger *logrus.Logger) strategy.Strategy {
	switch strings.ToLower(cfg.Model.Provider) {
	case "ml":
		return strategy.NewRegressionOrHeuristic(cfg.Model.Path, logger)
	case "llm":
		logger.Info("Using narrative valuation strategy")
		return strategy.NewNarrative()
	case "anthropic":
		if interpreter == nil {
			logger.Fatal("MODEL_PROVIDER=anthropic requires ANTHROPIC_API_KEY and ANTHROPIC_MODEL")
		}
		logger.WithField("model", cfg.Anthropic.Model).Info("Using hosted valuation strategy")
		return strategy.NewHosted(interpreter)
	default:
		logger.Info("Using heuristic valuation strategy")
		return strategy.Heuristic{}
	}
}
