package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"contest-backend/docs"
	"contest-backend/internal/common/config"
	"contest-backend/internal/common/logger"
	"contest-backend/internal/common/middleware"
	contestHTTP "contest-backend/internal/features/contest/delivery/http"
	"contest-backend/internal/features/contest/models"
	contestPostgres "contest-backend/internal/features/contest/repository/postgres"
	contestRedis "contest-backend/internal/features/contest/repository/redis"
	"contest-backend/internal/features/contest/service"
	"contest-backend/internal/features/contest/store"
	"contest-backend/internal/platform/postgres"
	"contest-backend/internal/platform/redis"
	"contest-backend/internal/workers"
)

// @title           Contest Engine API
// @version         1.0
// @description     Paid contests with community voting and escrow settlement.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name X-Telegram-Init-Data
// @description Telegram Mini App init_data string for authentication

// @securityDefinitions.apikey EscrowToken
// @in header
// @name X-Escrow-Token

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	format, err := logger.ParseFormat(cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(logger.Options{Service: "contest-backend", Debug: cfg.Debug, Format: format})
	log := logger.Component("app")
	log.Info().Bool("debug", cfg.Debug).Msg("Starting contest engine")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New()
	var opts []service.Option

	// Redis: снимок состояния при старте и запись каждого коммита
	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.Open(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		repo := contestRedis.NewRepository(rdb, cfg.Escrow.TransferStream)
		snap, err := repo.Load(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load engine state")
		}
		st.Restore(snap)
		st.SetCommitHook(repo.Commit)
	} else {
		log.Warn().Msg("Redis disabled, engine state is not persisted")
	}

	// Postgres нужен только для отчетов о расчетах
	var pg *postgres.Client
	if cfg.Postgres.URL != "" {
		pg, err = postgres.NewClient(ctx, cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to database")
		}
		defer pg.Close()

		reports := contestPostgres.NewSettlementRepository(pg.Pool())
		if err := reports.EnsureSchema(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to prepare settlement schema")
		}
		opts = append(opts, service.WithReporter(reports))
	}

	engine := service.NewEngine(st, opts...)
	if err := engine.Bootstrap(ctx, defaultGlobalConfig(cfg)); err != nil {
		log.Fatal().Err(err).Msg("Failed to bootstrap engine config")
	}

	if rdb != nil {
		consumer := workers.NewDepositConsumer(rdb, engine, cfg.Escrow.DepositStream, cfg.Escrow.ConsumerGroup, cfg.Escrow.ConsumerName)
		go consumer.Start(ctx)
	}

	if cfg.Workers.SweepIntervalSec > 0 {
		ticker := workers.NewSweepTicker(engine, time.Duration(cfg.Workers.SweepIntervalSec)*time.Second)
		ticker.Start()
		defer ticker.Stop()
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Accept", middleware.InitDataHeader, middleware.EscrowTokenHeader}
	router.Use(cors.New(corsConfig))

	setupRoutes(router, cfg, engine, rdb, pg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

func defaultGlobalConfig(cfg *config.Config) models.GlobalConfig {
	return models.GlobalConfig{
		EntryExpirationSec: cfg.Engine.EntryExpirationSec,
		EntryArchiveSec:    cfg.Engine.EntryArchiveSec,
		PriceFreshnessSec:  cfg.Engine.PriceFreshnessSec,
		PriceRetentionSec:  cfg.Engine.PriceRetentionSec,
		FeeAccount:         cfg.Engine.FeeAccount,
		FeeAccountMemo:     cfg.Engine.FeeAccountMemo,
		CurrencySymbol:     cfg.Engine.CurrencySymbol,
		PriceSeries:        models.Series(cfg.Engine.PriceSeries),
		MaxRowsPerCall:     cfg.Engine.MaxRowsPerCall,
	}
}

func setupRoutes(router *gin.Engine, cfg *config.Config, engine *service.Engine, rdb *redis.Client, pg *postgres.Client) {
	docs.SwaggerInfo.BasePath = "/api/v1"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := middleware.TelegramAuth(
		cfg.Telegram.BotToken,
		time.Duration(cfg.Telegram.InitDataTTLSec)*time.Second,
		middleware.ParseAdminIDs(cfg.Telegram.AdminIDs),
	)
	v1 := router.Group("/api/v1")
	contestHTTP.NewContestHandler(engine).RegisterRoutes(v1, auth, middleware.RequireEscrowToken(cfg.Escrow.Token))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC(),
			"service":   "contest-backend",
		})
	})

	router.GET("/live", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if pg != nil {
			if err := pg.HealthCheck(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   "postgres unavailable",
					"details": err.Error(),
				})
				return
			}
		}

		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unready",
					"error":   "redis unavailable",
					"details": err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}
