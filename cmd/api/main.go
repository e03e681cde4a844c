package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "sushishop/api/swagger" // swagger docs
	"sushishop/internal/cache"
	"sushishop/internal/config"
	"sushishop/internal/database"
	"sushishop/internal/handler"
	"sushishop/internal/metrics"
	"sushishop/internal/middleware"
	"sushishop/internal/model"
	"sushishop/internal/repository"
	"sushishop/internal/service"
	"sushishop/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Sushi Shop Back Office API
// @version         1.0
// @description     Storefront and admin panel API: menu, orders, users and the ingredient stock ledger.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogger(cfg)

	db, err := database.NewConnection(cfg.DSN(), !cfg.IsProduction())
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Msg("connected to PostgreSQL")

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal().Err(err).Msg("database handle unavailable")
	}
	health := map[string]handler.Pinger{"database": handler.PingFunc(sqlDB.PingContext)}

	var store cache.Store = cache.Nop{}
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedis(cfg.RedisURL)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, statistics are not cached")
		} else {
			defer rdb.Close()
			store = cache.NewRedisStore(rdb, "sushishop:")
			health["redis"] = store
			log.Info().Msg("connected to Redis")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Set up WebSocket Hub
	wsHub := websocket.NewHub(cfg.AllowedOrigins())
	go wsHub.Run(ctx)

	auth := middleware.NewAuth(cfg.Secret(), cfg.IsProduction())

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	auditService := service.NewAuditService(repository.NewAuditRepository(db))
	statisticsService := service.NewStatisticsService(repository.NewStatisticsRepository(db), store, cfg.StatsCacheTTL)
	userService := service.NewUserService(userRepo, txManager, auditService, cfg.Secret(), cfg.TokenTTL())
	productService := service.NewProductService(productRepo, txManager, auditService, statisticsService)
	orderService := service.NewOrderService(orderRepo, productRepo, txManager, auditService, statisticsService, wsHub)
	stockService := service.NewAdminStockService(service.NewStockService(
		repository.NewIngredientRepository(db),
		repository.NewStockItemRepository(db),
		repository.NewStockMovementRepository(db),
		txManager,
		wsHub,
	))

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins()
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", handler.Health(health))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/ws", websocket.ServeWs(wsHub, auth))

	api := router.Group("/api")
	api.GET("/vocabulary", handler.GetVocabulary)
	user := api.Group("", auth.Authenticate())
	routes := handler.Routes{
		Public: api,
		User:   user,
		Admin:  user.Group("/admin", middleware.RequireRole(model.RoleAdmin)),
	}

	handler.NewUserHandler(userService, auth).RegisterRoutes(routes)
	handler.NewProductHandler(productService).RegisterRoutes(routes)
	handler.NewOrderHandler(orderService).RegisterRoutes(routes)
	handler.NewInventoryHandler(stockService).RegisterRoutes(routes)
	handler.NewStatisticsHandler(statisticsService).RegisterRoutes(routes)
	handler.NewAuditHandler(auditService).RegisterRoutes(routes)

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	if err := sqlDB.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close database")
	}
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}
