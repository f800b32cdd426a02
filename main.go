package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travellocal/config"
	"travellocal/cron"
	"travellocal/database"
	"travellocal/database/devicestore"
	"travellocal/database/repository"
	"travellocal/handlers"
	"travellocal/middleware"
	"travellocal/routes"
	"travellocal/services/backend"
	"travellocal/services/calendar"
	"travellocal/services/tasks"
	"travellocal/services/tourism"
	"travellocal/services/translation"
	"travellocal/services/unlock"
	"travellocal/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	cfg := config.AppConfig

	database.InitDB()
	utils.InitCache()
	utils.InitDeviceStore()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	utils.StartHealthMonitor(ctx,
		[]*redis.Client{utils.GetCacheClient(), utils.GetDeviceStoreClient()},
		database.MongoClient)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set, unsigned tokens are verified against the backend")
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	// stores.
	deviceStore := devicestore.NewRedisStore(utils.GetDeviceStoreClient())
	ledger := repository.NewMongoUnlockRepo(database.Database(), logger)
	queueClient := asynq.NewClient(cron.RedisOpt())
	defer queueClient.Close()

	// services.
	backendClient := backend.NewClient(cfg.BackendBaseURL, cfg.BackendTimeout, logger)
	calendarService := calendar.NewService(backendClient, config.CalendarLocation(), logger)
	unlockService := unlock.NewService(
		backendClient,
		ledger,
		deviceStore,
		tasks.NewEnqueuer(queueClient),
		unlock.NewStripeGateway(cfg.StripeKey),
		unlock.Options{
			PointCost: cfg.UnlockPointCost,
			CashPrice: cfg.UnlockCashPrice,
			Currency:  cfg.UnlockCurrency,
		},
		logger,
	)
	translationService := translation.NewService(
		translation.NewProviders(translation.Endpoints{
			LibreTranslateURL: cfg.LibreTranslateURL,
			LingvaURL:         cfg.LingvaURL,
			YandexURL:         cfg.YandexURL,
			YandexAPIKey:      cfg.YandexAPIKey,
		}, nil),
		cfg.TranslateTimeout,
		deviceStore,
		logger,
	)
	tourismClient := tourism.NewClient(
		cfg.TourAPIBaseURL,
		cfg.TourAPIKey,
		tourism.NewRedisCache(utils.GetCacheClient()),
		cfg.TourAPICacheTTL,
		logger,
	)

	worker := cron.InitReconcileWorker(ctx, unlockService)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Tokens:      deviceStore,
		Verifier:    backendClient,
		Calendar:    handlers.NewCalendarHandler(calendarService, config.CalendarLocation()),
		Tour:        handlers.NewTourHandler(unlockService),
		Translation: handlers.NewTranslationHandler(translationService, deviceStore),
		Tourism:     handlers.NewTourismHandler(tourismClient),
		Device:      handlers.NewDeviceHandler(deviceStore),
		Chat:        handlers.NewChatHandler(backendClient, cfg.ChatWSURL, cfg.ChatReconnectDelay),
	}
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	worker.Shutdown()
	if err := database.CloseDB(shutdownCtx); err != nil {
		logger.Error("main: failed to disconnect MongoDB", zap.Error(err))
	}

	logger.Info("main: server stopped gracefully")
}
