package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"trading-portal-backend/internal/common/config"
	"trading-portal-backend/internal/common/logger"
	"trading-portal-backend/internal/common/middleware"
	accountHTTP "trading-portal-backend/internal/features/account/delivery/http"
	accountRedis "trading-portal-backend/internal/features/account/repository/redis"
	accountService "trading-portal-backend/internal/features/account/service"
	adminHTTP "trading-portal-backend/internal/features/admin/delivery/http"
	authHTTP "trading-portal-backend/internal/features/auth/delivery/http"
	authRedis "trading-portal-backend/internal/features/auth/repository/redis"
	authService "trading-portal-backend/internal/features/auth/service"
	chatHTTP "trading-portal-backend/internal/features/chat/delivery/http"
	chatRedis "trading-portal-backend/internal/features/chat/repository/redis"
	chatService "trading-portal-backend/internal/features/chat/service"
	notifHTTP "trading-portal-backend/internal/features/notification/delivery/http"
	notifRedis "trading-portal-backend/internal/features/notification/repository/redis"
	notifService "trading-portal-backend/internal/features/notification/service"
	paymentHTTP "trading-portal-backend/internal/features/payment/delivery/http"
	paymentRedis "trading-portal-backend/internal/features/payment/repository/redis"
	paymentService "trading-portal-backend/internal/features/payment/service"
	"trading-portal-backend/internal/platform/redis"
)

func main() {
	// Загружаем переменные окружения
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Инициализируем конфигурацию
	cfg := config.Load()

	// Инициализируем логгер
	logger.Init("trading-portal-backend", cfg.Debug)
	logger.Info().Bool("debug", cfg.Debug).Msg("Starting Trading Portal Backend")

	// Инициализируем Redis
	redisClient, err := redis.NewClient(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	logger.Info().Msg("Redis connection established")

	// Инициализируем репозитории
	userRepository := authRedis.NewUserRepository(redisClient)
	sessionRepository := authRedis.NewSessionRepository(redisClient)
	accountRepository := accountRedis.NewAccountRepository(redisClient)
	paymentRepository := paymentRedis.NewPaymentRepository(redisClient)
	notificationRepository := notifRedis.NewNotificationRepository(redisClient)
	chatRepository := chatRedis.NewChatRepository(redisClient)

	// Инициализируем сервисы
	notificationSvc := notifService.NewNotificationService(notificationRepository)
	authSvc := authService.NewAuthService(
		userRepository,
		sessionRepository,
		authService.NewGoogleVerifier(cfg.Google.ClientID),
		cfg,
	)
	accountSvc := accountService.NewAccountService(accountRepository, notificationSvc)
	paymentSvc := paymentService.NewPaymentService(paymentRepository, accountRepository, notificationSvc, cfg)
	chatSvc := chatService.NewChatService(chatRepository)

	logger.Info().Msg("Services initialized")

	// Настраиваем Gin
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Добавляем middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.Logger())
	router.Use(gin.Recovery())

	// Настраиваем CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.Origin}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization", "Accept"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Liveness-проба, без авторизации и без обращения к хранилищу
	router.GET("/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Группы роутов: /api под сессионной авторизацией, /auth для входа
	api := router.Group("/api")
	api.Use(middleware.SessionAuth(authSvc, cfg))

	auth := router.Group("/auth")
	auth.Use(middleware.SessionAuth(authSvc, cfg))

	authHTTP.NewAuthHandler(authSvc, cfg).RegisterRoutes(api, auth)
	accountHTTP.NewAccountHandler(accountSvc).RegisterRoutes(api)
	paymentHTTP.NewPaymentHandler(paymentSvc).RegisterRoutes(api)
	notifHTTP.NewNotificationHandler(notificationSvc).RegisterRoutes(api)
	chatHTTP.NewChatHandler(chatSvc).RegisterRoutes(api)
	adminHTTP.NewAdminHandler(authSvc, accountSvc).RegisterRoutes(api)

	logger.Info().Msg("Routes configured")

	// Создаем HTTP сервер
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Ждем сигнала для graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
