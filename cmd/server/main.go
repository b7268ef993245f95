package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"prompt-server/internal/config"
	"prompt-server/internal/database"
	"prompt-server/internal/handler"
	"prompt-server/internal/interfaces"
	"prompt-server/internal/llm"
	"prompt-server/internal/logger"
	"prompt-server/internal/messaging"
	"prompt-server/internal/middleware"
	"prompt-server/internal/models"
	"prompt-server/internal/repository"
	"prompt-server/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"
)

const (
	connectRetries    = 5
	connectRetryDelay = 3 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	envFile := flag.String("env-file", ".env", "path to .env file")
	flag.Parse()

	// Конфиг загружаем ДО логгера
	cfg, err := config.LoadConfig(*envFile)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogEncoding})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer func() { _ = zapLogger.Sync() }()
	zapLogger.Info("Запуск prompt-server...",
		zap.String("env", cfg.Env),
		zap.String("store", cfg.StoreBackend),
		zap.String("logLevel", cfg.LogLevel),
	)

	// --- Хранилище ---
	var store interfaces.HashStore
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		zapLogger.Warn("Используется in-memory хранилище, данные не переживут рестарт")
		store = database.NewMemoryHashStore()
	default:
		redisClient, err := setupRedis(cfg, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		defer redisClient.Close()
		store = database.NewRedisHashStore(redisClient, zapLogger)
	}

	// --- События ---
	var publisher interfaces.PromptEventPublisher = messaging.NoopPromptPublisher{}
	if cfg.RabbitMQURL != "" {
		rabbitConn, err := connectRabbitMQ(cfg.RabbitMQURL, zapLogger)
		if err != nil {
			zapLogger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
		}
		defer rabbitConn.Close()

		rabbitPublisher, err := messaging.NewRabbitMQPromptPublisher(rabbitConn)
		if err != nil {
			zapLogger.Fatal("Не удалось создать PromptPublisher", zap.Error(err))
		}
		defer rabbitPublisher.Close()
		publisher = rabbitPublisher
	} else {
		zapLogger.Info("RABBITMQ_URL не задан, события промптов не публикуются")
	}

	// --- Зависимости ---
	promptRepo := repository.NewPromptRepository(store, zapLogger)
	responseCache := repository.NewResponseCache(store, cfg.CacheKeyPrefix, zapLogger)
	router := llm.NewRouterFromConfig(cfg, zapLogger)
	// Словари tiktoken качаются по сети, не держим на этом старт сервера
	go llm.WarmUpTokenizers(configuredModels(cfg), zapLogger)

	promptService := service.NewPromptService(promptRepo, publisher, zapLogger)
	queryService := service.NewQueryService(promptRepo, responseCache, router, cfg.MaxVariants, zapLogger)
	promptHandler := handler.NewPromptHandler(promptService, queryService, cfg.DefaultTemperature, zapLogger)

	// --- Gin ---
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestID())
	engine.Use(middleware.ZapLogger(zapLogger))

	corsConfig := cors.DefaultConfig()
	allowedOrigins := cfg.GetAllowedOrigins()
	if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPatch, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.RequestIDHeader}
	engine.Use(cors.New(corsConfig))

	// /metrics
	ginprometheus.NewPrometheus("gin").Use(engine)

	promptHandler.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.ProviderTimeout*time.Duration(cfg.MaxVariants) + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("HTTP сервер слушает", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Ошибка запуска HTTP сервера", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	zapLogger.Info("Получен сигнал завершения, начинаем graceful shutdown...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Ошибка при graceful shutdown HTTP сервера", zap.Error(err))
	}
	zapLogger.Info("prompt-server остановлен")
}

// configuredModels возвращает модели провайдеров, для которых задан API ключ.
func configuredModels(cfg *config.Config) []string {
	var names []string
	for _, provider := range models.KnownProviders {
		if pc := cfg.Provider(provider); pc.APIKey != "" {
			names = append(names, pc.Model)
		}
	}
	return names
}

// setupRedis подключается к Redis и проверяет соединение пингом, с повторами.
func setupRedis(cfg *config.Config, logger *zap.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	var err error
	for i := 0; i < connectRetries; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			logger.Info("Успешное подключение к Redis", zap.String("addr", cfg.RedisAddr), zap.Int("db", cfg.RedisDB))
			return client, nil
		}
		logger.Warn("Не удалось подключиться к Redis",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", connectRetries),
			zap.Duration("retry_delay", connectRetryDelay),
			zap.Error(err),
		)
		time.Sleep(connectRetryDelay)
	}
	_ = client.Close()
	return nil, fmt.Errorf("redis ping failed after %d attempts: %w", connectRetries, err)
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками.
func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < connectRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			logger.Info("Успешное подключение к RabbitMQ")
			return conn, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", connectRetries),
			zap.Duration("retry_delay", connectRetryDelay),
			zap.Error(err),
		)
		time.Sleep(connectRetryDelay)
	}
	return nil, err
}
