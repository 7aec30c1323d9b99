// Точка входа Data Module — слой данных платформы Strimly.
// Загружает конфигурацию, применяет миграции, подключается к PostgreSQL,
// создаёт репозитории и сервисный слой, запускает topologymetrics
// и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/strimly/data-module/internal/api/handlers"
	"github.com/strimly/data-module/internal/api/middleware"
	"github.com/strimly/data-module/internal/config"
	"github.com/strimly/data-module/internal/database"
	"github.com/strimly/data-module/internal/repository"
	"github.com/strimly/data-module/internal/server"
	"github.com/strimly/data-module/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Data Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("DM_DEPHEALTH_GROUP") == "" {
		logger.Warn("DM_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД.
	// Ошибка миграций не прерывает запуск: схема может достраиваться
	// параллельным экземпляром, readiness probe отразит фактическое
	// состояние БД.
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД, запуск продолжается",
			slog.String("error", err.Error()),
		)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories
	userRepo := repository.NewUserRepository(pool)
	streamRepo := repository.NewStreamRepository(pool)
	viewRepo := repository.NewViewRepository(pool)
	subRepo := repository.NewSubscriptionRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	txRunner := repository.NewTxRunner(pool)

	// 6. Services
	streamCache := service.NewStreamCache(cfg.StreamCacheSize, cfg.StreamCacheTTL)
	userSvc := service.NewUserService(userRepo, logger)
	streamSvc := service.NewStreamService(streamRepo, txRunner, streamCache, logger)
	viewSvc := service.NewViewService(viewRepo, streamRepo, txRunner, logger)
	subSvc := service.NewSubscriptionService(subRepo, userRepo, txRunner, logger)
	commentSvc := service.NewCommentService(commentRepo, streamRepo, txRunner, logger)

	// 7. topologymetrics — мониторинг зависимостей (PostgreSQL)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"data-module",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
			defer dephealthSvc.Stop()
		}
	}

	// 8. API handlers
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool))
	userHandler := handlers.NewUserHandler(userSvc, logger)
	streamHandler := handlers.NewStreamHandler(streamSvc, viewSvc, commentSvc, logger)
	socialHandler := handlers.NewSocialHandler(subSvc, logger)
	apiHandler := handlers.NewAPIHandler(healthHandler, userHandler, streamHandler, socialHandler, logger)

	// 9. HTTP-сервер с middleware (метрики, логирование запросов)
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware(),
		middleware.RequestLogger(logger),
	)

	// 10. Запуск сервера (блокирующий вызов с graceful shutdown)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Data Module остановлен")
}
