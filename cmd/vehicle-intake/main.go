// main.go: точка входа сервиса приёма автомобилей.
// Инициализация: config → logger → PostgreSQL → миграции → файлы → сервисы → HTTP.
package main

import (
	"context"
	"log/slog"
	"os"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/vehicle-intake/internal/api"
	"github.com/bigkaa/vehicle-intake/internal/api/handlers"
	"github.com/bigkaa/vehicle-intake/internal/api/middleware"
	"github.com/bigkaa/vehicle-intake/internal/config"
	"github.com/bigkaa/vehicle-intake/internal/database"
	"github.com/bigkaa/vehicle-intake/internal/repository"
	"github.com/bigkaa/vehicle-intake/internal/server"
	"github.com/bigkaa/vehicle-intake/internal/service"
	"github.com/bigkaa/vehicle-intake/internal/storage/filestore"
)

const serviceID = "vehicle-intake"

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Сервис приёма заявок запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("database", cfg.RedactedDatabaseURL()),
		slog.String("upload_dir", cfg.UploadDir),
	)

	// 3. Подключение к PostgreSQL (pgxpool) с ожиданием готовности базы
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4. Применение миграций БД через тот же пул
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(pool, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics.
	// Проверка идёт через тот же пул соединений.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Хранилище фотографий
	files, err := filestore.New(cfg.UploadDir)
	if err != nil {
		logger.Error("Ошибка инициализации каталога загрузок", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 6. Репозитории и сервисы
	formRepo := repository.NewFormRepository(pool)
	submissionRepo := repository.NewSubmissionRepository(pool)

	formSvc := service.NewFormService(formRepo, submissionRepo, files, logger)
	submissionSvc := service.NewSubmissionService(formRepo, submissionRepo, files, logger)

	// 7. topologymetrics: мониторинг PostgreSQL
	monitor, err := service.NewDepMonitor(service.DepMonitorConfig{
		ServiceID: serviceID,
		Group:     cfg.DephealthGroup,
		DB:        pgDB,
		DSN:       cfg.DatabaseURL,
		Interval:  cfg.DephealthCheckInterval,
	}, logger)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
		monitor = nil
	} else if err := monitor.Start(ctx); err != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		monitor = nil
	}

	// 8. HTTP обработчики
	healthHandler := handlers.NewHealthHandler(database.NewReadinessChecker(pool), files.DataDir())
	apiHandler := handlers.NewAPIHandler(healthHandler, formSvc, submissionSvc, cfg.MaxUploadSize, logger)
	staticHandler := handlers.NewStaticHandler(files.DataDir(), cfg.PublicDir)

	// 9. Проверка запросов по OpenAPI
	doc, err := api.LoadOpenAPI()
	if err != nil {
		logger.Error("Ошибка загрузки OpenAPI", slog.String("error", err.Error()))
		os.Exit(1)
	}
	validator, err := middleware.RequestValidator(doc, logger)
	if err != nil {
		logger.Error("Ошибка инициализации проверки запросов", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 10. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, staticHandler,
		chimw.RequestID,
		middleware.Recovery(logger),
		middleware.RequestLogger(logger),
		middleware.MetricsMiddleware(),
		middleware.CORS(cfg.CORSAllowedOrigins),
		validator,
	)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 11. Остановка фоновых задач
	if monitor != nil {
		monitor.Stop()
	}

	logger.Info("Сервис приёма заявок остановлен")
}
