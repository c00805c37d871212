package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"monitoring-service/internal/adapters/fetcher/fotocasafetcher"
	"monitoring-service/internal/adapters/fetcher/genericfetcher"
	"monitoring-service/internal/adapters/fetcher/pisosfetcher"
	logger_adapter "monitoring-service/internal/adapters/logger"
	notifier_adapter "monitoring-service/internal/adapters/notifier"
	postgres_adapter "monitoring-service/internal/adapters/postgres"
	rabbitmq_adapter "monitoring-service/internal/adapters/rabbitmq"
	"monitoring-service/internal/adapters/rest"
	"monitoring-service/internal/configs"
	"monitoring-service/internal/constants"
	"monitoring-service/internal/core/port"
	"monitoring-service/internal/core/usecase"
	"monitoring-service/internal/keepalive"
	"monitoring-service/internal/scheduler"
	fluentlogger "monitoring-service/pkg/fluent_logger"
	"monitoring-service/pkg/postgres"
	"monitoring-service/pkg/rabbitmq/rabbitmq_common"
	"monitoring-service/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

// App – структура приложения
type App struct {
	config        *configs.AppConfig
	dbPool        *pgxpool.Pool
	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher
	fluentClient  *fluent.Fluent
	logger        port.LoggerPort

	scheduler *scheduler.Scheduler
	apiServer *rest.Server
	pinger    *keepalive.Pinger
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	slogCfg := logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   false, // текстовый формат
		UseColor: true,
	}
	stdoutLogger := logger_adapter.NewSlogAdapter(slogCfg)
	activeLoggers = append(activeLoggers, stdoutLogger)

	// Добавляем Fluent Bit логгер, если он включен в конфигурации
	var fluentClient *fluent.Fluent
	if appConfig.FluentBit.Enabled {
		fluentClient, err = fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName, // Используем имя приложения как префикс
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}

		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(fluentClient, parseLogLevel(appConfig.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			fluentClient.Close()
			return nil, err
		}
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	// Создаем наш композитный логгер
	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. СОЗДАЕМ БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ С КОНТЕКСТОМ ---
	baseLogger := multiLogger.WithFields(port.Fields{
		"service_name": appConfig.AppName,
	})

	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 3. НИЗКОУРОВНЕВЫЕ ЗАВИСИМОСТИ ---
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{DatabaseURL: appConfig.Database.URL})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	if err := postgres_adapter.EnsureSchema(context.Background(), dbPool); err != nil {
		appLogger.Error("Failed to ensure database schema", err, nil)
		dbPool.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}
	appLogger.Info("Database schema is up to date.", nil)

	// RabbitMQ опционален: без него сервис работает, просто не публикует события
	var connManager *rabbitmq_common.ConnectionManager
	var eventProducer *rabbitmq_producer.Publisher
	if appConfig.RabbitMQ.Enabled {
		connManagerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"})
		connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(connManagerLogger)
		connManager, err = rabbitmq_common.GetManager(appConfig.RabbitMQ.URL, connManagerBridge)
		if err != nil {
			appLogger.Error("Failed to create connection manager", err, nil)
			dbPool.Close()
			return nil, fmt.Errorf("failed to create connection manager: %w", err)
		}
		appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

		producerLogger := baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})
		pkgLoggerBridge := rabbitmq_adapter.NewPkgLoggerBridge(producerLogger)

		producerCfg := rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			ExchangeName:             constants.ListingsExchange,
			ExchangeType:             "direct",
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
			Logger:                   pkgLoggerBridge,
		}
		eventProducer, err = rabbitmq_producer.NewPublisher(producerCfg, connManager)
		if err != nil {
			appLogger.Error("Failed to create event producer", err, port.Fields{"url": appConfig.RabbitMQ.URL})
			connManager.Close()
			dbPool.Close()
			return nil, fmt.Errorf("failed to create event producer: %w", err)
		}
		appLogger.Info("RabbitMQ Event Producer initialized.", nil)
	}

	cleanup := func() {
		if eventProducer != nil {
			eventProducer.Close()
		}
		if connManager != nil {
			connManager.Close()
		}
		dbPool.Close()
	}

	// --- 4. ПРОФИЛИ ПОИСКА ---
	profilesDoc, err := configs.LoadProfiles(appConfig.Profiles.Path)
	if err != nil {
		appLogger.Error("Failed to load search profiles", err, port.Fields{"path": appConfig.Profiles.Path})
		cleanup()
		return nil, fmt.Errorf("failed to load search profiles: %w", err)
	}
	appLogger.Info("Search profiles loaded.", port.Fields{
		"profiles": len(profilesDoc.Profiles),
		"sources":  len(profilesDoc.Sources),
	})

	// --- 5. АДАПТЕРЫ ИСТОЧНИКОВ ---
	requestDelay := time.Duration(appConfig.Fetcher.DelaySeconds) * time.Second

	pisosAdapter, err := pisosfetcher.NewPisosFetcherAdapter("https://www.pisos.com", requestDelay)
	if err != nil {
		appLogger.Error("Failed to create Pisos Fetcher Adapter", err, nil)
		cleanup()
		return nil, fmt.Errorf("failed to initialize pisos fetcher: %w", err)
	}

	fotocasaAdapter, err := fotocasafetcher.NewFotocasaFetcherAdapter(
		"https://api.fotocasa.es/api/v1/search",
		requestDelay,
	)
	if err != nil {
		appLogger.Error("Failed to create Fotocasa Fetcher Adapter", err, nil)
		cleanup()
		return nil, fmt.Errorf("failed to initialize fotocasa fetcher: %w", err)
	}

	sources := []port.SourceAdapterPort{pisosAdapter, fotocasaAdapter}

	// Порталы без собственного адаптера описаны в файле профилей
	for _, sourceCfg := range profilesDoc.Sources {
		genericAdapter, err := genericfetcher.NewGenericFetcherAdapter(genericfetcher.PortalConfig{
			Name:          sourceCfg.Name,
			BaseURL:       sourceCfg.BaseURL,
			SearchPath:    sourceCfg.SearchPath,
			Params:        sourceCfg.Params,
			Selectors:     sourceCfg.Selectors,
			OperationType: sourceCfg.OperationType,
			PropertyType:  sourceCfg.PropertyType,
		}, requestDelay)
		if err != nil {
			appLogger.Error("Failed to create generic fetcher adapter", err, port.Fields{"source": sourceCfg.Name})
			cleanup()
			return nil, fmt.Errorf("failed to initialize fetcher for source %s: %w", sourceCfg.Name, err)
		}
		sources = append(sources, genericAdapter)
	}
	appLogger.Info("All source adapters initialized.", port.Fields{"count": len(sources)})

	// --- 6. РЕПОЗИТОРИИ ---
	listingRepo, err := postgres_adapter.NewPostgresListingRepository(dbPool)
	if err != nil {
		cleanup()
		return nil, err
	}
	runRepo, err := postgres_adapter.NewPostgresRunRepository(dbPool)
	if err != nil {
		cleanup()
		return nil, err
	}
	notificationLog, err := postgres_adapter.NewPostgresNotificationLog(dbPool)
	if err != nil {
		cleanup()
		return nil, err
	}
	appLogger.Info("All repositories initialized.", nil)

	// --- 7. КАНАЛЫ УВЕДОМЛЕНИЙ ---
	var notifiers []port.NotifierPort

	if appConfig.Telegram.Enabled {
		telegramNotifier, err := notifier_adapter.NewTelegramNotifier("", appConfig.Telegram.BotToken, appConfig.Telegram.ChatIDs)
		if err != nil {
			appLogger.Error("Failed to create Telegram notifier", err, nil)
			cleanup()
			return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
		notifiers = append(notifiers, telegramNotifier)
	}

	if eventProducer != nil {
		queueNotifier, err := rabbitmq_adapter.NewRabbitMQNewListingsQueueAdapter(eventProducer, constants.RoutingKeyNewListings)
		if err != nil {
			appLogger.Error("Failed to create RabbitMQ notifier", err, nil)
			cleanup()
			return nil, fmt.Errorf("failed to initialize rabbitmq notifier: %w", err)
		}
		notifiers = append(notifiers, queueNotifier)
	}

	var notifier port.NotifierPort
	switch len(notifiers) {
	case 0:
		appLogger.Warn("No notification channels configured, new listings will only be stored", nil)
	case 1:
		notifier = notifiers[0]
	default:
		notifier, err = notifier_adapter.NewMultiNotifierAdapter(notifiers...)
		if err != nil {
			cleanup()
			return nil, err
		}
	}

	// --- 8. USE CASE И ПЛАНИРОВЩИК ---
	retention := time.Duration(appConfig.Retention.Days) * 24 * time.Hour
	pipelineUC := usecase.NewRunPipelineUseCase(
		profilesDoc.Profiles,
		sources,
		listingRepo,
		runRepo,
		notificationLog,
		notifier,
		appConfig.Fetcher.MaxPages,
		retention,
	)
	appLogger.Info("Pipeline use case initialized.", nil)

	runScheduler := scheduler.NewScheduler(
		pipelineUC,
		time.Duration(appConfig.Scheduler.IntervalHours)*time.Hour,
		0,
		baseLogger,
	)

	// --- 9. HTTP API ---
	apiHandlers := rest.NewMonitorHandler(runScheduler, listingRepo, runRepo)
	apiServer := rest.NewServer(appConfig.Rest.PORT, apiHandlers, baseLogger)

	var pinger *keepalive.Pinger
	if appConfig.KeepAlive.Enabled {
		pinger = keepalive.NewPinger(
			appConfig.KeepAlive.ServiceURL,
			time.Duration(appConfig.KeepAlive.IntervalMinutes)*time.Minute,
			baseLogger,
		)
	}

	// --- 10. Собираем приложение ---
	application := &App{
		config:        appConfig,
		dbPool:        dbPool,
		connManager:   connManager,
		eventProducer: eventProducer,
		fluentClient:  fluentClient,
		logger:        appLogger,
		scheduler:     runScheduler,
		apiServer:     apiServer,
		pinger:        pinger,
	}

	return application, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	// Создаем единый контекст для всего приложения для управления graceful shutdown
	appCtx, cancelApp := context.WithCancel(context.Background())

	// Используем WaitGroup для ожидания завершения всех фоновых задач
	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		// Ждем завершения всех запущенных горутин
		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		if a.apiServer != nil {
			if err := a.apiServer.Stop(context.Background()); err != nil {
				a.logger.Error("Error during API server shutdown", err, nil)
			}
		}

		// Теперь безопасно закрываем ресурсы
		if a.eventProducer != nil {
			if err := a.eventProducer.Close(); err != nil {
				a.logger.Error("Error closing event producer", err, nil)
			}
		}

		if a.connManager != nil {
			if err := a.connManager.Close(); err != nil {
				a.logger.Error("Error closing RabbitMQ connection manager", err, nil)
			}
		}

		if a.dbPool != nil {
			a.dbPool.Close()
			a.logger.Info("PostgreSQL pool closed.", nil)
		}

		a.logger.Info("Application shut down gracefully.", nil)

		if a.fluentClient != nil {
			a.logger.Info("Closing Fluent Bit connection...", nil)
			if err := a.fluentClient.Close(); err != nil {
				log.Printf("App: Error closing fluent client: %v\n", err)
			}
		}
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, 1)

	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("HTTP server start error: %w", err)
		}
	}()

	if a.config.Scheduler.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.scheduler.Start(appCtx); err != nil {
				errorsCh <- fmt.Errorf("scheduler error: %w", err)
			}
		}()
	} else {
		a.logger.Warn("Scheduler is disabled, runs start only via GET /run", nil)
	}

	if a.pinger != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.pinger.Start(appCtx); err != nil {
				a.logger.Error("Keep-alive pinger stopped with an error", err, nil)
			}
		}()
	}

	// Ожидание сигнала на завершение или ошибки от одного из компонентов
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	a.logger.Info("Application running. Waiting for signals or component error...", nil)
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received signal, shutting down", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
	case <-appCtx.Done():
		a.logger.Warn("Context was cancelled unexpectedly, shutting down", nil)
	}

	// Инициируем graceful shutdown, отменяя главный контекст
	cancelApp()

	return nil
}

func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		// Возвращаем безопасное значение по умолчанию и логируем предупреждение
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
