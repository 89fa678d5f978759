package internal

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"

	"car-finder/internal/adapters/feedfetcher"
	logger_adapter "car-finder/internal/adapters/logger"
	"car-finder/internal/adapters/nhtsa"
	postgres_adapter "car-finder/internal/adapters/postgres"
	rabbitmq_adapter "car-finder/internal/adapters/rabbitmq"
	"car-finder/internal/configs"
	"car-finder/internal/constants"
	"car-finder/internal/core/port"
	"car-finder/internal/core/usecase"
	fluentlogger "car-finder/pkg/fluent_logger"
	"car-finder/pkg/postgres"
	"car-finder/pkg/rabbitmq/rabbitmq_common"
	"car-finder/pkg/rabbitmq/rabbitmq_producer"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
)

// infrastructure - низкоуровневые зависимости, общие для сервиса и разовых задач
type infrastructure struct {
	config       *configs.AppConfig
	baseLogger   port.LoggerPort
	appLogger    port.LoggerPort
	fluentClient *fluent.Fluent
	dbPool       *pgxpool.Pool

	// nil, если RabbitMQ отключен
	connManager   *rabbitmq_common.ConnectionManager
	eventProducer *rabbitmq_producer.Publisher
}

// useCases - ядро, собранное поверх infrastructure
type useCases struct {
	ingest        *usecase.IngestDealerListingsUseCase
	getListing    *usecase.GetListingUseCase
	search        *usecase.SearchListingsUseCase
	recordHistory *usecase.RecordPriceHistoryUseCase
	getHistory    *usecase.GetPriceHistoryUseCase
	savedSearches *usecase.SavedSearchesUseCase
	sendAlerts    *usecase.SendSavedSearchAlertsUseCase
	dealers       *usecase.DealersUseCase
	syncFeeds     *usecase.SyncDealerFeedsUseCase
	decodeVIN     *usecase.DecodeVINUseCase
}

func newInfrastructure(appConfig *configs.AppConfig, component string) (*infrastructure, error) {
	infra := &infrastructure{config: appConfig}

	// --- 1. ИНИЦИАЛИЗАЦИЯ ЛОГГЕРОВ ---
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:    parseLogLevel(appConfig.StdoutLogger.Level),
		IsJSON:   appConfig.StdoutLogger.IsJSON,
		UseColor: !appConfig.StdoutLogger.IsJSON,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if appConfig.FluentBit.Enabled {
		fluentClient, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      appConfig.FluentBit.Host,
			Port:      appConfig.FluentBit.Port,
			TagPrefix: appConfig.AppName,
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
		infra.fluentClient = fluentClient
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiloggerAdapter(activeLoggers...)
	if err != nil {
		infra.close()
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	// --- 2. БАЗОВЫЙ ЛОГГЕР ПРИЛОЖЕНИЯ ---
	infra.baseLogger = multiLogger.WithFields(port.Fields{"service_name": appConfig.AppName})
	infra.appLogger = infra.baseLogger.WithFields(port.Fields{"component": component})
	infra.appLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": appConfig.FluentBit.Enabled,
	})

	// --- 3. POSTGRESQL ---
	dbPool, err := postgres.NewClient(context.Background(), postgres.Config{
		DatabaseURL: appConfig.Database.URL,
		MaxConns:    appConfig.Database.MaxConns,
	})
	if err != nil {
		infra.appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		infra.close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	infra.dbPool = dbPool
	infra.appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	// --- 4. RABBITMQ ---
	if !appConfig.RabbitMQ.Enabled {
		infra.appLogger.Warn("RabbitMQ is disabled: events are logged, alert emails are not sent", nil)
		return infra, nil
	}

	connManagerBridge := rabbitmq_adapter.NewPkgLoggerBridge(infra.baseLogger.WithFields(port.Fields{"component": "rabbitmq_conn_manager"}))
	connManager, err := rabbitmq_common.NewManager(appConfig.RabbitMQ.URL, connManagerBridge)
	if err != nil {
		infra.appLogger.Error("Failed to create connection manager", err, nil)
		infra.close()
		return nil, fmt.Errorf("failed to create connection manager: %w", err)
	}
	infra.connManager = connManager
	infra.appLogger.Info("RabbitMQ Connection Manager initialized.", nil)

	producerCfg := rabbitmq_producer.PublisherConfig{
		Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
		ExchangeName:             constants.EventsExchange,
		ExchangeType:             constants.EventsExchangeType,
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,

		Logger: rabbitmq_adapter.NewPkgLoggerBridge(infra.baseLogger.WithFields(port.Fields{"component": "rabbitmq_producer"})),
	}
	eventProducer, err := rabbitmq_producer.NewPublisher(producerCfg, connManager)
	if err != nil {
		infra.appLogger.Error("Failed to create event producer", err, nil)
		infra.close()
		return nil, fmt.Errorf("failed to create event producer: %w", err)
	}
	infra.eventProducer = eventProducer
	infra.appLogger.Info("RabbitMQ Event Producer initialized.", nil)

	return infra, nil
}

// newUseCases создает исходящие адаптеры и use cases
func newUseCases(infra *infrastructure) (*useCases, error) {
	cfg := infra.config

	listingUoW, err := postgres_adapter.NewListingUnitOfWork(infra.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing unit of work: %w", err)
	}
	listingReader, err := postgres_adapter.NewListingReader(infra.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing reader: %w", err)
	}
	priceHistoryRepo, err := postgres_adapter.NewPriceHistoryRepository(infra.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create price history repository: %w", err)
	}
	dealerRepo, err := postgres_adapter.NewDealerRepository(infra.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create dealer repository: %w", err)
	}
	savedSearchRepo, err := postgres_adapter.NewSavedSearchRepository(infra.dbPool)
	if err != nil {
		return nil, fmt.Errorf("failed to create saved search repository: %w", err)
	}
	infra.appLogger.Info("Postgres storage adapters initialized.", nil)

	var (
		reporter       port.IngestionReporterPort
		pricePublisher port.PriceEventPublisherPort
		alertSender    port.AlertSenderPort
	)
	if infra.eventProducer != nil {
		if reporter, err = rabbitmq_adapter.NewIngestionReporterAdapter(infra.eventProducer, constants.RoutingKeyListingsIngested); err != nil {
			return nil, err
		}
		if pricePublisher, err = rabbitmq_adapter.NewPriceEventPublisherAdapter(infra.eventProducer, constants.RoutingKeyPriceChanged); err != nil {
			return nil, err
		}
		if alertSender, err = rabbitmq_adapter.NewAlertEmailAdapter(infra.eventProducer, constants.RoutingKeyAlertEmail); err != nil {
			return nil, err
		}
	} else {
		disabled := rabbitmq_adapter.NewDisabledPublisher()
		reporter, pricePublisher, alertSender = disabled, disabled, disabled
	}

	feedFetcher, err := feedfetcher.NewFeedFetcherAdapter(0)
	if err != nil {
		return nil, fmt.Errorf("failed to create feed fetcher: %w", err)
	}
	vinDecoder := nhtsa.NewClient(cfg.NHTSA.BaseURL, cfg.NHTSA.RPS)
	infra.appLogger.Info("All outgoing adapters initialized.", nil)

	// ИНИЦИАЛИЗАЦИЯ USE CASES
	ingest := usecase.NewIngestDealerListingsUseCase(listingUoW, dealerRepo, reporter)
	uc := &useCases{
		ingest:        ingest,
		getListing:    usecase.NewGetListingUseCase(listingReader),
		search:        usecase.NewSearchListingsUseCase(listingReader),
		recordHistory: usecase.NewRecordPriceHistoryUseCase(priceHistoryRepo, pricePublisher),
		getHistory:    usecase.NewGetPriceHistoryUseCase(listingReader, priceHistoryRepo),
		savedSearches: usecase.NewSavedSearchesUseCase(savedSearchRepo),
		sendAlerts: usecase.NewSendSavedSearchAlertsUseCase(savedSearchRepo, listingReader, alertSender, usecase.AlertsConfig{
			SiteURL:   cfg.Alerts.SiteURL,
			FromEmail: cfg.Alerts.FromEmail,
		}),
		dealers:   usecase.NewDealersUseCase(dealerRepo),
		syncFeeds: usecase.NewSyncDealerFeedsUseCase(dealerRepo, feedFetcher, ingest),
		decodeVIN: usecase.NewDecodeVINUseCase(vinDecoder),
	}
	infra.appLogger.Info("All use cases initialized.", nil)

	return uc, nil
}

// close освобождает ресурсы в обратном порядке создания
func (i *infrastructure) close() {
	if i.eventProducer != nil {
		if err := i.eventProducer.Close(); err != nil {
			i.appLogger.Error("Error closing event producer", err, nil)
		}
	}
	if i.connManager != nil {
		if err := i.connManager.Close(); err != nil {
			i.appLogger.Error("Error closing RabbitMQ connection manager", err, nil)
		}
	}
	if i.dbPool != nil {
		i.dbPool.Close()
		i.appLogger.Info("PostgreSQL pool closed.", nil)
	}
	if i.fluentClient != nil {
		if err := i.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
	}
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
		log.Printf("Warning: Unknown log level '%s'. Defaulting to 'info'.", levelStr)
		return slog.LevelInfo
	}
}
