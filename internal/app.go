package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	token_adapter "car-finder/internal/adapters/jwt"
	rabbitmq_adapter "car-finder/internal/adapters/rabbitmq"
	"car-finder/internal/adapters/rest"
	"car-finder/internal/adapters/scheduler"
	"car-finder/internal/configs"
	"car-finder/internal/constants"
	"car-finder/internal/core/port"
	"car-finder/pkg/rabbitmq/rabbitmq_common"
	"car-finder/pkg/rabbitmq/rabbitmq_consumer"
)

const shutdownTimeout = 15 * time.Second

// App – структура приложения
type App struct {
	infra     *infrastructure
	apiServer *rest.Server
	logger    port.LoggerPort

	listeners map[string]port.EventListenerPort
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	infra, err := newInfrastructure(appConfig, "app")
	if err != nil {
		return nil, err
	}
	appLogger := infra.appLogger

	uc, err := newUseCases(infra)
	if err != nil {
		appLogger.Error("Failed to initialize use cases", err, nil)
		infra.close()
		return nil, err
	}

	listeners := make(map[string]port.EventListenerPort)

	// ВХОДЯЩИЕ АДАПТЕРЫ: очередь фидов дилеров
	if infra.connManager != nil {
		feedConsumerCfg := rabbitmq_consumer.ConsumerConfig{
			Config:        rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			QueueName:     constants.QueueDealerFeeds,
			DurableQueue:  true,
			ExchangeName:  constants.EventsExchange,
			ExchangeType:  constants.EventsExchangeType,
			RoutingKey:    constants.RoutingKeyDealerFeed,
			PrefetchCount: 4,
			ConsumerTag:   "dealer-feed-ingest-adapter",

			Retry: &rabbitmq_consumer.RetryConfig{
				RetryExchange:      constants.RetryExchange,
				RetryQueue:         constants.QueueDealerFeedsRetry,
				RetryTTL:           10000, // 10 секунд в миллисекундах
				FinalDLXExchange:   constants.FinalDLXExchange,
				FinalDLQ:           constants.FinalDLQ,
				FinalDLQRoutingKey: constants.FinalDLQRoutingKey,
				MaxRetries:         3,
			},
		}
		feedListener, err := rabbitmq_adapter.NewDealerFeedConsumerAdapter(feedConsumerCfg, uc.ingest, infra.baseLogger, infra.connManager)
		if err != nil {
			appLogger.Error("Failed to create dealer feed listener", err, nil)
			infra.close()
			return nil, err
		}
		listeners["Dealer Feed Listener"] = feedListener
		appLogger.Info("Dealer Feed Listener initialized.", nil)
	}

	// Фоновые задачи по расписанию
	jobs := newScheduledJobs(uc, appConfig.Scheduler, infra.baseLogger)
	jobScheduler, err := scheduler.NewScheduler(infra.baseLogger, jobs...)
	if err != nil {
		appLogger.Error("Failed to create scheduler", err, nil)
		infra.close()
		return nil, err
	}
	listeners["Job Scheduler"] = jobScheduler

	// REST API Server
	tokenVerifier, err := token_adapter.NewTokenVerifier(appConfig.Auth.JWTSigningKey)
	if err != nil {
		appLogger.Error("Failed to create token verifier", err, nil)
		infra.close()
		return nil, err
	}
	if appConfig.Auth.CronSecret == "" {
		appLogger.Warn("CRON_SECRET is empty: cron endpoints are not protected", nil)
	}

	routerCfg := rest.RouterConfig{
		Listings:      rest.NewListingsHandler(uc.ingest, uc.getListing, uc.getHistory, uc.search),
		SavedSearches: rest.NewSavedSearchesHandler(uc.savedSearches),
		Dealers:       rest.NewDealersHandler(uc.dealers, uc.decodeVIN),
		Cron:          rest.NewCronHandler(uc.recordHistory, uc.sendAlerts, uc.syncFeeds),

		Verifier:           tokenVerifier,
		CronSecret:         appConfig.Auth.CronSecret,
		CorsAllowedOrigins: appConfig.Rest.CorsAllowedOrigins,
	}
	apiServer := rest.NewServer(appConfig.Rest.PORT, appConfig.Rest.OtelEnabled, appConfig.AppName, routerCfg, infra.baseLogger)
	appLogger.Info("REST API server configured.", nil)

	return &App{
		infra:     infra,
		apiServer: apiServer,
		logger:    appLogger,
		listeners: listeners,
	}, nil
}

// Run запускает все компоненты приложения и управляет их жизненным циклом.
func (a *App) Run() error {
	appCtx, cancelApp := context.WithCancel(context.Background())

	var wg sync.WaitGroup

	defer func() {
		a.logger.Info("Shutdown sequence initiated...", nil)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := a.apiServer.Stop(shutdownCtx); err != nil {
			a.logger.Error("Error during API server shutdown", err, nil)
		}

		a.logger.Info("Waiting for background processes to finish...", nil)
		wg.Wait()
		a.logger.Info("All background processes finished.", nil)

		for name, listener := range a.listeners {
			if err := listener.Close(); err != nil {
				a.logger.Error("Error closing listener", err, port.Fields{"listener_name": name})
			}
		}

		a.logger.Info("Application shut down gracefully.", nil)
		a.infra.close()
	}()

	a.logger.Info("Application is starting...", nil)

	errorsCh := make(chan error, len(a.listeners)+1)

	startListener := func(name string, listener port.EventListenerPort) {
		defer wg.Done()
		listenerLogger := a.logger.WithFields(port.Fields{"listener_name": name})
		listenerLogger.Info("Starting listener...", nil)

		if err := listener.Start(appCtx); err != nil {
			listenerLogger.Error("Listener stopped with an unexpected error", err, nil)
			errorsCh <- fmt.Errorf("%s error: %w", name, err)
		} else {
			listenerLogger.Info("Listener stopped gracefully due to context cancellation.", nil)
		}
	}

	for name, listener := range a.listeners {
		wg.Add(1)
		go startListener(name, listener)
	}

	go func() {
		a.logger.Info("Starting HTTP server...", port.Fields{"port": a.infra.config.Rest.PORT})
		if err := a.apiServer.Start(); err != nil && err != http.ErrServerClosed {
			errorsCh <- fmt.Errorf("failed to start HTTP server: %w", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals or server error...", nil)

	var runErr error
	select {
	case receivedSignal := <-quit:
		a.logger.Warn("Received OS signal, shutting down...", port.Fields{"signal": receivedSignal.String()})
	case err := <-errorsCh:
		a.logger.Error("A critical component failed, shutting down", err, nil)
		runErr = err
	}

	// graceful shutdown: слушатели и планировщик выходят по отмене контекста
	cancelApp()

	return runErr
}
