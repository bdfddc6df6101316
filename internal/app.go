package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	token_adapter "marketplace-service/internal/adapters/jwt"
	logger_adapter "marketplace-service/internal/adapters/logger"
	metrics_adapter "marketplace-service/internal/adapters/metrics"
	objectstore_adapter "marketplace-service/internal/adapters/objectstore"
	postgres_adapter "marketplace-service/internal/adapters/postgres"
	rabbitmq_adapter "marketplace-service/internal/adapters/rabbitmq"
	redis_adapter "marketplace-service/internal/adapters/redis"
	"marketplace-service/internal/adapters/rest"
	"marketplace-service/internal/configs"
	"marketplace-service/internal/core/port"
	"marketplace-service/internal/core/usecase"
	fluentlogger "marketplace-service/pkg/fluent_logger"
	"marketplace-service/pkg/postgres"
	"marketplace-service/pkg/rabbitmq/rabbitmq_common"
	"marketplace-service/pkg/rabbitmq/rabbitmq_producer"
	redisclient "marketplace-service/pkg/redis_client"

	"github.com/fluent/fluent-logger-golang/fluent"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const shutdownTimeout = 15 * time.Second

type App struct {
	config    *configs.AppConfig
	dbPool    *pgxpool.Pool
	apiServer *rest.Server

	redisClient *redis.Client
	rabbitConn  *rabbitmq_common.ConnectionManager
	producer    *rabbitmq_producer.Publisher

	fluentClient *fluent.Fluent
	logger       port.LoggerPort
}

type repositories struct {
	properties     *postgres_adapter.PostgresPropertyRepository
	agents         *postgres_adapter.PostgresAgentRepository
	companies      *postgres_adapter.PostgresCompanyRepository
	accounts       *postgres_adapter.PostgresAccountRepository
	profiles       *postgres_adapter.PostgresProfileRepository
	favorites      *postgres_adapter.PostgresFavoritesRepository
	savedSearches  *postgres_adapter.PostgresSavedSearchRepository
	recentlyViewed *postgres_adapter.PostgresRecentlyViewedRepository
}

func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}
	app := &App{config: appConfig}

	// --- 1. ЛОГГЕРЫ ---
	baseLogger, err := app.initLoggers()
	if err != nil {
		return nil, err
	}
	appLogger := baseLogger.WithFields(port.Fields{"component": "app"})
	app.logger = appLogger

	// Ошибка дальше по инициализации должна освободить уже открытые ресурсы
	ok := false
	defer func() {
		if !ok {
			app.close()
		}
	}()

	// --- 2. POSTGRES ---
	if appConfig.Database.RunMigrations {
		if err := postgres.RunMigrations(appConfig.Database.URL); err != nil {
			appLogger.Error("Failed to apply migrations", err, nil)
			return nil, err
		}
		appLogger.Info("Database migrations applied", nil)
	}

	app.dbPool, err = postgres.NewClient(context.Background(), postgres.Config{
		DatabaseURL:     appConfig.Database.URL,
		MaxConns:        appConfig.Database.MaxConns,
		MinConns:        appConfig.Database.MinConns,
		MaxConnLifetime: appConfig.Database.MaxConnLifetime,
	})
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL", err, nil)
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	appLogger.Info("Successfully connected to PostgreSQL pool!", nil)

	repos, err := newRepositories(app.dbPool)
	if err != nil {
		appLogger.Error("Failed to create postgres repositories", err, nil)
		return nil, err
	}

	// --- 3. КЭШ И ОТЗЫВ ТОКЕНОВ ---
	var listingCache port.ListingCachePort = redis_adapter.NoopListingCache{}
	var revocation port.TokenRevocationPort = redis_adapter.NewMemoryRevocationStore()
	if appConfig.Redis.Enabled {
		app.redisClient, err = redisclient.NewClient(context.Background(), redisclient.Config{
			Addr:     appConfig.Redis.Addr,
			Password: appConfig.Redis.Password,
			DB:       appConfig.Redis.DB,
		})
		if err != nil {
			appLogger.Error("Failed to connect to Redis", err, nil)
			return nil, err
		}
		if listingCache, err = redis_adapter.NewListingCache(app.redisClient, "listings", appConfig.Redis.ListingCacheTTL); err != nil {
			return nil, err
		}
		if revocation, err = redis_adapter.NewRevocationStore(app.redisClient); err != nil {
			return nil, err
		}
		appLogger.Info("Redis listing cache and token revocation enabled", port.Fields{"addr": appConfig.Redis.Addr})
	} else {
		appLogger.Warn("Redis disabled: listing cache is off, revoked tokens are kept in memory", nil)
	}

	// --- 4. СОБЫТИЯ ---
	var publisher port.EventPublisherPort = rabbitmq_adapter.NoopEventPublisher{}
	if appConfig.RabbitMQ.Enabled {
		publisher, err = app.initEventPublisher(baseLogger)
		if err != nil {
			appLogger.Error("Failed to initialize RabbitMQ publisher", err, nil)
			return nil, err
		}
		appLogger.Info("RabbitMQ event publisher initialized", port.Fields{"exchange": appConfig.RabbitMQ.Exchange})
	} else {
		appLogger.Warn("RabbitMQ disabled: domain events are discarded", nil)
	}

	// --- 5. ФАЙЛЫ, МЕТРИКИ, ТОКЕНЫ ---
	storage, err := objectstore_adapter.NewLocalStorage(appConfig.Media.Root, appConfig.Media.BaseURL)
	if err != nil {
		appLogger.Error("Failed to initialize media storage", err, nil)
		return nil, err
	}
	metrics := metrics_adapter.NewPrometheusMetrics("marketplace")
	tokenService, err := token_adapter.NewTokenService(appConfig.Auth.SigningKey, appConfig.Auth.Issuer)
	if err != nil {
		appLogger.Error("Failed to create token service", err, nil)
		return nil, err
	}
	appLogger.Info("All persistence and service adapters initialized.", nil)

	// --- 6. USE CASES ---
	ttl := appConfig.Auth.TokenTTL
	namer := usecase.NewObjectNamer()

	identityUC := usecase.NewResolveIdentityUseCase(repos.agents, repos.companies, publisher, metrics)
	findListingsUC := usecase.NewFindListingsUseCase(repos.properties, listingCache, metrics)
	trackViewUC := usecase.NewTrackViewUseCase(repos.recentlyViewed, repos.properties, metrics)

	handlers := rest.Handlers{
		Auth: rest.NewAuthHandlers(
			usecase.NewRegisterUserUseCase(repos.accounts, tokenService, ttl),
			usecase.NewLoginUserUseCase(repos.accounts, repos.profiles, tokenService, ttl),
			usecase.NewLogoutUserUseCase(tokenService, revocation),
			usecase.NewGetCurrentUserUseCase(repos.profiles),
		),
		Listings: rest.NewListingHandlers(
			findListingsUC,
			usecase.NewFeaturedListingsUseCase(repos.properties, listingCache, metrics),
			usecase.NewGetPropertyDetailsUseCase(repos.properties, repos.agents, repos.companies, repos.profiles, repos.favorites, trackViewUC),
			usecase.NewListCitiesUseCase(repos.properties),
		),
		Properties: rest.NewPropertyHandlers(
			usecase.NewCreatePropertyUseCase(identityUC, repos.profiles, repos.agents, repos.properties, listingCache, publisher),
			usecase.NewUpdatePropertyUseCase(identityUC, repos.profiles, repos.companies, repos.properties, listingCache),
			usecase.NewUpdatePropertyStatusUseCase(identityUC, repos.profiles, repos.companies, repos.properties, listingCache, publisher),
			usecase.NewDeletePropertyUseCase(identityUC, repos.profiles, repos.companies, repos.properties, storage, listingCache, publisher),
			usecase.NewUploadPropertyImagesUseCase(identityUC, repos.profiles, repos.companies, repos.properties, storage, listingCache, namer),
			usecase.NewUploadLogoUseCase(storage, namer),
			appConfig.Rest.MaxUploadMB<<20,
		),
		Favorites: rest.NewFavoritesHandlers(
			usecase.NewToggleFavoriteUseCase(repos.favorites, repos.properties, metrics),
			usecase.NewListFavoritesUseCase(repos.favorites),
			usecase.NewListFavoriteIDsUseCase(repos.favorites),
			usecase.NewRemoveFavoriteUseCase(repos.favorites),
		),
		SavedSearches: rest.NewSavedSearchHandlers(
			usecase.NewCreateSavedSearchUseCase(repos.savedSearches),
			usecase.NewListSavedSearchesUseCase(repos.savedSearches),
			usecase.NewDeleteSavedSearchUseCase(repos.savedSearches),
			usecase.NewRunSavedSearchUseCase(repos.savedSearches, findListingsUC),
		),
		Agents: rest.NewAgentHandlers(
			identityUC,
			usecase.NewGetUserDashboardUseCase(repos.savedSearches, repos.recentlyViewed, repos.favorites),
			usecase.NewGetAgentDashboardUseCase(identityUC, repos.agents, repos.companies, repos.properties),
			usecase.NewGetAgentProfileUseCase(repos.agents),
			usecase.NewUpsertAgentProfileUseCase(repos.agents),
			usecase.NewGetAgentPageUseCase(repos.agents, repos.properties),
		),
		Admin: rest.NewAdminHandlers(
			usecase.NewGetAdminOverviewUseCase(repos.properties, repos.profiles, repos.agents, repos.companies),
			usecase.NewChangeUserRoleUseCase(repos.profiles),
			usecase.NewCreateCompanyUseCase(repos.accounts, repos.accounts),
			usecase.NewListCompaniesUseCase(repos.companies),
			usecase.NewUpdateCompanyUseCase(repos.companies),
			usecase.NewDeleteCompanyUseCase(repos.companies, listingCache),
		),
	}

	// --- 7. REST API ---
	router := rest.NewRouter(rest.RouterConfig{
		Handlers: handlers,
		Auth: rest.NewAuthMiddleware(
			usecase.NewAuthenticateUseCase(tokenService, revocation),
			usecase.NewAuthorizeRoleUseCase(repos.profiles),
		),
		Logger:         baseLogger,
		Metrics:        metrics,
		Health:         app.dbPool,
		MediaRoot:      storage.Root(),
		AllowedOrigins: appConfig.Rest.CORSAllowedOrigins,
	})
	app.apiServer = rest.NewServer(appConfig.Rest.Port, router, baseLogger)
	appLogger.Info("REST API server configured.", nil)

	ok = true
	return app, nil
}

// initLoggers собирает stdout логгер и, если включен, Fluent Bit.
func (a *App) initLoggers() (port.LoggerPort, error) {
	cfg := a.config
	var activeLoggers []port.LoggerPort

	stdoutLogger := logger_adapter.NewSlogAdapter(logger_adapter.SlogConfig{
		Level:  logger_adapter.ParseLevel(cfg.StdoutLogger.Level),
		Format: cfg.StdoutLogger.Format,
	})
	activeLoggers = append(activeLoggers, stdoutLogger)

	if cfg.FluentBit.Enabled {
		client, err := fluentlogger.NewClient(fluentlogger.Config{
			Host:      cfg.FluentBit.Host,
			Port:      cfg.FluentBit.Port,
			TagPrefix: cfg.AppName,
			Async:     true,
		})
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit client", err, nil)
			return nil, fmt.Errorf("failed to create fluentbit client: %w", err)
		}
		fluentAdapter, err := logger_adapter.NewFluentLoggerAdapter(client, logger_adapter.ParseLevel(cfg.FluentBit.Level))
		if err != nil {
			stdoutLogger.Error("Failed to create fluentbit adapter", err, nil)
			_ = client.Close()
			return nil, err
		}
		a.fluentClient = client
		activeLoggers = append(activeLoggers, fluentAdapter)
	}

	multiLogger, err := logger_adapter.NewMultiLoggerAdapter(activeLoggers...)
	if err != nil {
		return nil, fmt.Errorf("failed to create multi-logger: %w", err)
	}

	baseLogger := multiLogger.WithFields(port.Fields{"service_name": cfg.AppName})
	baseLogger.Info("Logger system initialized", port.Fields{
		"active_loggers": len(activeLoggers), "fluent_enabled": cfg.FluentBit.Enabled,
	})
	return baseLogger, nil
}

func newRepositories(pool *pgxpool.Pool) (*repositories, error) {
	var (
		r   repositories
		err error
	)
	if r.properties, err = postgres_adapter.NewPostgresPropertyRepository(pool); err != nil {
		return nil, err
	}
	if r.agents, err = postgres_adapter.NewPostgresAgentRepository(pool); err != nil {
		return nil, err
	}
	if r.companies, err = postgres_adapter.NewPostgresCompanyRepository(pool); err != nil {
		return nil, err
	}
	if r.accounts, err = postgres_adapter.NewPostgresAccountRepository(pool); err != nil {
		return nil, err
	}
	if r.profiles, err = postgres_adapter.NewPostgresProfileRepository(pool); err != nil {
		return nil, err
	}
	if r.favorites, err = postgres_adapter.NewPostgresFavoritesRepository(pool); err != nil {
		return nil, err
	}
	if r.savedSearches, err = postgres_adapter.NewPostgresSavedSearchRepository(pool); err != nil {
		return nil, err
	}
	if r.recentlyViewed, err = postgres_adapter.NewPostgresRecentlyViewedRepository(pool); err != nil {
		return nil, err
	}
	return &r, nil
}

// initEventPublisher поднимает соединение с RabbitMQ и topic-обменник событий.
func (a *App) initEventPublisher(baseLogger port.LoggerPort) (port.EventPublisherPort, error) {
	bridge := rabbitmq_adapter.NewPkgLoggerBridge(baseLogger)

	conn, err := rabbitmq_common.NewConnectionManager(rabbitmq_common.Config{URL: a.config.RabbitMQ.URL}, bridge)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	a.rabbitConn = conn

	producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
		ExchangeName:             a.config.RabbitMQ.Exchange,
		ExchangeType:             "topic",
		DurableExchange:          true,
		DeclareExchangeIfMissing: true,
		Logger:                   bridge,
	}, conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create RabbitMQ publisher: %w", err)
	}
	a.producer = producer

	return rabbitmq_adapter.NewEventPublisherAdapter(producer)
}

// Run запускает HTTP сервер и блокируется до сигнала остановки или ошибки сервера.
func (a *App) Run() error {
	defer a.close()

	a.logger.Info("Application is starting...", nil)

	serverErrors := make(chan error, 1)
	go func() {
		if err := a.apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
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
	case err := <-serverErrors:
		a.logger.Error("Server failed, shutting down", err, nil)
		runErr = err
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.apiServer.Stop(ctx); err != nil {
		a.logger.Error("Error during API server shutdown", err, nil)
	}
	return runErr
}

// close освобождает ресурсы в порядке, обратном созданию.
func (a *App) close() {
	if a.logger != nil {
		a.logger.Info("Shutdown sequence initiated...", nil)
	}

	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ publisher", err, nil)
		}
	}
	if a.rabbitConn != nil {
		if err := a.rabbitConn.Close(); err != nil {
			a.logger.Error("Error closing RabbitMQ connection", err, nil)
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Error("Error closing Redis client", err, nil)
		}
	}
	if a.dbPool != nil {
		a.dbPool.Close()
		a.logger.Info("PostgreSQL pool closed.", nil)
	}

	if a.logger != nil {
		a.logger.Info("Application shut down gracefully.", nil)
	}
	if a.fluentClient != nil {
		if err := a.fluentClient.Close(); err != nil {
			// fluent может быть уже недоступен
			fmt.Printf("ERROR: Error closing fluent client: %v\n", err)
		}
		a.fluentClient = nil
	}
}
