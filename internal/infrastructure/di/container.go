package di

import (
	"database/sql"
	"log"

	"leadrelay/internal/adapters/inbound/http/controllers"
	httpRouter "leadrelay/internal/adapters/inbound/http/router"
	"leadrelay/internal/adapters/outbound/docs"
	partnerhttp "leadrelay/internal/adapters/outbound/partner/http"
	postgresqlbootstrap "leadrelay/internal/adapters/outbound/persistence/postgresql/bootstrap"
	postgresqlrelayjob "leadrelay/internal/adapters/outbound/persistence/postgresql/relayjob"
	postgresqlshared "leadrelay/internal/adapters/outbound/persistence/postgresql/shared"
	"leadrelay/internal/adapters/outbound/sap"
	portsin "leadrelay/internal/application/ports/in"
	portsout "leadrelay/internal/application/ports/out"
	"leadrelay/internal/application/use_cases"
	"leadrelay/internal/infrastructure/config"
	"leadrelay/internal/infrastructure/httpserver"
	"leadrelay/internal/infrastructure/relay"
)

type Container struct {
	Database                     *sql.DB
	Server                       *httpserver.Server
	InitializePersistenceUseCase portsin.InitializePersistenceUseCase
	RelayWorker                  *relay.Worker
}

// BuildServer wires the ingress runtime: webhook controller, health,
// swagger, persistence bootstrap, and the embedded relay worker.
func BuildServer(cfg config.Config, logger *log.Logger) (Container, error) {
	persistenceGateway := newPersistenceGateway(cfg, logger)
	initializePersistenceUseCase := use_cases.NewInitializePersistenceUseCase(persistenceGateway)
	databasePool := postgresqlshared.NewDatabasePool(cfg.DatabaseURL, logger)

	registryGateway := partnerhttp.NewRegistryGateway(partnerhttp.Config{
		BaseURL:    cfg.PartnerAPIBaseURL,
		Credential: cfg.PartnerAPICredential,
		Timeout:    cfg.PartnerHTTPTimeout,
	})
	relayJobRepository := postgresqlrelayjob.NewRepository(databasePool)
	relayWorker := newRelayWorker(cfg, relayJobRepository, logger)

	ingestUseCase := use_cases.NewIngestLeadWebhookUseCase(
		registryGateway,
		relayJobRepository,
		use_cases.NewSystemClock(),
	)
	healthUseCase := use_cases.NewGetHealthUseCase()
	openAPIReadModel := docs.NewFileOpenAPISpecReadModel(cfg.OpenAPISpecPath)
	openAPIUseCase := use_cases.NewGetOpenAPISpecUseCase(openAPIReadModel)

	healthController := controllers.NewHealthController(healthUseCase, logger)
	swaggerController := controllers.NewSwaggerController(openAPIUseCase, logger)
	leadWebhookController := controllers.NewLeadWebhookController(ingestUseCase, logger)

	router := httpRouter.New(httpRouter.Dependencies{
		HealthController:      healthController,
		SwaggerController:     swaggerController,
		LeadWebhookController: leadWebhookController,
	})

	server := httpserver.New(cfg.Address(), router, logger)

	return Container{
		Database:                     databasePool,
		Server:                       server,
		InitializePersistenceUseCase: initializePersistenceUseCase,
		RelayWorker:                  relayWorker,
	}, nil
}

// BuildRelayWorker wires the relay runtime: queue repository, partner lead
// gateway, downstream forward gateway, and the polling worker.
func BuildRelayWorker(cfg config.Config, logger *log.Logger) (Container, error) {
	persistenceGateway := newPersistenceGateway(cfg, logger)
	initializePersistenceUseCase := use_cases.NewInitializePersistenceUseCase(persistenceGateway)
	databasePool := postgresqlshared.NewDatabasePool(cfg.DatabaseURL, logger)

	relayJobRepository := postgresqlrelayjob.NewRepository(databasePool)
	relayWorker := newRelayWorker(cfg, relayJobRepository, logger)

	return Container{
		Database:                     databasePool,
		InitializePersistenceUseCase: initializePersistenceUseCase,
		RelayWorker:                  relayWorker,
	}, nil
}

func newRelayWorker(cfg config.Config, repository portsout.RelayJobRepository, logger *log.Logger) *relay.Worker {
	leadGateway := partnerhttp.NewLeadGateway(partnerhttp.Config{
		BaseURL:    cfg.PartnerAPIBaseURL,
		Credential: cfg.PartnerAPICredential,
		Timeout:    cfg.PartnerHTTPTimeout,
	})
	forwardGateway := sap.NewGateway(cfg.SAPBaseURL, logger)

	processUseCase := use_cases.NewProcessRelayJobsUseCase(
		repository,
		leadGateway,
		forwardGateway,
	)

	return relay.NewWorker(
		cfg.RelayWorkerEnabled,
		cfg.RelayPollInterval,
		cfg.RelayBatchSize,
		cfg.RelayWorkerID,
		cfg.RelayLeaseDuration,
		cfg.RelayFetchBackoffBase,
		cfg.RelayForwardBackoffBase,
		cfg.RelayRetryBudget,
		processUseCase,
		logger,
	)
}

func newPersistenceGateway(cfg config.Config, logger *log.Logger) *postgresqlbootstrap.Gateway {
	return postgresqlbootstrap.NewGateway(
		cfg.DatabaseURL,
		cfg.DatabaseTarget,
		cfg.MigrationsPath,
		logger,
	)
}
