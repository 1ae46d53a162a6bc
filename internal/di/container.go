package di

import (
	"net/http"
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/adapters/mailpit"
	"github.com/hollis/phishguard/internal/adapters/smtpingest"
	"github.com/hollis/phishguard/internal/adapters/storage"
	"github.com/hollis/phishguard/internal/config"
	"github.com/hollis/phishguard/internal/core"
	"github.com/hollis/phishguard/internal/engine"
	"github.com/hollis/phishguard/internal/factory"
	"github.com/hollis/phishguard/internal/httpserver"
	"github.com/hollis/phishguard/internal/logging"
	"github.com/hollis/phishguard/internal/risk"
	"github.com/hollis/phishguard/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewNarrativeFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStorageFactory); err != nil {
		return nil, err
	}

	// Register narrative generator
	if err := container.Provide(func(f *factory.NarrativeFactory) (core.NarrativeGenerator, error) {
		return f.CreateGenerator()
	}); err != nil {
		return nil, err
	}

	// Register storage backend
	if err := container.Provide(func(f *factory.StorageFactory) (storage.Store, error) {
		return f.CreateStore()
	}); err != nil {
		return nil, err
	}

	// Register trusted sender checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) *whitelist.Checker {
		domains := cfg.GetEngine().TrustedDomains
		if len(domains) > 0 {
			logger.Info("Loaded trusted domains", zap.Strings("domains", domains))
		}
		return whitelist.NewChecker(domains, logger)
	}); err != nil {
		return nil, err
	}

	// Register risk aggregator
	if err := container.Provide(func(cfg *config.Config) *risk.Aggregator {
		engineCfg := cfg.GetEngine()
		var policy risk.ReclassifyPolicy
		if engineCfg.ReclassifyEnabled {
			policy = risk.SampledReclassifyPolicy(engineCfg.ReclassifySeed, engineCfg.ReclassifyProbability)
		}
		return risk.NewAggregator(policy)
	}); err != nil {
		return nil, err
	}

	// Register analysis service
	if err := container.Provide(func(
		narrative core.NarrativeGenerator,
		aggregator *risk.Aggregator,
		trusted *whitelist.Checker,
		cfg *config.Config,
		logger *zap.Logger,
	) *engine.Service {
		return engine.NewService(
			narrative,
			aggregator,
			trusted,
			logger,
			cfg.GetNarrative().Timeout,
			cfg.GetEngine().BatchWorkers,
		)
	}); err != nil {
		return nil, err
	}

	// Register mail source
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.MailSource {
		return mailpit.NewClient(cfg.GetMailpit().BaseURL, 10*time.Second, logger)
	}); err != nil {
		return nil, err
	}

	// Register SMTP ingest server
	if err := container.Provide(func(cfg *config.Config, store storage.Store, logger *zap.Logger) *smtpingest.Server {
		return smtpingest.NewServer(store, logger, cfg.GetServer().SMTPListenAddress)
	}); err != nil {
		return nil, err
	}

	// Register HTTP router
	if err := container.Provide(func(
		svc *engine.Service,
		store storage.Store,
		source core.MailSource,
		cfg *config.Config,
		logger *zap.Logger,
	) http.Handler {
		return httpserver.NewRouter(svc, store, source, cfg.GetServer().CORSOrigins, logger)
	}); err != nil {
		return nil, err
	}

	return container, nil
}
