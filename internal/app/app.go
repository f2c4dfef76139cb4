// Package app assembles the census engine from configuration. Both the HTTP
// server and the operator CLI build on it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"censusdesk/internal/audit"
	censushandler "censusdesk/internal/census/handler"
	censusmetrics "censusdesk/internal/census/metrics"
	censusservice "censusdesk/internal/census/service"
	censusstore "censusdesk/internal/census/store"
	jwttoken "censusdesk/internal/jwt_token"
	"censusdesk/internal/platform/config"
	"censusdesk/internal/platform/database"
	"censusdesk/internal/platform/health"
	"censusdesk/internal/platform/kafka"
	"censusdesk/internal/platform/kafka/producer"
	"censusdesk/internal/platform/metrics"
	"censusdesk/internal/platform/redis"
	"censusdesk/internal/platform/tracer"
	profilecache "censusdesk/internal/profile/cache"
	profilehandler "censusdesk/internal/profile/handler"
	profileservice "censusdesk/internal/profile/service"
	profilestore "censusdesk/internal/profile/store"
	"censusdesk/internal/seeder"
	httptransport "censusdesk/internal/transport/http"
	id "censusdesk/pkg/domain"
	"censusdesk/pkg/platform/middleware/request"
)

// Version is stamped at build time.
var Version = "dev"

// App holds the wired services and the resources they own.
type App struct {
	Config   *config.Config
	Profiles *profileservice.Service
	Records  *censusservice.Service
	Tokens   *jwttoken.JWTService
	Seeder   *seeder.Seeder
	Health   *health.Handler
	Auditor  *audit.Publisher
	Metrics  *metrics.Metrics

	registry prometheus.Registerer
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	pool     *database.Pool
	closers  []func()
}

type Option func(*App)

// WithRegistry registers metrics somewhere other than the default registry.
func WithRegistry(reg *prometheus.Registry) Option {
	return func(a *App) {
		a.registry = reg
		a.gatherer = reg
	}
}

// Build connects the configured backends and wires the services. Postgres,
// Redis and Kafka are optional: without a URL the in-memory store is used,
// profiles are not cached and audit events stay in process.
func Build(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	a := &App{
		Config:   cfg,
		registry: prometheus.DefaultRegisterer,
		gatherer: prometheus.DefaultGatherer,
		logger:   logger,
		Health:   health.New(cfg.Environment, health.WithVersion(Version)),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.Metrics = metrics.New(a.registry, Version, cfg.Environment)

	if err := a.connectDatabase(ctx); err != nil {
		a.Close()
		return nil, err
	}
	cache, err := a.connectRedis(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	sink, err := a.connectKafka()
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Auditor = audit.NewPublisher(audit.NewInMemoryStore(audit.WithCapacity(cfg.AuditRetention)),
		audit.WithAsyncBuffer(cfg.AuditBuffer),
		audit.WithPublisherLogger(logger),
		audit.WithSink(sink),
		audit.WithDropHook(a.Metrics.IncAuditDropped),
	)
	a.closers = append(a.closers, a.Auditor.Close)

	profileOpts := []profileservice.Option{}
	if cache != nil {
		profileOpts = append(profileOpts, profileservice.WithCache(cache))
	}
	var (
		profiles profileservice.Store = profilestore.NewInMemory()
		records  censusservice.Store  = censusstore.NewInMemory()
	)
	if a.pool != nil {
		profiles = profilestore.NewPostgres(a.pool.DB())
		records = censusstore.NewPostgres(a.pool.DB())
	}
	a.Profiles = profileservice.NewService(profiles, a.Auditor, logger, profileOpts...)

	var tr tracer.Tracer = tracer.NewNoop()
	if cfg.Tracing.Enabled {
		tp, err := tracer.NewProvider(ctx, cfg.Tracing, Version, cfg.Environment)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = tp.Shutdown(context.Background()) })
		tr = tracer.NewOTel(tp)
	}
	a.Records = censusservice.NewService(records, a.Auditor, logger,
		censusservice.WithMetrics(censusmetrics.New(a.registry)),
		censusservice.WithTracer(tr),
		censusservice.WithExecutiveDirectory(a.Profiles),
	)

	a.Tokens = jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience, cfg.Auth.TokenTTL)
	a.Seeder = seeder.New(a.Profiles, a.Records, logger)
	return a, nil
}

func (a *App) connectDatabase(ctx context.Context) error {
	pool, err := database.New(ctx, a.Config.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if pool == nil {
		a.logger.Warn("DATABASE_URL not set, using in-memory stores")
		return nil
	}
	a.pool = pool
	a.closers = append(a.closers, func() { _ = pool.Close() })
	if err := pool.RegisterMetrics(a.registry); err != nil {
		return fmt.Errorf("register database metrics: %w", err)
	}
	a.Health.RegisterCheck("postgres", pool.Health)
	return nil
}

func (a *App) connectRedis(ctx context.Context) (profileservice.Cache, error) {
	client, err := redis.New(ctx, a.Config.Redis)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if client == nil {
		return nil, nil
	}
	a.closers = append(a.closers, func() { _ = client.Close() })
	a.Health.RegisterCheck("redis", client.Health)
	if err := client.RegisterMetrics(a.registry); err != nil {
		return nil, fmt.Errorf("register redis metrics: %w", err)
	}

	backend := profilecache.NewRedisCache(client.Client, a.Config.ProfileCacheTTL)
	return profilecache.NewGuarded(backend, profilecache.NewBreaker(a.logger)), nil
}

func (a *App) connectKafka() (audit.Sink, error) {
	if a.Config.Kafka.Brokers == "" {
		return nil, nil
	}
	prod, err := producer.New(a.Config.Kafka, a.logger)
	if err != nil {
		return nil, fmt.Errorf("connect kafka: %w", err)
	}
	a.closers = append(a.closers, func() { _ = prod.Close(a.Config.Kafka.DeliveryTimeout) })
	a.Health.RegisterCheck("kafka", kafka.NewHealthChecker(a.Config.Kafka.Brokers, a.Config.Kafka.DialTimeout,
		kafka.WithBrokerLister(prod)).Check)
	return audit.NewKafkaSink(prod, a.Config.Kafka.AuditTopic), nil
}

// Migrate applies pending schema migrations. It is a no-op without Postgres.
func (a *App) Migrate(ctx context.Context) error {
	if a.pool == nil {
		return nil
	}
	return database.Migrate(ctx, a.pool.DB(), a.logger)
}

// Bootstrap registers the configured admin and, when asked, demo data.
func (a *App) Bootstrap(ctx context.Context) error {
	b := a.Config.Bootstrap
	if b.AdminEmail == "" {
		return nil
	}
	adminID, err := parseOptionalActor(b.AdminID)
	if err != nil {
		return err
	}
	if !b.SeedDemo {
		_, err := a.Seeder.EnsureAdmin(ctx, adminID, b.AdminEmail)
		return err
	}
	sum, err := a.Seeder.SeedAll(ctx, adminID, b.AdminEmail)
	if err != nil {
		return err
	}
	a.Metrics.AddSeeded(sum.Records)
	return nil
}

// Router builds the HTTP handler for every endpoint.
func (a *App) Router() http.Handler {
	return httptransport.NewRouter(httptransport.RouterConfig{
		Logger:   a.logger,
		Tokens:   a.Tokens.Validator(),
		Profiles: a.Profiles,
		Public:   []httptransport.Registrar{a.Health},
		API: []httptransport.Registrar{
			profilehandler.New(a.Profiles, a.logger),
			censushandler.New(a.Records, a.logger),
		},
		Metrics:        metrics.Handler(a.gatherer),
		RequestMetrics: request.NewMetrics(a.registry),
		RequestTimeout: a.Config.Server.RequestTimeout,
		MaxBodyBytes:   a.Config.Server.MaxBodyBytes,
	})
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func parseOptionalActor(s string) (id.ActorID, error) {
	if s == "" {
		return id.ActorID{}, nil
	}
	actorID, err := id.ParseActorID(s)
	if err != nil {
		return id.ActorID{}, fmt.Errorf("BOOTSTRAP_ADMIN_ID: %w", err)
	}
	return actorID, nil
}
