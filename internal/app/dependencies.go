package app

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/pos/internal/health"
	"github.com/vladislavdragonenkov/pos/internal/metrics"
	"github.com/vladislavdragonenkov/pos/internal/service/commands"
	"github.com/vladislavdragonenkov/pos/internal/service/pos"
	"github.com/vladislavdragonenkov/pos/internal/storage/sqlite"
	"github.com/vladislavdragonenkov/pos/internal/version"
)

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Registry   *prometheus.Registry
	Metrics    *metrics.PosMetrics
	Store      *sqlite.Store
	Service    *pos.Service
	Dispatcher *commands.Dispatcher
	Health     *healthcheck.Handler
	Logger     *log.Entry

	closePublisher func()
}

// NewDependencies открывает хранилище и собирает сервис с командной поверхностью.
// Каждый вызов получает собственный prometheus-реестр.
func NewDependencies(ctx context.Context, cfg Config, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	posMetrics := metrics.NewPosMetricsWithRegisterer(registry)

	store, err := OpenStore(ctx, cfg, posMetrics, logger)
	if err != nil {
		return nil, err
	}

	publisher, closePublisher := initPublisher(cfg, logger.WithField("layer", "kafka"))

	svc, err := pos.New(pos.Repositories{
		Categories: sqlite.NewCategoryRepository(store),
		Products:   sqlite.NewProductRepository(store),
		Orders:     sqlite.NewOrderRepository(store),
		Reports:    sqlite.NewReportRepository(store),
		Admin:      store,
	},
		pos.WithPublisher(publisher),
		pos.WithMetrics(posMetrics),
		pos.WithLogger(logger.WithField("layer", "service")),
	)
	if err != nil {
		closePublisher()
		_ = store.Close()
		return nil, fmt.Errorf("build pos service: %w", err)
	}

	dispatcher := commands.New(svc,
		commands.WithMetrics(posMetrics),
		commands.WithLogger(logger.WithField("layer", "commands")),
	)

	health := healthcheck.NewHandler(version.Version())
	health.RegisterChecker("store", healthcheck.NewStoreChecker(store))

	return &Dependencies{
		Registry:       registry,
		Metrics:        posMetrics,
		Store:          store,
		Service:        svc,
		Dispatcher:     dispatcher,
		Health:         health,
		Logger:         logger,
		closePublisher: closePublisher,
	}, nil
}

// Close освобождает producer и базу. Повторный вызов безопасен.
func (d *Dependencies) Close() error {
	if d.closePublisher != nil {
		d.closePublisher()
		d.closePublisher = nil
	}
	return d.Store.Close()
}
