package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/fixtures"
	"github.com/vladislavdragonenkov/pos/internal/metrics"
	"github.com/vladislavdragonenkov/pos/internal/storage/sqlite"
)

// OpenStore открывает базу кассы: схема создаётся при необходимости,
// начальный каталог досеивается без перезаписи правок пользователя.
func OpenStore(ctx context.Context, cfg Config, m *metrics.PosMetrics, logger *log.Entry) (*sqlite.Store, error) {
	seed, err := fixtures.Resolve(cfg.SeedLocale, cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("load seed data: %w", err)
	}

	store, err := sqlite.Open(ctx, cfg.DBPath,
		sqlite.WithFixtures(seed),
		sqlite.WithLockObserver(m.RecordLockWait),
		sqlite.WithLogger(logger.WithField("layer", "storage")),
	)
	if err != nil {
		return nil, err
	}

	logger.WithFields(log.Fields{
		"path":       store.Path(),
		"categories": len(seed.Categories),
		"products":   len(seed.Products),
	}).Info("база кассы открыта")
	return store, nil
}
