package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/glebarez/go-sqlite"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

const (
	driverName = "sqlite"

	// MemoryPath открывает приватную in-memory базу (тесты, демо).
	MemoryPath = ":memory:"

	defaultConnTimeout = 5 * time.Second
	busyTimeout        = 5 * time.Second
)

// Store владеет единственным соединением с локальной SQLite-базой.
// Все операции сериализуются мьютексом: в каждый момент с базой работает ровно одна операция.
type Store struct {
	mu     sync.Mutex
	db     *sql.DB
	closed bool

	path        string
	schema      []schemaPart
	fixtures    domain.Fixtures
	observeLock func(time.Duration)
	logger      *log.Entry
}

// Option настраивает Store при открытии.
type Option func(*Store)

// WithFixtures задаёт начальный каталог для заливки и сброса.
func WithFixtures(f domain.Fixtures) Option {
	return func(s *Store) { s.fixtures = f }
}

// WithLockObserver передаёт время ожидания мьютекса, например в метрики.
func WithLockObserver(fn func(time.Duration)) Option {
	return func(s *Store) { s.observeLock = fn }
}

// WithLogger задаёт логгер хранилища.
func WithLogger(logger *log.Entry) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open открывает (или создаёт) файл базы, включает внешние ключи, создаёт схему
// и заливает начальный каталог. Уже существующие записи не перезаписываются.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}

	s := &Store{
		path:   path,
		logger: log.WithField("component", "sqlite-store"),
	}
	for _, opt := range opts {
		opt(s)
	}

	schema, err := loadSchemaFromFS(schemaFS)
	if err != nil {
		return nil, err
	}
	s.schema = schema

	if !isMemoryPath(path) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir for %s: %w", path, err)
		}
	}

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database %s: %w", path, err)
	}
	// Одно соединение на всё приложение. Для :memory: это ещё и единственный
	// способ сохранить базу: новое соединение увидело бы пустую базу.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)
	s.db = db

	if err := s.init(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
	defer cancel()
	if err := s.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return fmt.Errorf("enable foreign keys: %w", err)
	}
	if !isMemoryPath(s.path) {
		// posdb и сервис могут открыть один файл одновременно
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", busyTimeout.Milliseconds())); err != nil {
			return fmt.Errorf("set busy timeout: %w", err)
		}
		var mode string
		if err := s.db.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
			return fmt.Errorf("set WAL mode: %w", err)
		}
		s.logger.WithField("journal_mode", mode).Debug("journal mode configured")
	}

	if err := createSchema(ctx, s.db, s.schema); err != nil {
		return err
	}
	inserted, err := seed(ctx, s.db, s.fixtures)
	if err != nil {
		return err
	}

	s.logger.WithFields(log.Fields{
		"path":   s.path,
		"seeded": inserted,
	}).Info("sqlite store ready")
	return nil
}

// withLock выполняет fn, удерживая эксклюзивный доступ к соединению.
func (s *Store) withLock(fn func(db *sql.DB) error) error {
	if s == nil {
		return domain.ErrStoreClosed
	}

	started := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.observeLock != nil {
		s.observeLock(time.Since(started))
	}

	if s.closed || s.db == nil {
		return domain.ErrStoreClosed
	}
	return fn(s.db)
}

// inTx выполняет fn в транзакции под мьютексом: либо коммит всего, либо откат.
func (s *Store) inTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) error {
	return s.withLock(func(db *sql.DB) (err error) {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return queryError(op+": begin tx", err)
		}

		defer func() {
			if err != nil {
				_ = tx.Rollback()
			}
		}()

		if err = fn(tx); err != nil {
			return err
		}
		if err = tx.Commit(); err != nil {
			return queryError(op+": commit", err)
		}
		return nil
	})
}

// DB возвращает raw SQL DB. Доступ в обход мьютекса допустим только в тестах и утилитах.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path возвращает путь к файлу базы.
func (s *Store) Path() string {
	return s.path
}

// Ping проверяет доступность соединения.
func (s *Store) Ping(ctx context.Context) error {
	return s.withLock(func(db *sql.DB) error {
		pingCtx, cancel := context.WithTimeout(ctx, defaultConnTimeout)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return queryError("ping", err)
		}
		return nil
	})
}

// Reset удаляет все таблицы, создаёт схему заново и заливает начальный каталог.
// Всё выполняется одной транзакцией: при ошибке база остаётся прежней.
func (s *Store) Reset(ctx context.Context) error {
	return s.inTx(ctx, "reset database", func(tx *sql.Tx) error {
		if err := dropSchema(ctx, tx, s.schema); err != nil {
			return queryError("reset database", err)
		}
		if err := createSchema(ctx, tx, s.schema); err != nil {
			return queryError("reset database", err)
		}
		inserted, err := seed(ctx, tx, s.fixtures)
		if err != nil {
			return err
		}
		s.logger.WithField("seeded", inserted).Warn("database reset")
		return nil
	})
}

// Counts: количество строк в каждой таблице.
type Counts struct {
	Categories int64 `json:"categories"`
	Products   int64 `json:"products"`
	Orders     int64 `json:"orders"`
	OrderItems int64 `json:"order_items"`
}

// Counts считает строки во всех таблицах.
func (s *Store) Counts(ctx context.Context) (Counts, error) {
	var c Counts
	err := s.withLock(func(db *sql.DB) error {
		if err := db.QueryRowContext(ctx, `
			SELECT
				(SELECT COUNT(*) FROM categories),
				(SELECT COUNT(*) FROM products),
				(SELECT COUNT(*) FROM orders),
				(SELECT COUNT(*) FROM order_items)
		`).Scan(&c.Categories, &c.Products, &c.Orders, &c.OrderItems); err != nil {
			return queryError("count rows", err)
		}
		return nil
	})
	return c, err
}

// Close закрывает соединение. Последующие операции получают domain.ErrStoreClosed.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.db == nil {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func isMemoryPath(path string) bool {
	return path == MemoryPath ||
		strings.HasPrefix(path, "file::memory:") ||
		strings.Contains(path, "mode=memory")
}

var _ domain.StoreAdmin = (*Store)(nil)
