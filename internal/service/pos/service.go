package pos

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/metrics"
)

// Repositories: хранилища, которыми владеет сервис.
type Repositories struct {
	Categories domain.CategoryRepository
	Products   domain.ProductRepository
	Orders     domain.OrderRepository
	Reports    domain.ReportRepository
	Admin      domain.StoreAdmin
}

func (r Repositories) validate() error {
	switch {
	case r.Categories == nil:
		return errors.New("categories repository is required")
	case r.Products == nil:
		return errors.New("products repository is required")
	case r.Orders == nil:
		return errors.New("orders repository is required")
	case r.Reports == nil:
		return errors.New("reports repository is required")
	case r.Admin == nil:
		return errors.New("store admin is required")
	}
	return nil
}

// Service реализует операции кассы поверх репозиториев.
type Service struct {
	repos     Repositories
	publisher domain.EventPublisher
	metrics   *metrics.PosMetrics
	logger    *log.Entry

	now   func() time.Time
	newID func() string
}

// Option настраивает Service.
type Option func(*Service)

// WithPublisher задаёт публикатор событий о продажах.
func WithPublisher(p domain.EventPublisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMetrics включает запись prometheus-метрик.
func WithMetrics(m *metrics.PosMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger задаёт логгер сервиса.
func WithLogger(logger *log.Entry) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock подменяет источник времени (тесты).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator подменяет генератор идентификаторов заказов (тесты).
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// New создаёт сервис. Без WithPublisher события никуда не отправляются.
func New(repos Repositories, opts ...Option) (*Service, error) {
	if err := repos.validate(); err != nil {
		return nil, err
	}

	s := &Service{
		repos:     repos,
		publisher: domain.NoopPublisher{},
		logger:    log.WithField("component", "pos-service"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListCategories возвращает категории по label.
func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.repos.Categories.List(ctx)
}

// CreateCategory создаёт категорию с идентификатором, заданным клиентом.
func (s *Service) CreateCategory(ctx context.Context, in domain.CreateCategoryInput) (domain.Category, error) {
	in.ID = strings.TrimSpace(in.ID)
	if err := in.Validate(); err != nil {
		return domain.Category{}, err
	}

	category, err := s.repos.Categories.Create(ctx, in)
	if err != nil {
		return domain.Category{}, err
	}
	s.logger.WithField("category_id", category.ID).Info("category created")
	return category, nil
}

func (s *Service) UpdateCategory(ctx context.Context, in domain.UpdateCategoryInput) (domain.Category, error) {
	if err := in.Validate(); err != nil {
		return domain.Category{}, err
	}
	return s.repos.Categories.Update(ctx, in)
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.RequiredFieldError("category_id")
	}
	if err := s.repos.Categories.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("category_id", id).Info("category deleted")
	return nil
}

// ListProducts возвращает товары по name, включая недоступные.
func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repos.Products.List(ctx)
}

func (s *Service) CreateProduct(ctx context.Context, in domain.CreateProductInput) (domain.Product, error) {
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}

	product, err := s.repos.Products.Create(ctx, in)
	if err != nil {
		return domain.Product{}, err
	}
	s.logger.WithFields(log.Fields{
		"product_id":  product.ID,
		"category_id": product.CategoryID,
	}).Info("product created")
	return product, nil
}

func (s *Service) UpdateProduct(ctx context.Context, in domain.UpdateProductInput) (domain.Product, error) {
	if err := in.Validate(); err != nil {
		return domain.Product{}, err
	}
	return s.repos.Products.Update(ctx, in)
}

// ToggleProductAvailability инвертирует флаг доступности и возвращает новое значение.
func (s *Service) ToggleProductAvailability(ctx context.Context, id string) (bool, error) {
	if strings.TrimSpace(id) == "" {
		return false, domain.RequiredFieldError("product_id")
	}
	return s.repos.Products.ToggleAvailability(ctx, id)
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.RequiredFieldError("product_id")
	}
	if err := s.repos.Products.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.WithField("product_id", id).Info("product deleted")
	return nil
}

// CreateOrder материализует заказ, атомарно сохраняет его и публикует событие.
// Ошибка публикации только логируется: заказ к этому моменту уже закоммичен.
func (s *Service) CreateOrder(ctx context.Context, in domain.CreateOrderInput) (domain.OrderWithItems, error) {
	order, err := domain.BuildOrder(in, s.now(), s.newID)
	if err != nil {
		return domain.OrderWithItems{}, err
	}

	if err := s.repos.Orders.Create(ctx, order); err != nil {
		s.logger.WithError(err).WithField("order_id", order.ID).Warn("failed to persist order")
		return domain.OrderWithItems{}, err
	}

	s.metrics.RecordOrderCreated(order.PaymentMethod.String(), order.Total, len(order.Items))
	s.logger.WithFields(log.Fields{
		"order_id":       order.ID,
		"total":          order.Total,
		"items":          len(order.Items),
		"payment_method": order.PaymentMethod.String(),
	}).Info("order created")

	pubErr := s.publisher.OrderCreated(ctx, order)
	s.metrics.RecordEventPublished(domain.EventTypeOrderCreated, pubErr)
	if pubErr != nil {
		s.logger.WithError(pubErr).WithField("order_id", order.ID).Warn("failed to publish order created event")
	}

	return order, nil
}

// ListOrders возвращает заказы от новых к старым вместе с позициями.
func (s *Service) ListOrders(ctx context.Context) ([]domain.OrderWithItems, error) {
	return s.repos.Orders.List(ctx)
}

func (s *Service) GetDashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	return s.repos.Reports.DashboardSummary(ctx)
}

// ResetDatabase пересоздаёт схему и начальный каталог. Все заказы теряются.
func (s *Service) ResetDatabase(ctx context.Context) error {
	if err := s.repos.Admin.Reset(ctx); err != nil {
		s.logger.WithError(err).Error("database reset failed")
		return err
	}
	s.metrics.RecordDatabaseReset()

	pubErr := s.publisher.DatabaseReset(ctx)
	s.metrics.RecordEventPublished(domain.EventTypeDatabaseReset, pubErr)
	if pubErr != nil {
		s.logger.WithError(pubErr).Warn("failed to publish database reset event")
	}
	return nil
}

// Ping проверяет доступность хранилища (health-check).
func (s *Service) Ping(ctx context.Context) error {
	return s.repos.Admin.Ping(ctx)
}
