package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/metrics"
	"github.com/vladislavdragonenkov/pos/internal/service/pos"
	"github.com/vladislavdragonenkov/pos/internal/version"
)

// Имена команд командной поверхности кассы.
const (
	ListCategories            = "list_categories"
	CreateCategory            = "create_category"
	UpdateCategory            = "update_category"
	DeleteCategory            = "delete_category"
	ListProducts              = "list_products"
	CreateProduct             = "create_product"
	UpdateProduct             = "update_product"
	ToggleProductAvailability = "toggle_product_availability"
	DeleteProduct             = "delete_product"
	CreateOrder               = "create_order"
	ListOrders                = "list_orders"
	GetDashboardSummary       = "get_dashboard_summary"
	ResetDatabase             = "reset_database"
	GetAppVersion             = "get_app_version"
)

// unknownCommandLabel ограничивает кардинальность метрик для мусорных имён.
const unknownCommandLabel = "unknown"

var (
	// ErrUnknownCommand: в реестре нет команды с таким именем.
	ErrUnknownCommand = fmt.Errorf("%w: unknown command", domain.ErrValidation)
	// ErrInvalidPayload: payload не разбирается в ожидаемую структуру.
	ErrInvalidPayload = fmt.Errorf("%w: invalid payload", domain.ErrValidation)
)

// Handler выполняет одну команду. payload: сырой JSON, результат сериализуется транспортом.
type Handler func(ctx context.Context, payload json.RawMessage) (any, error)

// Dispatcher: реестр команд с учётом метрик и логированием.
type Dispatcher struct {
	handlers map[string]Handler
	metrics  *metrics.PosMetrics
	logger   *log.Entry
}

// Option настраивает Dispatcher.
type Option func(*Dispatcher)

func WithMetrics(m *metrics.PosMetrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

func WithLogger(logger *log.Entry) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// New регистрирует все команды сервиса.
func New(svc *pos.Service, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string]Handler),
		logger:   log.WithField("component", "command-dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}

	d.Register(ListCategories, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return svc.ListCategories(ctx)
	})
	d.Register(CreateCategory, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var in domain.CreateCategoryInput
		if err := decodePayload(CreateCategory, raw, &in); err != nil {
			return nil, err
		}
		return svc.CreateCategory(ctx, in)
	})
	d.Register(UpdateCategory, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var in domain.UpdateCategoryInput
		if err := decodePayload(UpdateCategory, raw, &in); err != nil {
			return nil, err
		}
		return svc.UpdateCategory(ctx, in)
	})
	d.Register(DeleteCategory, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var in CategoryRef
		if err := decodePayload(DeleteCategory, raw, &in); err != nil {
			return nil, err
		}
		return nil, svc.DeleteCategory(ctx, in.CategoryID)
	})
	d.Register(ListProducts, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return svc.ListProducts(ctx)
	})
	d.Register(CreateProduct, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var p createProductPayload
		if err := decodePayload(CreateProduct, raw, &p); err != nil {
			return nil, err
		}
		in, err := p.toInput()
		if err != nil {
			return nil, err
		}
		return svc.CreateProduct(ctx, in)
	})
	d.Register(UpdateProduct, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var p updateProductPayload
		if err := decodePayload(UpdateProduct, raw, &p); err != nil {
			return nil, err
		}
		in, err := p.toInput()
		if err != nil {
			return nil, err
		}
		return svc.UpdateProduct(ctx, in)
	})
	d.Register(ToggleProductAvailability, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var in ProductRef
		if err := decodePayload(ToggleProductAvailability, raw, &in); err != nil {
			return nil, err
		}
		return svc.ToggleProductAvailability(ctx, in.ProductID)
	})
	d.Register(DeleteProduct, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var in ProductRef
		if err := decodePayload(DeleteProduct, raw, &in); err != nil {
			return nil, err
		}
		return nil, svc.DeleteProduct(ctx, in.ProductID)
	})
	d.Register(CreateOrder, func(ctx context.Context, raw json.RawMessage) (any, error) {
		var p createOrderPayload
		if err := decodePayload(CreateOrder, raw, &p); err != nil {
			return nil, err
		}
		in, err := p.toInput()
		if err != nil {
			return nil, err
		}
		return svc.CreateOrder(ctx, in)
	})
	d.Register(ListOrders, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return svc.ListOrders(ctx)
	})
	d.Register(GetDashboardSummary, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return svc.GetDashboardSummary(ctx)
	})
	d.Register(ResetDatabase, func(ctx context.Context, _ json.RawMessage) (any, error) {
		return nil, svc.ResetDatabase(ctx)
	})
	d.Register(GetAppVersion, func(context.Context, json.RawMessage) (any, error) {
		return version.App(), nil
	})

	return d
}

// CategoryRef: payload команд, адресующих категорию.
type CategoryRef struct {
	CategoryID string `json:"category_id"`
}

// ProductRef: payload команд, адресующих товар.
type ProductRef struct {
	ProductID string `json:"product_id"`
}

// Register добавляет или заменяет обработчик команды.
func (d *Dispatcher) Register(name string, h Handler) {
	d.handlers[name] = h
}

// Names возвращает отсортированный список зарегистрированных команд.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch выполняет команду синхронно и возвращает её результат.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, payload json.RawMessage) (any, error) {
	started := time.Now()

	h, ok := d.handlers[name]
	if !ok {
		err := fmt.Errorf("%w: %q", ErrUnknownCommand, name)
		d.metrics.RecordCommand(unknownCommandLabel, string(domain.KindOf(err)), time.Since(started))
		return nil, err
	}

	result, err := h(ctx, payload)
	kind := domain.KindOf(err)
	d.metrics.RecordCommand(name, string(kind), time.Since(started))

	if err != nil {
		entry := d.logger.WithError(err).WithFields(log.Fields{
			"command": name,
			"kind":    kind,
		})
		switch kind {
		case domain.KindQuery, domain.KindRowMapping, domain.KindLock:
			entry.Error("command failed")
		default:
			entry.Debug("command rejected")
		}
		return nil, err
	}
	return result, nil
}

// decodePayload разбирает JSON строго: лишние поля считаются ошибкой клиента.
// Пустой payload эквивалентен {}.
func decodePayload(command string, raw json.RawMessage, dst any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		trimmed = []byte("{}")
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w for %s: %w", ErrInvalidPayload, command, err)
	}
	return nil
}
