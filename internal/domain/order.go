package domain

import (
	"fmt"
	"math"
	"math/bits"
	"time"
)

// TimestampLayout: формат created_at в хранилище (ISO-8601, UTC, секунды).
const TimestampLayout = time.RFC3339

// Order: завершённая продажа. После создания не изменяется.
type Order struct {
	ID            string        `json:"id"`
	CreatedAt     time.Time     `json:"created_at"`
	Total         int64         `json:"total"`
	PaymentMethod PaymentMethod `json:"payment_method"`
}

// OrderItem: строка заказа. Название и цена копируются из каталога в момент продажи,
// поэтому последующие правки каталога не меняют историю.
type OrderItem struct {
	ID          string `json:"id"`
	OrderID     string `json:"order_id"`
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
	// Total = UnitPrice * Quantity.
	Total int64 `json:"total"`
}

// OrderWithItems: заказ вместе с позициями.
type OrderWithItems struct {
	Order
	Items []OrderItem `json:"items"`
}

// CreateOrderItemInput: позиция нового заказа в том виде, в каком её прислала касса.
type CreateOrderItemInput struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   int64  `json:"unit_price"`
	Quantity    int64  `json:"quantity"`
}

// CreateOrderInput: запрос на создание заказа.
type CreateOrderInput struct {
	Items         []CreateOrderItemInput `json:"items"`
	PaymentMethod PaymentMethod          `json:"payment_method"`
}

// BuildOrder проверяет запрос и материализует заказ: идентификаторы, суммы и время создания.
// Цены берутся как есть, сверка с текущим каталогом не выполняется.
func BuildOrder(in CreateOrderInput, now time.Time, newID func() string) (OrderWithItems, error) {
	if len(in.Items) == 0 {
		return OrderWithItems{}, ErrNoItems
	}
	if !in.PaymentMethod.Valid() {
		return OrderWithItems{}, fmt.Errorf("%w: payment_method is required", ErrValidation)
	}

	orderID := newID()
	items := make([]OrderItem, 0, len(in.Items))
	var total int64
	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return OrderWithItems{}, fmt.Errorf("%w %d for product %s", ErrInvalidQuantity, item.Quantity, item.ProductID)
		}
		lineTotal, ok := mulCents(item.UnitPrice, item.Quantity)
		if !ok {
			return OrderWithItems{}, fmt.Errorf("%w: line total overflows for product %s", ErrValidation, item.ProductID)
		}
		if total, ok = addCents(total, lineTotal); !ok {
			return OrderWithItems{}, fmt.Errorf("%w: order total overflows", ErrValidation)
		}
		items = append(items, OrderItem{
			ID:          newID(),
			OrderID:     orderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Total:       lineTotal,
		})
	}

	return OrderWithItems{
		Order: Order{
			ID:            orderID,
			CreatedAt:     now.UTC().Truncate(time.Second),
			Total:         total,
			PaymentMethod: in.PaymentMethod,
		},
		Items: items,
	}, nil
}

// mulCents перемножает цену и положительное количество, сообщая о выходе за пределы int64.
// Отрицательная цена допустима: цены берутся как есть.
func mulCents(price, quantity int64) (int64, bool) {
	if quantity <= 0 {
		return 0, false
	}
	abs := uint64(price)
	if price < 0 {
		abs = uint64(-(price + 1)) + 1
	}
	hi, lo := bits.Mul64(abs, uint64(quantity))
	if hi != 0 {
		return 0, false
	}
	if price < 0 {
		if lo > uint64(math.MaxInt64)+1 {
			return 0, false
		}
		return -int64(lo-1) - 1, true
	}
	if lo > math.MaxInt64 {
		return 0, false
	}
	return int64(lo), true
}

// addCents складывает суммы, сообщая о выходе за пределы int64.
func addCents(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// ValidateInvariants сверяет сумму заказа с суммами позиций и количество в каждой позиции.
func (o OrderWithItems) ValidateInvariants() []error {
	var errs []error
	if len(o.Items) == 0 {
		errs = append(errs, ErrNoItems)
	}
	if !o.PaymentMethod.Valid() {
		errs = append(errs, fmt.Errorf("%w: %d", ErrUnknownPaymentMethod, uint8(o.PaymentMethod)))
	}

	var calc int64
	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrInvalidQuantity)
		}
		if item.Total != item.UnitPrice*item.Quantity {
			errs = append(errs, fmt.Errorf("%w: item %s total mismatch", ErrValidation, item.ID))
		}
		calc += item.Total
	}
	if calc != o.Total {
		errs = append(errs, fmt.Errorf("%w: order total does not match items sum", ErrValidation))
	}
	return errs
}
