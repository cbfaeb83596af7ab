package domain_test

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/pos/internal/domain"
)

// sequentialIDs выдаёт предсказуемые идентификаторы.
func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestBuildOrder_Totals(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 30, 15, 987654321, time.FixedZone("CET", 3600))
	in := domain.CreateOrderInput{
		Items: []domain.CreateOrderItemInput{
			{ProductID: "candy", ProductName: "Candy", UnitPrice: 50, Quantity: 3},
			{ProductID: "soda", ProductName: "Soda", UnitPrice: 200, Quantity: 2},
		},
		PaymentMethod: domain.PaymentMethodCash,
	}

	order, err := domain.BuildOrder(in, now, sequentialIDs())
	if err != nil {
		t.Fatalf("build order: %v", err)
	}

	if order.Total != 550 {
		t.Fatalf("expected total 550, got %d", order.Total)
	}
	if order.Items[0].Total != 150 || order.Items[1].Total != 400 {
		t.Fatalf("unexpected line totals: %+v", order.Items)
	}
	if order.ID != "id-1" || order.Items[0].OrderID != order.ID || order.Items[1].ID != "id-3" {
		t.Fatalf("unexpected ids: order=%s items=%+v", order.ID, order.Items)
	}
	if got := order.CreatedAt.Format(domain.TimestampLayout); got != "2026-03-01T11:30:15Z" {
		t.Fatalf("unexpected created_at: %s", got)
	}
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no invariant errors, got %v", errs)
	}
}

func TestBuildOrder_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		in      domain.CreateOrderInput
		wantErr error
		message string
	}{
		{
			name:    "no items",
			in:      domain.CreateOrderInput{PaymentMethod: domain.PaymentMethodCard},
			wantErr: domain.ErrNoItems,
			message: "no items",
		},
		{
			name: "zero quantity",
			in: domain.CreateOrderInput{
				Items:         []domain.CreateOrderItemInput{{ProductID: "p1", UnitPrice: 10, Quantity: 0}},
				PaymentMethod: domain.PaymentMethodCash,
			},
			wantErr: domain.ErrInvalidQuantity,
			message: "invalid quantity 0 for product p1",
		},
		{
			name: "negative quantity",
			in: domain.CreateOrderInput{
				Items:         []domain.CreateOrderItemInput{{ProductID: "p2", UnitPrice: 10, Quantity: -4}},
				PaymentMethod: domain.PaymentMethodCash,
			},
			wantErr: domain.ErrInvalidQuantity,
			message: "invalid quantity -4",
		},
		{
			name: "line total overflow",
			in: domain.CreateOrderInput{
				Items:         []domain.CreateOrderItemInput{{ProductID: "gold", UnitPrice: math.MaxInt64, Quantity: 2}},
				PaymentMethod: domain.PaymentMethodCard,
			},
			wantErr: domain.ErrValidation,
			message: "line total overflows for product gold",
		},
		{
			name: "negative line total overflow",
			in: domain.CreateOrderInput{
				Items:         []domain.CreateOrderItemInput{{ProductID: "refund", UnitPrice: math.MinInt64, Quantity: 2}},
				PaymentMethod: domain.PaymentMethodCard,
			},
			wantErr: domain.ErrValidation,
			message: "line total overflows for product refund",
		},
		{
			name: "order total overflow",
			in: domain.CreateOrderInput{
				Items: []domain.CreateOrderItemInput{
					{ProductID: "a", UnitPrice: math.MaxInt64/2 + 1, Quantity: 1},
					{ProductID: "b", UnitPrice: math.MaxInt64/2 + 1, Quantity: 1},
				},
				PaymentMethod: domain.PaymentMethodCash,
			},
			wantErr: domain.ErrValidation,
			message: "order total overflows",
		},
		{
			name: "missing payment method",
			in: domain.CreateOrderInput{
				Items: []domain.CreateOrderItemInput{{ProductID: "p1", UnitPrice: 10, Quantity: 1}},
			},
			wantErr: domain.ErrValidation,
			message: "payment_method",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := domain.BuildOrder(tc.in, time.Now(), sequentialIDs())
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if !domain.IsValidation(err) {
				t.Fatalf("expected validation kind, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Fatalf("message %q does not contain %q", err.Error(), tc.message)
			}
		})
	}
}

func TestOrderValidateInvariants_Mismatch(t *testing.T) {
	order, err := domain.BuildOrder(domain.CreateOrderInput{
		Items:         []domain.CreateOrderItemInput{{ProductID: "p1", UnitPrice: 100, Quantity: 2}},
		PaymentMethod: domain.PaymentMethodCard,
	}, time.Now(), sequentialIDs())
	if err != nil {
		t.Fatalf("build order: %v", err)
	}

	order.Total = 999
	if len(order.ValidateInvariants()) == 0 {
		t.Fatal("expected total mismatch")
	}
}

func TestBuildOrder_TotalsAtInt64Bounds(t *testing.T) {
	in := domain.CreateOrderInput{
		Items: []domain.CreateOrderItemInput{
			{ProductID: "max", UnitPrice: math.MaxInt64 / 3, Quantity: 3},
			{ProductID: "discount", UnitPrice: -1, Quantity: 1},
		},
		PaymentMethod: domain.PaymentMethodCash,
	}

	order, err := domain.BuildOrder(in, time.Now(), sequentialIDs())
	if err != nil {
		t.Fatalf("build order: %v", err)
	}
	if want := int64(math.MaxInt64/3*3 - 1); order.Total != want {
		t.Fatalf("expected total %d, got %d", want, order.Total)
	}
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("unexpected invariant errors: %v", errs)
	}

	_, err = domain.BuildOrder(domain.CreateOrderInput{
		Items:         []domain.CreateOrderItemInput{{ProductID: "min", UnitPrice: math.MinInt64, Quantity: 1}},
		PaymentMethod: domain.PaymentMethodCard,
	}, time.Now(), sequentialIDs())
	if err != nil {
		t.Fatalf("single MinInt64 line must fit: %v", err)
	}
}
