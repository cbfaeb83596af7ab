package domain

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParsePaymentMethod(t *testing.T) {
	tests := []struct {
		in      string
		want    PaymentMethod
		wantErr bool
	}{
		{in: "cash", want: PaymentMethodCash},
		{in: "card", want: PaymentMethodCard},
		{in: "CASH", wantErr: true},
		{in: "cheque", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePaymentMethod(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownPaymentMethod) {
					t.Fatalf("expected ErrUnknownPaymentMethod, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPaymentMethod_JSON(t *testing.T) {
	var in CreateOrderInput
	if err := json.Unmarshal([]byte(`{"items":[],"payment_method":"card"}`), &in); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if in.PaymentMethod != PaymentMethodCard {
		t.Fatalf("expected card, got %v", in.PaymentMethod)
	}

	err := json.Unmarshal([]byte(`{"payment_method":"bitcoin"}`), &in)
	if !errors.Is(err, ErrUnknownPaymentMethod) {
		t.Fatalf("expected ErrUnknownPaymentMethod, got %v", err)
	}

	out, err := json.Marshal(Order{ID: "o1", PaymentMethod: PaymentMethodCash})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(out, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["payment_method"] != "cash" {
		t.Fatalf("expected cash literal, got %v", raw["payment_method"])
	}

	if _, err := json.Marshal(Order{ID: "o2"}); err == nil {
		t.Fatal("zero payment method must not be serialized")
	}
}

func TestPaymentMethod_Scan(t *testing.T) {
	var m PaymentMethod
	if err := m.Scan("cash"); err != nil || m != PaymentMethodCash {
		t.Fatalf("scan cash: m=%v err=%v", m, err)
	}
	if err := m.Scan([]byte("card")); err != nil || m != PaymentMethodCard {
		t.Fatalf("scan card bytes: m=%v err=%v", m, err)
	}

	err := m.Scan("voucher")
	if KindOf(err) != KindRowMapping {
		t.Fatalf("expected row mapping failure, got %v", err)
	}
	if err := m.Scan(int64(1)); KindOf(err) != KindRowMapping {
		t.Fatalf("expected row mapping failure for int, got %v", err)
	}

	v, err := PaymentMethodCard.Value()
	if err != nil || v != "card" {
		t.Fatalf("value: v=%v err=%v", v, err)
	}
}
