package domain

import (
	"database/sql/driver"
	"fmt"
)

// PaymentMethod: закрытый набор способов оплаты заказа.
// Нулевое значение невалидно и никогда не сохраняется.
type PaymentMethod uint8

const (
	PaymentMethodCash PaymentMethod = iota + 1
	PaymentMethodCard
)

const (
	paymentMethodCashLiteral = "cash"
	paymentMethodCardLiteral = "card"
)

// ParsePaymentMethod разбирает строковое представление ("cash" / "card").
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch s {
	case paymentMethodCashLiteral:
		return PaymentMethodCash, nil
	case paymentMethodCardLiteral:
		return PaymentMethodCard, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, s)
	}
}

// String возвращает литерал, который хранится в БД и передаётся клиентам.
func (m PaymentMethod) String() string {
	switch m {
	case PaymentMethodCash:
		return paymentMethodCashLiteral
	case PaymentMethodCard:
		return paymentMethodCardLiteral
	default:
		return fmt.Sprintf("PaymentMethod(%d)", uint8(m))
	}
}

// Valid сообщает, входит ли значение в закрытый набор.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodCard
}

func (m PaymentMethod) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPaymentMethod, uint8(m))
	}
	return []byte(m.String()), nil
}

func (m *PaymentMethod) UnmarshalText(text []byte) error {
	parsed, err := ParsePaymentMethod(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Value реализует driver.Valuer.
func (m PaymentMethod) Value() (driver.Value, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPaymentMethod, uint8(m))
	}
	return m.String(), nil
}

// Scan реализует sql.Scanner. Неизвестный литерал в строке: ошибка маппинга.
func (m *PaymentMethod) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("%w: payment_method has type %T", ErrRowMapping, src)
	}
	parsed, err := ParsePaymentMethod(raw)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRowMapping, err)
	}
	*m = parsed
	return nil
}
