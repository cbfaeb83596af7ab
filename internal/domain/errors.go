package domain

import (
	"errors"
	"fmt"
)

// Базовые виды ошибок. Конкретные ошибки ниже оборачивают один из них,
// поэтому вызывающая сторона классифицирует их через errors.Is или KindOf.
var (
	// ErrLock: не удалось получить эксклюзивный доступ к хранилищу.
	ErrLock = errors.New("store lock failure")
	// ErrQuery: ошибка драйвера или некорректный SQL.
	ErrQuery = errors.New("query failure")
	// ErrRowMapping: строка из БД не укладывается в доменную модель.
	ErrRowMapping = errors.New("row mapping failure")
	// ErrNotFound: цель обновления/удаления отсутствует.
	ErrNotFound = errors.New("not found")
	// ErrConflict: удаление заблокировано зависимыми записями.
	ErrConflict = errors.New("conflict")
	// ErrValidation: некорректные входные данные.
	ErrValidation = errors.New("validation failed")
	// ErrAlreadyExists: запись с таким первичным ключом уже есть.
	ErrAlreadyExists = errors.New("already exists")
)

var (
	// ErrStoreClosed возвращается при обращении к закрытому хранилищу.
	ErrStoreClosed = fmt.Errorf("%w: store is closed", ErrLock)

	ErrCategoryNotFound = fmt.Errorf("category %w", ErrNotFound)
	ErrProductNotFound  = fmt.Errorf("product %w", ErrNotFound)
	ErrCategoryExists   = fmt.Errorf("category %w", ErrAlreadyExists)

	// ErrNoItems: заказ без позиций.
	ErrNoItems = fmt.Errorf("%w: cannot create an order with no items", ErrValidation)
	// ErrInvalidQuantity: количество в позиции должно быть > 0.
	ErrInvalidQuantity = fmt.Errorf("%w: invalid quantity", ErrValidation)
	// ErrUnknownPaymentMethod: строка не соответствует ни одному способу оплаты.
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	// ErrUnknownCategory: товар ссылается на несуществующую категорию.
	ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrValidation)
	// ErrUnknownProduct: позиция заказа ссылается на несуществующий товар.
	ErrUnknownProduct = fmt.Errorf("%w: unknown product", ErrValidation)
	// ErrPriceNegative: цена товара не может быть отрицательной.
	ErrPriceNegative = fmt.Errorf("%w: price must be non-negative", ErrValidation)
)

// RequiredFieldError сообщает об отсутствующем обязательном поле.
func RequiredFieldError(field string) error {
	return fmt.Errorf("%w: %s is required", ErrValidation, field)
}

// ReferencedError возвращается, когда удаление запрещено из-за ссылок на запись.
type ReferencedError struct {
	Entity    string
	ID        string
	Count     int64
	Dependent string
}

func (e *ReferencedError) Error() string {
	return fmt.Sprintf("cannot delete %s '%s': it is referenced by %d %s", e.Entity, e.ID, e.Count, e.Dependent)
}

// Unwrap позволяет errors.Is(err, ErrConflict).
func (e *ReferencedError) Unwrap() error {
	return ErrConflict
}

// ErrorKind: вид ошибки для транспорта и метрик.
type ErrorKind string

const (
	KindNone          ErrorKind = ""
	KindLock          ErrorKind = "lock_failure"
	KindQuery         ErrorKind = "query_failure"
	KindRowMapping    ErrorKind = "row_mapping_failure"
	KindNotFound      ErrorKind = "not_found"
	KindConflict      ErrorKind = "conflict"
	KindValidation    ErrorKind = "validation_failure"
	KindAlreadyExists ErrorKind = "already_exists"
)

// KindOf классифицирует ошибку. Всё, что не распознано, считается ошибкой запроса.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrLock):
		return KindLock
	case errors.Is(err, ErrRowMapping):
		return KindRowMapping
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConflict):
		return KindConflict
	case errors.Is(err, ErrAlreadyExists):
		return KindAlreadyExists
	case errors.Is(err, ErrValidation), errors.Is(err, ErrUnknownPaymentMethod):
		return KindValidation
	default:
		return KindQuery
	}
}

// IsNotFound проверяет, что цель операции не найдена.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict проверяет, что операция заблокирована ссылками.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsValidation проверяет, что ошибка вызвана входными данными.
func IsValidation(err error) bool {
	return KindOf(err) == KindValidation
}
