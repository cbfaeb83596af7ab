package domain

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil error", err: nil, want: KindNone},
		{name: "store closed", err: ErrStoreClosed, want: KindLock},
		{name: "category not found", err: fmt.Errorf("%w: snack", ErrCategoryNotFound), want: KindNotFound},
		{name: "product not found", err: ErrProductNotFound, want: KindNotFound},
		{name: "referenced", err: &ReferencedError{Entity: "product", ID: "p1", Count: 2, Dependent: "order item(s)"}, want: KindConflict},
		{name: "duplicate category", err: ErrCategoryExists, want: KindAlreadyExists},
		{name: "no items", err: ErrNoItems, want: KindValidation},
		{name: "unknown payment method", err: fmt.Errorf("decode: %w", ErrUnknownPaymentMethod), want: KindValidation},
		{name: "unknown payment method in row", err: fmt.Errorf("%w: %w", ErrRowMapping, ErrUnknownPaymentMethod), want: KindRowMapping},
		{name: "driver error", err: errors.New("disk I/O error"), want: KindQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReferencedError_Message(t *testing.T) {
	err := &ReferencedError{Entity: "category", ID: "snack", Count: 3, Dependent: "product(s)"}

	want := "cannot delete category 'snack': it is referenced by 3 product(s)"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if !IsConflict(fmt.Errorf("delete: %w", err)) {
		t.Fatal("wrapped ReferencedError must be a conflict")
	}
}

func TestNotFoundMessages(t *testing.T) {
	err := fmt.Errorf("%w: %s", ErrProductNotFound, "nonexistent")
	if !strings.Contains(err.Error(), "product not found") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if !IsNotFound(err) {
		t.Fatal("expected not found")
	}
	if IsNotFound(ErrNoItems) {
		t.Fatal("validation error must not be not found")
	}
}

func TestRequiredFieldError(t *testing.T) {
	err := RequiredFieldError("label")
	if !IsValidation(err) {
		t.Fatal("expected validation kind")
	}
	if !strings.Contains(err.Error(), "label is required") {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
