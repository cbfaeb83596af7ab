package domain

import "strings"

// Product: позиция каталога. Цена хранится в центах.
type Product struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Price      int64  `json:"price" yaml:"price"`
	CategoryID string `json:"category_id" yaml:"category_id"`
	// Available определяет, показывается ли товар на экране продаж.
	Available bool `json:"available" yaml:"-"`
}

// CreateProductInput: данные для создания товара; ID генерируется хранилищем.
type CreateProductInput struct {
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	CategoryID string `json:"category_id"`
}

// UpdateProductInput: полная замена полей товара.
type UpdateProductInput struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      int64  `json:"price"`
	CategoryID string `json:"category_id"`
	Available  bool   `json:"available"`
}

func (in CreateProductInput) Validate() error {
	return validateProductFields(in.Name, in.Price, in.CategoryID)
}

func (in UpdateProductInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return RequiredFieldError("id")
	}
	return validateProductFields(in.Name, in.Price, in.CategoryID)
}

func validateProductFields(name string, price int64, categoryID string) error {
	if strings.TrimSpace(name) == "" {
		return RequiredFieldError("name")
	}
	if price < 0 {
		return ErrPriceNegative
	}
	if strings.TrimSpace(categoryID) == "" {
		return RequiredFieldError("category_id")
	}
	return nil
}
