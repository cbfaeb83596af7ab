package domain

import "strings"

// Category: группа товаров с цветом для отображения на кассе.
type Category struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Color string `json:"color" yaml:"color"`
}

// CreateCategoryInput: данные для создания категории. ID задаёт вызывающая сторона.
type CreateCategoryInput struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// UpdateCategoryInput: данные для обновления категории.
type UpdateCategoryInput struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Color string `json:"color"`
}

// Validate проверяет обязательные поля.
func (in CreateCategoryInput) Validate() error {
	return validateCategoryFields(in.ID, in.Label)
}

// Validate проверяет обязательные поля.
func (in UpdateCategoryInput) Validate() error {
	return validateCategoryFields(in.ID, in.Label)
}

func validateCategoryFields(id, label string) error {
	if strings.TrimSpace(id) == "" {
		return RequiredFieldError("id")
	}
	if strings.TrimSpace(label) == "" {
		return RequiredFieldError("label")
	}
	return nil
}
