package commands

import "github.com/vladislavdragonenkov/pos/internal/domain"

// Payload-структуры с указателями для обязательных чисел и флагов:
// без них отсутствующее поле неотличимо от нуля или false.

type createProductPayload struct {
	Name       string `json:"name"`
	Price      *int64 `json:"price"`
	CategoryID string `json:"category_id"`
}

func (p createProductPayload) toInput() (domain.CreateProductInput, error) {
	if p.Price == nil {
		return domain.CreateProductInput{}, domain.RequiredFieldError("price")
	}
	return domain.CreateProductInput{
		Name:       p.Name,
		Price:      *p.Price,
		CategoryID: p.CategoryID,
	}, nil
}

type updateProductPayload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Price      *int64 `json:"price"`
	CategoryID string `json:"category_id"`
	Available  *bool  `json:"available"`
}

func (p updateProductPayload) toInput() (domain.UpdateProductInput, error) {
	if p.Price == nil {
		return domain.UpdateProductInput{}, domain.RequiredFieldError("price")
	}
	if p.Available == nil {
		return domain.UpdateProductInput{}, domain.RequiredFieldError("available")
	}
	return domain.UpdateProductInput{
		ID:         p.ID,
		Name:       p.Name,
		Price:      *p.Price,
		CategoryID: p.CategoryID,
		Available:  *p.Available,
	}, nil
}

type createOrderItemPayload struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	UnitPrice   *int64 `json:"unit_price"`
	Quantity    *int64 `json:"quantity"`
}

type createOrderPayload struct {
	Items []createOrderItemPayload `json:"items"`
	// Нулевое значение способа оплаты отклоняет domain.BuildOrder.
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
}

func (p createOrderPayload) toInput() (domain.CreateOrderInput, error) {
	items := make([]domain.CreateOrderItemInput, 0, len(p.Items))
	for _, item := range p.Items {
		if item.UnitPrice == nil {
			return domain.CreateOrderInput{}, domain.RequiredFieldError("unit_price")
		}
		if item.Quantity == nil {
			return domain.CreateOrderInput{}, domain.RequiredFieldError("quantity")
		}
		items = append(items, domain.CreateOrderItemInput{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   *item.UnitPrice,
			Quantity:    *item.Quantity,
		})
	}
	return domain.CreateOrderInput{Items: items, PaymentMethod: p.PaymentMethod}, nil
}
