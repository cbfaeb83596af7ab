package domain

// ProductSalesSummary: продажи одного товара за всё время.
type ProductSalesSummary struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	TotalQuantity int64  `json:"total_quantity"`
	TotalRevenue  int64  `json:"total_revenue"`
}

// PaymentMethodBreakdown: выручка и число чеков по способу оплаты.
type PaymentMethodBreakdown struct {
	PaymentMethod    PaymentMethod `json:"payment_method"`
	TotalRevenue     int64         `json:"total_revenue"`
	TransactionCount int64         `json:"transaction_count"`
}

// DashboardSummary: сводка для экрана статистики.
type DashboardSummary struct {
	TotalRevenue      int64                    `json:"total_revenue"`
	TotalTransactions int64                    `json:"total_transactions"`
	PerProduct        []ProductSalesSummary    `json:"per_product"`
	PerPaymentMethod  []PaymentMethodBreakdown `json:"per_payment_method"`
}
