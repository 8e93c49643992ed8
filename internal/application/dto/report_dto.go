package dto

import "github.com/shopspring/decimal"

// TopProductDTO producto más vendido en un periodo.
type TopProductDTO struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// UserSalesDTO total vendido por operador.
type UserSalesDTO struct {
	UserID   string          `json:"user_id"`
	UserName string          `json:"user_name"`
	Sales    int             `json:"sales"`
	Total    decimal.Decimal `json:"total"`
}

// CategorySalesDTO total vendido por categoría.
type CategorySalesDTO struct {
	CategoryID   string          `json:"category_id,omitempty"`
	CategoryName string          `json:"category_name"`
	Total        decimal.Decimal `json:"total"`
}

// DailySalesDTO total por día (YYYY-MM-DD).
type DailySalesDTO struct {
	Date  string          `json:"date"`
	Total decimal.Decimal `json:"total"`
}

// MonthlySalesDTO total por mes (1-12).
type MonthlySalesDTO struct {
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}
