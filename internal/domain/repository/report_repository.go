package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UncategorizedName nombre del grupo de productos sin categoría en los reportes.
const UncategorizedName = "Sin categoría"

// ProductSales cantidad vendida de un producto en un periodo.
type ProductSales struct {
	ProductID   string
	ProductName string
	Quantity    decimal.Decimal
	Revenue     decimal.Decimal
}

// UserSales total vendido por un operador.
type UserSales struct {
	UserID   string
	UserName string
	Sales    int
	Total    decimal.Decimal
}

// CategorySales total de subtotales por categoría ("Sin categoría" si el producto no tiene).
type CategorySales struct {
	CategoryID   string
	CategoryName string
	Total        decimal.Decimal
}

// PeriodSales total por día (Date) o por mes (Month 1-12).
type PeriodSales struct {
	Date  time.Time
	Month int
	Total decimal.Decimal
}

// ReportRepository agregaciones de solo lectura. Todas excluyen ventas anuladas.
type ReportRepository interface {
	TopSellingProducts(ctx context.Context, start, end time.Time, limit int) ([]ProductSales, error)
	SalesByUser(ctx context.Context, start, end time.Time) ([]UserSales, error)
	SalesByCategory(ctx context.Context, start, end time.Time) ([]CategorySales, error)
	DailySales(ctx context.Context, start, end time.Time) ([]PeriodSales, error)
	MonthlySales(ctx context.Context, year int) ([]PeriodSales, error)
}
