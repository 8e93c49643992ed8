package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo del punto de venta.
// Stock solo lo modifica el libro de stock (movimientos); Update del catálogo no lo toca.
type Product struct {
	ID         string
	Name       string
	Price      decimal.Decimal // precio de venta vigente
	Stock      decimal.Decimal // existencia actual, nunca negativa (granel permite fracciones)
	MinStock   decimal.Decimal // umbral para alertas de bajo stock
	Active     bool
	CategoryID string            // vacío si no tiene categoría
	Discounts  []decimal.Decimal // porcentajes de descuento ofrecidos (0-100)
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// HasStockFor indica si la existencia cubre la cantidad pedida.
func (p *Product) HasStockFor(qty decimal.Decimal) bool {
	return p.Stock.GreaterThanOrEqual(qty)
}

// IsBelowMinimum indica si el producto está en o por debajo de su stock mínimo.
func (p *Product) IsBelowMinimum() bool {
	return p.Stock.LessThanOrEqual(p.MinStock)
}
