package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Sale es la cabecera de una venta. Estados: activa -> anulada (terminal).
type Sale struct {
	ID           string
	UserID       string
	ClientID     string    // vacío = venta sin cliente
	Date         time.Time // fecha calendario (00:00 en la zona de la caja)
	Time         string    // hora legible "03:04 PM"
	Total        decimal.Decimal
	TaxInclusive bool
	Branch       string
	Voided       bool
	VoidedAt     *time.Time
	CreatedAt    time.Time
	Lines        []SaleLine
}

// SaleLine es un producto vendido dentro de una venta, en orden de captura.
type SaleLine struct {
	ID              string
	SaleID          string
	Position        int
	ProductID       string
	Quantity        decimal.Decimal
	DiscountPercent decimal.Decimal // 0-100
	UnitPrice       decimal.Decimal // precio del producto al momento de la venta
	Subtotal        decimal.Decimal
}
