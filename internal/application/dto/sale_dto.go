package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest línea de venta. El precio no se recibe: se toma del producto.
type SaleLineRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	Quantity        decimal.Decimal `json:"quantity" validate:"gt=0"`
	DiscountPercent decimal.Decimal `json:"discount_percent" validate:"gte=0,lte=100"`
}

// CreateSaleRequest body para POST /api/sales. El operador sale del token.
type CreateSaleRequest struct {
	ClientID     string            `json:"client_id,omitempty"`
	TaxInclusive bool              `json:"tax_inclusive"`
	Branch       string            `json:"branch,omitempty" validate:"max=100"`
	Lines        []SaleLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// SaleLineResponse línea de venta persistida.
type SaleLineResponse struct {
	ProductID       string          `json:"product_id"`
	Quantity        decimal.Decimal `json:"quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	Subtotal        decimal.Decimal `json:"subtotal"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID           string             `json:"id"`
	UserID       string             `json:"user_id"`
	ClientID     string             `json:"client_id,omitempty"`
	Date         string             `json:"date"` // YYYY-MM-DD
	Time         string             `json:"time"`
	Total        decimal.Decimal    `json:"total"`
	TaxInclusive bool               `json:"tax_inclusive"`
	Branch       string             `json:"branch,omitempty"`
	Voided       bool               `json:"voided"`
	VoidedAt     *time.Time         `json:"voided_at,omitempty"`
	Lines        []SaleLineResponse `json:"lines"`
}

// RevenueResponse ingreso total en un rango (ventas anuladas excluidas).
type RevenueResponse struct {
	Start string          `json:"start"`
	End   string          `json:"end"`
	Total decimal.Decimal `json:"total"`
}

// TicketVerifyResponse resultado de verificar el sello de un comprobante XML.
type TicketVerifyResponse struct {
	Valid bool `json:"valid"`
}
