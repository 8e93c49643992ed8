package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AdjustStockRequest body para POST /api/inventory/adjust.
// Type: ENTRY | EXIT | ADJUSTMENT (también ENTRADA | SALIDA | AJUSTE).
type AdjustStockRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Type      string          `json:"type" validate:"required"`
}

// StockMovementRequest body para POST /api/inventory/entries y /exits.
type StockMovementRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity" validate:"gt=0"`
	Reason    string          `json:"reason" validate:"max=255"`
}

// PhysicalCountRequest body para POST /api/inventory/physical-count: product_id -> cantidad contada.
type PhysicalCountRequest struct {
	Counts map[string]decimal.Decimal `json:"counts" validate:"required,min=1"`
}

// AdjustStockResponse resultado de un ajuste "suave": applied=false si no se aplicó.
type AdjustStockResponse struct {
	Applied bool            `json:"applied"`
	Stock   decimal.Decimal `json:"stock"`
}

// StockResponse existencia actual de un producto.
type StockResponse struct {
	ProductID string          `json:"product_id"`
	Stock     decimal.Decimal `json:"stock"`
}

// MovementResponse fila del historial de movimientos.
type MovementResponse struct {
	ID          string          `json:"id"`
	Date        time.Time       `json:"date"`
	Type        string          `json:"type"`
	Quantity    decimal.Decimal `json:"quantity"`
	StockBefore decimal.Decimal `json:"stock_before"`
	StockAfter  decimal.Decimal `json:"stock_after"`
	Reason      string          `json:"reason"`
	ReferenceID string          `json:"reference_id,omitempty"`
}

// PhysicalCountResponse resumen del inventario físico por producto.
type PhysicalCountResponse struct {
	Adjusted  []string          `json:"adjusted"`
	Unchanged []string          `json:"unchanged"`
	NotFound  []string          `json:"not_found"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// LowStockAlertDTO producto en o bajo su stock mínimo con la cantidad sugerida de reposición.
type LowStockAlertDTO struct {
	ProductID         string          `json:"product_id"`
	ProductName       string          `json:"product_name"`
	CurrentStock      decimal.Decimal `json:"current_stock"`
	MinStock          decimal.Decimal `json:"min_stock"`
	StockRatio        decimal.Decimal `json:"stock_ratio"`         // stock / mínimo (0 si mínimo es 0)
	SuggestedOrderQty decimal.Decimal `json:"suggested_order_qty"` // mínimo*1.5 - stock
	UnitsSold30Days   decimal.Decimal `json:"units_sold_30d"`
	Priority          int             `json:"priority"` // 1 = más urgente
}
