package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Stock es la existencia inicial.
type CreateProductRequest struct {
	Name       string            `json:"name" validate:"required,min=1,max=200"`
	Price      decimal.Decimal   `json:"price" validate:"gte=0"`
	Stock      decimal.Decimal   `json:"stock" validate:"gte=0"`
	MinStock   decimal.Decimal   `json:"min_stock" validate:"gte=0"`
	CategoryID string            `json:"category_id"`
	Discounts  []decimal.Decimal `json:"discounts" validate:"dive,gte=0,lte=100"`
}

// UpdateProductRequest entrada para actualizar un producto (sin Stock: se maneja vía movimientos).
type UpdateProductRequest struct {
	Name       *string           `json:"name" validate:"omitempty,min=1,max=200"`
	Price      *decimal.Decimal  `json:"price" validate:"omitempty,gte=0"`
	MinStock   *decimal.Decimal  `json:"min_stock" validate:"omitempty,gte=0"`
	Active     *bool             `json:"active"`
	CategoryID *string           `json:"category_id"`
	Discounts  []decimal.Decimal `json:"discounts" validate:"omitempty,dive,gte=0,lte=100"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Price      decimal.Decimal   `json:"price"`
	Stock      decimal.Decimal   `json:"stock"`
	MinStock   decimal.Decimal   `json:"min_stock"`
	Active     bool              `json:"active"`
	CategoryID string            `json:"category_id,omitempty"`
	Discounts  []decimal.Decimal `json:"discounts"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

// AvailabilityResponse respuesta de verificación de disponibilidad.
type AvailabilityResponse struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Available bool            `json:"available"`
}
