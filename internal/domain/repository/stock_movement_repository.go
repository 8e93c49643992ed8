package repository

import (
	"context"

	"github.com/jhoicas/POS-api/internal/domain/entity"
)

// StockMovementRepository es el log append-only de movimientos de stock.
// No expone Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// ListByProduct devuelve los movimientos del producto, el más reciente primero.
	ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error)
}
