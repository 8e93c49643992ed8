package sales

import (
	"context"

	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// SaleTxRunner ejecuta fn en una transacción con los repos de inventario y ventas atados a ella.
type SaleTxRunner interface {
	RunSale(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error) error
}

// InventoryPort operaciones de stock que la venta ejecuta dentro de su propia transacción.
// Lo implementa inventory.InventoryUseCase.
type InventoryPort interface {
	ExitInTx(
		ctx context.Context,
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		productID string,
		qty decimal.Decimal,
		reason, referenceID string,
	) (*entity.StockMovement, error)
	EntryInTx(
		ctx context.Context,
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		productID string,
		qty decimal.Decimal,
		reason, referenceID string,
	) (*entity.StockMovement, error)
}

// ReportInvalidator descarta los reportes cacheados cuando cambian las ventas.
type ReportInvalidator interface {
	Invalidate(ctx context.Context) error
}
