package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	domaininv "github.com/jhoicas/POS-api/internal/domain/inventory"
	"github.com/jhoicas/POS-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// Motivos registrados en los movimientos generados por el sistema.
const (
	ReasonStockUpdate   = "stock update"
	ReasonPhysicalCount = "physical-count adjustment"
	ReasonSale          = "sale"
	ReasonSaleVoid      = "sale void"
	ReasonInitialStock  = "initial stock"
)

// Ledger es el libro de stock: dueño de la existencia de cada producto y del log de movimientos.
// Para mutar, construirlo con repositorios atados a una transacción (TxRunner); así el
// UPDATE del stock y el INSERT del movimiento se confirman juntos.
type Ledger struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	now       func() time.Time
}

// NewLedger construye el libro sobre los repositorios dados. now nil = time.Now.
func NewLedger(products repository.ProductRepository, movements repository.StockMovementRepository, now func() time.Time) *Ledger {
	if now == nil {
		now = time.Now
	}
	return &Ledger{products: products, movements: movements, now: now}
}

// CurrentStock devuelve la existencia actual o ErrProductNotFound.
func (l *Ledger) CurrentStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return decimal.Zero, err
	}
	if p == nil {
		return decimal.Zero, domain.ErrProductNotFound
	}
	return p.Stock, nil
}

// ApplyDelta bloquea el producto, suma delta y registra el movimiento.
// Devuelve ErrInsufficientStock (sin escribir nada) si el stock quedaría negativo.
func (l *Ledger) ApplyDelta(
	ctx context.Context,
	productID string,
	delta decimal.Decimal,
	kind entity.MovementKind,
	reason, referenceID string,
) (decimal.Decimal, *entity.StockMovement, error) {
	p, err := l.lock(ctx, productID)
	if err != nil {
		return decimal.Zero, nil, err
	}
	mov, err := l.apply(ctx, p, delta, kind, reason, referenceID)
	if err != nil {
		return p.Stock, nil, err
	}
	return mov.StockAfter, mov, nil
}

// SetAbsolute lleva el stock a newStock. El tipo es ENTRY si el delta es positivo, si no EXIT.
// Delta cero no registra movimiento y devuelve (nil, nil).
func (l *Ledger) SetAbsolute(ctx context.Context, productID string, newStock decimal.Decimal, reason string) (*entity.StockMovement, error) {
	return l.setTo(ctx, productID, newStock, reason, domaininv.KindForDelta)
}

// ReconcileCount lleva el stock a la cantidad contada registrando un movimiento ADJUSTMENT.
// Igual que SetAbsolute, un conteo igual al stock no registra nada.
func (l *Ledger) ReconcileCount(ctx context.Context, productID string, counted decimal.Decimal, reason string) (*entity.StockMovement, error) {
	return l.setTo(ctx, productID, counted, reason, func(decimal.Decimal) entity.MovementKind {
		return entity.MovementAdjustment
	})
}

// History devuelve los movimientos del producto, el más reciente primero.
func (l *Ledger) History(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	p, err := l.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return l.movements.ListByProduct(ctx, productID)
}

func (l *Ledger) setTo(
	ctx context.Context,
	productID string,
	target decimal.Decimal,
	reason string,
	kindFor func(decimal.Decimal) entity.MovementKind,
) (*entity.StockMovement, error) {
	if target.IsNegative() {
		return nil, domain.ErrInsufficientStock
	}
	p, err := l.lock(ctx, productID)
	if err != nil {
		return nil, err
	}
	delta := target.Sub(p.Stock)
	if delta.IsZero() {
		return nil, nil
	}
	return l.apply(ctx, p, delta, kindFor(delta), reason, "")
}

// lock obtiene el producto con SELECT ... FOR UPDATE.
func (l *Ledger) lock(ctx context.Context, productID string) (*entity.Product, error) {
	p, err := l.products.GetForUpdate(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("bloquear producto: %w", err)
	}
	if p == nil {
		return nil, domain.ErrProductNotFound
	}
	return p, nil
}

func (l *Ledger) apply(
	ctx context.Context,
	p *entity.Product,
	delta decimal.Decimal,
	kind entity.MovementKind,
	reason, referenceID string,
) (*entity.StockMovement, error) {
	next, err := domaininv.NextStock(p.Stock, delta)
	if err != nil {
		return nil, err
	}
	if err := l.products.UpdateStock(ctx, p.ID, next); err != nil {
		return nil, err
	}
	mov := &entity.StockMovement{
		ID:          uuid.New().String(),
		ProductID:   p.ID,
		Kind:        kind,
		Quantity:    delta,
		StockBefore: p.Stock,
		StockAfter:  next,
		Reason:      reason,
		ReferenceID: referenceID,
		CreatedAt:   l.now(),
	}
	if err := l.movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	p.Stock = next
	return mov, nil
}
