package inventory

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	domaininv "github.com/jhoicas/POS-api/internal/domain/inventory"
	"github.com/jhoicas/POS-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// InventoryUseCase traduce intenciones de negocio (entrada, salida, ajuste, inventario físico)
// en operaciones del libro de stock, cada una dentro de su propia transacción.
type InventoryUseCase struct {
	txRunner    TxRunner
	productRepo repository.ProductRepository
	movRepo     repository.StockMovementRepository
	log         zerolog.Logger
	now         func() time.Time
}

// NewInventoryUseCase construye el caso de uso. productRepo y movRepo son los repos del pool (lecturas).
func NewInventoryUseCase(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	movRepo repository.StockMovementRepository,
	log zerolog.Logger,
) *InventoryUseCase {
	return &InventoryUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		movRepo:     movRepo,
		log:         log.With().Str("component", "inventory").Logger(),
		now:         time.Now,
	}
}

// AdjustStock aplica una cantidad sin signo según el tipo:
//   - ENTRY suma |q|
//   - EXIT resta |q|; false sin cambios si el stock quedaría negativo
//   - ADJUSTMENT deja el stock en q (q negativo = false)
//
// Un tipo fuera del enum devuelve false. Un producto inexistente devuelve ErrProductNotFound.
func (uc *InventoryUseCase) AdjustStock(ctx context.Context, productID string, qty decimal.Decimal, kind entity.MovementKind) (bool, error) {
	if !kind.Valid() {
		return false, nil
	}
	applied := false
	err := uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		ledger := NewLedger(productRepo, movRepo, uc.now)
		var err error
		if kind == entity.MovementAdjustment {
			_, err = ledger.SetAbsolute(ctx, productID, qty, ReasonStockUpdate)
		} else {
			delta, _ := domaininv.DeltaFor(kind, qty, decimal.Zero)
			_, _, err = ledger.ApplyDelta(ctx, productID, delta, kind, ReasonStockUpdate, "")
		}
		if errors.Is(err, domain.ErrInsufficientStock) {
			return nil
		}
		if err != nil {
			return err
		}
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return applied, nil
}

// RegisterEntry suma |q| al stock. Un producto inexistente se ignora en silencio.
func (uc *InventoryUseCase) RegisterEntry(ctx context.Context, productID string, qty decimal.Decimal, reason string) error {
	err := uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		_, _, err := NewLedger(productRepo, movRepo, uc.now).
			ApplyDelta(ctx, productID, qty.Abs(), entity.MovementEntry, reasonOr(reason, ReasonStockUpdate), "")
		return err
	})
	if errors.Is(err, domain.ErrNotFound) {
		uc.log.Debug().Str("product_id", productID).Msg("entrada ignorada: producto inexistente")
		return nil
	}
	return err
}

// RegisterExit resta |q| solo si el stock resultante es >= 0. Devuelve false si no se aplicó
// (stock insuficiente o producto inexistente); nunca es un error de negocio.
func (uc *InventoryUseCase) RegisterExit(ctx context.Context, productID string, qty decimal.Decimal, reason string) (bool, error) {
	err := uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		_, _, err := NewLedger(productRepo, movRepo, uc.now).
			ApplyDelta(ctx, productID, qty.Abs().Neg(), entity.MovementExit, reasonOr(reason, ReasonStockUpdate), "")
		return err
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrInsufficientStock), errors.Is(err, domain.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// CurrentStock devuelve la existencia actual del producto.
func (uc *InventoryUseCase) CurrentStock(ctx context.Context, productID string) (decimal.Decimal, error) {
	return NewLedger(uc.productRepo, uc.movRepo, uc.now).CurrentStock(ctx, productID)
}

// LowStock lista los productos con stock estrictamente menor al umbral.
func (uc *InventoryUseCase) LowStock(ctx context.Context, threshold decimal.Decimal) ([]*entity.Product, error) {
	return uc.productRepo.ListStockBelow(ctx, threshold)
}

// MovementHistory devuelve el historial del producto, el más reciente primero.
func (uc *InventoryUseCase) MovementHistory(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	return NewLedger(uc.productRepo, uc.movRepo, uc.now).History(ctx, productID)
}

// PhysicalCountResult resumen de un inventario físico.
type PhysicalCountResult struct {
	Adjusted  []string
	Unchanged []string
	NotFound  []string
	Failed    map[string]error
}

// PerformPhysicalCount concilia cada producto contado con su stock. Cada producto va en su
// propia transacción: un fallo (o un id inexistente) no bloquea a los demás.
func (uc *InventoryUseCase) PerformPhysicalCount(ctx context.Context, counts map[string]decimal.Decimal) (*PhysicalCountResult, error) {
	ids := make([]string, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	res := &PhysicalCountResult{Failed: map[string]error{}}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		var mov *entity.StockMovement
		err := uc.txRunner.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
			var err error
			mov, err = NewLedger(productRepo, movRepo, uc.now).ReconcileCount(ctx, id, counts[id], ReasonPhysicalCount)
			return err
		})
		switch {
		case errors.Is(err, domain.ErrNotFound):
			res.NotFound = append(res.NotFound, id)
		case errors.Is(err, domain.ErrInsufficientStock):
			res.Failed[id] = domain.ErrInvalidInput
		case err != nil:
			uc.log.Error().Err(err).Str("product_id", id).Msg("inventario físico: fallo al conciliar")
			res.Failed[id] = err
		case mov == nil:
			res.Unchanged = append(res.Unchanged, id)
		default:
			res.Adjusted = append(res.Adjusted, id)
		}
	}
	uc.log.Info().
		Int("adjusted", len(res.Adjusted)).
		Int("unchanged", len(res.Unchanged)).
		Int("not_found", len(res.NotFound)).
		Int("failed", len(res.Failed)).
		Msg("inventario físico aplicado")
	return res, nil
}

// ExitInTx descuenta stock usando los repositorios de la transacción del caller (venta).
// A diferencia de RegisterExit, el stock insuficiente es un error duro: la venta debe abortar.
func (uc *InventoryUseCase) ExitInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	productID string,
	qty decimal.Decimal,
	reason, referenceID string,
) (*entity.StockMovement, error) {
	_, mov, err := NewLedger(productRepo, movRepo, uc.now).
		ApplyDelta(ctx, productID, qty.Abs().Neg(), entity.MovementExit, reason, referenceID)
	return mov, err
}

// EntryInTx repone stock dentro de la transacción del caller (anulación de venta).
func (uc *InventoryUseCase) EntryInTx(
	ctx context.Context,
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	productID string,
	qty decimal.Decimal,
	reason, referenceID string,
) (*entity.StockMovement, error) {
	_, mov, err := NewLedger(productRepo, movRepo, uc.now).
		ApplyDelta(ctx, productID, qty.Abs(), entity.MovementEntry, reason, referenceID)
	return mov, err
}

func reasonOr(reason, def string) string {
	if reason == "" {
		return def
	}
	return reason
}
