package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

// StockMovementRepo log append-only de movimientos (usable con pool o tx).
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create agrega un movimiento. El tipo se persiste por nombre (ENTRY, EXIT, ADJUSTMENT).
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if !m.Kind.Valid() {
		return domain.ErrInvalidMovementKind
	}
	query := `
		INSERT INTO stock_movements (id, product_id, kind, quantity, stock_before, stock_after, reason, reference_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.ProductID, m.Kind.String(), m.Quantity, m.StockBefore, m.StockAfter,
		m.Reason, nullIfEmpty(m.ReferenceID), m.CreatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrProductNotFound
		}
		return fmt.Errorf("insert stock movement: %w", err)
	}
	return nil
}

// ListByProduct devuelve los movimientos del producto, el más reciente primero.
// seq desempata movimientos con el mismo created_at dentro de una transacción.
func (r *StockMovementRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.StockMovement, error) {
	query := `
		SELECT id, product_id, kind, quantity, stock_before, stock_after, reason, reference_id, created_at
		FROM stock_movements WHERE product_id = $1 ORDER BY seq DESC`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		var (
			m    entity.StockMovement
			kind string
			ref  *string
		)
		if err := rows.Scan(&m.ID, &m.ProductID, &kind, &m.Quantity, &m.StockBefore, &m.StockAfter,
			&m.Reason, &ref, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock movement: %w", err)
		}
		k, ok := entity.ParseMovementKind(kind)
		if !ok {
			return nil, fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrInvalidMovementKind)
		}
		m.Kind = k
		m.ReferenceID = deref(ref)
		list = append(list, &m)
	}
	return list, rows.Err()
}
