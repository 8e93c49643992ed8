package memory

import (
	"context"

	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*MovementRepo)(nil)

// MovementRepo log de movimientos en memoria (solo append).
type MovementRepo struct{ b binding }

func NewStockMovementRepository(s *Store) *MovementRepo { return &MovementRepo{b: s.bind()} }

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.b.do(func(st *state) error {
		st.movements = append(st.movements, *m)
		return nil
	})
}

// ListByProduct recorre el log al revés: el orden de inserción es el orden de aplicación.
func (r *MovementRepo) ListByProduct(_ context.Context, productID string) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	err := r.b.do(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			if st.movements[i].ProductID == productID {
				m := st.movements[i]
				out = append(out, &m)
			}
		}
		return nil
	})
	return out, err
}
