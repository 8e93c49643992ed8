package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

// SaleRepo ventas en memoria.
type SaleRepo struct{ b binding }

func NewSaleRepository(s *Store) *SaleRepo { return &SaleRepo{b: s.bind()} }

func (r *SaleRepo) Create(_ context.Context, sale *entity.Sale) error {
	return r.b.do(func(st *state) error {
		if _, ok := st.sales[sale.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := st.users[sale.UserID]; !ok {
			return domain.ErrUserNotFound
		}
		for _, l := range sale.Lines {
			if _, ok := st.products[l.ProductID]; !ok {
				return domain.ErrProductNotFound
			}
		}
		st.sales[sale.ID] = copySale(*sale)
		return nil
	})
}

func (r *SaleRepo) GetByID(_ context.Context, id string) (*entity.Sale, error) {
	var out *entity.Sale
	err := r.b.do(func(st *state) error {
		if s, ok := st.sales[id]; ok {
			c := copySale(s)
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.GetByID(ctx, id)
}

func (r *SaleRepo) MarkVoided(_ context.Context, id string, at time.Time) error {
	return r.b.do(func(st *state) error {
		s, ok := st.sales[id]
		if !ok {
			return domain.ErrSaleNotFound
		}
		if s.Voided {
			return domain.ErrAlreadyVoided
		}
		s.Voided = true
		s.VoidedAt = &at
		st.sales[id] = s
		return nil
	})
}

func (r *SaleRepo) ListByDateRange(_ context.Context, start, end time.Time) ([]*entity.Sale, error) {
	return r.filter(func(_ *state, s entity.Sale) bool { return inRange(s.Date, start, end) })
}

func (r *SaleRepo) ListByUser(_ context.Context, userID string) ([]*entity.Sale, error) {
	return r.filter(func(_ *state, s entity.Sale) bool { return s.UserID == userID })
}

func (r *SaleRepo) ListByDate(_ context.Context, date time.Time) ([]*entity.Sale, error) {
	return r.filter(func(_ *state, s entity.Sale) bool { return dateKey(s.Date) == dateKey(date) })
}

func (r *SaleRepo) Search(_ context.Context, criteria string) ([]*entity.Sale, error) {
	needle := strings.ToLower(strings.TrimSpace(criteria))
	return r.filter(func(st *state, s entity.Sale) bool {
		if strings.HasPrefix(strings.ToLower(s.ID), needle) {
			return true
		}
		u, ok := st.users[s.UserID]
		return ok && containsFold(u.Name, needle)
	})
}

func (r *SaleRepo) SumTotal(_ context.Context, start, end time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	err := r.b.do(func(st *state) error {
		for _, s := range st.sales {
			if !s.Voided && inRange(s.Date, start, end) {
				total = total.Add(s.Total)
			}
		}
		return nil
	})
	return total, err
}

// filter devuelve copias ordenadas por momento de registro.
func (r *SaleRepo) filter(keep func(*state, entity.Sale) bool) ([]*entity.Sale, error) {
	var out []*entity.Sale
	err := r.b.do(func(st *state) error {
		for _, s := range st.sales {
			if keep(st, s) {
				c := copySale(s)
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}
