package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo repositorio de productos en memoria.
type ProductRepo struct{ b binding }

// NewProductRepository repo en modo autocommit sobre el store.
func NewProductRepository(s *Store) *ProductRepo { return &ProductRepo{b: s.bind()} }

func (r *ProductRepo) Create(_ context.Context, product *entity.Product) error {
	return r.b.do(func(st *state) error {
		if _, ok := st.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		st.products[product.ID] = copyProduct(*product)
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	var out *entity.Product
	err := r.b.do(func(st *state) error {
		if p, ok := st.products[id]; ok {
			c := copyProduct(p)
			out = &c
		}
		return nil
	})
	return out, err
}

// GetForUpdate en memoria equivale a GetByID: las transacciones ya están serializadas.
func (r *ProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.Product, error) {
	return r.GetByID(ctx, id)
}

func (r *ProductRepo) Update(_ context.Context, product *entity.Product) error {
	return r.b.do(func(st *state) error {
		cur, ok := st.products[product.ID]
		if !ok {
			return domain.ErrProductNotFound
		}
		next := copyProduct(*product)
		next.Stock = cur.Stock
		next.CreatedAt = cur.CreatedAt
		st.products[product.ID] = next
		return nil
	})
}

func (r *ProductRepo) UpdateStock(_ context.Context, id string, stock decimal.Decimal) error {
	return r.b.do(func(st *state) error {
		p, ok := st.products[id]
		if !ok {
			return domain.ErrProductNotFound
		}
		p.Stock = stock
		st.products[id] = p
		return nil
	})
}

// Delete falla con ErrConflict si el producto figura en alguna venta.
func (r *ProductRepo) Delete(_ context.Context, id string) error {
	return r.b.do(func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return domain.ErrProductNotFound
		}
		for _, s := range st.sales {
			for _, l := range s.Lines {
				if l.ProductID == id {
					return domain.ErrConflict
				}
			}
		}
		delete(st.products, id)
		return nil
	})
}

func (r *ProductRepo) List(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	list, err := r.filter(func(entity.Product) bool { return true })
	if err != nil {
		return nil, err
	}
	return page(list, limit, offset), nil
}

func (r *ProductRepo) ListByCategory(_ context.Context, categoryID string) ([]*entity.Product, error) {
	return r.filter(func(p entity.Product) bool { return p.CategoryID == categoryID })
}

func (r *ProductRepo) SearchByName(_ context.Context, criteria string) ([]*entity.Product, error) {
	return r.filter(func(p entity.Product) bool { return containsFold(p.Name, criteria) })
}

func (r *ProductRepo) ListStockBelow(_ context.Context, threshold decimal.Decimal) ([]*entity.Product, error) {
	return r.filter(func(p entity.Product) bool { return p.Stock.LessThan(threshold) })
}

func (r *ProductRepo) ListAtOrBelowMinimum(_ context.Context) ([]*entity.Product, error) {
	return r.filter(func(p entity.Product) bool { return p.Active && p.IsBelowMinimum() })
}

// filter devuelve copias ordenadas por nombre.
func (r *ProductRepo) filter(keep func(entity.Product) bool) ([]*entity.Product, error) {
	var out []*entity.Product
	err := r.b.do(func(st *state) error {
		for _, p := range st.products {
			if keep(p) {
				c := copyProduct(p)
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out, err
}
