package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
)

var (
	_ repository.CategoryRepository = (*CategoryRepo)(nil)
	_ repository.ClientRepository   = (*ClientRepo)(nil)
)

// CategoryRepo categorías en memoria.
type CategoryRepo struct{ b binding }

func NewCategoryRepository(s *Store) *CategoryRepo { return &CategoryRepo{b: s.bind()} }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.b.do(func(st *state) error {
		if _, ok := st.categories[c.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, other := range st.categories {
			if equalFoldTrim(other.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id string) (*entity.Category, error) {
	var out *entity.Category
	err := r.b.do(func(st *state) error {
		if c, ok := st.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	return r.b.do(func(st *state) error {
		cur, ok := st.categories[c.ID]
		if !ok {
			return domain.ErrCategoryNotFound
		}
		for id, other := range st.categories {
			if id != c.ID && equalFoldTrim(other.Name, c.Name) {
				return domain.ErrDuplicate
			}
		}
		next := *c
		next.CreatedAt = cur.CreatedAt
		st.categories[c.ID] = next
		return nil
	})
}

// Delete deja sin categoría a los productos que la tenían (ON DELETE SET NULL).
func (r *CategoryRepo) Delete(_ context.Context, id string) error {
	return r.b.do(func(st *state) error {
		if _, ok := st.categories[id]; !ok {
			return domain.ErrCategoryNotFound
		}
		delete(st.categories, id)
		for pid, p := range st.products {
			if p.CategoryID == id {
				p.CategoryID = ""
				st.products[pid] = p
			}
		}
		return nil
	})
}

func (r *CategoryRepo) List(_ context.Context) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.b.do(func(st *state) error {
		for _, c := range st.categories {
			c := c
			out = append(out, &c)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// ClientRepo clientes en memoria.
type ClientRepo struct{ b binding }

func NewClientRepository(s *Store) *ClientRepo { return &ClientRepo{b: s.bind()} }

func (r *ClientRepo) Create(_ context.Context, c *entity.Client) error {
	return r.b.do(func(st *state) error {
		if _, ok := st.clients[c.ID]; ok {
			return domain.ErrDuplicate
		}
		st.clients[c.ID] = *c
		return nil
	})
}

func (r *ClientRepo) GetByID(_ context.Context, id string) (*entity.Client, error) {
	var out *entity.Client
	err := r.b.do(func(st *state) error {
		if c, ok := st.clients[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *ClientRepo) Update(_ context.Context, c *entity.Client) error {
	return r.b.do(func(st *state) error {
		cur, ok := st.clients[c.ID]
		if !ok {
			return domain.ErrClientNotFound
		}
		next := *c
		next.CreatedAt = cur.CreatedAt
		st.clients[c.ID] = next
		return nil
	})
}

// Delete conserva las ventas del cliente; quedan sin cliente.
func (r *ClientRepo) Delete(_ context.Context, id string) error {
	return r.b.do(func(st *state) error {
		if _, ok := st.clients[id]; !ok {
			return domain.ErrClientNotFound
		}
		delete(st.clients, id)
		for sid, s := range st.sales {
			if s.ClientID == id {
				s.ClientID = ""
				st.sales[sid] = s
			}
		}
		return nil
	})
}

func (r *ClientRepo) List(ctx context.Context) ([]*entity.Client, error) {
	return r.filter(func(entity.Client) bool { return true })
}

func (r *ClientRepo) SearchByName(_ context.Context, name string) ([]*entity.Client, error) {
	return r.filter(func(c entity.Client) bool { return containsFold(c.Name, name) })
}

func (r *ClientRepo) filter(keep func(entity.Client) bool) ([]*entity.Client, error) {
	var out []*entity.Client
	err := r.b.do(func(st *state) error {
		for _, c := range st.clients {
			if keep(c) {
				c := c
				out = append(out, &c)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}
