// Package memory implementa los repositorios sobre un estado en memoria.
// Sirve para desarrollo local (STORE_DRIVER=memory) y para los tests de casos de uso.
//
// Las transacciones se serializan con un mutex: Run clona el estado, ejecuta fn sobre la
// copia y solo la publica si fn no devuelve error, así un rollback no deja efectos parciales.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/POS-api/internal/application/inventory"
	"github.com/jhoicas/POS-api/internal/application/sales"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*Store)(nil)
	_ sales.SaleTxRunner = (*Store)(nil)
)

type state struct {
	products   map[string]entity.Product
	categories map[string]entity.Category
	clients    map[string]entity.Client
	users      map[string]entity.User
	movements  []entity.StockMovement
	sales      map[string]entity.Sale
}

func newState() *state {
	return &state{
		products:   map[string]entity.Product{},
		categories: map[string]entity.Category{},
		clients:    map[string]entity.Client{},
		users:      map[string]entity.User{},
		sales:      map[string]entity.Sale{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		c.products[k] = copyProduct(v)
	}
	for k, v := range s.categories {
		c.categories[k] = v
	}
	for k, v := range s.clients {
		c.clients[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	c.movements = append(make([]entity.StockMovement, 0, len(s.movements)), s.movements...)
	for k, v := range s.sales {
		c.sales[k] = copySale(v)
	}
	return c
}

// Store estado compartido. Los repos obtenidos con los constructores New*Repository operan en
// modo autocommit; los que reciben fn dentro de Run/RunSale operan sobre la copia de la tx.
type Store struct {
	mu  sync.Mutex
	cur *state
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{cur: newState()}
}

// binding decide sobre qué estado opera un repo: la copia de la tx o el estado vivo con lock.
type binding struct {
	store *Store
	tx    *state
}

func (b binding) do(fn func(*state) error) error {
	if b.tx != nil {
		return fn(b.tx)
	}
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	return fn(b.store.cur)
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.inTx(ctx, func(b binding) error {
		return fn(&MovementRepo{b: b}, &ProductRepo{b: b})
	})
}

// RunSale implementa sales.SaleTxRunner.
func (s *Store) RunSale(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	productRepo repository.ProductRepository,
	saleRepo repository.SaleRepository,
) error) error {
	return s.inTx(ctx, func(b binding) error {
		return fn(&MovementRepo{b: b}, &ProductRepo{b: b}, &SaleRepo{b: b})
	})
}

func (s *Store) inTx(ctx context.Context, fn func(binding) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := s.cur.clone()
	if err := fn(binding{store: s, tx: tx}); err != nil {
		return err
	}
	s.cur = tx
	return nil
}

func (s *Store) bind() binding { return binding{store: s} }
