//go:build integration

package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/POS-api/internal/application/dto"
	"github.com/jhoicas/POS-api/internal/application/inventory"
	"github.com/jhoicas/POS-api/internal/application/reports"
	"github.com/jhoicas/POS-api/internal/application/sales"
	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/infrastructure/postgres"
	"github.com/jhoicas/POS-api/pkg/config"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// startPostgres levanta un Postgres desechable, aplica las migraciones y devuelve el pool.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("pos"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: dsn, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool, zerolog.Nop()))
	// Segunda corrida: no debe reaplicar nada.
	require.NoError(t, postgres.Migrate(ctx, pool, zerolog.Nop()))
	return pool
}

type stack struct {
	pool     *pgxpool.Pool
	products *postgres.ProductRepo
	inv      *inventory.InventoryUseCase
	sales    *sales.SaleUseCase
	reports  *reports.ReportUseCase
}

func newStack(t *testing.T) stack {
	t.Helper()
	ctx := context.Background()
	pool := startPostgres(t)
	tx := postgres.NewTxRunner(pool)

	products := postgres.NewProductRepository(pool)
	users := postgres.NewUserRepository(pool)
	now := time.Now().UTC()
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "P1", Name: "Arroz", Price: d("10"), Stock: d("10"), Active: true, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "P2", Name: "Frijol", Price: d("20"), Stock: d("5"), MinStock: d("5"), Active: true, Discounts: []decimal.Decimal{d("10"), d("12.5")}, CreatedAt: now, UpdatedAt: now}))
	require.NoError(t, users.Create(ctx, &entity.User{ID: "u1", Username: "ana", PasswordHash: "x", Name: "Ana López", Role: entity.RoleVendedor, Active: true, Branch: "Centro", CreatedAt: now, UpdatedAt: now}))

	inv := inventory.NewInventoryUseCase(tx, products, postgres.NewStockMovementRepository(pool), zerolog.Nop())
	rep := reports.NewReportUseCase(postgres.NewReportRepository(pool), products, reports.NopCache{}, zerolog.Nop())
	sc := sales.NewSaleUseCase(tx, inv, postgres.NewSaleRepository(pool), users, postgres.NewClientRepository(pool), rep, zerolog.Nop())
	return stack{pool: pool, products: products, inv: inv, sales: sc, reports: rep}
}

func (s stack) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	st, err := s.inv.CurrentStock(context.Background(), id)
	require.NoError(t, err)
	return st
}

// =============================================================================
// Repositorios
// =============================================================================

func TestPostgres_ProductRoundTrip(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	p, err := s.products.GetByID(ctx, "P2")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.True(t, p.Stock.Equal(d("5")))
	require.Len(t, p.Discounts, 2)
	assert.True(t, p.Discounts[1].Equal(d("12.5")))

	missing, err := s.products.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing, "no encontrado es (nil, nil)")

	found, err := s.products.SearchByName(ctx, "FRI")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "P2", found[0].ID)

	atMin, err := s.products.ListAtOrBelowMinimum(ctx)
	require.NoError(t, err)
	require.Len(t, atMin, 1)
	assert.Equal(t, "P2", atMin[0].ID)
}

func TestPostgres_StockCheckConstraint(t *testing.T) {
	s := newStack(t)
	err := s.products.UpdateStock(context.Background(), "P1", d("-1"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
}

// =============================================================================
// Ventas
// =============================================================================

func TestPostgres_SaleRollbackWhenSecondLineLacksStock(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.sales.CreateSale(ctx, "u1", dto.CreateSaleRequest{Lines: []dto.SaleLineRequest{
		{ProductID: "P1", Quantity: d("2")},
		{ProductID: "P2", Quantity: d("6")},
	}})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, s.stock(t, "P1").Equal(d("10")), "la primera línea no debe quedar aplicada")
	hist, err := s.inv.MovementHistory(ctx, "P1")
	require.NoError(t, err)
	assert.Empty(t, hist)
}

func TestPostgres_CreateAndVoidSale(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	sale, err := s.sales.CreateSale(ctx, "u1", dto.CreateSaleRequest{
		TaxInclusive: true,
		Lines: []dto.SaleLineRequest{
			{ProductID: "P1", Quantity: d("2")},
			{ProductID: "P2", Quantity: d("1"), DiscountPercent: d("50")},
		},
	})
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(d("34.80")))
	assert.True(t, s.stock(t, "P1").Equal(d("8")))

	got, err := s.sales.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "P1", got.Lines[0].ProductID)

	voided, err := s.sales.VoidSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, voided.Voided)
	assert.True(t, s.stock(t, "P1").Equal(d("10")))
	assert.True(t, s.stock(t, "P2").Equal(d("5")))

	_, err = s.sales.VoidSale(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyVoided)

	from := time.Now().AddDate(0, 0, -2)
	to := time.Now().AddDate(0, 0, 2)
	rev, err := s.sales.TotalRevenueInRange(ctx, from, to)
	require.NoError(t, err)
	assert.True(t, rev.IsZero(), "las ventas anuladas no suman")

	top, err := s.reports.TopProducts(ctx, from, to, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

// Dos cajas venden el último stock a la vez: exactamente una gana.
func TestPostgres_ConcurrentSalesNeverOversell(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	const sellers = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok, fail int
	)
	for i := 0; i < sellers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.sales.CreateSale(ctx, "u1", dto.CreateSaleRequest{Lines: []dto.SaleLineRequest{
				{ProductID: "P2", Quantity: d("1")},
				{ProductID: "P1", Quantity: d("1")},
			}})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else {
				assert.ErrorIs(t, err, domain.ErrInsufficientStock)
				fail++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, sellers-5, fail)
	assert.True(t, s.stock(t, "P2").IsZero())
	assert.True(t, s.stock(t, "P1").Equal(d("5")))

	hist, err := s.inv.MovementHistory(ctx, "P2")
	require.NoError(t, err)
	require.Len(t, hist, 5)
	for _, m := range hist {
		assert.Equal(t, entity.MovementExit, m.Kind)
		assert.True(t, m.StockAfter.Sub(m.StockBefore).Equal(m.Quantity))
	}
}

func TestPostgres_PhysicalCount(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	res, err := s.inv.PerformPhysicalCount(ctx, map[string]decimal.Decimal{
		"P1":    d("7"),
		"P2":    d("5"),
		"ghost": d("1"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"P1"}, res.Adjusted)
	assert.Equal(t, []string{"P2"}, res.Unchanged)
	assert.Equal(t, []string{"ghost"}, res.NotFound)
	assert.True(t, s.stock(t, "P1").Equal(d("7")))

	hist, err := s.inv.MovementHistory(ctx, "P1")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, entity.MovementAdjustment, hist[0].Kind)
	assert.True(t, hist[0].Quantity.Equal(d("-3")))
}
