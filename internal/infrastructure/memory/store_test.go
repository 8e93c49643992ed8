package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
	"github.com/jhoicas/POS-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var zone = time.FixedZone("UTC-6", -6*60*60)

func day(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, zone) }

func seedProduct(t *testing.T, s *memory.Store, id, name, stock string) {
	t.Helper()
	err := memory.NewProductRepository(s).Create(context.Background(), &entity.Product{
		ID: id, Name: name, Price: decimal.NewFromInt(10), Stock: decimal.RequireFromString(stock), Active: true,
	})
	require.NoError(t, err)
}

// =============================================================================
// Transacciones
// =============================================================================

// Caso 1: si fn falla no queda ningún efecto parcial.
func TestStore_RunRollback(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, "p1", "Arroz", "10")

	boom := errors.New("boom")
	err := s.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		require.NoError(t, productRepo.UpdateStock(ctx, "p1", decimal.NewFromInt(3)))
		require.NoError(t, movRepo.Create(ctx, &entity.StockMovement{ID: "m1", ProductID: "p1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	p, err := memory.NewProductRepository(s).GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(10)))
	movs, err := memory.NewStockMovementRepository(s).ListByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, movs)
}

// Caso 2: commit publica los cambios.
func TestStore_RunCommit(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, "p1", "Arroz", "10")

	err := s.Run(ctx, func(movRepo repository.StockMovementRepository, productRepo repository.ProductRepository) error {
		return productRepo.UpdateStock(ctx, "p1", decimal.NewFromInt(4))
	})
	require.NoError(t, err)

	p, _ := memory.NewProductRepository(s).GetByID(ctx, "p1")
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(4)))
}

// Caso 3: los repos devuelven copias; mutar el resultado no toca el estado.
func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, "p1", "Arroz", "10")
	repo := memory.NewProductRepository(s)

	p, _ := repo.GetByID(ctx, "p1")
	p.Stock = decimal.Zero
	again, _ := repo.GetByID(ctx, "p1")
	assert.True(t, again.Stock.Equal(decimal.NewFromInt(10)))

	missing, err := repo.GetByID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

// =============================================================================
// Productos
// =============================================================================

func TestProductRepo_UpdateKeepsStock(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, "p1", "Arroz", "10")
	repo := memory.NewProductRepository(s)

	err := repo.Update(ctx, &entity.Product{ID: "p1", Name: "Arroz blanco", Price: decimal.NewFromInt(12), Stock: decimal.NewFromInt(999)})
	require.NoError(t, err)
	p, _ := repo.GetByID(ctx, "p1")
	assert.Equal(t, "Arroz blanco", p.Name)
	assert.True(t, p.Stock.Equal(decimal.NewFromInt(10)), "Update del catálogo no modifica el stock")

	assert.ErrorIs(t, repo.Update(ctx, &entity.Product{ID: "x"}), domain.ErrNotFound)
}

func TestProductRepo_QueriesAndDeleteConflict(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, "p1", "Arroz", "3")
	seedProduct(t, s, "p2", "Frijol", "50")
	repo := memory.NewProductRepository(s)

	below, err := repo.ListStockBelow(ctx, decimal.NewFromInt(5))
	require.NoError(t, err)
	require.Len(t, below, 1)
	assert.Equal(t, "p1", below[0].ID)

	found, err := repo.SearchByName(ctx, "FRI")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "p2", found[0].ID)

	paged, err := repo.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "Frijol", paged[0].Name)

	require.NoError(t, memory.NewUserRepository(s).Create(ctx, &entity.User{ID: "u1", Username: "ana", Name: "Ana", Active: true}))
	require.NoError(t, memory.NewSaleRepository(s).Create(ctx, &entity.Sale{
		ID: "s1", UserID: "u1", Date: day(2024, 5, 1),
		Lines: []entity.SaleLine{{ProductID: "p1", Quantity: decimal.NewFromInt(1)}},
	}))
	assert.ErrorIs(t, repo.Delete(ctx, "p1"), domain.ErrConflict)
	assert.NoError(t, repo.Delete(ctx, "p2"))
	assert.ErrorIs(t, repo.Delete(ctx, "p2"), domain.ErrNotFound)
}

// =============================================================================
// Movimientos, usuarios y ventas
// =============================================================================

func TestMovementRepo_MostRecentFirst(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	repo := memory.NewStockMovementRepository(s)
	for _, id := range []string{"m1", "m2", "m3"} {
		require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: id, ProductID: "p1"}))
	}
	require.NoError(t, repo.Create(ctx, &entity.StockMovement{ID: "other", ProductID: "p2"}))

	movs, err := repo.ListByProduct(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, movs, 3)
	assert.Equal(t, "m3", movs[0].ID)
	assert.Equal(t, "m1", movs[2].ID)
}

func TestUserRepo_UsernameUniqueIgnoringCase(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository(memory.NewStore())
	require.NoError(t, repo.Create(ctx, &entity.User{ID: "u1", Username: "Ana"}))
	assert.ErrorIs(t, repo.Create(ctx, &entity.User{ID: "u2", Username: "ana"}), domain.ErrDuplicate)

	u, err := repo.GetByUsername(ctx, "ANA")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "u1", u.ID)

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.TouchLastAccess(ctx, "u1", at))
	u, _ = repo.GetByID(ctx, "u1")
	require.NotNil(t, u.LastAccess)
	assert.True(t, u.LastAccess.Equal(at))
}

func TestSaleRepo_DateQueriesAndSearch(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, "p1", "Arroz", "10")
	require.NoError(t, memory.NewUserRepository(s).Create(ctx, &entity.User{ID: "u1", Username: "ana", Name: "Ana López"}))
	repo := memory.NewSaleRepository(s)

	mk := func(id string, date time.Time, total int64) {
		require.NoError(t, repo.Create(ctx, &entity.Sale{
			ID: id, UserID: "u1", Date: date, Total: decimal.NewFromInt(total), CreatedAt: date,
			Lines: []entity.SaleLine{{ProductID: "p1", Quantity: decimal.NewFromInt(1)}},
		}))
	}
	mk("abc-1", day(2024, 5, 1), 100)
	mk("abc-2", day(2024, 5, 2), 50)
	mk("xyz-3", day(2024, 5, 3), 25)
	require.NoError(t, repo.MarkVoided(ctx, "abc-2", time.Now()))
	assert.ErrorIs(t, repo.MarkVoided(ctx, "abc-2", time.Now()), domain.ErrAlreadyVoided)

	inRange, err := repo.ListByDateRange(ctx, day(2024, 5, 1), day(2024, 5, 2))
	require.NoError(t, err)
	assert.Len(t, inRange, 2, "el rango es inclusivo y lista también anuladas")

	total, err := repo.SumTotal(ctx, day(2024, 5, 1), day(2024, 5, 3))
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(125)), "las anuladas no suman: %s", total)

	byPrefix, _ := repo.Search(ctx, "ABC")
	assert.Len(t, byPrefix, 2)
	byName, _ := repo.Search(ctx, "lópez")
	assert.Len(t, byName, 3)

	onDay, _ := repo.ListByDate(ctx, day(2024, 5, 3))
	require.Len(t, onDay, 1)
	assert.Equal(t, "xyz-3", onDay[0].ID)
}

// =============================================================================
// Reportes
// =============================================================================

func TestReportRepo_ExcludesVoided(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	seedProduct(t, s, "p1", "Arroz", "10")
	seedProduct(t, s, "p2", "Frijol", "10")
	require.NoError(t, memory.NewCategoryRepository(s).Create(ctx, &entity.Category{ID: "c1", Name: "Granos"}))
	prod := memory.NewProductRepository(s)
	p1, _ := prod.GetByID(ctx, "p1")
	p1.CategoryID = "c1"
	require.NoError(t, prod.Update(ctx, p1))
	require.NoError(t, memory.NewUserRepository(s).Create(ctx, &entity.User{ID: "u1", Username: "ana", Name: "Ana"}))

	sales := memory.NewSaleRepository(s)
	line := func(pid string, qty, sub int64) entity.SaleLine {
		return entity.SaleLine{ProductID: pid, Quantity: decimal.NewFromInt(qty), Subtotal: decimal.NewFromInt(sub)}
	}
	require.NoError(t, sales.Create(ctx, &entity.Sale{ID: "s1", UserID: "u1", Date: day(2024, 5, 1), Total: decimal.NewFromInt(50),
		Lines: []entity.SaleLine{line("p1", 3, 30), line("p2", 2, 20)}}))
	require.NoError(t, sales.Create(ctx, &entity.Sale{ID: "s2", UserID: "u1", Date: day(2024, 6, 2), Total: decimal.NewFromInt(10),
		Lines: []entity.SaleLine{line("p2", 1, 10)}}))
	require.NoError(t, sales.Create(ctx, &entity.Sale{ID: "s3", UserID: "u1", Date: day(2024, 6, 2), Total: decimal.NewFromInt(900),
		Lines: []entity.SaleLine{line("p2", 90, 900)}}))
	require.NoError(t, sales.MarkVoided(ctx, "s3", time.Now()))

	rep := memory.NewReportRepository(s)
	start, end := day(2024, 1, 1), day(2024, 12, 31)

	top, err := rep.TopSellingProducts(ctx, start, end, 10)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "p1", top[0].ProductID)
	assert.True(t, top[1].Quantity.Equal(decimal.NewFromInt(3)))

	byUser, err := rep.SalesByUser(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	assert.Equal(t, 2, byUser[0].Sales)
	assert.True(t, byUser[0].Total.Equal(decimal.NewFromInt(60)))

	byCat, err := rep.SalesByCategory(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, byCat, 2)
	assert.Equal(t, "Granos", byCat[0].CategoryName)
	assert.Equal(t, repository.UncategorizedName, byCat[1].CategoryName)

	daily, err := rep.DailySales(ctx, start, end)
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.True(t, daily[1].Total.Equal(decimal.NewFromInt(10)))

	monthly, err := rep.MonthlySales(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, 5, monthly[0].Month)
	assert.Equal(t, 6, monthly[1].Month)
}
