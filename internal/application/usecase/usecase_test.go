package usecase_test

import (
	"context"
	"testing"

	"github.com/jhoicas/POS-api/internal/application/dto"
	"github.com/jhoicas/POS-api/internal/application/inventory"
	"github.com/jhoicas/POS-api/internal/application/usecase"
	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// =============================================================================
// Productos
// =============================================================================

// Caso 1: el stock inicial queda como movimiento ENTRY del libro.
func TestProductCreate_InitialStockIsEntry(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := usecase.NewProductUseCase(s, memory.NewProductRepository(s), memory.NewCategoryRepository(s))

	p, err := uc.Create(ctx, dto.CreateProductRequest{Name: " Arroz ", Price: d("12.5"), Stock: d("30"), MinStock: d("5")})
	require.NoError(t, err)
	assert.Equal(t, "Arroz", p.Name)
	assert.True(t, p.Stock.Equal(d("30")))
	assert.True(t, p.Active)
	assert.NotNil(t, p.Discounts)

	movs, err := memory.NewStockMovementRepository(s).ListByProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementEntry, movs[0].Kind)
	assert.Equal(t, inventory.ReasonInitialStock, movs[0].Reason)
	assert.True(t, movs[0].StockBefore.IsZero())
}

// Caso 2: categoría inexistente y descuentos fuera de rango se rechazan.
func TestProductCreate_Rejections(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	uc := usecase.NewProductUseCase(s, memory.NewProductRepository(s), memory.NewCategoryRepository(s))

	_, err := uc.Create(ctx, dto.CreateProductRequest{Name: "A", Price: d("1"), CategoryID: "nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "A", Price: d("1"), Discounts: []decimal.Decimal{d("150")}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "  ", Price: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProductUpdate_AvailabilityAndCategory(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	products := memory.NewProductRepository(s)
	uc := usecase.NewProductUseCase(s, products, memory.NewCategoryRepository(s))
	cats := usecase.NewCategoryUseCase(memory.NewCategoryRepository(s))

	cat, err := cats.Create(ctx, dto.CategoryRequest{Name: "Granos", Color: "#aa0000"})
	require.NoError(t, err)
	p, err := uc.Create(ctx, dto.CreateProductRequest{Name: "Arroz", Price: d("10"), Stock: d("3")})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, p.ID, dto.UpdateProductRequest{Price: ptr(d("11")), CategoryID: ptr(cat.ID)})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(d("11")))
	assert.True(t, updated.Stock.Equal(d("3")), "Update no toca el stock")

	inCat, err := uc.ListByCategory(ctx, cat.ID)
	require.NoError(t, err)
	require.Len(t, inCat, 1)

	av, err := uc.CheckAvailability(ctx, p.ID, d("3"))
	require.NoError(t, err)
	assert.True(t, av.Available)
	av, err = uc.CheckAvailability(ctx, p.ID, d("3.01"))
	require.NoError(t, err)
	assert.False(t, av.Available)

	_, err = uc.Update(ctx, p.ID, dto.UpdateProductRequest{Active: ptr(false)})
	require.NoError(t, err)
	av, err = uc.CheckAvailability(ctx, p.ID, d("1"))
	require.NoError(t, err)
	assert.False(t, av.Available, "un producto inactivo no está disponible")

	_, err = uc.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, cats.Delete(ctx, cat.ID))
	got, err := uc.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.CategoryID, "borrar la categoría deja al producto sin categoría")
}

// =============================================================================
// Clientes y categorías
// =============================================================================

func TestClientCRUD(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewClientUseCase(memory.NewClientRepository(memory.NewStore()))

	c, err := uc.Create(ctx, dto.ClientRequest{Name: "Abarrotes Juárez"})
	require.NoError(t, err)
	_, err = uc.Update(ctx, c.ID, dto.ClientRequest{Name: "Abarrotes Juárez SA"})
	require.NoError(t, err)

	found, err := uc.Search(ctx, "juárez")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Abarrotes Juárez SA", found[0].Name)

	require.NoError(t, uc.Delete(ctx, c.ID))
	_, err = uc.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, uc.Delete(ctx, c.ID), domain.ErrNotFound)
}

func TestCategoryDuplicateName(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewCategoryUseCase(memory.NewCategoryRepository(memory.NewStore()))

	_, err := uc.Create(ctx, dto.CategoryRequest{Name: "Bebidas"})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CategoryRequest{Name: "bebidas "})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

// =============================================================================
// Usuarios
// =============================================================================

func TestUserCreate_HashesAndRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewUserRepository(memory.NewStore())
	uc := usecase.NewUserUseCase(repo, zerolog.Nop())

	u, err := uc.Create(ctx, dto.CreateUserRequest{Username: "ana", Password: "clave-segura", Name: "Ana", Role: entity.RoleVendedor, Branch: "Norte"})
	require.NoError(t, err)
	assert.True(t, u.Active)

	stored, _ := repo.GetByID(ctx, u.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("clave-segura")))

	_, err = uc.Create(ctx, dto.CreateUserRequest{Username: "ANA", Password: "clave-segura", Role: entity.RoleAdmin})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	_, err = uc.Create(ctx, dto.CreateUserRequest{Username: "luis", Password: "clave-segura", Role: "cajero"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserDeactivateAndList(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewUserUseCase(memory.NewUserRepository(memory.NewStore()), zerolog.Nop())

	a, err := uc.Create(ctx, dto.CreateUserRequest{Username: "ana", Password: "clave-segura", Role: entity.RoleAdmin})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateUserRequest{Username: "beto", Password: "clave-segura", Role: entity.RoleVendedor})
	require.NoError(t, err)

	off, err := uc.Deactivate(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, off.Active)

	vendors, err := uc.List(ctx, entity.RoleVendedor)
	require.NoError(t, err)
	require.Len(t, vendors, 1)
	assert.Equal(t, "beto", vendors[0].Username)

	all, err := uc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = uc.Deactivate(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestEnsureAdmin_Idempotent(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewUserUseCase(memory.NewUserRepository(memory.NewStore()), zerolog.Nop())

	created, err := uc.EnsureAdmin(ctx, "admin", "clave-segura", "Administrador")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = uc.EnsureAdmin(ctx, "admin", "clave-segura", "Administrador")
	require.NoError(t, err)
	assert.False(t, created)
}
