package sales_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/POS-api/internal/application/dto"
	"github.com/jhoicas/POS-api/internal/application/inventory"
	"github.com/jhoicas/POS-api/internal/application/sales"
	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.calls++
	return nil
}

type fixture struct {
	store *memory.Store
	inv   *inventory.InventoryUseCase
	uc    *sales.SaleUseCase
	cache *countingInvalidator
}

// 2024-03-01 02:30 UTC es 2024-02-29 20:30 en la zona de la caja.
var clock = time.Date(2024, 3, 1, 2, 30, 0, 0, time.UTC)

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	s := memory.NewStore()

	products := memory.NewProductRepository(s)
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "P1", Name: "Arroz", Price: d("10"), Stock: d("10"), Active: true}))
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "P2", Name: "Frijol", Price: d("20"), Stock: d("5"), Active: true}))
	require.NoError(t, products.Create(ctx, &entity.Product{ID: "P3", Name: "Descontinuado", Price: d("1"), Stock: d("5")}))

	users := memory.NewUserRepository(s)
	require.NoError(t, users.Create(ctx, &entity.User{ID: "u1", Username: "ana", Name: "Ana López", Role: entity.RoleVendedor, Active: true, Branch: "Centro"}))
	require.NoError(t, users.Create(ctx, &entity.User{ID: "u2", Username: "beto", Name: "Beto", Role: entity.RoleVendedor}))

	clients := memory.NewClientRepository(s)
	require.NoError(t, clients.Create(ctx, &entity.Client{ID: "c1", Name: "Mostrador"}))

	inv := inventory.NewInventoryUseCase(s, products, memory.NewStockMovementRepository(s), zerolog.Nop())
	cache := &countingInvalidator{}
	uc := sales.NewSaleUseCase(s, inv, memory.NewSaleRepository(s), users, clients, cache, zerolog.Nop()).
		WithClock(func() time.Time { return clock })
	return fixture{store: s, inv: inv, uc: uc, cache: cache}
}

func (f fixture) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	st, err := f.inv.CurrentStock(context.Background(), id)
	require.NoError(t, err)
	return st
}

func scenarioC() dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		TaxInclusive: true,
		Lines: []dto.SaleLineRequest{
			{ProductID: "P1", Quantity: d("2")},
			{ProductID: "P2", Quantity: d("1"), DiscountPercent: d("50")},
		},
	}
}

// =============================================================================
// CreateSale
// =============================================================================

// Caso C: subtotales 20 y 10, IVA 16% sobre 30 = 34.80; stock descontado.
func TestCreateSale_TaxInclusive(t *testing.T) {
	f := newFixture(t)

	sale, err := f.uc.CreateSale(context.Background(), "u1", scenarioC())
	require.NoError(t, err)

	assert.True(t, sale.Total.Equal(d("34.80")), "total=%s", sale.Total)
	require.Len(t, sale.Lines, 2)
	assert.True(t, sale.Lines[0].Subtotal.Equal(d("20")))
	assert.True(t, sale.Lines[1].Subtotal.Equal(d("10")))
	assert.True(t, sale.Lines[1].UnitPrice.Equal(d("20")), "el precio sale del producto")
	assert.Equal(t, "2024-02-29", sale.Date)
	assert.Equal(t, "08:30 PM", sale.Time)
	assert.Equal(t, "Centro", sale.Branch, "sucursal por defecto del operador")
	assert.False(t, sale.Voided)

	assert.True(t, f.stock(t, "P1").Equal(d("8")))
	assert.True(t, f.stock(t, "P2").Equal(d("4")))
	assert.Equal(t, 1, f.cache.calls)

	movs, err := f.inv.MovementHistory(context.Background(), "P1")
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementExit, movs[0].Kind)
	assert.Equal(t, sale.ID, movs[0].ReferenceID)
	assert.Equal(t, inventory.ReasonSale, movs[0].Reason)
}

func TestCreateSale_WithoutTax(t *testing.T) {
	f := newFixture(t)
	req := scenarioC()
	req.TaxInclusive = false
	req.Branch = "Norte"
	req.ClientID = "c1"

	sale, err := f.uc.CreateSale(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.True(t, sale.Total.Equal(d("30")))
	assert.Equal(t, "Norte", sale.Branch)
	assert.Equal(t, "c1", sale.ClientID)
}

// La segunda línea sin stock revierte la venta completa, incluida la salida de la primera.
func TestCreateSale_InsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)
	req := dto.CreateSaleRequest{Lines: []dto.SaleLineRequest{
		{ProductID: "P1", Quantity: d("2")},
		{ProductID: "P2", Quantity: d("6")},
	}}

	_, err := f.uc.CreateSale(context.Background(), "u1", req)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Contains(t, err.Error(), "Frijol")

	assert.True(t, f.stock(t, "P1").Equal(d("10")))
	assert.True(t, f.stock(t, "P2").Equal(d("5")))
	movs, _ := f.inv.MovementHistory(context.Background(), "P1")
	assert.Empty(t, movs)
	list, err := f.uc.SalesByUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Zero(t, f.cache.calls)
}

// Dos líneas del mismo producto se validan contra el stock acumulado.
func TestCreateSale_RepeatedProduct(t *testing.T) {
	f := newFixture(t)
	req := dto.CreateSaleRequest{Lines: []dto.SaleLineRequest{
		{ProductID: "P2", Quantity: d("3")},
		{ProductID: "P2", Quantity: d("3")},
	}}

	_, err := f.uc.CreateSale(context.Background(), "u1", req)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.stock(t, "P2").Equal(d("5")))
}

func TestCreateSale_Rejections(t *testing.T) {
	cases := []struct {
		name   string
		user   string
		req    dto.CreateSaleRequest
		target error
	}{
		{"sin líneas", "u1", dto.CreateSaleRequest{}, domain.ErrInvalidInput},
		{"cantidad cero", "u1", dto.CreateSaleRequest{Lines: []dto.SaleLineRequest{{ProductID: "P1", Quantity: d("0")}}}, domain.ErrInvalidInput},
		{"descuento mayor a 100", "u1", dto.CreateSaleRequest{Lines: []dto.SaleLineRequest{{ProductID: "P1", Quantity: d("1"), DiscountPercent: d("101")}}}, domain.ErrInvalidInput},
		{"operador inexistente", "ghost", scenarioC(), domain.ErrUserNotFound},
		{"operador inactivo", "u2", scenarioC(), domain.ErrInactiveUser},
		{"producto inexistente", "u1", dto.CreateSaleRequest{Lines: []dto.SaleLineRequest{{ProductID: "PX", Quantity: d("1")}}}, domain.ErrNotFound},
		{"producto inactivo", "u1", dto.CreateSaleRequest{Lines: []dto.SaleLineRequest{{ProductID: "P3", Quantity: d("1")}}}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.uc.CreateSale(context.Background(), tc.user, tc.req)
			assert.ErrorIs(t, err, tc.target)
		})
	}
}

// Un cliente inexistente no bloquea la venta: se registra sin cliente.
func TestCreateSale_UnknownClient(t *testing.T) {
	f := newFixture(t)
	req := scenarioC()
	req.ClientID = "nadie"

	sale, err := f.uc.CreateSale(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Empty(t, sale.ClientID)
}

// =============================================================================
// VoidSale
// =============================================================================

// Caso E: anular repone el stock previo y marca la venta.
func TestVoidSale_RestoresStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.uc.CreateSale(ctx, "u1", scenarioC())
	require.NoError(t, err)

	voided, err := f.uc.VoidSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, voided.Voided)
	require.NotNil(t, voided.VoidedAt)

	assert.True(t, f.stock(t, "P1").Equal(d("10")))
	assert.True(t, f.stock(t, "P2").Equal(d("5")))
	assert.Equal(t, 2, f.cache.calls)

	got, err := f.uc.GetSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.True(t, got.Voided, "la venta se conserva marcada como anulada")

	movs, _ := f.inv.MovementHistory(ctx, "P2")
	require.Len(t, movs, 2)
	assert.Equal(t, entity.MovementEntry, movs[0].Kind)
	assert.Equal(t, inventory.ReasonSaleVoid, movs[0].Reason)
}

func TestVoidSale_Twice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sale, err := f.uc.CreateSale(ctx, "u1", scenarioC())
	require.NoError(t, err)
	_, err = f.uc.VoidSale(ctx, sale.ID)
	require.NoError(t, err)

	_, err = f.uc.VoidSale(ctx, sale.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyVoided)
	assert.True(t, f.stock(t, "P1").Equal(d("10")), "la segunda anulación no repone de nuevo")
}

func TestVoidSale_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.uc.VoidSale(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// =============================================================================
// Consultas
// =============================================================================

func TestQueries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	s1, err := f.uc.CreateSale(ctx, "u1", scenarioC())
	require.NoError(t, err)
	s2, err := f.uc.CreateSale(ctx, "u1", dto.CreateSaleRequest{Lines: []dto.SaleLineRequest{{ProductID: "P1", Quantity: d("1")}}})
	require.NoError(t, err)
	_, err = f.uc.VoidSale(ctx, s2.ID)
	require.NoError(t, err)

	zone := time.FixedZone("UTC-6", -6*60*60)
	feb29 := time.Date(2024, 2, 29, 0, 0, 0, 0, zone)

	revenue, err := f.uc.TotalRevenueInRange(ctx, feb29, feb29)
	require.NoError(t, err)
	assert.True(t, revenue.Equal(d("34.80")), "las anuladas no suman: %s", revenue)

	inRange, err := f.uc.SalesInRange(ctx, feb29, feb29)
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	_, err = f.uc.SalesInRange(ctx, feb29, feb29.AddDate(0, 0, -1))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	byDate, err := f.uc.SalesByDate(ctx, feb29)
	require.NoError(t, err)
	assert.Len(t, byDate, 2)

	found, err := f.uc.SearchSales(ctx, "ana")
	require.NoError(t, err)
	assert.Len(t, found, 2)
	found, err = f.uc.SearchSales(ctx, s1.ID[:8])
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, s1.ID, found[0].ID)

	_, err = f.uc.SearchSales(ctx, "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.uc.SalesByUser(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
