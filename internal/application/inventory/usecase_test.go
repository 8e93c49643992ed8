package inventory_test

import (
	"context"
	"testing"

	"github.com/jhoicas/POS-api/internal/application/inventory"
	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/infrastructure/memory"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type fixture struct {
	store *memory.Store
	uc    *inventory.InventoryUseCase
}

func newFixture(t *testing.T, stocks map[string]string) fixture {
	t.Helper()
	s := memory.NewStore()
	products := memory.NewProductRepository(s)
	for id, stock := range stocks {
		require.NoError(t, products.Create(context.Background(), &entity.Product{
			ID: id, Name: "Producto " + id, Price: d("10"), Stock: d(stock), Active: true,
		}))
	}
	uc := inventory.NewInventoryUseCase(s, products, memory.NewStockMovementRepository(s), zerolog.Nop())
	return fixture{store: s, uc: uc}
}

func (f fixture) stock(t *testing.T, id string) decimal.Decimal {
	t.Helper()
	st, err := f.uc.CurrentStock(context.Background(), id)
	require.NoError(t, err)
	return st
}

func (f fixture) history(t *testing.T, id string) []*entity.StockMovement {
	t.Helper()
	movs, err := f.uc.MovementHistory(context.Background(), id)
	require.NoError(t, err)
	return movs
}

// =============================================================================
// Entradas y salidas
// =============================================================================

// Caso 1: entrada de 20 sobre 100 deja 120 con un movimiento ENTRY 100 -> 120.
func TestRegisterEntry(t *testing.T) {
	f := newFixture(t, map[string]string{"P": "100"})

	require.NoError(t, f.uc.RegisterEntry(context.Background(), "P", d("20"), "restock"))

	assert.True(t, f.stock(t, "P").Equal(d("120")))
	movs := f.history(t, "P")
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementEntry, movs[0].Kind)
	assert.True(t, movs[0].StockBefore.Equal(d("100")))
	assert.True(t, movs[0].StockAfter.Equal(d("120")))
	assert.Equal(t, "restock", movs[0].Reason)
}

// Caso 2: salida mayor al stock no se aplica y no registra movimiento.
func TestRegisterExit_Insufficient(t *testing.T) {
	f := newFixture(t, map[string]string{"P": "100"})

	ok, err := f.uc.RegisterExit(context.Background(), "P", d("200"), "sale")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, f.stock(t, "P").Equal(d("100")))
	assert.Empty(t, f.history(t, "P"))
}

// Caso 3: salida exacta deja el stock en cero.
func TestRegisterExit_ToZero(t *testing.T) {
	f := newFixture(t, map[string]string{"P": "2.5"})

	ok, err := f.uc.RegisterExit(context.Background(), "P", d("2.5"), "")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, f.stock(t, "P").IsZero())
	movs := f.history(t, "P")
	require.Len(t, movs, 1)
	assert.Equal(t, inventory.ReasonStockUpdate, movs[0].Reason)
	assert.True(t, movs[0].Quantity.Equal(d("-2.5")))
}

// Caso 4: producto inexistente es silencioso en entradas y salidas.
func TestRegister_UnknownProduct(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	assert.NoError(t, f.uc.RegisterEntry(ctx, "ghost", d("5"), ""))
	ok, err := f.uc.RegisterExit(ctx, "ghost", d("5"), "")
	assert.NoError(t, err)
	assert.False(t, ok)

	_, err = f.uc.CurrentStock(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// =============================================================================
// AdjustStock
// =============================================================================

func TestAdjustStock(t *testing.T) {
	cases := []struct {
		name    string
		kind    entity.MovementKind
		qty     string
		applied bool
		want    string
		movKind entity.MovementKind
	}{
		{"entrada con cantidad negativa suma el absoluto", entity.MovementEntry, "-5", true, "15", entity.MovementEntry},
		{"salida válida", entity.MovementExit, "4", true, "6", entity.MovementExit},
		{"salida que dejaría negativo", entity.MovementExit, "11", false, "10", 0},
		{"ajuste hacia abajo registra EXIT", entity.MovementAdjustment, "7", true, "7", entity.MovementExit},
		{"ajuste hacia arriba registra ENTRY", entity.MovementAdjustment, "12", true, "12", entity.MovementEntry},
		{"ajuste negativo se rechaza", entity.MovementAdjustment, "-1", false, "10", 0},
		{"tipo fuera del enum", entity.MovementKind(9), "3", false, "10", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, map[string]string{"P": "10"})

			applied, err := f.uc.AdjustStock(context.Background(), "P", d(tc.qty), tc.kind)
			require.NoError(t, err)
			assert.Equal(t, tc.applied, applied)
			assert.True(t, f.stock(t, "P").Equal(d(tc.want)), "stock=%s", f.stock(t, "P"))

			movs := f.history(t, "P")
			if !tc.applied {
				assert.Empty(t, movs)
				return
			}
			require.Len(t, movs, 1)
			assert.Equal(t, tc.movKind, movs[0].Kind)
		})
	}
}

// Caso: ajustar al mismo valor es un éxito sin movimiento.
func TestAdjustStock_SameValue(t *testing.T) {
	f := newFixture(t, map[string]string{"P": "10"})

	applied, err := f.uc.AdjustStock(context.Background(), "P", d("10"), entity.MovementAdjustment)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Empty(t, f.history(t, "P"))
}

func TestAdjustStock_UnknownProduct(t *testing.T) {
	f := newFixture(t, nil)

	applied, err := f.uc.AdjustStock(context.Background(), "ghost", d("1"), entity.MovementEntry)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, applied)
}

// =============================================================================
// Invariantes del libro
// =============================================================================

// Cada movimiento cumple after - before == quantity, y el historial encadena los saldos.
func TestMovementChain(t *testing.T) {
	f := newFixture(t, map[string]string{"P": "10"})
	ctx := context.Background()

	require.NoError(t, f.uc.RegisterEntry(ctx, "P", d("5"), ""))
	_, err := f.uc.RegisterExit(ctx, "P", d("3.25"), "")
	require.NoError(t, err)
	_, err = f.uc.AdjustStock(ctx, "P", d("40"), entity.MovementAdjustment)
	require.NoError(t, err)

	movs := f.history(t, "P")
	require.Len(t, movs, 3)
	for i, m := range movs {
		assert.True(t, m.StockAfter.Sub(m.StockBefore).Equal(m.Quantity), "movimiento %d", i)
		assert.False(t, m.StockAfter.IsNegative())
		if i+1 < len(movs) {
			assert.True(t, movs[i+1].StockAfter.Equal(m.StockBefore), "el historial encadena saldos")
		}
	}
	assert.True(t, movs[0].StockAfter.Equal(f.stock(t, "P")))
}

func TestLowStock_StrictlyBelow(t *testing.T) {
	f := newFixture(t, map[string]string{"A": "4", "B": "5", "C": "6"})

	list, err := f.uc.LowStock(context.Background(), d("5"))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "A", list[0].ID)
}

// =============================================================================
// Inventario físico
// =============================================================================

// Caso D: dos productos contados, exactamente dos movimientos ADJUSTMENT.
func TestPerformPhysicalCount(t *testing.T) {
	f := newFixture(t, map[string]string{"P1": "100", "P2": "50", "P3": "7"})

	res, err := f.uc.PerformPhysicalCount(context.Background(), map[string]decimal.Decimal{
		"P1": d("90"), "P2": d("55"), "P3": d("7"), "ghost": d("1"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"P1", "P2"}, res.Adjusted)
	assert.Equal(t, []string{"P3"}, res.Unchanged)
	assert.Equal(t, []string{"ghost"}, res.NotFound)
	assert.Empty(t, res.Failed)

	assert.True(t, f.stock(t, "P1").Equal(d("90")))
	assert.True(t, f.stock(t, "P2").Equal(d("55")))

	m1 := f.history(t, "P1")
	m2 := f.history(t, "P2")
	require.Len(t, m1, 1)
	require.Len(t, m2, 1)
	assert.Empty(t, f.history(t, "P3"))
	assert.Equal(t, entity.MovementAdjustment, m1[0].Kind)
	assert.True(t, m1[0].Quantity.Equal(d("-10")))
	assert.True(t, m2[0].Quantity.Equal(d("5")))
	assert.Equal(t, inventory.ReasonPhysicalCount, m2[0].Reason)
}

func TestPerformPhysicalCount_NegativeFailsAlone(t *testing.T) {
	f := newFixture(t, map[string]string{"P1": "10", "P2": "10"})

	res, err := f.uc.PerformPhysicalCount(context.Background(), map[string]decimal.Decimal{
		"P1": d("-1"), "P2": d("8"),
	})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Failed["P1"], domain.ErrInvalidInput)
	assert.Equal(t, []string{"P2"}, res.Adjusted)
	assert.True(t, f.stock(t, "P1").Equal(d("10")))
}

func TestPerformPhysicalCount_Canceled(t *testing.T) {
	f := newFixture(t, map[string]string{"P1": "10"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.uc.PerformPhysicalCount(ctx, map[string]decimal.Decimal{"P1": d("1")})
	assert.ErrorIs(t, err, context.Canceled)
}
