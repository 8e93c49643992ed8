package inventory_test

import (
	"testing"

	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestNextStock(t *testing.T) {
	next, err := inventory.NextStock(d("100"), d("20"))
	require.NoError(t, err)
	assert.True(t, next.Equal(d("120")))

	next, err = inventory.NextStock(d("1.5"), d("-1.5"))
	require.NoError(t, err)
	assert.True(t, next.IsZero(), "llegar exactamente a cero es válido")

	next, err = inventory.NextStock(d("100"), d("-200"))
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, next.Equal(d("100")), "en error se devuelve el stock sin cambios")
}

func TestDeltaFor(t *testing.T) {
	cases := []struct {
		name    string
		kind    entity.MovementKind
		qty     string
		current string
		want    string
		ok      bool
	}{
		{"entrada suma el valor absoluto", entity.MovementEntry, "-5", "10", "5", true},
		{"salida resta el valor absoluto", entity.MovementExit, "5", "10", "-5", true},
		{"salida con signo negativo", entity.MovementExit, "-5", "10", "-5", true},
		{"ajuste deja el stock en q", entity.MovementAdjustment, "7", "10", "-3", true},
		{"ajuste hacia arriba", entity.MovementAdjustment, "12.5", "10", "2.5", true},
		{"tipo fuera del enum", entity.MovementKind(42), "5", "10", "0", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			delta, ok := inventory.DeltaFor(tc.kind, d(tc.qty), d(tc.current))
			assert.Equal(t, tc.ok, ok)
			assert.True(t, delta.Equal(d(tc.want)), "delta=%s", delta)
		})
	}
}

func TestKindForDelta(t *testing.T) {
	assert.Equal(t, entity.MovementEntry, inventory.KindForDelta(d("0.1")))
	assert.Equal(t, entity.MovementExit, inventory.KindForDelta(d("-3")))
}

func TestParseMovementKind(t *testing.T) {
	k, ok := entity.ParseMovementKind("entrada")
	require.True(t, ok)
	assert.Equal(t, entity.MovementEntry, k)

	k, ok = entity.ParseMovementKind(" EXIT ")
	require.True(t, ok)
	assert.Equal(t, entity.MovementExit, k)

	_, ok = entity.ParseMovementKind("TRANSFER")
	assert.False(t, ok)
	assert.Equal(t, "ADJUSTMENT", entity.MovementAdjustment.String())
	assert.False(t, entity.MovementKind(0).Valid())
}
