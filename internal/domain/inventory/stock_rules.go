package inventory

import (
	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// NextStock aplica delta al stock actual (servicio de dominio).
// Devuelve ErrInsufficientStock si el resultado quedaría negativo.
func NextStock(current, delta decimal.Decimal) (decimal.Decimal, error) {
	next := current.Add(delta)
	if next.IsNegative() {
		return current, domain.ErrInsufficientStock
	}
	return next, nil
}

// DeltaFor traduce una cantidad sin signo del usuario al delta del tipo de movimiento.
// ENTRY = +|q|, EXIT = -|q|, ADJUSTMENT = q - actual (el stock queda en q).
// ok es false para un tipo fuera del enum.
func DeltaFor(kind entity.MovementKind, qty, current decimal.Decimal) (delta decimal.Decimal, ok bool) {
	switch kind {
	case entity.MovementEntry:
		return qty.Abs(), true
	case entity.MovementExit:
		return qty.Abs().Neg(), true
	case entity.MovementAdjustment:
		return qty.Sub(current), true
	}
	return decimal.Zero, false
}

// KindForDelta clasifica un ajuste a valor absoluto: positivo ENTRY, si no EXIT.
func KindForDelta(delta decimal.Decimal) entity.MovementKind {
	if delta.IsPositive() {
		return entity.MovementEntry
	}
	return entity.MovementExit
}
