package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind es el tipo cerrado de movimiento de stock.
type MovementKind uint8

const (
	MovementEntry MovementKind = iota + 1
	MovementExit
	MovementAdjustment
)

var movementKindNames = map[MovementKind]string{
	MovementEntry:      "ENTRY",
	MovementExit:       "EXIT",
	MovementAdjustment: "ADJUSTMENT",
}

// String devuelve el nombre persistido del tipo ("ENTRY", "EXIT", "ADJUSTMENT").
func (k MovementKind) String() string {
	if s, ok := movementKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("MovementKind(%d)", uint8(k))
}

// Valid indica si k es uno de los tres tipos definidos.
func (k MovementKind) Valid() bool {
	_, ok := movementKindNames[k]
	return ok
}

// ParseMovementKind convierte el nombre (sin distinguir mayúsculas) al tipo.
// Acepta también los nombres en español de la caja: ENTRADA, SALIDA, AJUSTE.
func ParseMovementKind(s string) (MovementKind, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ENTRY", "ENTRADA":
		return MovementEntry, true
	case "EXIT", "SALIDA":
		return MovementExit, true
	case "ADJUSTMENT", "AJUSTE":
		return MovementAdjustment, true
	}
	return 0, false
}

// StockMovement es el registro inmutable de un cambio de stock.
// Quantity es el delta aplicado con signo: StockAfter - StockBefore == Quantity.
type StockMovement struct {
	ID          string
	ProductID   string
	Kind        MovementKind
	Quantity    decimal.Decimal
	StockBefore decimal.Decimal
	StockAfter  decimal.Decimal
	Reason      string
	ReferenceID string // venta que originó el movimiento, si aplica
	CreatedAt   time.Time
}
