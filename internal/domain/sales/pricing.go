// Package sales contiene las reglas puras de cálculo de una venta.
package sales

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate es el IVA plano aplicado al total antes de impuestos cuando la venta es con IVA.
var TaxRate = decimal.RequireFromString("0.16")

var hundred = decimal.NewFromInt(100)

// LineSubtotal = cantidad * precio * (1 - descuento/100), descuento expresado 0-100.
func LineSubtotal(qty, unitPrice, discountPercent decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPercent.Div(hundred))
	return qty.Mul(unitPrice).Mul(factor).Round(2)
}

// SaleTotal suma los subtotales y, si taxInclusive, agrega el IVA sobre esa suma
// (no línea por línea).
func SaleTotal(subtotals []decimal.Decimal, taxInclusive bool) decimal.Decimal {
	total := decimal.Zero
	for _, s := range subtotals {
		total = total.Add(s)
	}
	if taxInclusive {
		total = total.Add(total.Mul(TaxRate))
	}
	return total.Round(2)
}

// ValidDiscount indica si el porcentaje está en [0, 100].
func ValidDiscount(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

// Zona de referencia de la caja (UTC-6, hora del centro de México).
var StoreZone = time.FixedZone("UTC-6", -6*60*60)

// SaleDate devuelve la fecha calendario de t en la zona de la caja.
func SaleDate(t time.Time) time.Time {
	local := t.In(StoreZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, StoreZone)
}

// SaleClockTime devuelve la hora "hh:mm AM/PM" de t en la zona de la caja.
func SaleClockTime(t time.Time) string {
	return t.In(StoreZone).Format("03:04 PM")
}
