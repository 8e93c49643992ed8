package sales_test

import (
	"testing"
	"time"

	"github.com/jhoicas/POS-api/internal/domain/sales"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestLineSubtotal(t *testing.T) {
	assert.True(t, sales.LineSubtotal(d("2"), d("10"), d("0")).Equal(d("20")))
	assert.True(t, sales.LineSubtotal(d("1"), d("20"), d("50")).Equal(d("10")))
	assert.True(t, sales.LineSubtotal(d("0.75"), d("48"), d("10")).Equal(d("32.4")), "granel con descuento")
	assert.True(t, sales.LineSubtotal(d("3"), d("9.99"), d("100")).IsZero())
}

// Escenario de referencia: 20 + 10 = 30, con IVA 16% = 34.80.
func TestSaleTotal_ConIVA(t *testing.T) {
	total := sales.SaleTotal([]decimal.Decimal{d("20"), d("10")}, true)
	assert.Equal(t, "34.80", total.StringFixed(2))
}

func TestSaleTotal_SinIVA(t *testing.T) {
	total := sales.SaleTotal([]decimal.Decimal{d("20"), d("10")}, false)
	assert.Equal(t, "30.00", total.StringFixed(2))
	assert.True(t, sales.SaleTotal(nil, true).IsZero())
}

func TestValidDiscount(t *testing.T) {
	assert.True(t, sales.ValidDiscount(d("0")))
	assert.True(t, sales.ValidDiscount(d("100")))
	assert.False(t, sales.ValidDiscount(d("-1")))
	assert.False(t, sales.ValidDiscount(d("100.5")))
}

func TestSaleClock_ZonaUTCMenos6(t *testing.T) {
	// 2024-03-01 02:30 UTC es 2024-02-29 20:30 en UTC-6
	instant := time.Date(2024, 3, 1, 2, 30, 0, 0, time.UTC)
	assert.Equal(t, "08:30 PM", sales.SaleClockTime(instant))

	date := sales.SaleDate(instant)
	assert.Equal(t, 2024, date.Year())
	assert.Equal(t, time.February, date.Month())
	assert.Equal(t, 29, date.Day())

	assert.Equal(t, "09:05 AM", sales.SaleClockTime(time.Date(2024, 3, 1, 15, 5, 0, 0, time.UTC)))
}
