package pdf

import (
	"bytes"
	"context"
	"testing"
	"time"

	appticket "github.com/jhoicas/POS-api/internal/application/ticket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSaleTicket_ProducesPDF(t *testing.T) {
	g := NewMarotoTicketGenerator("")
	data := appticket.Data{
		StoreName: "Abarrotes Doña Lupe",
		SaleID:    "3f1c2a9e-0000-4000-8000-000000000001",
		Date:      time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		Time:      "08:30 PM",
		Operator:  "Ana",
		Subtotal:  decimal.NewFromInt(30),
		Tax:       decimal.RequireFromString("4.8"),
		Total:     decimal.RequireFromString("34.8"),
		Voided:    true,
		Lines: []appticket.Line{
			{Position: 1, ProductName: "Arroz", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(10), Subtotal: decimal.NewFromInt(20)},
		},
	}

	b, err := g.RenderSaleTicket(context.Background(), data)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
}

func TestMoney_TwoDecimals(t *testing.T) {
	g := NewMarotoTicketGenerator("en-US")
	assert.Equal(t, "$1,234.50", g.money(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "$0.10", g.money(decimal.RequireFromString("0.1")))
}
