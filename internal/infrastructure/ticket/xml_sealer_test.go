package ticket_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	appticket "github.com/jhoicas/POS-api/internal/application/ticket"
	"github.com/jhoicas/POS-api/internal/infrastructure/ticket"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sample() appticket.Data {
	return appticket.Data{
		StoreName:    "Abarrotes Doña Lupe",
		SaleID:       "3f1c2a9e-0000-4000-8000-000000000001",
		Date:         time.Date(2024, 2, 29, 0, 0, 0, 0, time.FixedZone("UTC-6", -6*60*60)),
		Time:         "08:30 PM",
		Branch:       "Centro",
		Operator:     "Ana López",
		TaxInclusive: true,
		Subtotal:     d("30"),
		Tax:          d("4.8"),
		Total:        d("34.8"),
		Lines: []appticket.Line{
			{Position: 1, ProductID: "P1", ProductName: "Arroz & Frijol <1kg>", Quantity: d("2"), UnitPrice: d("10"), Subtotal: d("20")},
			{Position: 2, ProductID: "P2", ProductName: "Café", Quantity: d("1"), UnitPrice: d("20"), DiscountPercent: d("50"), Subtotal: d("10")},
		},
	}
}

func TestSeal_VerifyRoundTrip(t *testing.T) {
	s, err := ticket.NewHMACSealer("llave-de-prueba")
	require.NoError(t, err)

	doc, err := s.Seal(sample())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("<?xml")))
	assert.Contains(t, string(doc), `algorithm="HMAC-SHA256"`)
	assert.Contains(t, string(doc), "<Total>34.80</Total>")

	ok, err := s.Verify(doc)
	require.NoError(t, err)
	assert.True(t, ok)
}

// Cambiar cualquier dato invalida el sello.
func TestVerify_DetectsTampering(t *testing.T) {
	s, _ := ticket.NewHMACSealer("llave-de-prueba")
	doc, err := s.Seal(sample())
	require.NoError(t, err)

	tampered := strings.Replace(string(doc), "<Total>34.80</Total>", "<Total>3.48</Total>", 1)
	require.NotEqual(t, string(doc), tampered)
	ok, err := s.Verify([]byte(tampered))
	require.NoError(t, err)
	assert.False(t, ok)
}

// Otra llave no valida el comprobante.
func TestVerify_WrongKey(t *testing.T) {
	a, _ := ticket.NewHMACSealer("llave-a")
	b, _ := ticket.NewHMACSealer("llave-b")
	doc, err := a.Seal(sample())
	require.NoError(t, err)

	ok, err := b.Verify(doc)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerify_Errors(t *testing.T) {
	s, _ := ticket.NewHMACSealer("k")

	_, err := s.Verify([]byte("<Ticket><Sale/></Ticket>"))
	assert.ErrorIs(t, err, ticket.ErrNoSeal)

	_, err = s.Verify([]byte("no es xml <"))
	assert.Error(t, err)

	_, err = ticket.NewHMACSealer("")
	assert.Error(t, err)
}
