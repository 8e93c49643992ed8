package ticket

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Data es todo lo que se imprime en un ticket de venta, ya resuelto (nombres, no ids).
type Data struct {
	StoreName    string
	SaleID       string
	Date         time.Time
	Time         string
	Branch       string
	Operator     string
	Client       string
	TaxInclusive bool
	Subtotal     decimal.Decimal // suma de líneas antes de IVA
	Tax          decimal.Decimal
	Total        decimal.Decimal
	Voided       bool
	Lines        []Line
}

// Line renglón del ticket.
type Line struct {
	Position        int
	ProductID       string
	ProductName     string
	Quantity        decimal.Decimal
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	Subtotal        decimal.Decimal
}

// PDFRenderer genera la representación imprimible del ticket.
type PDFRenderer interface {
	RenderSaleTicket(ctx context.Context, data Data) ([]byte, error)
}

// Sealer emite el comprobante XML sellado y verifica sellos recibidos.
type Sealer interface {
	Seal(data Data) ([]byte, error)
	Verify(xmlDoc []byte) (bool, error)
}
