// Package pdf genera el ticket imprimible de una venta.
//
// Layout (A5 vertical):
//
//	Tienda + sucursal          | Ticket N° + fecha/hora
//	Atendió / Cliente
//	Cant | Producto | P.Unit | Desc | Importe
//	Subtotal / IVA / TOTAL
//	QR con el id de la venta
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	appticket "github.com/jhoicas/POS-api/internal/application/ticket"
)

var _ appticket.PDFRenderer = (*MarotoTicketGenerator)(nil)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorRed     = &props.Color{Red: 180, Green: 20, Blue: 20}
)

// MarotoTicketGenerator implementa ticket.PDFRenderer usando Maroto v2.
// Los importes se formatean con separadores de la configuración regional (es-MX por defecto).
type MarotoTicketGenerator struct {
	printer *message.Printer
}

// NewMarotoTicketGenerator construye el generador. locale vacío = es-MX.
func NewMarotoTicketGenerator(locale string) *MarotoTicketGenerator {
	tag := language.MustParse("es-MX")
	if locale != "" {
		if t, err := language.Parse(locale); err == nil {
			tag = t
		}
	}
	return &MarotoTicketGenerator{printer: message.NewPrinter(tag)}
}

// RenderSaleTicket genera el PDF y devuelve sus bytes.
func (g *MarotoTicketGenerator) RenderSaleTicket(_ context.Context, data appticket.Data) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle("Ticket de venta", true).
		WithAuthor(data.StoreName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(data))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(partiesRow(data))
	if data.Voided {
		m.AddRows(row.New(8).Add(col.New(12).Add(
			text.New("VENTA ANULADA", props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Center, Color: colorRed, Top: 1}),
		)))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range g.lineRows(data.Lines) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalsRow(data))
	m.AddRows(line.NewRow(3))
	m.AddRows(footerRow(data))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar ticket: %w", err)
	}
	return doc.GetBytes(), nil
}

func (g *MarotoTicketGenerator) headerRow(data appticket.Data) core.Row {
	store := data.StoreName
	if data.Branch != "" {
		store += " · " + data.Branch
	}
	return row.New(16).Add(
		col.New(7).Add(
			text.New(store, props.Text{Style: fontstyle.Bold, Size: 12, Color: colorPrimary, Top: 1}),
		),
		col.New(5).Add(
			text.New("TICKET", props.Text{Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1}),
			text.New(shortID(data.SaleID), props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 5}),
			text.New(data.Date.Format("02/01/2006")+" "+data.Time, props.Text{Size: 8, Align: align.Right, Top: 11, Color: colorGray}),
		),
	)
}

func partiesRow(data appticket.Data) core.Row {
	client := data.Client
	if client == "" {
		client = "Público en general"
	}
	return row.New(10).Add(
		col.New(6).Add(text.New("Atendió: "+nonEmpty(data.Operator, "-"), props.Text{Size: 8, Top: 2})),
		col.New(6).Add(text.New("Cliente: "+client, props.Text{Size: 8, Top: 2, Align: align.Right})),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a, Color: colorPrimary, Top: 1,
		}))
	}
	return row.New(6).Add(
		h("Cant.", 2, align.Center),
		h("Producto", 4, align.Left),
		h("P.Unit", 2, align.Right),
		h("Desc", 1, align.Center),
		h("Importe", 3, align.Right),
	)
}

func (g *MarotoTicketGenerator) lineRows(lines []appticket.Line) []core.Row {
	rows := make([]core.Row, 0, len(lines))
	for _, l := range lines {
		disc := ""
		if l.DiscountPercent.IsPositive() {
			disc = l.DiscountPercent.String() + "%"
		}
		rows = append(rows, row.New(6).Add(
			col.New(2).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(4).Add(text.New(l.ProductName, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(g.money(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(1).Add(text.New(disc, props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(3).Add(text.New(g.money(l.Subtotal), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func (g *MarotoTicketGenerator) totalsRow(data appticket.Data) core.Row {
	label := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: top})
	}
	value := func(s string, top float64) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Top: top})
	}
	taxLabel := "IVA 16%:"
	if !data.TaxInclusive {
		taxLabel = "IVA:"
	}
	return row.New(20).Add(
		col.New(5),
		col.New(4).Add(
			label("Subtotal:", 1),
			label(taxLabel, 6),
			text.New("TOTAL:", props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 11}),
		),
		col.New(3).Add(
			value(g.money(data.Subtotal), 1),
			value(g.money(data.Tax), 6),
			text.New(g.money(data.Total), props.Text{Style: fontstyle.Bold, Size: 11, Align: align.Right, Color: colorPrimary, Top: 11}),
		),
	)
}

func footerRow(data appticket.Data) core.Row {
	return row.New(30).Add(
		col.New(4).Add(code.NewQr(data.SaleID, props.Rect{Percent: 90, Center: true})),
		col.New(8).Add(
			text.New("Gracias por su compra.", props.Text{Style: fontstyle.Bold, Size: 9, Top: 6, Left: 3, Color: colorPrimary}),
			text.New("Conserve este ticket para cualquier aclaración.", props.Text{Size: 7, Top: 13, Left: 3, Color: colorGray}),
		),
	)
}

// money formatea con dos decimales y separador de miles de la región: 1234.5 -> "$1,234.50".
func (g *MarotoTicketGenerator) money(d decimal.Decimal) string {
	return g.printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
