package ticket

import (
	"context"
	"fmt"

	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// TicketUseCase arma los datos de una venta y los entrega como PDF o como XML sellado.
type TicketUseCase struct {
	saleRepo    repository.SaleRepository
	productRepo repository.ProductRepository
	userRepo    repository.UserRepository
	clientRepo  repository.ClientRepository
	pdf         PDFRenderer
	sealer      Sealer
	storeName   string
}

// NewTicketUseCase construye el caso de uso inyectando todas sus dependencias.
func NewTicketUseCase(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	pdf PDFRenderer,
	sealer Sealer,
	storeName string,
) *TicketUseCase {
	return &TicketUseCase{
		saleRepo:    saleRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		clientRepo:  clientRepo,
		pdf:         pdf,
		sealer:      sealer,
		storeName:   storeName,
	}
}

// SalePDF devuelve (pdfBytes, filename). Venta inexistente = ErrSaleNotFound.
func (uc *TicketUseCase) SalePDF(ctx context.Context, saleID string) ([]byte, string, error) {
	data, err := uc.Build(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	b, err := uc.pdf.RenderSaleTicket(ctx, *data)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: generar pdf: %w", err)
	}
	return b, fmt.Sprintf("ticket-%s.pdf", shortID(saleID)), nil
}

// SaleXML devuelve el comprobante XML sellado y su nombre de archivo.
func (uc *TicketUseCase) SaleXML(ctx context.Context, saleID string) ([]byte, string, error) {
	data, err := uc.Build(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	b, err := uc.sealer.Seal(*data)
	if err != nil {
		return nil, "", fmt.Errorf("ticket: sellar xml: %w", err)
	}
	return b, fmt.Sprintf("ticket-%s.xml", shortID(saleID)), nil
}

// VerifyXML recalcula el sello de un comprobante. XML mal formado = ErrInvalidInput.
func (uc *TicketUseCase) VerifyXML(_ context.Context, xmlDoc []byte) (bool, error) {
	ok, err := uc.sealer.Verify(xmlDoc)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return ok, nil
}

// Build resuelve nombres de operador, cliente y productos de la venta.
// Un producto borrado después de la venta se imprime con su id.
func (uc *TicketUseCase) Build(ctx context.Context, saleID string) (*Data, error) {
	s, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("ticket: obtener venta: %w", err)
	}
	if s == nil {
		return nil, domain.ErrSaleNotFound
	}

	data := &Data{
		StoreName:    uc.storeName,
		SaleID:       s.ID,
		Date:         s.Date,
		Time:         s.Time,
		Branch:       s.Branch,
		TaxInclusive: s.TaxInclusive,
		Total:        s.Total,
		Voided:       s.Voided,
		Lines:        make([]Line, 0, len(s.Lines)),
	}
	if u, err := uc.userRepo.GetByID(ctx, s.UserID); err != nil {
		return nil, err
	} else if u != nil {
		data.Operator = u.Name
	}
	if s.ClientID != "" {
		c, err := uc.clientRepo.GetByID(ctx, s.ClientID)
		if err != nil {
			return nil, err
		}
		if c != nil {
			data.Client = c.Name
		}
	}

	subtotal := decimal.Zero
	for _, l := range s.Lines {
		name := l.ProductID
		p, err := uc.productRepo.GetByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			name = p.Name
		}
		subtotal = subtotal.Add(l.Subtotal)
		data.Lines = append(data.Lines, Line{
			Position:        l.Position,
			ProductID:       l.ProductID,
			ProductName:     name,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			Subtotal:        l.Subtotal,
		})
	}
	data.Subtotal = subtotal
	data.Tax = s.Total.Sub(subtotal)
	return data, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
