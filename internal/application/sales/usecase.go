package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/POS-api/internal/application/dto"
	"github.com/jhoicas/POS-api/internal/application/inventory"
	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/jhoicas/POS-api/internal/domain/repository"
	pricing "github.com/jhoicas/POS-api/internal/domain/sales"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SaleUseCase crea y anula ventas. Cada operación de escritura corre en una sola transacción:
// salidas de stock, cabecera y líneas se confirman juntas o ninguna.
type SaleUseCase struct {
	txRunner    SaleTxRunner
	inventory   InventoryPort
	saleRepo    repository.SaleRepository
	userRepo    repository.UserRepository
	clientRepo  repository.ClientRepository
	invalidator ReportInvalidator
	log         zerolog.Logger
	now         func() time.Time
}

// NewSaleUseCase construye el caso de uso. invalidator puede ser nil (sin caché de reportes).
func NewSaleUseCase(
	txRunner SaleTxRunner,
	inventoryPort InventoryPort,
	saleRepo repository.SaleRepository,
	userRepo repository.UserRepository,
	clientRepo repository.ClientRepository,
	invalidator ReportInvalidator,
	log zerolog.Logger,
) *SaleUseCase {
	return &SaleUseCase{
		txRunner:    txRunner,
		inventory:   inventoryPort,
		saleRepo:    saleRepo,
		userRepo:    userRepo,
		clientRepo:  clientRepo,
		invalidator: invalidator,
		log:         log.With().Str("component", "sales").Logger(),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *SaleUseCase) WithClock(now func() time.Time) *SaleUseCase {
	uc.now = now
	return uc
}

// CreateSale registra la venta del operador. El precio de cada línea es el precio vigente del
// producto; si alguna línea no tiene stock suficiente la venta completa se revierte.
func (uc *SaleUseCase) CreateSale(ctx context.Context, operatorUserID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if err := validateLines(in.Lines); err != nil {
		return nil, err
	}

	operator, err := uc.userRepo.GetByID(ctx, operatorUserID)
	if err != nil {
		return nil, fmt.Errorf("obtener operador: %w", err)
	}
	if operator == nil {
		return nil, domain.ErrUserNotFound
	}
	if !operator.Active {
		return nil, domain.ErrInactiveUser
	}

	// Cliente opcional: si no existe la venta sigue sin cliente
	clientID := ""
	if in.ClientID != "" {
		client, err := uc.clientRepo.GetByID(ctx, in.ClientID)
		if err != nil {
			return nil, fmt.Errorf("obtener cliente: %w", err)
		}
		if client != nil {
			clientID = client.ID
		} else {
			uc.log.Warn().Str("client_id", in.ClientID).Msg("cliente inexistente, venta sin cliente")
		}
	}

	branch := strings.TrimSpace(in.Branch)
	if branch == "" {
		branch = operator.Branch
	}

	now := uc.now()
	sale := &entity.Sale{
		ID:           uuid.New().String(),
		UserID:       operator.ID,
		ClientID:     clientID,
		Date:         pricing.SaleDate(now),
		Time:         pricing.SaleClockTime(now),
		TaxInclusive: in.TaxInclusive,
		Branch:       branch,
		CreatedAt:    now,
	}

	err = uc.txRunner.RunSale(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		// 1) Bloquear productos en orden de id (evita deadlocks entre ventas concurrentes)
		products := make(map[string]*entity.Product, len(in.Lines))
		for _, id := range lockOrder(in.Lines) {
			p, err := productRepo.GetForUpdate(ctx, id)
			if err != nil {
				return fmt.Errorf("bloquear producto: %w", err)
			}
			if p == nil {
				return fmt.Errorf("%w: %s", domain.ErrProductNotFound, id)
			}
			if !p.Active {
				return fmt.Errorf("%w: producto inactivo %s", domain.ErrInvalidInput, p.Name)
			}
			products[id] = p
		}

		// 2) Por línea: subtotal con el precio persistido y salida de stock (error duro)
		subtotals := make([]decimal.Decimal, 0, len(in.Lines))
		sale.Lines = make([]entity.SaleLine, 0, len(in.Lines))
		for i, l := range in.Lines {
			p := products[l.ProductID]
			subtotal := pricing.LineSubtotal(l.Quantity, p.Price, l.DiscountPercent)
			subtotals = append(subtotals, subtotal)
			sale.Lines = append(sale.Lines, entity.SaleLine{
				ID:              uuid.New().String(),
				SaleID:          sale.ID,
				Position:        i + 1,
				ProductID:       p.ID,
				Quantity:        l.Quantity,
				DiscountPercent: l.DiscountPercent,
				UnitPrice:       p.Price,
				Subtotal:        subtotal,
			})
			if _, err := uc.inventory.ExitInTx(ctx, movRepo, productRepo, p.ID, l.Quantity, inventory.ReasonSale, sale.ID); err != nil {
				if errors.Is(err, domain.ErrInsufficientStock) {
					return fmt.Errorf("%w: %s", domain.ErrInsufficientStock, p.Name)
				}
				return err
			}
		}

		// 3) Total (IVA sobre la suma, no por línea) y persistencia
		sale.Total = pricing.SaleTotal(subtotals, in.TaxInclusive)
		return saleRepo.Create(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateReports(ctx)
	uc.log.Info().
		Str("sale_id", sale.ID).
		Str("user_id", sale.UserID).
		Int("lines", len(sale.Lines)).
		Str("total", sale.Total.StringFixed(2)).
		Msg("venta registrada")
	return ToSaleResponse(sale), nil
}

// VoidSale anula la venta (no la borra) y repone el stock de cada línea.
// Anular una venta ya anulada devuelve ErrAlreadyVoided sin tocar el stock.
func (uc *SaleUseCase) VoidSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	var voided *entity.Sale
	err := uc.txRunner.RunSale(ctx, func(
		movRepo repository.StockMovementRepository,
		productRepo repository.ProductRepository,
		saleRepo repository.SaleRepository,
	) error {
		s, err := saleRepo.GetForUpdate(ctx, saleID)
		if err != nil {
			return fmt.Errorf("obtener venta: %w", err)
		}
		if s == nil {
			return domain.ErrSaleNotFound
		}
		if s.Voided {
			return domain.ErrAlreadyVoided
		}
		for _, l := range s.Lines {
			if _, err := uc.inventory.EntryInTx(ctx, movRepo, productRepo, l.ProductID, l.Quantity, inventory.ReasonSaleVoid, s.ID); err != nil {
				return err
			}
		}
		now := uc.now()
		if err := saleRepo.MarkVoided(ctx, s.ID, now); err != nil {
			return err
		}
		s.Voided = true
		s.VoidedAt = &now
		voided = s
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.invalidateReports(ctx)
	uc.log.Info().Str("sale_id", saleID).Msg("venta anulada")
	return ToSaleResponse(voided), nil
}

// GetSale devuelve la venta con sus líneas.
func (uc *SaleUseCase) GetSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	s, err := uc.saleRepo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrSaleNotFound
	}
	return ToSaleResponse(s), nil
}

// SalesInRange ventas con fecha en [start, end] (anuladas incluidas, marcadas).
func (uc *SaleUseCase) SalesInRange(ctx context.Context, start, end time.Time) ([]dto.SaleResponse, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: el fin del rango es anterior al inicio", domain.ErrInvalidInput)
	}
	list, err := uc.saleRepo.ListByDateRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return toSaleResponses(list), nil
}

// SalesByUser ventas registradas por un operador.
func (uc *SaleUseCase) SalesByUser(ctx context.Context, userID string) ([]dto.SaleResponse, error) {
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, domain.ErrUserNotFound
	}
	list, err := uc.saleRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toSaleResponses(list), nil
}

// SalesByDate ventas de un día.
func (uc *SaleUseCase) SalesByDate(ctx context.Context, date time.Time) ([]dto.SaleResponse, error) {
	list, err := uc.saleRepo.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	return toSaleResponses(list), nil
}

// SearchSales busca por nombre del operador o por prefijo del id de la venta.
func (uc *SaleUseCase) SearchSales(ctx context.Context, criteria string) ([]dto.SaleResponse, error) {
	criteria = strings.TrimSpace(criteria)
	if criteria == "" {
		return nil, fmt.Errorf("%w: criterio vacío", domain.ErrInvalidInput)
	}
	list, err := uc.saleRepo.Search(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return toSaleResponses(list), nil
}

// TotalRevenueInRange suma el total de las ventas no anuladas con fecha en [start, end].
func (uc *SaleUseCase) TotalRevenueInRange(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	if end.Before(start) {
		return decimal.Zero, fmt.Errorf("%w: el fin del rango es anterior al inicio", domain.ErrInvalidInput)
	}
	return uc.saleRepo.SumTotal(ctx, start, end)
}

func (uc *SaleUseCase) invalidateReports(ctx context.Context) {
	if uc.invalidator == nil {
		return
	}
	if err := uc.invalidator.Invalidate(ctx); err != nil {
		uc.log.Warn().Err(err).Msg("no se pudo invalidar la caché de reportes")
	}
}

func validateLines(lines []dto.SaleLineRequest) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: la venta no tiene líneas", domain.ErrInvalidInput)
	}
	for i, l := range lines {
		if l.ProductID == "" || !l.Quantity.IsPositive() {
			return fmt.Errorf("%w: línea %d", domain.ErrInvalidInput, i+1)
		}
		if !pricing.ValidDiscount(l.DiscountPercent) {
			return fmt.Errorf("%w: descuento fuera de 0-100 en línea %d", domain.ErrInvalidInput, i+1)
		}
	}
	return nil
}

func lockOrder(lines []dto.SaleLineRequest) []string {
	seen := make(map[string]struct{}, len(lines))
	ids := make([]string, 0, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.ProductID]; ok {
			continue
		}
		seen[l.ProductID] = struct{}{}
		ids = append(ids, l.ProductID)
	}
	sort.Strings(ids)
	return ids
}

// ToSaleResponse mapea la entidad a la salida HTTP.
func ToSaleResponse(s *entity.Sale) *dto.SaleResponse {
	lines := make([]dto.SaleLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, dto.SaleLineResponse{
			ProductID:       l.ProductID,
			Quantity:        l.Quantity,
			DiscountPercent: l.DiscountPercent,
			UnitPrice:       l.UnitPrice,
			Subtotal:        l.Subtotal,
		})
	}
	return &dto.SaleResponse{
		ID:           s.ID,
		UserID:       s.UserID,
		ClientID:     s.ClientID,
		Date:         s.Date.Format("2006-01-02"),
		Time:         s.Time,
		Total:        s.Total,
		TaxInclusive: s.TaxInclusive,
		Branch:       s.Branch,
		Voided:       s.Voided,
		VoidedAt:     s.VoidedAt,
		Lines:        lines,
	}
}

func toSaleResponses(list []*entity.Sale) []dto.SaleResponse {
	out := make([]dto.SaleResponse, 0, len(list))
	for _, s := range list {
		out = append(out, *ToSaleResponse(s))
	}
	return out
}
