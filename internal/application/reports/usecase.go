package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/POS-api/internal/application/dto"
	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/repository"
	pricing "github.com/jhoicas/POS-api/internal/domain/sales"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultTopLimit = 10
	maxTopLimit     = 100
	salesWindowDays = 30
)

// ReportUseCase reportes de ventas (excluyen ventas anuladas) y alertas de bajo stock.
type ReportUseCase struct {
	reportRepo  repository.ReportRepository
	productRepo repository.ProductRepository
	cache       Cache
	log         zerolog.Logger
	now         func() time.Time
}

// NewReportUseCase construye el caso de uso. cache nil = sin caché.
func NewReportUseCase(
	reportRepo repository.ReportRepository,
	productRepo repository.ProductRepository,
	cache Cache,
	log zerolog.Logger,
) *ReportUseCase {
	if cache == nil {
		cache = NopCache{}
	}
	return &ReportUseCase{
		reportRepo:  reportRepo,
		productRepo: productRepo,
		cache:       cache,
		log:         log.With().Str("component", "reports").Logger(),
		now:         time.Now,
	}
}

// WithClock reemplaza el reloj (tests).
func (uc *ReportUseCase) WithClock(now func() time.Time) *ReportUseCase {
	uc.now = now
	return uc
}

// TopProducts productos más vendidos por cantidad en [start, end]. limit <= 0 usa 10.
func (uc *ReportUseCase) TopProducts(ctx context.Context, start, end time.Time, limit int) ([]dto.TopProductDTO, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultTopLimit
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}
	key := fmt.Sprintf("top:%s:%s:%d", day(start), day(end), limit)
	return cached(ctx, uc, key, func() ([]dto.TopProductDTO, error) {
		rows, err := uc.reportRepo.TopSellingProducts(ctx, start, end, limit)
		if err != nil {
			return nil, err
		}
		out := make([]dto.TopProductDTO, 0, len(rows))
		for _, r := range rows {
			out = append(out, dto.TopProductDTO{ProductID: r.ProductID, ProductName: r.ProductName, Quantity: r.Quantity, Revenue: r.Revenue})
		}
		return out, nil
	})
}

// SalesByUser número de ventas y total por operador.
func (uc *ReportUseCase) SalesByUser(ctx context.Context, start, end time.Time) ([]dto.UserSalesDTO, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("by-user:%s:%s", day(start), day(end))
	return cached(ctx, uc, key, func() ([]dto.UserSalesDTO, error) {
		rows, err := uc.reportRepo.SalesByUser(ctx, start, end)
		if err != nil {
			return nil, err
		}
		out := make([]dto.UserSalesDTO, 0, len(rows))
		for _, r := range rows {
			out = append(out, dto.UserSalesDTO{UserID: r.UserID, UserName: r.UserName, Sales: r.Sales, Total: r.Total})
		}
		return out, nil
	})
}

// SalesByCategory suma de subtotales por categoría.
func (uc *ReportUseCase) SalesByCategory(ctx context.Context, start, end time.Time) ([]dto.CategorySalesDTO, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("by-category:%s:%s", day(start), day(end))
	return cached(ctx, uc, key, func() ([]dto.CategorySalesDTO, error) {
		rows, err := uc.reportRepo.SalesByCategory(ctx, start, end)
		if err != nil {
			return nil, err
		}
		out := make([]dto.CategorySalesDTO, 0, len(rows))
		for _, r := range rows {
			out = append(out, dto.CategorySalesDTO{CategoryID: r.CategoryID, CategoryName: r.CategoryName, Total: r.Total})
		}
		return out, nil
	})
}

// DailySales total por día con ventas en [start, end].
func (uc *ReportUseCase) DailySales(ctx context.Context, start, end time.Time) ([]dto.DailySalesDTO, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	key := fmt.Sprintf("daily:%s:%s", day(start), day(end))
	return cached(ctx, uc, key, func() ([]dto.DailySalesDTO, error) {
		rows, err := uc.reportRepo.DailySales(ctx, start, end)
		if err != nil {
			return nil, err
		}
		out := make([]dto.DailySalesDTO, 0, len(rows))
		for _, r := range rows {
			out = append(out, dto.DailySalesDTO{Date: day(r.Date), Total: r.Total})
		}
		return out, nil
	})
}

// MonthlySales total por mes del año dado (solo meses con ventas).
func (uc *ReportUseCase) MonthlySales(ctx context.Context, year int) ([]dto.MonthlySalesDTO, error) {
	if year < 2000 || year > 9999 {
		return nil, fmt.Errorf("%w: año fuera de rango", domain.ErrInvalidInput)
	}
	key := fmt.Sprintf("monthly:%d", year)
	return cached(ctx, uc, key, func() ([]dto.MonthlySalesDTO, error) {
		rows, err := uc.reportRepo.MonthlySales(ctx, year)
		if err != nil {
			return nil, err
		}
		out := make([]dto.MonthlySalesDTO, 0, len(rows))
		for _, r := range rows {
			out = append(out, dto.MonthlySalesDTO{Month: r.Month, Total: r.Total})
		}
		return out, nil
	})
}

// LowStockAlerts productos activos en o bajo su mínimo con la cantidad sugerida de reposición
// y una prioridad: primero el menor ratio stock/mínimo, luego el mayor volumen vendido en 30 días.
// No se cachea: depende del stock, que cambia con cada movimiento.
func (uc *ReportUseCase) LowStockAlerts(ctx context.Context) ([]dto.LowStockAlertDTO, error) {
	items, err := uc.productRepo.ListAtOrBelowMinimum(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return []dto.LowStockAlertDTO{}, nil
	}

	now := uc.now()
	end := pricing.SaleDate(now)
	start := end.AddDate(0, 0, -salesWindowDays)
	sold := map[string]decimal.Decimal{}
	rows, err := uc.reportRepo.TopSellingProducts(ctx, start, end, 0)
	if err != nil {
		// Sin historial la alerta sigue siendo útil
		uc.log.Warn().Err(err).Msg("alertas de stock sin historial de ventas")
	}
	for _, r := range rows {
		sold[r.ProductID] = r.Quantity
	}

	factor := decimal.NewFromFloat(1.5)
	alerts := make([]dto.LowStockAlertDTO, 0, len(items))
	for _, p := range items {
		ratio := decimal.Zero
		if p.MinStock.IsPositive() {
			ratio = p.Stock.Div(p.MinStock).Round(2)
		}
		suggested := p.MinStock.Mul(factor).Sub(p.Stock)
		if suggested.IsNegative() {
			suggested = decimal.Zero
		}
		alerts = append(alerts, dto.LowStockAlertDTO{
			ProductID:         p.ID,
			ProductName:       p.Name,
			CurrentStock:      p.Stock,
			MinStock:          p.MinStock,
			StockRatio:        ratio,
			SuggestedOrderQty: suggested,
			UnitsSold30Days:   sold[p.ID],
		})
	}

	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if !a.StockRatio.Equal(b.StockRatio) {
			return a.StockRatio.LessThan(b.StockRatio)
		}
		if !a.UnitsSold30Days.Equal(b.UnitsSold30Days) {
			return a.UnitsSold30Days.GreaterThan(b.UnitsSold30Days)
		}
		return a.ProductName < b.ProductName
	})
	for i := range alerts {
		alerts[i].Priority = i + 1
	}
	return alerts, nil
}

// Invalidate descarta los reportes cacheados; implementa sales.ReportInvalidator.
func (uc *ReportUseCase) Invalidate(ctx context.Context) error {
	return uc.cache.Invalidate(ctx)
}

// cached devuelve el reporte de la caché o lo calcula y lo guarda.
// Un fallo de la caché nunca falla el reporte.
func cached[T any](ctx context.Context, uc *ReportUseCase, key string, load func() (T, error)) (T, error) {
	var out T
	hit, err := uc.cache.Get(ctx, key, &out)
	if err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("caché de reportes no disponible")
	}
	if hit {
		return out, nil
	}
	out, err = load()
	if err != nil {
		return out, err
	}
	if err := uc.cache.Set(ctx, key, out); err != nil {
		uc.log.Warn().Err(err).Str("key", key).Msg("no se pudo guardar el reporte en caché")
	}
	return out, nil
}

func checkRange(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: rango de fechas incompleto", domain.ErrInvalidInput)
	}
	if end.Before(start) {
		return fmt.Errorf("%w: el fin del rango es anterior al inicio", domain.ErrInvalidInput)
	}
	return nil
}

func day(t time.Time) string { return t.Format("2006-01-02") }
