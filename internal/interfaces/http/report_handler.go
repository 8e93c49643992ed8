package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/POS-api/internal/application/reports"
	pricing "github.com/jhoicas/POS-api/internal/domain/sales"
)

// ReportHandler reportes de ventas e inventario (solo admin).
type ReportHandler struct {
	uc *reports.ReportUseCase
}

func NewReportHandler(uc *reports.ReportUseCase) *ReportHandler {
	return &ReportHandler{uc: uc}
}

// TopProducts godoc
// @Summary      Productos más vendidos
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  true   "YYYY-MM-DD"
// @Param        end    query  string  true   "YYYY-MM-DD"
// @Param        limit  query  int     false  "Máximo de filas (default 10)"
// @Success      200  {array}   dto.TopProductDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/top-products [get]
func (h *ReportHandler) TopProducts(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	limit := c.QueryInt("limit", 10)
	if limit < 0 {
		return badRequest(c, "VALIDATION", "limit no puede ser negativo")
	}
	out, err := h.uc.TopProducts(c.UserContext(), start, end, limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SalesByUser godoc
// @Summary      Ventas por operador
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  true  "YYYY-MM-DD"
// @Param        end    query  string  true  "YYYY-MM-DD"
// @Success      200  {array}   dto.UserSalesDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales-by-user [get]
func (h *ReportHandler) SalesByUser(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SalesByUser(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SalesByCategory godoc
// @Summary      Ventas por categoría
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  true  "YYYY-MM-DD"
// @Param        end    query  string  true  "YYYY-MM-DD"
// @Success      200  {array}   dto.CategorySalesDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/sales-by-category [get]
func (h *ReportHandler) SalesByCategory(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SalesByCategory(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Daily godoc
// @Summary      Ventas por día
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  true  "YYYY-MM-DD"
// @Param        end    query  string  true  "YYYY-MM-DD"
// @Success      200  {array}   dto.DailySalesDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/daily [get]
func (h *ReportHandler) Daily(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.DailySales(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Monthly godoc
// @Summary      Ventas por mes de un año
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Param        year  query  int  false  "Año (default: año en curso)"
// @Success      200  {array}   dto.MonthlySalesDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/monthly [get]
func (h *ReportHandler) Monthly(c *fiber.Ctx) error {
	year := time.Now().In(pricing.StoreZone).Year()
	if raw := c.Query("year"); raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil || y < 1 {
			return badRequest(c, "VALIDATION", "year debe ser un entero positivo")
		}
		year = y
	}
	out, err := h.uc.MonthlySales(c.UserContext(), year)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// LowStock godoc
// @Summary      Alertas de reposición
// @Description  Productos activos en o bajo su stock mínimo, ordenados por urgencia.
// @Tags         reports
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.LowStockAlertDTO
// @Router       /api/reports/low-stock [get]
func (h *ReportHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStockAlerts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
