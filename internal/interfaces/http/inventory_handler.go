package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/POS-api/internal/application/dto"
	"github.com/jhoicas/POS-api/internal/application/inventory"
	"github.com/jhoicas/POS-api/internal/application/usecase"
	"github.com/jhoicas/POS-api/internal/domain"
	"github.com/jhoicas/POS-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// InventoryHandler ajustes de stock, inventario físico e historial (protegido).
type InventoryHandler struct {
	uc *inventory.InventoryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.InventoryUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Adjust godoc
// @Summary      Ajustar stock
// @Description  ENTRY suma quantity, EXIT la resta y ADJUSTMENT deja el stock en quantity.
// @Description  applied=false cuando el ajuste dejaría stock negativo (no hay cambios).
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, quantity, type"
// @Success      200   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	kind, ok := entity.ParseMovementKind(in.Type)
	if !ok {
		return writeError(c, domain.ErrInvalidMovementKind)
	}
	applied, err := h.uc.AdjustStock(c.UserContext(), in.ProductID, in.Quantity, kind)
	if err != nil {
		return writeError(c, err)
	}
	return h.respondStock(c, in.ProductID, applied)
}

// Entry godoc
// @Summary      Registrar entrada de mercancía
// @Description  Un producto inexistente se ignora (applied=false).
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity, reason"
// @Success      200   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/entries [post]
func (h *InventoryHandler) Entry(c *fiber.Ctx) error {
	var in dto.StockMovementRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	if err := h.uc.RegisterEntry(c.UserContext(), in.ProductID, in.Quantity, in.Reason); err != nil {
		return writeError(c, err)
	}
	return h.respondStock(c, in.ProductID, true)
}

// Exit godoc
// @Summary      Registrar salida de mercancía
// @Description  applied=false si no hay stock suficiente o el producto no existe.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity, reason"
// @Success      200   {object}  dto.AdjustStockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/exits [post]
func (h *InventoryHandler) Exit(c *fiber.Ctx) error {
	var in dto.StockMovementRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	applied, err := h.uc.RegisterExit(c.UserContext(), in.ProductID, in.Quantity, in.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return h.respondStock(c, in.ProductID, applied)
}

// respondStock devuelve el stock vigente; si el producto no existe, applied=false y stock 0.
func (h *InventoryHandler) respondStock(c *fiber.Ctx, productID string, applied bool) error {
	stock, err := h.uc.CurrentStock(c.UserContext(), productID)
	if errors.Is(err, domain.ErrNotFound) {
		return c.JSON(dto.AdjustStockResponse{Applied: false, Stock: decimal.Zero})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.AdjustStockResponse{Applied: applied, Stock: stock})
}

// LowStock godoc
// @Summary      Productos con stock bajo el umbral
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        threshold  query  string  true  "Umbral (stock < threshold)"
// @Success      200  {array}   dto.ProductResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *fiber.Ctx) error {
	threshold, err := decimal.NewFromString(c.Query("threshold"))
	if err != nil {
		return badRequest(c, "VALIDATION", "threshold debe ser numérico")
	}
	list, err := h.uc.LowStock(c.UserContext(), threshold)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(usecase.ToProductResponses(list))
}

// PhysicalCount godoc
// @Summary      Inventario físico
// @Description  Cada producto se concilia en su propia transacción; los ids desconocidos se reportan en not_found.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PhysicalCountRequest  true  "counts: product_id -> cantidad contada"
// @Success      200   {object}  dto.PhysicalCountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/physical-count [post]
func (h *InventoryHandler) PhysicalCount(c *fiber.Ctx) error {
	var in dto.PhysicalCountRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	res, err := h.uc.PerformPhysicalCount(c.UserContext(), in.Counts)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.PhysicalCountResponse{
		Adjusted:  nonNil(res.Adjusted),
		Unchanged: nonNil(res.Unchanged),
		NotFound:  nonNil(res.NotFound),
	}
	if len(res.Failed) > 0 {
		out.Failed = make(map[string]string, len(res.Failed))
		for id, ferr := range res.Failed {
			out.Failed[id] = ferr.Error()
		}
	}
	return c.JSON(out)
}

// Stock godoc
// @Summary      Stock actual de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/stock [get]
func (h *InventoryHandler) Stock(c *fiber.Ctx) error {
	id := c.Params("id")
	stock, err := h.uc.CurrentStock(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: id, Stock: stock})
}

// Movements godoc
// @Summary      Historial de movimientos
// @Description  El más reciente primero.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}   dto.MovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{id}/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	list, err := h.uc.MovementHistory(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.MovementResponse{
			ID:          m.ID,
			Date:        m.CreatedAt,
			Type:        m.Kind.String(),
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reason:      m.Reason,
			ReferenceID: m.ReferenceID,
		})
	}
	return c.JSON(out)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
