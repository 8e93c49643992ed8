package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/POS-api/internal/application/dto"
	"github.com/jhoicas/POS-api/internal/application/sales"
	"github.com/jhoicas/POS-api/internal/application/ticket"
)

// SaleHandler captura, anulación y consulta de ventas, más sus comprobantes.
type SaleHandler struct {
	uc      *sales.SaleUseCase
	tickets *ticket.TicketUseCase
}

func NewSaleHandler(uc *sales.SaleUseCase, tickets *ticket.TicketUseCase) *SaleHandler {
	return &SaleHandler{uc: uc, tickets: tickets}
}

// Create godoc
// @Summary      Registrar venta
// @Description  El operador es el usuario del token; sin branch se usa la sucursal del operador. Si falta stock de cualquier línea la venta completa se rechaza (409).
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "Líneas, cliente opcional, IVA incluido"
// @Success      201   {object}  dto.SaleResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSaleRequest
	if ok, err := bindAndValidate(c, &in); !ok {
		return err
	}
	out, err := h.uc.CreateSale(c.UserContext(), GetUserID(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetByID godoc
// @Summary      Obtener venta
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id} [get]
func (h *SaleHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Void godoc
// @Summary      Anular venta
// @Description  Devuelve el stock de cada línea. Anular dos veces responde 409 ALREADY_VOIDED.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/void [post]
func (h *SaleHandler) Void(c *fiber.Ctx) error {
	out, err := h.uc.VoidSale(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	requestLogger(c).Info().Str("sale_id", out.ID).Str("by", GetUserID(c)).Msg("venta anulada")
	return c.JSON(out)
}

// List godoc
// @Summary      Ventas en un rango de fechas
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  true  "YYYY-MM-DD"
// @Param        end    query  string  true  "YYYY-MM-DD"
// @Success      200  {array}   dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales [get]
func (h *SaleHandler) List(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SalesInRange(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ByDate godoc
// @Summary      Ventas de un día
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        date  query  string  true  "YYYY-MM-DD"
// @Success      200  {array}   dto.SaleResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales/by-date [get]
func (h *SaleHandler) ByDate(c *fiber.Ctx) error {
	date, err := parseDate("date", c.Query("date"))
	if err != nil {
		return writeError(c, err)
	}
	out, err := h.uc.SalesByDate(c.UserContext(), date)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ByUser godoc
// @Summary      Ventas de un operador
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        userId  path  string  true  "ID del operador"
// @Success      200  {array}   dto.SaleResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/by-user/{userId} [get]
func (h *SaleHandler) ByUser(c *fiber.Ctx) error {
	out, err := h.uc.SalesByUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Search godoc
// @Summary      Buscar ventas
// @Description  Por prefijo del id de venta o por nombre del operador.
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        q    query  string  true  "Criterio"
// @Success      200  {array}   dto.SaleResponse
// @Router       /api/sales/search [get]
func (h *SaleHandler) Search(c *fiber.Ctx) error {
	out, err := h.uc.SearchSales(c.UserContext(), c.Query("q"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Revenue godoc
// @Summary      Ingreso total del rango
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        start  query  string  true  "YYYY-MM-DD"
// @Param        end    query  string  true  "YYYY-MM-DD"
// @Success      200  {object}  dto.RevenueResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/sales/revenue [get]
func (h *SaleHandler) Revenue(c *fiber.Ctx) error {
	start, end, err := dateRange(c)
	if err != nil {
		return writeError(c, err)
	}
	total, err := h.uc.TotalRevenueInRange(c.UserContext(), start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.RevenueResponse{Start: start.Format(dateLayout), End: end.Format(dateLayout), Total: total})
}

// TicketPDF godoc
// @Summary      Ticket de venta en PDF
// @Tags         tickets
// @Security     Bearer
// @Produce      application/pdf
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/ticket.pdf [get]
func (h *SaleHandler) TicketPDF(c *fiber.Ctx) error {
	body, filename, err := h.tickets.SalePDF(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, "application/pdf", filename, body)
}

// TicketXML godoc
// @Summary      Comprobante XML sellado
// @Tags         tickets
// @Security     Bearer
// @Produce      application/xml
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sales/{id}/ticket.xml [get]
func (h *SaleHandler) TicketXML(c *fiber.Ctx) error {
	body, filename, err := h.tickets.SaleXML(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return sendFile(c, fiber.MIMEApplicationXMLCharsetUTF8, filename, body)
}

// VerifyTicket godoc
// @Summary      Verificar sello de un comprobante XML
// @Description  valid=false si el documento fue alterado después de sellarse.
// @Tags         tickets
// @Security     Bearer
// @Accept       application/xml
// @Produce      json
// @Success      200  {object}  dto.TicketVerifyResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/tickets/verify [post]
func (h *SaleHandler) VerifyTicket(c *fiber.Ctx) error {
	body := c.Body()
	if len(strings.TrimSpace(string(body))) == 0 {
		return badRequest(c, "VALIDATION", "se requiere el XML en el cuerpo")
	}
	ok, err := h.tickets.VerifyXML(c.UserContext(), body)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.TicketVerifyResponse{Valid: ok})
}

func sendFile(c *fiber.Ctx, contentType, filename string, body []byte) error {
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(body)
}
