package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/POS-api/internal/application/auth"
	"github.com/jhoicas/POS-api/internal/application/inventory"
	"github.com/jhoicas/POS-api/internal/application/reports"
	"github.com/jhoicas/POS-api/internal/application/sales"
	"github.com/jhoicas/POS-api/internal/application/ticket"
	"github.com/jhoicas/POS-api/internal/application/usecase"
	"github.com/jhoicas/POS-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC       *auth.AuthUseCase
	ProductUC    *usecase.ProductUseCase
	CategoryUC   *usecase.CategoryUseCase
	ClientUC     *usecase.ClientUseCase
	UserUC       *usecase.UserUseCase
	InventoryUC  *inventory.InventoryUseCase
	SaleUC       *sales.SaleUseCase
	ReportUC     *reports.ReportUseCase
	TicketUC     *ticket.TicketUseCase
	JWTSecret    string
	LoginLimiter *IPRateLimiter // nil = sin límite
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público, login con límite por IP)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	if deps.LoginLimiter != nil {
		authGroup.Post("/login", deps.LoginLimiter.Middleware(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))
	adminOnly := RequireRole(entity.RoleAdmin)

	protected.Get("/auth/me", authHandler.Me)

	// Products
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/search", productHandler.Search)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)
	products.Get("/:id/availability", productHandler.Availability)

	// Categories
	categories := protected.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC, deps.ProductUC)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/", categoryHandler.List)
	categories.Get("/:id", categoryHandler.GetByID)
	categories.Put("/:id", categoryHandler.Update)
	categories.Delete("/:id", categoryHandler.Delete)
	categories.Get("/:id/products", categoryHandler.Products)

	// Clients
	clients := protected.Group("/clients")
	clientHandler := NewClientHandler(deps.ClientUC)
	clients.Post("/", clientHandler.Create)
	clients.Get("/", clientHandler.List)
	clients.Get("/search", clientHandler.Search)
	clients.Get("/:id", clientHandler.GetByID)
	clients.Put("/:id", clientHandler.Update)
	clients.Delete("/:id", clientHandler.Delete)

	// Users (admin)
	users := protected.Group("/users", adminOnly)
	userHandler := NewUserHandler(deps.UserUC, deps.SaleUC)
	users.Post("/", userHandler.Create)
	users.Get("/", userHandler.List)
	users.Get("/:id", userHandler.GetByID)
	users.Put("/:id", userHandler.Update)
	users.Post("/:id/deactivate", userHandler.Deactivate)
	users.Get("/:id/sales", userHandler.Sales)

	// Inventory
	inv := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.InventoryUC)
	inv.Post("/adjust", inventoryHandler.Adjust)
	inv.Post("/entries", inventoryHandler.Entry)
	inv.Post("/exits", inventoryHandler.Exit)
	inv.Get("/low-stock", inventoryHandler.LowStock)
	inv.Post("/physical-count", adminOnly, inventoryHandler.PhysicalCount)
	inv.Get("/products/:id/stock", inventoryHandler.Stock)
	inv.Get("/products/:id/movements", inventoryHandler.Movements)

	// Sales y comprobantes
	saleGroup := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, deps.TicketUC)
	saleGroup.Post("/", saleHandler.Create)
	saleGroup.Get("/", saleHandler.List)
	saleGroup.Get("/by-date", saleHandler.ByDate)
	saleGroup.Get("/by-user/:userId", saleHandler.ByUser)
	saleGroup.Get("/search", saleHandler.Search)
	saleGroup.Get("/revenue", saleHandler.Revenue)
	saleGroup.Get("/:id", saleHandler.GetByID)
	saleGroup.Post("/:id/void", adminOnly, saleHandler.Void)
	saleGroup.Get("/:id/ticket.pdf", saleHandler.TicketPDF)
	saleGroup.Get("/:id/ticket.xml", saleHandler.TicketXML)
	protected.Post("/tickets/verify", saleHandler.VerifyTicket)

	// Reports (admin)
	rep := protected.Group("/reports", adminOnly)
	reportHandler := NewReportHandler(deps.ReportUC)
	rep.Get("/top-products", reportHandler.TopProducts)
	rep.Get("/sales-by-user", reportHandler.SalesByUser)
	rep.Get("/sales-by-category", reportHandler.SalesByCategory)
	rep.Get("/daily", reportHandler.Daily)
	rep.Get("/monthly", reportHandler.Monthly)
	rep.Get("/low-stock", reportHandler.LowStock)
}
