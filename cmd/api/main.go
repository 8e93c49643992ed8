package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/jhoicas/POS-api/internal/application/auth"
	"github.com/jhoicas/POS-api/internal/application/inventory"
	"github.com/jhoicas/POS-api/internal/application/reports"
	"github.com/jhoicas/POS-api/internal/application/sales"
	appticket "github.com/jhoicas/POS-api/internal/application/ticket"
	"github.com/jhoicas/POS-api/internal/application/usecase"
	"github.com/jhoicas/POS-api/internal/domain/repository"
	"github.com/jhoicas/POS-api/internal/infrastructure/cache"
	"github.com/jhoicas/POS-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/POS-api/internal/infrastructure/pdf"
	"github.com/jhoicas/POS-api/internal/infrastructure/postgres"
	"github.com/jhoicas/POS-api/internal/infrastructure/ticket"
	httpRouter "github.com/jhoicas/POS-api/internal/interfaces/http"
	"github.com/jhoicas/POS-api/pkg/config"
	"github.com/jhoicas/POS-api/pkg/logger"

	_ "github.com/jhoicas/POS-api/docs"
)

// @title          POS API
// @version        1.0
// @description    Punto de venta: catálogo, inventario con movimientos auditables, ventas con IVA y reportes.
// @BasePath       /
// @securityDefinitions.apikey Bearer
// @in             header
// @name           Authorization

// txRunner transacciones de inventario y de venta sobre el mismo backend.
type txRunner interface {
	inventory.TxRunner
	sales.SaleTxRunner
}

// repos agrupa los adaptadores del backend elegido (postgres | memory).
type repos struct {
	tx         txRunner
	products   repository.ProductRepository
	categories repository.CategoryRepository
	clients    repository.ClientRepository
	users      repository.UserRepository
	movements  repository.StockMovementRepository
	sales      repository.SaleRepository
	reports    repository.ReportRepository
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	r := openRepos(ctx, cfg, log)
	defer r.close()

	if cfg.JWT.Secret == "" {
		cfg.JWT.Secret = uuid.NewString() + uuid.NewString()
		log.Warn().Msg("JWT_SECRET vacío: se generó uno aleatorio, los tokens no sobreviven un reinicio")
	}
	sealKey := cfg.Ticket.SealKey
	if sealKey == "" {
		if !cfg.App.IsDevelopment() {
			log.Fatal().Msg("TICKET_SEAL_KEY es obligatorio fuera de development")
		}
		sealKey = uuid.NewString()
		log.Warn().Msg("TICKET_SEAL_KEY vacío: los comprobantes de esta ejecución no se podrán verificar después")
	}

	// Caché de reportes: Redis si hay REDIS_URL, si no ninguna.
	var reportCache reports.Cache = reports.NopCache{}
	if cfg.Redis.URL != "" {
		rdb, err := cache.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		reportCache = cache.NewReportCache(rdb, cfg.Redis.TTL(), "")
	}

	sealer, err := ticket.NewHMACSealer(sealKey)
	if err != nil {
		log.Fatal().Err(err).Msg("sello de comprobantes")
	}

	inventoryUC := inventory.NewInventoryUseCase(r.tx, r.products, r.movements, log.Component("inventory"))
	reportUC := reports.NewReportUseCase(r.reports, r.products, reportCache, log.Component("reports"))
	saleUC := sales.NewSaleUseCase(r.tx, inventoryUC, r.sales, r.users, r.clients, reportUC, log.Component("sales"))
	ticketUC := appticket.NewTicketUseCase(r.sales, r.products, r.users, r.clients,
		infrapdf.NewMarotoTicketGenerator(""), sealer, cfg.Ticket.StoreName)
	userUC := usecase.NewUserUseCase(r.users, log.Component("users"))
	authUC := auth.NewAuthUseCase(r.users, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log.Zerolog())

	if b := cfg.Bootstrap; b.AdminUsername != "" {
		created, err := userUC.EnsureAdmin(ctx, b.AdminUsername, b.AdminPassword, b.AdminName)
		if err != nil {
			log.Fatal().Err(err).Msg("crear admin inicial")
		}
		if created {
			log.Info().Str("username", b.AdminUsername).Msg("admin inicial creado")
		}
	}

	loginLimiter := httpRouter.NewIPRateLimiter(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)
	stopCleanup := make(chan struct{})
	loginLimiter.StartCleanup(time.Minute, stopCleanup)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.HTTP.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:       authUC,
		ProductUC:    usecase.NewProductUseCase(r.tx, r.products, r.categories),
		CategoryUC:   usecase.NewCategoryUseCase(r.categories),
		ClientUC:     usecase.NewClientUseCase(r.clients),
		UserUC:       userUC,
		InventoryUC:  inventoryUC,
		SaleUC:       saleUC,
		ReportUC:     reportUC,
		TicketUC:     ticketUC,
		JWTSecret:    cfg.JWT.Secret,
		LoginLimiter: loginLimiter,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")
	close(stopCleanup)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

// openRepos conecta el backend configurado. En postgres aplica migraciones si DB_AUTO_MIGRATE.
func openRepos(ctx context.Context, cfg *config.Config, log *logger.Logger) repos {
	if cfg.Store.Driver == config.DriverMemory {
		log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return repos{
			tx:         s,
			products:   memory.NewProductRepository(s),
			categories: memory.NewCategoryRepository(s),
			clients:    memory.NewClientRepository(s),
			users:      memory.NewUserRepository(s),
			movements:  memory.NewStockMovementRepository(s),
			sales:      memory.NewSaleRepository(s),
			reports:    memory.NewReportRepository(s),
			close:      func() {},
		}
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool, log.Component("migrate")); err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("migraciones")
		}
	}
	return repos{
		tx:         postgres.NewTxRunner(pool),
		products:   postgres.NewProductRepository(pool),
		categories: postgres.NewCategoryRepository(pool),
		clients:    postgres.NewClientRepository(pool),
		users:      postgres.NewUserRepository(pool),
		movements:  postgres.NewStockMovementRepository(pool),
		sales:      postgres.NewSaleRepository(pool),
		reports:    postgres.NewReportRepository(pool),
		close:      pool.Close,
	}
}
