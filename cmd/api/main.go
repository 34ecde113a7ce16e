package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/sucursales-api/internal/application/auth"
	"github.com/jhoicas/sucursales-api/internal/application/authz"
	"github.com/jhoicas/sucursales-api/internal/application/catalog"
	appsale "github.com/jhoicas/sucursales-api/internal/application/sale"
	"github.com/jhoicas/sucursales-api/internal/application/stock"
	apptransfer "github.com/jhoicas/sucursales-api/internal/application/transfer"
	"github.com/jhoicas/sucursales-api/internal/infrastructure/billing"
	infrapdf "github.com/jhoicas/sucursales-api/internal/infrastructure/pdf"
	"github.com/jhoicas/sucursales-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/sucursales-api/internal/interfaces/http"
	"github.com/jhoicas/sucursales-api/pkg/config"
	"github.com/jhoicas/sucursales-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Repositorios sobre el pool (lecturas fuera de transacción).
	productRepo := postgres.NewProductRepository(pool)
	branchRepo := postgres.NewBranchRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	clientRepo := postgres.NewClientRepository(pool)
	taxRepo := postgres.NewTaxTypeRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	permRepo := postgres.NewPermissionRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	ledger := stock.NewLedger()
	gate := authz.NewGate(permRepo)

	transferWF := apptransfer.NewWorkflow(txRunner, transferRepo, stockRepo, productRepo, branchRepo, ledger, gate, nil)
	saleUC := appsale.NewUseCase(txRunner, saleRepo, productRepo, branchRepo, clientRepo, taxRepo, ledger, gate, nil)

	gateway := billing.NewGateway(billing.Config{
		Endpoint: cfg.Fact.Endpoint,
		Token:    cfg.Fact.Token,
		Timeout:  time.Duration(cfg.Fact.Timeout) * time.Second,
	})
	if cfg.Fact.Endpoint == "" {
		log.Warn().Msg("FACT_ENDPOINT vacío: pasarela de declaración en modo simulado")
	}
	declareUC := appsale.NewDeclareUseCase(txRunner, clientRepo, gateway)
	receiptUC := appsale.NewReceiptUseCase(saleRepo, clientRepo, branchRepo, infrapdf.NewMarotoReceiptGenerator())

	productUC := catalog.NewProductUseCase(productRepo)
	branchUC := catalog.NewBranchUseCase(branchRepo)
	stockQuery := catalog.NewStockQuery(stockRepo, branchRepo)
	authUC := auth.NewUseCase(userRepo, branchRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Sucursales API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:     authUC,
		ProductUC:  productUC,
		BranchUC:   branchUC,
		StockQuery: stockQuery,
		TransferWF: transferWF,
		SaleUC:     saleUC,
		DeclareUC:  declareUC,
		ReceiptUC:  receiptUC,
		JWTSecret:  cfg.JWT.Secret,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
