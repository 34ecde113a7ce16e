package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/sucursales-api/internal/application/auth"
	"github.com/jhoicas/sucursales-api/internal/application/catalog"
	"github.com/jhoicas/sucursales-api/internal/application/sale"
	"github.com/jhoicas/sucursales-api/internal/application/transfer"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     *auth.UseCase
	ProductUC  *catalog.ProductUseCase
	BranchUC   *catalog.BranchUseCase
	StockQuery *catalog.StockQuery
	TransferWF *transfer.Workflow
	SaleUC     *sale.UseCase
	DeclareUC  *sale.DeclareUseCase
	ReceiptUC  *sale.ReceiptUseCase
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Products (protegido)
	products := protected.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.Get)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Branches + stock por sucursal (protegido)
	branches := protected.Group("/branches")
	branchHandler := NewBranchHandler(deps.BranchUC)
	stockHandler := NewStockHandler(deps.StockQuery)
	branches.Post("/", branchHandler.Create)
	branches.Get("/", branchHandler.List)
	branches.Get("/:id", branchHandler.Get)
	branches.Get("/:branch_id/stock/low", stockHandler.ListLowStock)
	branches.Get("/:branch_id/stock/:product_id", stockHandler.GetEntry)

	// Transfers (protegido)
	transfers := protected.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferWF)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/:id", transferHandler.Get)
	transfers.Delete("/:id", transferHandler.Delete)
	transfers.Post("/:id/items", transferHandler.AddItems)
	transfers.Put("/:id/items/:product_id", transferHandler.UpdateItem)
	transfers.Delete("/:id/items/:product_id", transferHandler.RemoveItem)
	transfers.Post("/:id/send", transferHandler.Send)
	transfers.Post("/:id/receive", transferHandler.Receive)
	transfers.Post("/:id/cancel", transferHandler.Cancel)
	transfers.Get("/:id/compare", transferHandler.Compare)

	// Sales (protegido)
	sales := protected.Group("/sales")
	saleHandler := NewSaleHandler(deps.SaleUC, deps.DeclareUC, deps.ReceiptUC)
	sales.Post("/", saleHandler.Create)
	sales.Get("/:id", saleHandler.Get)
	sales.Post("/:id/cancel", saleHandler.Cancel)
	sales.Post("/:id/declare", saleHandler.Declare)
	sales.Get("/:id/receipt", saleHandler.Receipt)
}
