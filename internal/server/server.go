// Package server fiber uygulamasını kurar ve rotaları bağlar.
package server

import (
	"slices"
	"strings"

	"isletme-backend/internal/audit"
	"isletme-backend/internal/auth"
	"isletme-backend/internal/config"
	"isletme-backend/internal/customer"
	"isletme-backend/internal/dashboard"
	"isletme-backend/internal/database"
	"isletme-backend/internal/health"
	"isletme-backend/internal/logger"
	"isletme-backend/internal/product"
	"isletme-backend/internal/purchase"
	"isletme-backend/internal/result"
	"isletme-backend/internal/sale"
	"isletme-backend/internal/stock"
	"isletme-backend/internal/supplier"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func New(cfg *config.Config, db *database.Conn, log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "isletme-backend",
		ErrorHandler: result.ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(logger.RequestID())
	app.Use(logger.Middleware(log.Named("http")))

	// CORS origins'i virgülle ayrılmış string'den array'e çevir
	corsOrigins := strings.Split(cfg.Server.CORSOrigins, ",")
	for i := range corsOrigins {
		corsOrigins[i] = strings.TrimSpace(corsOrigins[i])
	}
	// fiber "*" ile credentials'a izin vermez
	withCredentials := !slices.Contains(corsOrigins, "*")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(corsOrigins, ","),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowCredentials: withCredentials,
	}))

	authSvc := auth.NewService(db, log, cfg.Auth)
	productSvc := product.NewService(db, log)
	purchaseSvc := purchase.NewService(db, log)
	saleSvc := sale.NewService(db, log)
	customerSvc := customer.NewService(db, log)
	supplierSvc := supplier.NewService(db, log)
	stockSvc := stock.NewService(db, log, cfg.Stock.LowStockThreshold)
	dashboardSvc := dashboard.NewService(db, log, cfg.Stock.LowStockThreshold)
	auditSvc := audit.NewService(db, log)

	api := app.Group("/api")

	// Public
	api.Post("/auth/signup", auth.SignUpHandler(authSvc))
	api.Post("/auth/login", auth.LoginHandler(authSvc))
	api.Post("/auth/forgot-password", auth.ForgotPasswordHandler(authSvc))
	api.Get("/db-check", health.DBCheckHandler(db, log))

	// Protected
	protected := api.Group("")
	protected.Use(auth.Middleware(authSvc))

	protected.Get("/auth/me", auth.MeHandler())
	protected.Post("/auth/logout", auth.LogoutHandler(authSvc))

	protected.Get("/customers", customer.ListCustomersHandler(customerSvc))
	protected.Post("/customers", customer.CreateCustomerHandler(customerSvc))
	protected.Put("/customers/:id", customer.UpdateCustomerHandler(customerSvc))
	protected.Delete("/customers/:id", customer.DeleteCustomerHandler(customerSvc))

	protected.Get("/suppliers", supplier.ListSuppliersHandler(supplierSvc))
	protected.Post("/suppliers", supplier.CreateSupplierHandler(supplierSvc))
	protected.Put("/suppliers/:id", supplier.UpdateSupplierHandler(supplierSvc))
	protected.Delete("/suppliers/:id", supplier.DeleteSupplierHandler(supplierSvc))

	protected.Get("/products", product.ListProductsHandler(productSvc))
	protected.Post("/products", product.CreateProductHandler(productSvc))
	protected.Get("/products/:id", product.GetProductHandler(productSvc))
	protected.Put("/products/:id", product.UpdateProductHandler(productSvc))
	protected.Delete("/products/:id", product.DeleteProductHandler(productSvc))
	protected.Get("/products/:id/stock-history", product.StockHistoryHandler(productSvc))
	protected.Post("/products/:id/adjust-stock", product.AdjustStockHandler(productSvc))

	protected.Get("/purchases", purchase.ListPurchasesHandler(purchaseSvc))
	protected.Post("/purchases", purchase.CreatePurchaseHandler(purchaseSvc))
	protected.Get("/purchases/:id", purchase.GetPurchaseHandler(purchaseSvc))
	protected.Put("/purchases/:id", purchase.UpdatePurchaseHandler(purchaseSvc))
	protected.Patch("/purchases/:id/status", purchase.UpdatePurchaseStatusHandler(purchaseSvc))
	protected.Delete("/purchases/:id", purchase.DeletePurchaseHandler(purchaseSvc))

	protected.Get("/sales", sale.ListSalesHandler(saleSvc))
	protected.Post("/sales", sale.CreateSaleHandler(saleSvc))
	protected.Get("/sales/:id", sale.GetSaleHandler(saleSvc))
	protected.Put("/sales/:id", sale.UpdateSaleHandler(saleSvc))
	protected.Delete("/sales/:id", sale.DeleteSaleHandler(saleSvc))

	protected.Get("/stock/movements", stock.ListMovementsHandler(stockSvc))
	protected.Post("/stock/movements", stock.CreateMovementHandler(stockSvc))
	protected.Get("/stock/low", stock.LowStockHandler(stockSvc))
	protected.Get("/stock/summary", stock.SummaryHandler(stockSvc))

	protected.Get("/dashboard/summary", dashboard.SummaryHandler(dashboardSvc))
	protected.Get("/audit-logs", audit.ListAuditLogsHandler(auditSvc))

	return app
}
