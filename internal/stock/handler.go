package stock

import (
	"isletme-backend/internal/auth"
	"isletme-backend/internal/form"
	"isletme-backend/internal/result"

	"github.com/gofiber/fiber/v2"
)

// GET /api/stock/movements?product_id=1
// product_id yoksa kullanıcının tüm ürünlerinin hareketleri döner.
func ListMovementsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		productID, err := form.QueryID(c, "product_id")
		if err != nil {
			return err
		}
		return svc.GetStockHistory(c.UserContext(), productID, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// POST /api/stock/movements
func CreateMovementHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body MovementInput
		if err := c.BodyParser(&body); err != nil {
			return result.Validation("Invalid request body")
		}
		return svc.AddStockMovement(c.UserContext(), body, auth.UserID(c)).Send(c, fiber.StatusCreated)
	}
}

// GET /api/stock/low?threshold=5
func LowStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		threshold := c.QueryInt("threshold", 0)
		return svc.GetLowStockProducts(c.UserContext(), auth.UserID(c), threshold).Send(c, fiber.StatusOK)
	}
}

// GET /api/stock/summary
func SummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return svc.GetStockSummary(c.UserContext(), auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}
