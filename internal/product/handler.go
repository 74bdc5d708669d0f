package product

import (
	"isletme-backend/internal/auth"
	"isletme-backend/internal/form"
	"isletme-backend/internal/result"

	"github.com/gofiber/fiber/v2"
)

// GET /api/products
func ListProductsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return svc.GetProducts(c.UserContext(), auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// GET /api/products/:id
func GetProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		return svc.GetProductByID(c.UserContext(), id, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// POST /api/products
func CreateProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Input
		if err := c.BodyParser(&body); err != nil {
			return result.Validation("Invalid request body")
		}
		return svc.AddProduct(c.UserContext(), body, auth.UserID(c)).Send(c, fiber.StatusCreated)
	}
}

// PUT /api/products/:id
func UpdateProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body Input
		if err := c.BodyParser(&body); err != nil {
			return result.Validation("Invalid request body")
		}
		return svc.UpdateProduct(c.UserContext(), id, body, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// DELETE /api/products/:id
func DeleteProductHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		return svc.DeleteProduct(c.UserContext(), id, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// GET /api/products/:id/stock-history
func StockHistoryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		return svc.GetProductStockHistory(c.UserContext(), id, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// POST /api/products/:id/adjust-stock
func AdjustStockHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body AdjustInput
		if err := c.BodyParser(&body); err != nil {
			return result.Validation("Invalid request body")
		}
		body.ProductID = id
		return svc.AdjustProductStock(c.UserContext(), body, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}
