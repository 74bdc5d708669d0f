package supplier

import (
	"isletme-backend/internal/auth"
	"isletme-backend/internal/form"
	"isletme-backend/internal/result"

	"github.com/gofiber/fiber/v2"
)

// GET /api/suppliers
func ListSuppliersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return svc.GetSuppliers(c.UserContext(), auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// POST /api/suppliers
func CreateSupplierHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Input
		if err := c.BodyParser(&body); err != nil {
			return result.Validation("Invalid request body")
		}
		return svc.AddSupplier(c.UserContext(), body, auth.UserID(c)).Send(c, fiber.StatusCreated)
	}
}

// PUT /api/suppliers/:id
func UpdateSupplierHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body Input
		if err := c.BodyParser(&body); err != nil {
			return result.Validation("Invalid request body")
		}
		return svc.UpdateSupplier(c.UserContext(), id, body, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// DELETE /api/suppliers/:id
func DeleteSupplierHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		return svc.DeleteSupplier(c.UserContext(), id, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}
