package customer

import (
	"isletme-backend/internal/auth"
	"isletme-backend/internal/form"
	"isletme-backend/internal/result"

	"github.com/gofiber/fiber/v2"
)

// GET /api/customers
func ListCustomersHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return svc.GetCustomers(c.UserContext(), auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// POST /api/customers
func CreateCustomerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Input
		if err := c.BodyParser(&body); err != nil {
			return result.Validation("Invalid request body")
		}
		return svc.AddCustomer(c.UserContext(), body, auth.UserID(c)).Send(c, fiber.StatusCreated)
	}
}

// PUT /api/customers/:id
func UpdateCustomerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body Input
		if err := c.BodyParser(&body); err != nil {
			return result.Validation("Invalid request body")
		}
		return svc.UpdateCustomer(c.UserContext(), id, body, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// DELETE /api/customers/:id
func DeleteCustomerHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		return svc.DeleteCustomer(c.UserContext(), id, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}
