package sale

import (
	"isletme-backend/internal/auth"
	"isletme-backend/internal/form"

	"github.com/gofiber/fiber/v2"
)

// GET /api/sales
func ListSalesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return svc.GetUserSales(c.UserContext(), auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// GET /api/sales/:id
func GetSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		return svc.GetSaleDetails(c.UserContext(), id, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// POST /api/sales
func CreateSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Input
		if err := form.Parse(c, &body, &body.Items); err != nil {
			return err
		}
		return svc.AddSale(c.UserContext(), body, auth.UserID(c)).Send(c, fiber.StatusCreated)
	}
}

// PUT /api/sales/:id
func UpdateSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body Input
		if err := form.Parse(c, &body, &body.Items); err != nil {
			return err
		}
		return svc.UpdateSale(c.UserContext(), id, body, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// DELETE /api/sales/:id
func DeleteSaleHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		return svc.DeleteSale(c.UserContext(), id, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}
