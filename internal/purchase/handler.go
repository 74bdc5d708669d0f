package purchase

import (
	"isletme-backend/internal/auth"
	"isletme-backend/internal/form"

	"github.com/gofiber/fiber/v2"
)

type StatusRequest struct {
	Status string `json:"status" form:"status"`
}

// GET /api/purchases
func ListPurchasesHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return svc.GetUserPurchases(c.UserContext(), auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// GET /api/purchases/:id
func GetPurchaseHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		return svc.GetPurchaseDetails(c.UserContext(), id, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// POST /api/purchases
// items: [{"product_id":1,"quantity":2,"price":10}] ya da form alanında aynı JSON.
func CreatePurchaseHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Input
		if err := form.Parse(c, &body, &body.Items); err != nil {
			return err
		}
		return svc.AddPurchase(c.UserContext(), body, auth.UserID(c)).Send(c, fiber.StatusCreated)
	}
}

// PUT /api/purchases/:id
func UpdatePurchaseHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body Input
		if err := form.Parse(c, &body, &body.Items); err != nil {
			return err
		}
		return svc.UpdatePurchase(c.UserContext(), id, body, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// PATCH /api/purchases/:id/status
func UpdatePurchaseStatusHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		var body StatusRequest
		if err := form.Parse(c, &body, nil); err != nil {
			return err
		}
		return svc.UpdatePurchaseStatus(c.UserContext(), id, body.Status, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}

// DELETE /api/purchases/:id
func DeletePurchaseHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := form.ParamID(c, "id")
		if err != nil {
			return err
		}
		return svc.DeletePurchase(c.UserContext(), id, auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}
