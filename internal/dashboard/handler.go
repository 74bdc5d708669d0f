package dashboard

import (
	"isletme-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
)

// GET /api/dashboard/summary
func SummaryHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return svc.GetUserDashboardSummary(c.UserContext(), auth.UserID(c)).Send(c, fiber.StatusOK)
	}
}
