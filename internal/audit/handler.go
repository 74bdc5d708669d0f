package audit

import (
	"isletme-backend/internal/auth"
	"isletme-backend/internal/form"

	"github.com/gofiber/fiber/v2"
)

// GET /api/audit-logs?entity_type=product&entity_id=1
// Kullanıcı yalnızca kendi işlemlerinin loglarını görür.
func ListAuditLogsHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entityID, err := form.QueryID(c, "entity_id")
		if err != nil {
			return err
		}

		res := svc.ListLogs(c.UserContext(), Filter{
			UserID:     auth.UserID(c),
			EntityType: c.Query("entity_type"),
			EntityID:   entityID,
		})
		return res.Send(c, fiber.StatusOK)
	}
}
