package auth

import (
	"strings"

	"isletme-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey = "user_id"
	CtxUserKey   = "user"
)

// Middleware token'ı çerezden ya da "Authorization: Bearer" başlığından okur,
// imzayı doğrular ve kullanıcı satırındaki değerle karşılaştırır.
func Middleware(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := tokenFromRequest(c, svc.cfg.CookieName)

		user, err := svc.CurrentUser(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(CtxUserIDKey, user.ID)
		c.Locals(CtxUserKey, user)
		return c.Next()
	}
}

func tokenFromRequest(c *fiber.Ctx, cookieName string) string {
	if t := c.Cookies(cookieName); t != "" {
		return t
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// UserID oturumdaki kullanıcının id'si; middleware dışında 0 döner.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(CtxUserIDKey).(uint)
	return id
}

func CurrentUser(c *fiber.Ctx) *models.User {
	u, _ := c.Locals(CtxUserKey).(*models.User)
	return u
}
