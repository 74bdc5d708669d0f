package auth

import (
	"time"

	"isletme-backend/internal/result"

	"github.com/gofiber/fiber/v2"
)

type ForgotPasswordRequest struct {
	Email string `json:"email" form:"reset-email"`
}

func (s *Service) setCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cfg.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   s.cfg.CookieMaxAge,
		HTTPOnly: true,
		Secure:   s.cfg.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// POST /api/auth/signup
func SignUpHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SignUpInput
		if err := c.BodyParser(&body); err != nil {
			return result.Validation("Invalid request body")
		}

		res := svc.SignUp(c.UserContext(), body)
		if data, ok := res.Data.(UserData); ok && res.Success {
			svc.setCookie(c, data.Token)
		}
		return res.Send(c, fiber.StatusCreated)
	}
}

// POST /api/auth/login
func LoginHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginInput
		if err := c.BodyParser(&body); err != nil {
			return result.Validation("Invalid request body")
		}

		res := svc.Login(c.UserContext(), body)
		if data, ok := res.Data.(UserData); ok && res.Success {
			svc.setCookie(c, data.Token)
		}
		return res.Send(c, fiber.StatusOK)
	}
}

// POST /api/auth/forgot-password
func ForgotPasswordHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ForgotPasswordRequest
		if err := c.BodyParser(&body); err != nil {
			return result.Validation("Invalid request body")
		}
		if body.Email == "" {
			// JSON istemcileri "reset-email" yerine "email" de gönderebilir
			body.Email = c.FormValue("email")
		}
		return svc.ForgotPassword(c.UserContext(), body.Email).Send(c, fiber.StatusOK)
	}
}

// POST /api/auth/logout
// Sadece çerezi siler; satırdaki token bir sonraki girişte yeniden kullanılır.
func LogoutHandler(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     svc.cfg.CookieName,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   svc.cfg.CookieSecure,
		})
		return result.OK("Logged out", nil).Send(c, fiber.StatusOK)
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u := CurrentUser(c)
		if u == nil {
			return result.Unauthorized("Authentication required")
		}
		return result.OK("", fiber.Map{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
		}).Send(c, fiber.StatusOK)
	}
}
