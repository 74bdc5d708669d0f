// Package health veritabanı bağlantı kontrolü uç noktasını içerir.
package health

import (
	"context"
	"time"

	"isletme-backend/internal/database"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Response struct {
	Success     bool   `json:"success"`
	IsConnected bool   `json:"isConnected"`
	Message     string `json:"message"`
	LastError   string `json:"lastError,omitempty"`
}

// Check yeni bir deneme için backoff'u sıfırlar ve SELECT 1 çalıştırır.
func Check(ctx context.Context, db *database.Conn) Response {
	db.ResetBackoff()

	resp := Response{Success: true, Message: "Database connection successful"}
	if err := db.Ping(ctx); err != nil {
		resp.Success = false
		resp.Message = "Database connection failed"
	}
	resp.IsConnected = db.IsConnected()
	if err := db.LastError(); err != nil {
		resp.LastError = err.Error()
	}
	return resp
}

// GET /api/db-check
func DBCheckHandler(db *database.Conn, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		resp := Check(ctx, db)
		if !resp.Success {
			log.Warn("database check failed", zap.String("last_error", resp.LastError))
			return c.Status(fiber.StatusInternalServerError).JSON(resp)
		}
		return c.JSON(resp)
	}
}
