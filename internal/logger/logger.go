package logger

import (
	"time"

	"isletme-backend/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New, LoggerConfig'e göre bir zap logger kurar. development ortamında
// console encoding ve debug seviyesi zorlanır.
func New(appEnv string, cfg config.LoggerConfig) (*zap.Logger, error) {
	var zc zap.Config
	if appEnv == "development" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Encoding = cfg.Encoding
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if appEnv == "development" && level > zapcore.DebugLevel {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.DisableCaller = cfg.DisableCaller
	zc.DisableStacktrace = cfg.DisableStacktrace
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return zc.Build()
}

const CtxRequestIDKey = "request_id"

// RequestID istemciden gelen X-Request-ID'yi korur, yoksa uuid üretir.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: CtxRequestIDKey,
	})
}

// Middleware her isteği method, path, status ve süre ile loglar. Zincirden
// dönen hata burada uygulamanın ErrorHandler'ına verilir, böylece loglanan
// status istemciye giden status olur.
func Middleware(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}
		if rid, ok := c.Locals(CtxRequestIDKey).(string); ok {
			fields = append(fields, zap.String("request_id", rid))
		}
		if chainErr != nil {
			fields = append(fields, zap.Error(chainErr))
			log.Warn("request failed", fields...)
			return nil
		}
		log.Info("request", fields...)
		return nil
	}
}
