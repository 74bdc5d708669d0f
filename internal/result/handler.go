package result

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler handler'lardan dönen hataları da aynı zarfla yazar.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(Result{Success: false, Message: fe.Message})
		}

		res := FromError(err)
		if res.Kind == KindDatabase && log != nil {
			log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(res.Kind.HTTPStatus()).JSON(res)
	}
}
