package handlers

import (
	"strconv"

	"loanledger/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// fail sends err using its kind's status. Unclassified errors are logged
// and reported with a generic message.
func fail(c *fiber.Ctx, log *zap.Logger, err error) error {
	if response.StatusOf(err) == fiber.StatusInternalServerError {
		log.Error("request failed",
			zap.Error(err),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
		)
	}
	return response.FromError(c, err)
}

// paramID parses a positive numeric path parameter
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
