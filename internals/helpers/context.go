package helper

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"educenter_backend/internals/constants"
)

// BatchContext: context untuk billing/payroll yang dijalankan lewat HTTP.
// Nilai request tetap terbawa, deadline request tidak; batasnya constants.BatchTimeout.
func BatchContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(c.UserContext()), constants.BatchTimeout)
}
