package helper

import (
	"log"

	"github.com/gofiber/fiber/v2"
)

// FromFiberError converts an error coming out of a service (usually a
// *fiber.Error) into the consistent JSON envelope via helper.Error.
// Anything else is treated as an internal failure: logged, and masked
// with a generic 500 so driver/gateway details never reach the client.
func FromFiberError(c *fiber.Ctx, err error) error {
	if fe, ok := err.(*fiber.Error); ok {
		return Error(c, fe.Code, fe.Message)
	}
	log.Printf("[ERROR] %s %s: %v", c.Method(), c.OriginalURL(), err)
	return Error(c, fiber.StatusInternalServerError, "internal server error")
}
