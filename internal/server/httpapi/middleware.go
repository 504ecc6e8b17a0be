package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// userKey is the fiber.Ctx local under which the authenticated identity
// projection is stored for downstream handlers.
const userKey = "user"

// accessTokenRequired guards a route behind a valid Bearer access token.
func (s *Server) accessTokenRequired(c *fiber.Ctx) error {
	header := c.Get(fiber.HeaderAuthorization)
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	projection, err := s.auth.VerifyAccess(token)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	c.Locals(userKey, projection)
	return c.Next()
}
