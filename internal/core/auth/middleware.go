package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Keys under which AuthMiddleware stores the caller in fiber Locals
const (
	LocalUserID = "userID"
	LocalEmail  = "email"
	LocalRole   = "role"
)

var (
	errMissingHeader = errors.New("Missing authorization header")
	errBadHeader     = errors.New("Invalid authorization header format. Use: Bearer <token>")
)

// bearerToken pulls the token out of "Bearer <token>", scheme case-insensitive
func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errMissingHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errBadHeader
	}
	return token, nil
}

// AuthMiddleware only accepts access tokens; a refresh token gets 401
func AuthMiddleware(authService *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		claims, err := authService.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalEmail, claims.Email)
		c.Locals(LocalRole, claims.Role)

		return c.Next()
	}
}

// CurrentUserID returns the id AuthMiddleware stored, or "" outside an authenticated route
func CurrentUserID(c *fiber.Ctx) string {
	id, _ := c.Locals(LocalUserID).(string)
	return id
}

// RequireRole must run after AuthMiddleware
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(string)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		for _, allowed := range roles {
			if role == allowed {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "Insufficient permissions",
		})
	}
}
