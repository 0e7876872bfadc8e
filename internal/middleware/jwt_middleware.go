package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// UserIDKey is the Locals key holding the authenticated user's id.
const UserIDKey = "user_id"

const unauthenticatedMessage = "Could not validate credentials"

// TokenValidator resolves a bearer token to a user id.
type TokenValidator interface {
	Validate(token string) (uint, error)
}

// AuthRequired rejects requests without a valid bearer token.
// Every failure answers 403 with the same message.
func AuthRequired(tokens TokenValidator, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := authenticate(c, tokens, log)
		if !ok {
			return forbidden(c)
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// OptionalAuth lets requests without an Authorization header through
// anonymously, but rejects a header carrying an invalid token.
func OptionalAuth(tokens TokenValidator, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		userID, ok := authenticate(c, tokens, log)
		if !ok {
			return forbidden(c)
		}
		c.Locals(UserIDKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user's id, if any.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(UserIDKey).(uint)
	return id, ok
}

func authenticate(c *fiber.Ctx, tokens TokenValidator, log zerolog.Logger) (uint, bool) {
	// Expected format: "Bearer <token>"
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return 0, false
	}

	userID, err := tokens.Validate(parts[1])
	if err != nil {
		log.Debug().Err(err).Str("path", c.Path()).Msg("token validation failed")
		return 0, false
	}
	return userID, true
}

func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"message": unauthenticatedMessage,
	})
}
