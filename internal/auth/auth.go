// Package auth guards mutating API routes with HS256 bearer tokens.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

// LocalsKey is where the verified *jwt.Token is stored on the fiber context.
const LocalsKey = "user"

type subjectKey struct{}

// Middleware verifies bearer tokens on POST, PUT, PATCH and DELETE requests.
// An empty secret disables the check.
func Middleware(secret string) fiber.Handler {
	if secret == "" {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ContextKey:    LocalsKey,
		Filter: func(c *fiber.Ctx) bool {
			return readOnly(c.Method())
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			if sub, ok := subjectFromLocals(c); ok {
				c.SetUserContext(WithSubject(c.UserContext(), sub))
			}
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "error": "Missing or invalid token"})
		},
	})
}

func readOnly(method string) bool {
	switch method {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return true
	}
	return false
}

// IssueToken signs a token for subject that expires ttl after now.
func IssueToken(secret, subject string, ttl time.Duration, now time.Time) (string, error) {
	if secret == "" {
		return "", errors.New("jwt secret is not configured")
	}
	if ttl <= 0 {
		return "", errors.New("token ttl must be positive")
	}
	claims := jwt.MapClaims{
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// WithSubject records the authenticated subject on ctx.
func WithSubject(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// SubjectFromContext returns the authenticated subject, or "" for anonymous
// requests.
func SubjectFromContext(ctx context.Context) string {
	sub, _ := ctx.Value(subjectKey{}).(string)
	return sub
}

func subjectFromLocals(c *fiber.Ctx) (string, bool) {
	tok, ok := c.Locals(LocalsKey).(*jwt.Token)
	if !ok {
		return "", false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	sub, ok := claims["sub"].(string)
	return sub, ok && sub != ""
}
