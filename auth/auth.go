// Package auth holds the fiber middlewares that identify the caller from a
// JWT and gate routes on that identity.
package auth

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	headerAuthorization = "Authorization"
	bearerPrefix        = "Bearer "

	// userCtxKey is the fiber Locals key the verified User is stored under.
	userCtxKey = "user"
)

// Claims is the token payload: who the caller is and whether they administer
// the service.
type Claims struct {
	Username string `json:"username"`
	IsAdmin  bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// User is the verified caller.
type User struct {
	Username string
	IsAdmin  bool
}

// Authenticate verifies an HS256 bearer token signed with secret and, when it
// is valid, stores the caller for the handlers below. A missing or invalid
// token is not an error here; routes that need a caller say so with
// EnsureLoggedIn or EnsureAdmin.
func Authenticate(secret []byte) fiber.Handler {
	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	}

	return func(c *fiber.Ctx) error {
		header := c.Get(headerAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return c.Next()
		}
		raw := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(raw, claims, keyFunc,
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			return c.Next()
		}

		c.Locals(userCtxKey, User{Username: claims.Username, IsAdmin: claims.IsAdmin})
		return c.Next()
	}
}

// CurrentUser returns the caller stored by Authenticate.
func CurrentUser(c *fiber.Ctx) (User, bool) {
	u, ok := c.Locals(userCtxKey).(User)
	return u, ok
}

// EnsureLoggedIn rejects requests without a verified caller.
func EnsureLoggedIn() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			return unauthorized(c, "Authentication required")
		}
		return c.Next()
	}
}

// EnsureAdmin rejects requests whose caller is not an administrator.
func EnsureAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		u, ok := CurrentUser(c)
		if !ok || !u.IsAdmin {
			return unauthorized(c, "Admin access required")
		}
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"code":    "UNAUTHORIZED",
		"message": msg,
	})
}
