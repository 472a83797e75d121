// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"studentbilling_backend/internals/configs"
)

/* =========================================================
   Bearer-token guard

   The billing routes assume a verified identity; token
   issuance and the legacy session fallback live in another
   service. This middleware only checks the access token and
   exposes its claims for the handlers.
========================================================= */

type AccessClaims struct {
	ID          int64  `json:"id"`
	AccountType string `json:"type"`
	XSRF        string `json:"xsrf"`
	jwt.RegisteredClaims
}

func AuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}

		if configs.JWTSecret == "" {
			return fiber.NewError(fiber.StatusInternalServerError, "missing JWT secret")
		}

		claims := &AccessClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(configs.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
		}

		c.Locals("account_id", claims.ID)
		c.Locals("account_type", claims.AccountType)
		return c.Next()
	}
}

func extractBearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && parts[1] != "" {
			return parts[1], nil
		}
		return "", errors.New("malformed Authorization header")
	}
	if cookie := c.Cookies("accessToken"); cookie != "" {
		return cookie, nil
	}
	return "", errors.New("missing access token")
}
