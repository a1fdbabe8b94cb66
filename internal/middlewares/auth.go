package middlewares

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/onurcolak/sms-scheduler/pkg/logger"
	"github.com/onurcolak/sms-scheduler/pkg/response"
)

const (
	APIKeyHeader = "X-API-Key"
	bearerPrefix = "Bearer "
)

// secureCompare compares two strings in a way that is safer against timing attacks.
func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// extractAPIKey reads the X-API-Key header, falling back to an Authorization bearer token.
func extractAPIKey(c echo.Context) string {
	if token := c.Request().Header.Get(APIKeyHeader); token != "" {
		return token
	}

	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > len(bearerPrefix) && strings.EqualFold(auth[:len(bearerPrefix)], bearerPrefix) {
		return strings.TrimSpace(auth[len(bearerPrefix):])
	}

	return ""
}

// APIKeyAuth guards a route group with a static API key.
func APIKeyAuth(apiKey string) echo.MiddlewareFunc {
	// If the API key is not configured, treat this as a server-side misconfiguration.
	if apiKey == "" {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return response.InternalServerError(
					c,
					fmt.Errorf("API key is not configured for this endpoint group"),
				)
			}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := extractAPIKey(c)
			if token == "" || !secureCompare(token, apiKey) {
				logger.Warnf("Rejected %s %s from %s: invalid or missing API key",
					c.Request().Method, c.Request().URL.Path, c.RealIP())
				return response.Unauthorized(c)
			}

			return next(c)
		}
	}
}
