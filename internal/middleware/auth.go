// Package middleware provides authentication, logging, metrics, rate limiting
// and tracing middleware for the HTTP server.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"auconnect/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// AuthConfig describes how session tokens are located and verified.
type AuthConfig struct {
	Secret     string
	CookieName string
	// Redis is optional. When set, tokens whose jti is blacklisted are rejected.
	Redis *redis.Client
}

// AuthRequired enforces a valid session token. The token is read from the
// session cookie first and from an "Authorization: Bearer" header second. On
// success the user id is stored in c.Locals("userID") and on the user context.
func AuthRequired(cfg AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c, cfg.CookieName)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		userID, jti, err := ParseToken(tokenString, cfg.Secret)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}

		if jti != "" && cfg.Redis != nil {
			revoked, rerr := cfg.Redis.Exists(c.Context(), "blacklist:"+jti).Result()
			if rerr == nil && revoked > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		c.Locals("userID", userID)
		c.SetUserContext(WithUserID(c.UserContext(), userID))

		return c.Next()
	}
}

func tokenFromRequest(c *fiber.Ctx, cookieName string) string {
	if cookieName != "" {
		if v := c.Cookies(cookieName); v != "" {
			return v
		}
	}
	parts := strings.Split(c.Get(fiber.HeaderAuthorization), " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// ParseToken validates an HMAC-signed token and returns the user id it was
// issued for along with its jti (empty when absent). The user id comes from
// the "sub" claim, falling back to "userId" for tokens minted by the sign-in
// flow.
func ParseToken(tokenString, secret string) (uint, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", models.NewUnauthorizedError("Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", models.NewUnauthorizedError("Invalid token claims")
	}

	raw, ok := claims["sub"]
	if !ok {
		raw, ok = claims["userId"]
	}
	if !ok {
		return 0, "", models.NewUnauthorizedError("Invalid token structure - missing subject")
	}

	userID, ok := claimToUserID(raw)
	if !ok {
		return 0, "", models.NewUnauthorizedError("Invalid user ID in token")
	}

	jti, _ := claims["jti"].(string)
	return userID, jti, nil
}

func claimToUserID(v any) (uint, bool) {
	switch id := v.(type) {
	case string:
		n, err := strconv.ParseUint(id, 10, 32)
		if err != nil || n == 0 {
			return 0, false
		}
		return uint(n), true
	case float64:
		if id < 1 || id != float64(uint32(id)) {
			return 0, false
		}
		return uint(id), true
	}
	return 0, false
}

// UserIDFromContext returns the authenticated user id stored by AuthRequired.
func UserIDFromContext(ctx context.Context) (uint, bool) {
	uid, ok := ctx.Value(UserIDKey).(uint)
	return uid, ok
}
