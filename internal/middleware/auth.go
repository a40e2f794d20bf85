package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/soltixdb/trendscope/internal/config"
	"github.com/soltixdb/trendscope/internal/logging"
	"github.com/soltixdb/trendscope/internal/models"
)

// MinAPIKeyLength is the minimum required length for API keys
const MinAPIKeyLength = 32

// SubjectLocal is the fiber.Ctx local holding the authenticated JWT subject
const SubjectLocal = "auth_subject"

// ValidateAPIKey checks if an API key meets the security requirements
func ValidateAPIKey(key string) bool {
	if len(key) < MinAPIKeyLength {
		return false
	}
	return strings.TrimSpace(key) != ""
}

// ParseJWT validates an HS256 bearer token and returns its claims
func ParseJWT(tokenString string, secret []byte) (*jwt.RegisteredClaims, error) {
	if tokenString == "" {
		return nil, errors.New("auth: empty token")
	}
	if len(secret) == 0 {
		return nil, errors.New("auth: empty secret")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	claims := &jwt.RegisteredClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("auth: invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("auth: invalid token")
	}
	return claims, nil
}

// Auth creates the authentication middleware. Requests must carry either a
// configured API key (X-API-Key, "Authorization: Bearer <key>" or a bare
// Authorization value) or, when a JWT secret is configured, a valid HS256
// bearer token.
func Auth(logger *logging.Logger, cfg config.AuthConfig) fiber.Handler {
	if !cfg.Enabled {
		return func(c *fiber.Ctx) error {
			return c.Next()
		}
	}

	keyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key == "" {
			continue
		}
		if !ValidateAPIKey(key) {
			logger.Warn("API key does not meet security requirements",
				"key_length", len(key),
				"min_required", MinAPIKeyLength,
				"key_prefix", maskAPIKey(key),
			)
			continue
		}
		keyMap[key] = true
	}

	if len(keyMap) == 0 && len(cfg.APIKeys) > 0 && cfg.JWTSecret == "" {
		logger.Error("No valid API keys configured - all provided keys failed validation",
			"total_keys", len(cfg.APIKeys),
			"min_required_length", MinAPIKeyLength,
		)
	}
	secret := []byte(cfg.JWTSecret)

	return func(c *fiber.Ctx) error {
		credential := c.Get("X-API-Key")
		bearer := false
		if credential == "" {
			authHeader := c.Get("Authorization")
			if after, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
				credential = after
				bearer = true
			} else {
				credential = authHeader
			}
		}

		if credential == "" {
			logger.Warn("Credentials missing",
				"path", c.Path(),
				"method", c.Method(),
				"ip", c.IP(),
			)
			return unauthorized(c, "API key or bearer token is required. Provide it via X-API-Key or Authorization header.")
		}

		if keyMap[credential] {
			logger.Debug("API key authenticated", "path", c.Path(), "method", c.Method())
			return c.Next()
		}

		if bearer && len(secret) > 0 {
			claims, err := ParseJWT(credential, secret)
			if err == nil {
				c.Locals(SubjectLocal, claims.Subject)
				logger.Debug("Bearer token authenticated", "path", c.Path(), "subject", claims.Subject)
				return c.Next()
			}
			logger.Warn("Invalid bearer token",
				"path", c.Path(),
				"method", c.Method(),
				"ip", c.IP(),
				"error", err,
			)
			return unauthorized(c, "Invalid bearer token.")
		}

		logger.Warn("Invalid API key",
			"path", c.Path(),
			"method", c.Method(),
			"ip", c.IP(),
			"api_key_prefix", maskAPIKey(credential),
		)
		return unauthorized(c, "Invalid API key.")
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "UNAUTHORIZED",
			Message: message,
		},
	})
}

// maskAPIKey masks API key for logging (show only first 4 chars)
func maskAPIKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + "****"
}
