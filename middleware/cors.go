package middleware

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"projecthub/config"
)

// CORSConfig controls which cross-origin browser clients may call the API.
type CORSConfig struct {
	// AllowedOrigins lists the origins granted access. A single "*" entry
	// allows any origin, but then credentials cannot be sent.
	AllowedOrigins []string

	AllowCredentials bool
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string

	// MaxAge is how long (seconds) browsers may cache a preflight result.
	MaxAge int
}

// DefaultCORSConfig builds the CORS policy from the loaded application
// config. Origins come from CORS_ALLOWED_ORIGINS.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins:   config.AppConfig.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposedHeaders:   []string{"Content-Length"},
		MaxAge:           3600,
	}
}

// CORS returns a handler enforcing the cross-origin policy. With no
// argument it uses DefaultCORSConfig.
func CORS(configs ...CORSConfig) fiber.Handler {
	cfg := DefaultCORSConfig()
	if len(configs) > 0 {
		cfg = configs[0]
	}

	allowAny := false
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowAny = true
			continue
		}
		allowed[origin] = struct{}{}
	}

	methods := strings.Join(cfg.AllowedMethods, ",")
	headers := strings.Join(cfg.AllowedHeaders, ",")
	exposed := strings.Join(cfg.ExposedHeaders, ",")
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *fiber.Ctx) error {
		origin := c.Get("Origin")

		switch {
		case allowAny:
			c.Set("Access-Control-Allow-Origin", "*")
		default:
			if _, ok := allowed[origin]; ok {
				c.Set("Access-Control-Allow-Origin", origin)
				// Responses differ per origin, so caches must key on it.
				c.Set("Vary", "Origin")
			}
		}

		// Credentials are incompatible with a wildcard origin.
		if cfg.AllowCredentials && !allowAny {
			c.Set("Access-Control-Allow-Credentials", "true")
		}

		if c.Method() == fiber.MethodOptions {
			c.Set("Access-Control-Allow-Methods", methods)
			c.Set("Access-Control-Allow-Headers", headers)
			c.Set("Access-Control-Expose-Headers", exposed)
			c.Set("Access-Control-Max-Age", maxAge)
			return c.SendStatus(fiber.StatusNoContent)
		}

		return c.Next()
	}
}
