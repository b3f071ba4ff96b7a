package middlewares

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"schoolhub_backend/internals/configs"
)

const defaultCorsOrigins = "http://localhost:3000,http://localhost:5173"

// CorsMiddleware reads the allowed origins from CORS_ALLOW_ORIGINS (comma separated).
func CorsMiddleware() fiber.Handler {
	origins := strings.Split(configs.GetEnv("CORS_ALLOW_ORIGINS", defaultCorsOrigins), ",")
	for i := range origins {
		origins[i] = strings.TrimSpace(origins[i])
	}
	return cors.New(cors.Config{
		AllowOrigins:     strings.Join(origins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Request-ID, X-User-Id",
		ExposeHeaders:    "X-Request-ID",
		AllowCredentials: true,
	})
}
