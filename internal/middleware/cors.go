package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/cors"
)

// CORS allows the web frontend origins to call the API.
func CORS(origins []string) echo.MiddlewareFunc {
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Correlation-ID"},
		ExposedHeaders: []string{"Correlation-ID", "X-Cache", "Retry-After"},
	})
	return echo.WrapMiddleware(c.Handler)
}
