package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v3"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/festival-coordinator/internal/logging"
)

// CorrelationID tags each request with the caller's Correlation-ID header,
// or a fresh short id, and stores a logger carrying it in the request
// context. The id is echoed back in the response.
func CorrelationID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id := req.Header.Get(logging.CorrelationHeader)
			if id == "" {
				id = shortuuid.New()
			}
			ctx := logging.ToContext(req.Context(), logrus.WithField("correlation_id", id))
			ctx = logging.ContextWithCorrelationID(ctx, id)
			c.SetRequest(req.WithContext(ctx))
			c.Response().Header().Set(logging.CorrelationHeader, id)
			return next(c)
		}
	}
}
