package middleware

import (
	"log/slog"

	deliverycontext "passport/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// RequestID propagates or generates an X-Request-Id and attaches a
// request-scoped logger carrying it, so usecase logs correlate with responses.
func RequestID(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(deliverycontext.HeaderXRequestID)
			if requestID == "" {
				requestID = deliverycontext.GetRequestID(c)
			}

			deliverycontext.SetRequestID(c, requestID)
			c.Response().Header().Set(deliverycontext.HeaderXRequestID, requestID)

			reqLogger := logger.With(slog.String("requestID", requestID))
			ctx := deliverycontext.WithRequestID(c.Request().Context(), requestID)
			ctx = deliverycontext.WithLogger(ctx, reqLogger)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
