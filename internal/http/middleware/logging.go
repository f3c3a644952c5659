package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestLogger logs one line per request at a level chosen by status:
// info below 400, warn for 4xx, error for 5xx.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	log = log.Named("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			level := zapcore.InfoLevel
			switch {
			case res.Status >= 500:
				level = zapcore.ErrorLevel
			case res.Status >= 400:
				level = zapcore.WarnLevel
			}

			if ce := log.Check(level, "request"); ce != nil {
				ce.Write(
					zap.String("request_id", GetRequestID(c)),
					zap.String("method", c.Request().Method),
					zap.String("route", c.Path()),
					zap.String("path", c.Request().URL.Path),
					zap.Int("status", res.Status),
					zap.Duration("duration", time.Since(start)),
					zap.Int64("bytes", res.Size),
					zap.String("remote_ip", c.RealIP()),
				)
			}
			return nil
		}
	}
}
