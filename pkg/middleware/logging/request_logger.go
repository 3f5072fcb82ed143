package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/shop_backend/pkg/logging"
)

// RequestLogger puts a request-scoped logger into the request context and
// writes one line per request. Errors are rendered here so the logged status
// matches what the client got.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With(
				"method", req.Method,
				"path", c.Path(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
			)
			if rid != "" {
				l = l.With("request_id", rid)
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}

			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			attrs := []any{"status", c.Response().Status, "duration_ms", time.Since(start).Milliseconds()}
			if uid := c.Get("user_id"); uid != nil {
				attrs = append(attrs, "user_id", uid)
			}

			status := c.Response().Status
			switch {
			case status >= 500:
				l.Error("request completed", append(attrs, "error", errStr(err))...)
			case status >= 400:
				l.Warn("request completed", append(attrs, "error", errStr(err))...)
			default:
				l.Info("request completed", append(attrs, "bytes", c.Response().Size)...)
			}
			return nil
		}
	}
}

func errStr(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
