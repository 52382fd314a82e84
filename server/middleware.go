package server

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/maastricht-university/clinote/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID keeps an incoming X-Request-ID when it is a UUID and generates
// one otherwise. The ID names persisted run directories.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rid := c.Request().Header.Get(RequestIDHeader)
			if id, err := uuid.Parse(rid); err == nil {
				rid = id.String()
			} else {
				rid = uuid.New().String()
			}
			c.Set("request_id", rid)
			c.Response().Header().Set(RequestIDHeader, rid)
			return next(c)
		}
	}
}

func Logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()
			rid, _ := c.Get("request_id").(string)

			err := next(c)

			entry := logger.WithFields(map[string]interface{}{
				"request_id": rid,
				"method":     req.Method,
				"path":       req.URL.Path,
				"status":     c.Response().Status,
				"latency":    time.Since(start).String(),
				"remote_ip":  c.RealIP(),
			})
			if err != nil {
				entry.WithError(err).Error("request")
			} else {
				entry.Info("request")
			}
			return err
		}
	}
}

func Recovery() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					var stack [4096]byte
					n := runtime.Stack(stack[:], false)
					logger.WithFields(map[string]interface{}{
						"request_id": fmt.Sprintf("%v", c.Get("request_id")),
						"panic":      fmt.Sprintf("%v", r),
						"stack":      string(stack[:n]),
					}).Error("panic recovered")
					err = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
				}
			}()
			return next(c)
		}
	}
}
