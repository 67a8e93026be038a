package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/shopcore/retail-backend/internal/events"
	"github.com/shopcore/retail-backend/internal/logging"
)

// detail mirrors the error shape every endpoint uses: a 4xx status with a
// human-readable message.
func detail(c echo.Context, code int, msg string) error {
	return c.JSON(code, echo.Map{"detail": msg})
}

func parseUintParam(c echo.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// publishEvent fires a domain event with a bounded timeout. Publish failures
// are logged and never fail the request. A nil producer is a no-op.
func publishEvent(c echo.Context, p *events.Producer, topic, key string, event map[string]interface{}) {
	if p == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := p.PublishEvent(ctx, topic, key, event); err != nil {
		logging.FromContext(c.Request().Context()).Error("kafka publish error", "topic", topic, "error", err)
	}
}
