package handler

import (
	"net/http"

	"slynk/config"

	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness.
type HealthHandler struct {
	env string
}

func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{env: cfg.Env.Env}
}

// HealthCheck is a simple handler to check if the service is up.
func (h *HealthHandler) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "env": h.env})
}
