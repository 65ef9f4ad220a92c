package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/minivalidation/internal/middleware"
	"github.com/deppfellow/minivalidation/internal/server"
	"github.com/deppfellow/minivalidation/internal/validation"
)

// HealthHandler serves GET /status for load balancers and uptime monitors.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

// CheckHealth reports 200 when the validation engine answers a probe the way
// it should and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	checks := map[string]any{}
	response := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"checks":      checks,
	}

	probeStart := time.Now()
	if err := probeValidationEngine(); err != nil {
		checks["validation"] = map[string]any{
			"status":        "unhealthy",
			"response_time": time.Since(probeStart).String(),
			"error":         err.Error(),
		}
		response["status"] = "unhealthy"

		logger.Error().Err(err).Msg("validation engine health check failed")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckError", map[string]any{
				"check_type":        "validation",
				"operation":         "health_check",
				"total_duration_ms": time.Since(start).Milliseconds(),
				"error_message":     err.Error(),
			})
		}

		return c.JSON(http.StatusServiceUnavailable, response)
	}

	checks["validation"] = map[string]any{
		"status":        "healthy",
		"response_time": time.Since(probeStart).String(),
	}

	logger.Debug().
		Dur("total_duration", time.Since(start)).
		Msg("health check passed")

	return c.JSON(http.StatusOK, response)
}

var probeRules = validation.NewRuleSet(
	validation.Field("Probe", func(s *string) any { return *s }, validation.Required()),
)

func probeValidationEngine() error {
	empty := ""
	if failures := validation.Validate(validation.DefaultEngine(), probeRules, &empty); len(failures) != 1 {
		return fmt.Errorf("validation engine reported %d failures for a failing probe, want 1", len(failures))
	}
	return nil
}
