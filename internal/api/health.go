package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// HealthChecker componente de infraestructura con verificación de salud
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SystemHealth handler de /health que verifica cada componente configurado.
// Responde 503 si alguno falla.
func SystemHealth(checks map[string]HealthChecker, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		components := gin.H{}

		for name, checker := range checks {
			if err := checker.HealthCheck(c.Request.Context()); err != nil {
				logger.WithError(err).WithField("component", name).Warn("Health check failed")
				components[name] = err.Error()
				status = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			components[name] = "ok"
		}

		c.JSON(code, gin.H{
			"status":     status,
			"timestamp":  time.Now().UTC(),
			"service":    "einvoice-service",
			"version":    "1.0.0",
			"components": components,
		})
	}
}
