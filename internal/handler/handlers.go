package handler

import (
	"github.com/MKhiriev/go-access-gate/internal/config"
	"github.com/MKhiriev/go-access-gate/internal/handler/http"
	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/ratelimit"
	"github.com/MKhiriev/go-access-gate/internal/service"
	"github.com/MKhiriev/go-access-gate/internal/session"
)

type Handlers struct {
	HTTP *http.Handler
}

func NewHandlers(services *service.Services, sessions *session.Manager, limiter *ratelimit.Limiter, cfg *config.StructuredConfig, health http.HealthChecks, logger *logger.Logger) (*Handlers, error) {
	logger.Info().Msg("creating new handlers...")

	handlers := &Handlers{}

	if cfg.Server.HTTPAddress != "" {
		handlers.HTTP = http.NewHandler(services, sessions, limiter, *cfg, health, logger)
	}

	if handlers.HTTP == nil {
		return nil, errNoHandlersAreCreated
	}

	return handlers, nil
}
