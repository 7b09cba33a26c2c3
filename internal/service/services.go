package service

import (
	"github.com/MKhiriev/go-access-gate/internal/config"
	"github.com/MKhiriev/go-access-gate/internal/logger"
	"github.com/MKhiriev/go-access-gate/internal/store"
)

// Services bundles every domain service the handlers depend on.
type Services struct {
	AuthService    AuthService
	CatalogService CatalogService
	UserService    UserService
	ResetService   ResetService
}

// NewServices wires all services to the given storages and configuration.
// Passing a nil notifier selects the logging reset notifier.
func NewServices(storages *store.Storages, cfg config.StructuredConfig, notifier ResetNotifier, logger *logger.Logger) *Services {
	return &Services{
		AuthService: NewAuthService(storages.UserRepository, storages.RoleRepository, cfg.Auth, logger),
		CatalogService: NewCatalogService(
			storages.RoleRepository,
			storages.PermissionRepository,
			storages.UserRepository,
			logger,
		),
		UserService: NewUserService(storages.UserRepository, storages.RoleRepository, cfg.Auth.BcryptCost, logger),
		ResetService: NewResetService(
			storages.UserRepository,
			storages.ResetTokenRepository,
			notifier,
			cfg.Auth.ResetTokenTTL,
			cfg.Auth.BcryptCost,
			logger,
		),
	}
}
