package store

import "github.com/MKhiriev/go-access-gate/internal/logger"

// Storages bundles every repository backed by the shared database
// connection.
type Storages struct {
	UserRepository       UserRepository
	RoleRepository       RoleRepository
	PermissionRepository PermissionRepository
	ResetTokenRepository ResetTokenRepository
}

// NewStorages wires all repositories to the given database connection.
func NewStorages(db *DB, logger *logger.Logger) *Storages {
	return &Storages{
		UserRepository:       NewUserRepository(db, logger),
		RoleRepository:       NewRoleRepository(db, logger),
		PermissionRepository: NewPermissionRepository(db, logger),
		ResetTokenRepository: NewResetTokenRepository(db, logger),
	}
}
