// Package app assembles the process from configuration.
package app

import (
	"filehub/internal/audit"
	"filehub/internal/auth"
	"filehub/internal/dashboard"
	"filehub/internal/filemanager"
	"filehub/internal/infra/cache"
	"filehub/internal/purge"
	"filehub/internal/repository/postgres"
	"filehub/internal/seed"
	"filehub/internal/storage"
	"filehub/internal/users"

	"go.uber.org/zap"
)

// Components is everything below the HTTP layer. The server and the
// operator CLI share it.
type Components struct {
	Log *zap.Logger
	DB  *postgres.DB

	Users     *postgres.UserRepository
	Files     *postgres.FileRepository
	Shares    *postgres.ShareRepository
	AuditRepo *postgres.AuditRepository
	Stats     *postgres.DashboardRepository
	UserCache *cache.UserCache

	Blobs    storage.BlobStore
	Resolver *storage.Resolver

	Audit     *audit.Logger
	JWT       *auth.JWTService
	Login     *auth.Service
	Manager   *filemanager.Manager
	Dashboard *dashboard.Service
	Purger    *purge.Service
	Seeder    *seed.Seeder
	UserAdmin *users.Service
}

func (c *Components) Close() {
	if c.DB != nil {
		c.DB.Close()
	}
}
