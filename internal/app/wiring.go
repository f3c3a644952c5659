package app

import (
	"fmt"

	"filehub/internal/audit"
	"filehub/internal/auth"
	"filehub/internal/config"
	"filehub/internal/dashboard"
	"filehub/internal/filemanager"
	"filehub/internal/infra/cache"
	"filehub/internal/purge"
	"filehub/internal/repository/postgres"
	"filehub/internal/seed"
	"filehub/internal/storage"
	"filehub/internal/storage/disk"
	"filehub/internal/storage/s3"
	"filehub/internal/users"
	"filehub/pkg/password"

	"go.uber.org/zap"
)

const (
	errFailedConnectDatabaseFmt = "failed to connect to database: %w"
	errFailedMigrateFmt         = "failed to migrate database: %w"
	errFailedOpenStorageFmt     = "failed to open %s storage: %w"
)

// Build connects to the database, applies migrations and constructs every
// service. Callers own the returned Components and must Close them.
func Build(cfg *config.Config, log *zap.Logger) (*Components, error) {
	if err := postgres.Migrate(cfg.Database.MigrationURL(), log); err != nil {
		return nil, fmt.Errorf(errFailedMigrateFmt, err)
	}

	db, err := postgres.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf(errFailedConnectDatabaseFmt, err)
	}
	log.Info("database connection established",
		zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Database))

	blobs, err := openBlobStore(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info("storage ready", zap.String("backend", cfg.Storage.Backend), zap.String("root", blobs.Location("")))

	c := &Components{
		Log:       log,
		DB:        db,
		Users:     postgres.NewUserRepository(db),
		Files:     postgres.NewFileRepository(db),
		Shares:    postgres.NewShareRepository(db),
		AuditRepo: postgres.NewAuditRepository(db),
		Stats:     postgres.NewDashboardRepository(db),
		Blobs:     blobs,
		Resolver:  storage.NewResolver(blobs),
	}
	c.UserCache = cache.NewUserCache(c.Users, cfg.App.UserCacheSize, cfg.App.UserCacheTTL)

	hasher := password.NewHasher(password.DefaultCost)
	c.Audit = audit.NewLogger(c.AuditRepo, log)
	c.JWT = auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryDuration)
	c.Login = auth.NewService(c.Users, hasher, c.JWT, c.Audit, log)
	c.Manager = filemanager.NewManager(c.Files, c.Shares, c.UserCache, c.Resolver, log)
	c.Dashboard = dashboard.NewService(c.Stats)
	c.Purger = purge.NewService(c.Files, blobs, c.Audit, cfg.Maintenance.PurgeRetentionDays, log)
	c.Seeder = seed.NewSeeder(c.Users, hasher, c.Audit, log)
	c.UserAdmin = users.NewService(c.Users, hasher, c.UserCache, log)

	return c, nil
}

func openBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendS3:
		store, err := s3.New(&cfg.AWS, cfg.Storage.S3Bucket, cfg.Storage.S3Prefix)
		if err != nil {
			return nil, fmt.Errorf(errFailedOpenStorageFmt, cfg.Storage.Backend, err)
		}
		return store, nil
	default:
		store, err := disk.New(cfg.Storage.Root)
		if err != nil {
			return nil, fmt.Errorf(errFailedOpenStorageFmt, cfg.Storage.Backend, err)
		}
		return store, nil
	}
}
