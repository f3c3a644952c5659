package app

import (
	"context"
	"errors"
	stdhttp "net/http"

	"filehub/internal/auth"
	"filehub/internal/config"
	"filehub/internal/http"
	"filehub/internal/http/handler"
	"filehub/internal/jobs"
	"filehub/pkg/logger"

	"go.uber.org/zap"
)

const (
	serverAddrPrefix = ":"

	JobPurge        = "purge"
	JobAuditCleanup = "audit_cleanup"
)

// App is the running file service: HTTP server plus background jobs.
type App struct {
	cfg       *config.Config
	log       *zap.Logger
	comps     *Components
	server    *http.Server
	scheduler *jobs.Scheduler
}

// New builds the components, seeds roles and the default admin, and
// registers the maintenance jobs. A seeding failure aborts startup.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	comps, err := Build(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := comps.Seeder.Run(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
		comps.Close()
		return nil, err
	}

	scheduler := jobs.NewScheduler(log)
	if err := registerJobs(scheduler, cfg, comps); err != nil {
		comps.Close()
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		comps:     comps,
		server:    http.NewServer(serverDependencies(cfg, log, comps)),
		scheduler: scheduler,
	}, nil
}

func registerJobs(s *jobs.Scheduler, cfg *config.Config, c *Components) error {
	if err := s.Register(JobPurge, cfg.Maintenance.PurgeSchedule, func(ctx context.Context) error {
		_, err := c.Purger.RunOnce(ctx)
		return err
	}); err != nil {
		return err
	}

	return s.Register(JobAuditCleanup, cfg.Maintenance.AuditCleanupSchedule, func(ctx context.Context) error {
		_, err := c.Audit.Cleanup(ctx, cfg.Maintenance.AuditRetentionDays)
		return err
	})
}

func serverDependencies(cfg *config.Config, log *zap.Logger, c *Components) *http.ServerDependencies {
	return &http.ServerDependencies{
		Config:         cfg,
		Logger:         log,
		AuthMiddleware: auth.NewMiddleware(c.JWT),
		AdminGuard:     auth.NewAdminGuard(c.UserCache, c.Audit, log),
		Handlers: http.Handlers{
			Auth:        handler.NewAuthHandler(c.Login, c.UserCache),
			Files:       handler.NewFileHandler(c.Manager, c.Audit, cfg.App.MaxUploadSize),
			Folders:     handler.NewFolderHandler(c.Manager, c.Audit),
			Users:       handler.NewUsersHandler(c.UserAdmin, c.Audit),
			Shares:      handler.NewShareHandler(c.Manager, c.Audit),
			Dashboard:   handler.NewDashboardHandler(c.Dashboard),
			Audit:       handler.NewAuditHandler(c.Audit, log),
			Maintenance: handler.NewMaintenanceHandler(c.Purger, c.Audit),
			Health:      handler.NewHealthHandler(c.DB),
		},
	}
}

// Run serves until ctx is cancelled, then drains within the configured
// shutdown timeout.
func (a *App) Run(ctx context.Context) error {
	defer a.comps.Close()

	a.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("starting HTTP server", zap.String("port", a.cfg.Server.Port))
		if err := a.server.Start(serverAddrPrefix + a.cfg.Server.Port); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}

	a.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	a.scheduler.Stop()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server forced to shutdown", logger.SafeError(err))
		if runErr == nil {
			runErr = err
		}
	}

	a.log.Info("server exited")
	return runErr
}
