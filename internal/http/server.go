package http

import (
	"context"
	"strconv"

	"filehub/internal/auth"
	"filehub/internal/config"
	"filehub/internal/http/handler"
	"filehub/internal/http/middleware"
	"filehub/pkg/metrics"
	"filehub/pkg/profiling"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const (
	requestBodyLimit = "1M"
	uploadRoute      = "/api/files"
	// multipart framing on top of the file itself
	uploadOverhead int64 = 1 << 20
)

type Handlers struct {
	Auth        *handler.AuthHandler
	Files       *handler.FileHandler
	Folders     *handler.FolderHandler
	Users       *handler.UsersHandler
	Shares      *handler.ShareHandler
	Dashboard   *handler.DashboardHandler
	Audit       *handler.AuditHandler
	Maintenance *handler.MaintenanceHandler
	Health      *handler.HealthHandler
}

type ServerDependencies struct {
	Config         *config.Config
	Logger         *zap.Logger
	AuthMiddleware *auth.Middleware
	AdminGuard     *auth.AdminGuard
	Handlers       Handlers
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(log.Named("http"))

	e.Server.ReadTimeout = deps.Config.Server.ReadTimeout
	e.Server.WriteTimeout = deps.Config.Server.WriteTimeout

	// Request ID first so every log line carries it.
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RequestLogger(log))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{
		Limit:   requestBodyLimit,
		Skipper: isUpload,
	}))
	e.Use(middleware.NewGlobalRateLimiter().Middleware())
	e.Use(metrics.MetricsMiddleware())

	s := &Server{echo: e, deps: deps}
	s.registerRoutes()
	return s
}

func isUpload(c echo.Context) bool {
	return c.Path() == uploadRoute && c.Request().Method == echo.POST
}

func (s *Server) registerRoutes() {
	e, h, cfg := s.echo, s.deps.Handlers, s.deps.Config
	strictRateLimiter := middleware.NewStrictRateLimiter()

	e.GET("/health", h.Health.Health)
	metrics.RegisterMetricsRoute(e)

	e.POST("/auth/login", h.Auth.Login, strictRateLimiter.Middleware())

	// Public links need no account.
	e.GET("/share/:link_id", h.Shares.OpenLink)
	e.GET("/share/:link_id/info", h.Shares.LinkInfo)

	api := e.Group("/api")
	api.Use(s.deps.AuthMiddleware.RequireJWT())

	api.POST("/auth/logout", h.Auth.Logout)
	api.GET("/auth/me", h.Auth.Me)

	uploadLimit := echomiddleware.BodyLimit(strconv.FormatInt(cfg.App.MaxUploadSize+uploadOverhead, 10))
	api.GET("/files", h.Files.List)
	api.POST("/files", h.Files.Upload, uploadLimit)
	api.POST("/files/metadata", h.Files.SaveMetadata)
	api.POST("/files/selected", h.Files.Selected)
	api.POST("/files/delete", h.Files.DeleteMany)
	api.POST("/files/move", h.Files.MoveMany)
	api.POST("/files/properties", h.Files.UpdateManyProperties)
	api.GET("/files/:id", h.Files.Get)
	api.GET("/files/:id/access", h.Files.Access)
	api.GET("/files/:id/download", h.Files.Download)
	api.DELETE("/files/:id", h.Files.Delete)
	api.PUT("/files/:id/move", h.Files.Move)
	api.PUT("/files/:id/properties", h.Files.UpdateProperties)

	api.POST("/files/:id/shares", h.Shares.Share)
	api.GET("/files/:id/shares", h.Shares.List)
	api.DELETE("/shares/:id", h.Shares.Revoke)
	api.POST("/files/:id/links", h.Shares.CreateLink)

	api.POST("/folders", h.Folders.Create)
	api.GET("/folders/tree", h.Folders.Tree)
	api.GET("/clients", h.Folders.Clients)

	// Not nested under api: anonymous callers must reach the guard so the
	// attempt is audited.
	admin := e.Group("/api/admin", s.deps.AuthMiddleware.IdentifyJWT(), s.deps.AdminGuard.Require())

	admin.GET("/users", h.Users.List)
	admin.POST("/users", h.Users.Create)
	admin.GET("/users/:id", h.Users.Get)
	admin.PUT("/users/:id", h.Users.Update)
	admin.POST("/users/:id/activate", h.Users.Activate)
	admin.POST("/users/:id/deactivate", h.Users.Deactivate)
	admin.POST("/users/:id/roles", h.Users.AssignRole)
	admin.DELETE("/users/:id/roles/:role", h.Users.RemoveRole)

	admin.GET("/clients/:id/files", h.Folders.ClientFiles)

	admin.GET("/dashboard", h.Dashboard.Stats)
	admin.GET("/dashboard/users", h.Dashboard.Users)
	admin.GET("/dashboard/files", h.Dashboard.Files)
	admin.GET("/dashboard/activity", h.Dashboard.Activity)
	admin.GET("/dashboard/performance", h.Dashboard.Performance)
	admin.GET("/dashboard/shared-links", h.Dashboard.SharedLinks)
	admin.GET("/dashboard/daily", h.Dashboard.Daily)
	admin.GET("/dashboard/top-users", h.Dashboard.TopUsers)
	admin.GET("/dashboard/recent-activities", h.Dashboard.RecentActivities)
	admin.GET("/dashboard/expiring-links", h.Dashboard.ExpiringLinks)

	admin.GET("/audit", h.Audit.Query)
	admin.GET("/audit/recent", h.Audit.Recent)
	admin.GET("/audit/export", h.Audit.Export)
	admin.GET("/audit/users/:user_id", h.Audit.ForUser)
	admin.DELETE("/audit", h.Audit.Cleanup)

	admin.POST("/purge", h.Maintenance.Purge)
	admin.GET("/runtime/memory", profiling.MemoryHandler)

	if cfg.App.EnablePprof {
		profiling.RegisterPprofRoutes(admin)
	}
}

// Handler exposes the router for in-process tests.
func (s *Server) Handler() *echo.Echo {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
