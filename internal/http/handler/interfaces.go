package handler

import (
	"context"
	"io"
	"time"

	"filehub/internal/access"
	"filehub/internal/audit"
	"filehub/internal/auth"
	"filehub/internal/dashboard"
	"filehub/internal/domain/file"
	"filehub/internal/domain/share"
	"filehub/internal/domain/user"
	"filehub/internal/purge"
	"filehub/internal/users"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Consumer-side interfaces; each handler depends only on what it calls.

type FileService interface {
	Caller(ctx context.Context, userID uuid.UUID) (access.Caller, error)
	ListFiles(ctx context.Context, userID uuid.UUID, path string) ([]file.Entry, error)
	ListClientFiles(ctx context.Context, clientID uuid.UUID, path string) ([]file.Entry, error)
	GetClients(ctx context.Context) ([]user.User, error)
	CreateFolder(ctx context.Context, in file.CreateFolderInput) (*file.Entry, error)
	SaveFileWithContent(ctx context.Context, in file.SaveFileInput) (*file.Entry, error)
	SaveFileMetadata(ctx context.Context, in file.SaveMetadataInput) (*file.Entry, error)
	GetFileItem(ctx context.Context, id int64) (*file.Entry, error)
	GetSelectedFileItems(ctx context.Context, ids []int64, userID uuid.UUID) ([]file.Entry, error)
	CanUserAccess(ctx context.Context, id int64, userID uuid.UUID) (bool, error)
	GetFolderTree(ctx context.Context, userID uuid.UUID, isAdmin bool) ([]file.Entry, error)
	DeleteFileItem(ctx context.Context, id int64, userID uuid.UUID) (*file.Entry, error)
	DeleteMultipleFileItems(ctx context.Context, ids []int64, userID uuid.UUID) ([]file.Entry, error)
	MoveFileItem(ctx context.Context, id int64, newPath string, userID uuid.UUID) (*file.Entry, error)
	MoveMultipleFileItems(ctx context.Context, ids []int64, newBasePath string, userID uuid.UUID) ([]file.Entry, error)
	UpdateFileProperties(ctx context.Context, id int64, title string, expiration *time.Time, userID uuid.UUID) (*file.Entry, error)
	UpdateMultipleFileProperties(ctx context.Context, ids []int64, expiration *time.Time, removeExistingDates bool, userID uuid.UUID) ([]file.Entry, error)
	OpenFile(ctx context.Context, id int64, userID uuid.UUID) (*file.Entry, io.ReadCloser, error)
}

type ShareService interface {
	ShareFile(ctx context.Context, in share.CreateGrantInput) (*share.Grant, error)
	ListShares(ctx context.Context, fileID int64, userID uuid.UUID) ([]share.Grant, error)
	RevokeShare(ctx context.Context, grantID int64, userID uuid.UUID) error
	CreateSharedLink(ctx context.Context, fileID int64, expiration *time.Time, userID uuid.UUID) (*share.Link, error)
	ResolveSharedLink(ctx context.Context, linkID uuid.UUID) (*share.Link, *file.Entry, error)
	OpenSharedLink(ctx context.Context, linkID uuid.UUID) (*file.Entry, io.ReadCloser, error)
}

type LoginService interface {
	Login(ctx context.Context, in auth.LoginInput) (*auth.LoginResult, error)
	Logout(ctx context.Context, userID uuid.UUID, email, ip, userAgent string)
}

type UserAdmin interface {
	Create(ctx context.Context, in users.CreateInput) (*user.User, error)
	Get(ctx context.Context, id uuid.UUID) (*user.User, error)
	List(ctx context.Context, userType *user.Type) ([]user.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in user.UpdateProfileInput) (*user.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool, actorID uuid.UUID) (*user.User, error)
	AssignRole(ctx context.Context, id uuid.UUID, role string) (*user.User, error)
	RemoveRole(ctx context.Context, id uuid.UUID, role string, actorID uuid.UUID) (*user.User, error)
}

type UserGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// AuditRecorder writes request-scoped audit entries without blocking.
type AuditRecorder interface {
	RecordFromContext(c echo.Context, e audit.Entry)
}

type AuditService interface {
	AuditRecorder
	Query(ctx context.Context, f audit.Filter) ([]audit.Record, error)
	Recent(ctx context.Context, count int) ([]audit.Record, error)
	ForUser(ctx context.Context, userID string, pageSize, pageNumber int) ([]audit.Record, error)
	Cleanup(ctx context.Context, daysToKeep int) (int64, error)
}

type DashboardService interface {
	GetDashboardStats(ctx context.Context) (*dashboard.Stats, error)
	GetUserStats(ctx context.Context) (*dashboard.UserStats, error)
	GetFileStats(ctx context.Context) (*dashboard.FileStats, error)
	GetActivityStats(ctx context.Context) (*dashboard.ActivityStats, error)
	GetSystemPerformance(ctx context.Context) (*dashboard.SystemPerformance, error)
	GetSharedLinkStats(ctx context.Context) (*dashboard.SharedLinkStats, error)
	GetDailyMetrics(ctx context.Context, from, to time.Time) ([]dashboard.DailyMetric, error)
	GetTopFileUsers(ctx context.Context, count int) ([]dashboard.TopFileUser, error)
	GetRecentActivities(ctx context.Context, count int) ([]dashboard.RecentActivity, error)
	GetLinksExpiringSoon(ctx context.Context, daysAhead int) ([]dashboard.ExpiringLink, error)
}

type Purger interface {
	RunOnce(ctx context.Context) (*purge.Result, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}
