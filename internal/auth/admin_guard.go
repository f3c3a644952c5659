package auth

import (
	"context"
	"fmt"
	"net/http"

	"filehub/internal/audit"
	"filehub/internal/domain/user"
	apperrors "filehub/pkg/errors"
	"filehub/pkg/logger"
	"filehub/pkg/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

// AdminGuard admits active users holding the Admin role. It runs after
// IdentifyJWT so anonymous callers reach it too. Every attempt is audited.
type AdminGuard struct {
	users   UserLookup
	auditor Auditor
	log     *zap.Logger
}

func NewAdminGuard(users UserLookup, auditor Auditor, log *zap.Logger) *AdminGuard {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminGuard{users: users, auditor: auditor, log: log.Named("admin_guard")}
}

func (g *AdminGuard) Require() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ip := audit.ClientIP(req.Header, req.RemoteAddr)

			entry := audit.Entry{
				Action:    audit.ActionAdminActionPerformed,
				UserID:    audit.Unknown,
				IPAddress: ip,
				UserAgent: req.Header.Get(headerUserAgent),
			}

			userID, err := GetUserID(c)
			if err != nil {
				g.log.Warn("unauthenticated admin access", zap.String("ip", ip))
				entry.Description = fmt.Sprintf(descAnonymousAdminAttemptFmt, req.Method, req.URL.Path)
				entry.Failure = msgUnauthorized
				g.record(req.Context(), entry)
				metrics.AdminAccessTotal.WithLabelValues(metrics.ResultDenied).Inc()
				return respondError(c, http.StatusUnauthorized, msgUnauthorized)
			}

			entry.UserID = userID.String()
			entry.UserEmail = GetEmail(c)

			u, err := g.users.GetByID(req.Context(), userID)
			if err != nil {
				metrics.AdminAccessTotal.WithLabelValues(metrics.ResultDenied).Inc()
				if apperrors.Is(err, apperrors.ErrNotFound) {
					g.log.Warn("admin access by unknown user", zap.String("user_id", userID.String()))
					entry.Description = descUnknownAdminAttempt
					entry.Failure = msgUnauthorized
					g.record(req.Context(), entry)
					return respondError(c, http.StatusUnauthorized, msgUnauthorized)
				}
				g.log.Error(msgLookupFailed, logger.SafeError(err))
				return respondError(c, http.StatusInternalServerError, msgLookupFailed)
			}

			entry.UserEmail = u.Email

			if !u.IsActive {
				g.log.Warn("admin access by inactive user", zap.String("email", u.Email))
				entry.Description = descInactiveAdminAttempt
				entry.Failure = msgAccountDisabled
				g.record(req.Context(), entry)
				metrics.AdminAccessTotal.WithLabelValues(metrics.ResultDenied).Inc()
				return respondError(c, http.StatusForbidden, msgAccountDisabled)
			}

			if !u.HasRole(user.RoleAdmin) {
				g.log.Warn("admin access without admin role", zap.String("email", u.Email))
				entry.Description = descNonAdminAttempt
				entry.Failure = msgInsufficientPermissions
				g.record(req.Context(), entry)
				metrics.AdminAccessTotal.WithLabelValues(metrics.ResultDenied).Inc()
				return respondError(c, http.StatusForbidden, msgInsufficientPermissions)
			}

			entry.Description = fmt.Sprintf(descAdminAccessFmt, req.Method, req.URL.Path)
			g.record(req.Context(), entry)
			metrics.AdminAccessTotal.WithLabelValues(metrics.ResultSuccess).Inc()

			c.Set(ContextKeyUser, u)
			return next(c)
		}
	}
}

func (g *AdminGuard) record(ctx context.Context, e audit.Entry) {
	if err := g.auditor.Record(ctx, e); err != nil {
		g.log.Warn("failed to audit admin access", logger.SafeError(err))
	}
}

// CurrentUser returns the user AdminGuard admitted.
func CurrentUser(c echo.Context) (*user.User, bool) {
	u, ok := c.Get(ContextKeyUser).(*user.User)
	return u, ok
}
