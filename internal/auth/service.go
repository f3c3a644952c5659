package auth

import (
	"context"
	"strings"
	"time"

	"filehub/internal/audit"
	"filehub/internal/domain/user"
	apperrors "filehub/pkg/errors"
	"filehub/pkg/logger"
	"filehub/pkg/password"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CredentialStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type LoginInput struct {
	Email     string
	Password  string
	IPAddress string
	UserAgent string
}

type LoginResult struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      *user.User `json:"user"`
}

// Service authenticates users and records their sessions in the audit log.
type Service struct {
	users   CredentialStore
	hasher  *password.Hasher
	tokens  *JWTService
	auditor Auditor
	log     *zap.Logger
	now     func() time.Time
}

func NewService(users CredentialStore, hasher *password.Hasher, tokens *JWTService, auditor Auditor, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		auditor: auditor,
		log:     log.Named("auth"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Login checks credentials and issues a token. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	entry := audit.Entry{
		Action:    audit.ActionLogin,
		UserEmail: email,
		IPAddress: in.IPAddress,
		UserAgent: in.UserAgent,
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}
		s.hasher.VerifyNothing(in.Password)
		s.fail(ctx, entry, "unknown email")
		return nil, apperrors.InvalidCredentials()
	}

	entry.UserID = u.ID.String()
	if !s.hasher.Verify(in.Password, u.PasswordHash) {
		s.fail(ctx, entry, "wrong password")
		return nil, apperrors.InvalidCredentials()
	}
	if !u.IsActive {
		s.fail(ctx, entry, msgAccountDisabled)
		return nil, apperrors.AccountDisabled(msgAccountDisabled)
	}

	token, expiresAt, err := s.tokens.Generate(u.ID, u.Email)
	if err != nil {
		return nil, apperrors.InternalServer("failed to issue token", err)
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warn("failed to update last login", zap.String("user_id", u.ID.String()), logger.SafeError(err))
	} else {
		u.LastLoginAt = &now
	}

	entry.Description = descLoginSucceeded
	s.record(ctx, entry)

	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Logout only records the event; tokens stay valid until they expire.
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, email, ip, userAgent string) {
	s.record(ctx, audit.Entry{
		Action:      audit.ActionLogout,
		UserID:      userID.String(),
		UserEmail:   email,
		Description: descLogout,
		IPAddress:   ip,
		UserAgent:   userAgent,
	})
}

func (s *Service) fail(ctx context.Context, e audit.Entry, reason string) {
	e.Description = descLoginFailed
	e.Failure = reason
	s.record(ctx, e)
}

func (s *Service) record(ctx context.Context, e audit.Entry) {
	if s.auditor == nil {
		return
	}
	if err := s.auditor.Record(ctx, e); err != nil {
		s.log.Warn("failed to audit session event", logger.SafeError(err))
	}
}
