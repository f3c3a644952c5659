// Package seed prepares a fresh database: the built-in roles and a first
// administrator.
package seed

import (
	"context"
	"fmt"

	"filehub/internal/audit"
	"filehub/internal/domain/user"
	apperrors "filehub/pkg/errors"
	"filehub/pkg/logger"
	"filehub/pkg/password"
	"filehub/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Store interface {
	// EnsureRole creates the role if missing and reports whether it did.
	EnsureRole(ctx context.Context, name string) (bool, error)
	CountUsersInRole(ctx context.Context, role string) (int64, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Create(ctx context.Context, in user.CreateUserInput) (*user.User, error)
	AssignRole(ctx context.Context, userID uuid.UUID, role string) error
}

type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

type Seeder struct {
	store   Store
	hasher  *password.Hasher
	auditor Auditor
	log     *zap.Logger
}

func NewSeeder(store Store, hasher *password.Hasher, auditor Auditor, log *zap.Logger) *Seeder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Seeder{store: store, hasher: hasher, auditor: auditor, log: log.Named("seed")}
}

// Run ensures the roles exist and creates the default admin when no user
// holds the Admin role. Any failure is logged and returned; callers are
// expected to abort startup.
func (s *Seeder) Run(ctx context.Context, adminEmail, adminPassword string) error {
	if err := s.run(ctx, adminEmail, adminPassword); err != nil {
		s.log.Error("data seeding failed", logger.SafeError(err))
		return err
	}
	s.log.Info("data seeding completed")
	return nil
}

func (s *Seeder) run(ctx context.Context, adminEmail, adminPassword string) error {
	if err := s.EnsureRoles(ctx); err != nil {
		return err
	}

	admins, err := s.store.CountUsersInRole(ctx, user.RoleAdmin)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}

	_, err = s.CreateDefaultAdmin(ctx, adminEmail, adminPassword)
	return err
}

func (s *Seeder) EnsureRoles(ctx context.Context) error {
	for _, name := range []string{user.RoleAdmin, user.RoleClient} {
		created, err := s.store.EnsureRole(ctx, name)
		if err != nil {
			return fmt.Errorf("ensure role %s: %w", name, err)
		}
		if !created {
			s.log.Debug("role already exists", zap.String("role", name))
			continue
		}
		s.log.Info("role created", zap.String("role", name))
		if err := s.record(ctx, audit.ActionRoleCreated, fmt.Sprintf("Role '%s' created during system initialization", name)); err != nil {
			return err
		}
	}
	return nil
}

// CreateDefaultAdmin returns the existing account when email is taken.
// The Admin role is assigned in either case.
func (s *Seeder) CreateDefaultAdmin(ctx context.Context, email, pass string) (*user.User, error) {
	if err := validator.Email(email); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validator.Password(pass); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	existing, err := s.store.GetByEmail(ctx, email)
	switch {
	case err == nil:
		s.log.Info("default admin already exists", zap.String("email", email))
		if err := s.store.AssignRole(ctx, existing.ID, user.RoleAdmin); err != nil {
			return nil, fmt.Errorf("assign admin role: %w", err)
		}
		return existing, nil
	case !apperrors.Is(err, apperrors.ErrNotFound):
		return nil, fmt.Errorf("look up default admin: %w", err)
	}

	hash, err := s.hasher.Hash(pass)
	if err != nil {
		return nil, err
	}
	createdBy := audit.SystemUserID
	admin, err := s.store.Create(ctx, user.CreateUserInput{
		Email:        email,
		PasswordHash: hash,
		FirstName:    "System",
		LastName:     "Administrator",
		Type:         user.TypeAdmin,
		CreatedBy:    &createdBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create default admin: %w", err)
	}
	if err := s.record(ctx, audit.ActionUserCreated, "Default administrator created during initialization"); err != nil {
		return nil, err
	}

	if err := s.store.AssignRole(ctx, admin.ID, user.RoleAdmin); err != nil {
		return nil, fmt.Errorf("assign admin role: %w", err)
	}
	admin.Roles = append(admin.Roles, user.RoleAdmin)
	if err := s.record(ctx, audit.ActionRoleAssigned, "Administrator role assigned during initialization"); err != nil {
		return nil, err
	}

	s.log.Info("default admin created", zap.String("email", email))
	return admin, nil
}

func (s *Seeder) record(ctx context.Context, action audit.Action, description string) error {
	err := s.auditor.Record(ctx, audit.Entry{
		Action:      action,
		UserID:      audit.SystemUserID,
		Description: description,
		IPAddress:   audit.SystemIP,
		UserAgent:   audit.SystemUserAgent,
	})
	if err != nil {
		return fmt.Errorf("audit %s: %w", action, err)
	}
	return nil
}
