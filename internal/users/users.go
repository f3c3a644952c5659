// Package users is account administration: onboarding, activation and
// role membership. Callers are expected to be admins and to audit each
// change.
package users

import (
	"context"
	"strings"

	"filehub/internal/domain/user"
	apperrors "filehub/pkg/errors"
	"filehub/pkg/password"
	"filehub/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxNameLength    = 100
	maxAddressLength = 500

	msgNameTooLong       = "first and last name must be at most 100 characters"
	msgAddressTooLong    = "address must be at most 500 characters"
	msgRoleRequired      = "role is required"
	msgSelfDeactivation  = "you cannot deactivate your own account"
	msgSelfAdminRemoval  = "you cannot remove your own Admin role"
	msgRoleNotHeld       = "user does not hold this role"
	msgUnknownRole       = "role not found"
	msgInvalidTypeFilter = "unknown user type"
)

type Store interface {
	Create(ctx context.Context, in user.CreateUserInput) (*user.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	List(ctx context.Context, userType *user.Type) ([]user.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, in user.UpdateProfileInput) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	AssignRole(ctx context.Context, userID uuid.UUID, role string) error
	RemoveRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
}

// Invalidator drops cached copies of a user so changes apply on the next request.
type Invalidator interface {
	Invalidate(id uuid.UUID)
}

type CreateInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Type      user.Type
	CreatedBy uuid.UUID
}

type Service struct {
	store  Store
	hasher *password.Hasher
	cache  Invalidator
	log    *zap.Logger
}

func NewService(store Store, hasher *password.Hasher, cache Invalidator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, hasher: hasher, cache: cache, log: log.Named("users")}
}

// Create adds an active account holding the default role for its type.
func (s *Service) Create(ctx context.Context, in CreateInput) (*user.User, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validator.Email(in.Email); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := validator.Password(in.Password); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if err := checkNames(in.FirstName, in.LastName); err != nil {
		return nil, err
	}
	if in.Type != user.TypeClient && in.Type != user.TypeAdmin {
		return nil, apperrors.Validation(msgInvalidTypeFilter)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	createdBy := in.CreatedBy.String()
	u, err := s.store.Create(ctx, user.CreateUserInput{
		Email:        in.Email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Type:         in.Type,
		CreatedBy:    &createdBy,
	})
	if err != nil {
		return nil, err
	}

	role := in.Type.DefaultRole()
	if err := s.store.AssignRole(ctx, u.ID, role); err != nil {
		return nil, err
	}
	if !u.HasRole(role) {
		u.Roles = append(u.Roles, role)
	}

	s.log.Info("user created",
		zap.String("user_id", u.ID.String()),
		zap.Stringer("type", u.Type),
		zap.String("created_by", createdBy),
	)
	return u, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.store.GetByID(ctx, id)
}

// List returns all users, or those of one type when userType is set.
func (s *Service) List(ctx context.Context, userType *user.Type) ([]user.User, error) {
	return s.store.List(ctx, userType)
}

func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, in user.UpdateProfileInput) (*user.User, error) {
	if err := checkNames(in.FirstName, in.LastName); err != nil {
		return nil, err
	}
	if len(in.Address) > maxAddressLength {
		return nil, apperrors.Validation(msgAddressTooLong)
	}

	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := s.store.UpdateProfile(ctx, id, in); err != nil {
		return nil, err
	}
	return s.reload(ctx, id)
}

// SetActive flips the account's active flag. Admins cannot deactivate
// themselves.
func (s *Service) SetActive(ctx context.Context, id uuid.UUID, active bool, actorID uuid.UUID) (*user.User, error) {
	if !active && id == actorID {
		return nil, apperrors.Validation(msgSelfDeactivation)
	}
	if err := s.store.SetActive(ctx, id, active); err != nil {
		return nil, err
	}

	s.log.Info("user activation changed",
		zap.String("user_id", id.String()),
		zap.Bool("active", active),
		zap.String("actor_id", actorID.String()),
	)
	return s.reload(ctx, id)
}

func (s *Service) AssignRole(ctx context.Context, id uuid.UUID, role string) (*user.User, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, apperrors.Validation(msgRoleRequired)
	}
	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if err := s.store.AssignRole(ctx, id, role); err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Validation(msgUnknownRole)
		}
		return nil, err
	}
	return s.reload(ctx, id)
}

// RemoveRole fails when the user does not hold the role. Admins cannot
// drop their own Admin role.
func (s *Service) RemoveRole(ctx context.Context, id uuid.UUID, role string, actorID uuid.UUID) (*user.User, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, apperrors.Validation(msgRoleRequired)
	}
	if id == actorID && strings.EqualFold(role, user.RoleAdmin) {
		return nil, apperrors.Validation(msgSelfAdminRemoval)
	}

	removed, err := s.store.RemoveRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if !removed {
		if _, err := s.store.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperrors.NotFound(msgRoleNotHeld)
	}
	return s.reload(ctx, id)
}

func (s *Service) reload(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.cache.Invalidate(id)
	return s.store.GetByID(ctx, id)
}

func checkNames(first, last string) error {
	if len(strings.TrimSpace(first)) > maxNameLength || len(strings.TrimSpace(last)) > maxNameLength {
		return apperrors.Validation(msgNameTooLong)
	}
	return nil
}
