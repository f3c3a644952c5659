package postgres

import (
	"context"
	"time"

	"filehub/internal/domain/user"
	apperrors "filehub/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `u.id, u.email, u.password_hash, u.first_name, u.last_name, u.user_type, u.is_active, u.address,
	u.created_by, u.created_at, u.last_login_at,
	ARRAY(SELECT r.name FROM user_roles ur JOIN roles r ON r.id = ur.role_id WHERE ur.user_id = u.id ORDER BY r.name)`

type UserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Type, &u.IsActive, &u.Address,
		&u.CreatedBy, &u.CreatedAt, &u.LastLoginAt, &u.Roles,
	)
	return u, err
}

func (r *UserRepository) Create(ctx context.Context, input user.CreateUserInput) (*user.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, first_name, last_name, user_type, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var id uuid.UUID
	err := r.db.Pool.QueryRow(ctx, query,
		uuid.New(), input.Email, input.PasswordHash, input.FirstName, input.LastName, input.Type, input.CreatedBy,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("user with this email already exists")
		}
		return nil, errFailedCreateUser(err)
	}

	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}
	return u, nil
}

// GetByEmail matches case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := scanUser(r.db.Pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE LOWER(u.email) = LOWER($1)`, email))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errUserNotFound)
		}
		return nil, errFailedGetUser(err)
	}
	return u, nil
}

func (r *UserRepository) ListActiveClients(ctx context.Context) ([]user.User, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+userColumns+` FROM users u
		WHERE u.user_type = $1 AND u.is_active
		ORDER BY u.first_name, u.last_name`, user.TypeClient)
	if err != nil {
		return nil, errFailedListUsers(err)
	}
	return collectUsers(rows)
}

// List returns every account, or only those of userType when it is set.
func (r *UserRepository) List(ctx context.Context, userType *user.Type) ([]user.User, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+userColumns+` FROM users u
		WHERE $1::smallint IS NULL OR u.user_type = $1
		ORDER BY u.email`, userType)
	if err != nil {
		return nil, errFailedListUsers(err)
	}
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]user.User, error) {
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, errFailedScanUser(err)
		}
		users = append(users, *u)
	}

	if err := rows.Err(); err != nil {
		return nil, errIterateUsers(err)
	}

	return users, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	result, err := r.db.Pool.Exec(ctx, `UPDATE users SET last_login_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return errFailedUpdateUser(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}

	return nil
}

func (r *UserRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := r.db.Pool.Exec(ctx, `UPDATE users SET is_active = $2 WHERE id = $1`, id, active)
	if err != nil {
		return errFailedUpdateUser(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}

	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, in user.UpdateProfileInput) error {
	result, err := r.db.Pool.Exec(ctx, `
		UPDATE users SET first_name = $2, last_name = $3, address = $4 WHERE id = $1`,
		id, in.FirstName, in.LastName, in.Address)
	if err != nil {
		return errFailedUpdateUser(err)
	}

	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errUserNotFound)
	}

	return nil
}

func (r *UserRepository) EnsureRole(ctx context.Context, name string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return false, errFailedEnsureRole(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *UserRepository) CountUsersInRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := r.db.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM user_roles ur JOIN roles r ON r.id = ur.role_id
		WHERE r.name = $1`, role).Scan(&n)
	if err != nil {
		return 0, errFailedCountUsers(err)
	}
	return n, nil
}

func (r *UserRepository) AssignRole(ctx context.Context, userID uuid.UUID, role string) error {
	tag, err := r.db.Pool.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT DO NOTHING`, userID, role)
	if err != nil {
		return errFailedAssignRole(err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.Pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM roles WHERE name = $1)`, role).Scan(&exists); err != nil {
			return errFailedAssignRole(err)
		}
		if !exists {
			return apperrors.NotFound(errRoleNotFound)
		}
	}
	return nil
}

// RemoveRole reports whether the user held the role.
func (r *UserRepository) RemoveRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	tag, err := r.db.Pool.Exec(ctx, `
		DELETE FROM user_roles ur USING roles r
		WHERE ur.role_id = r.id AND ur.user_id = $1 AND r.name = $2`, userID, role)
	if err != nil {
		return false, errFailedRemoveRole(err)
	}
	return tag.RowsAffected() > 0, nil
}
