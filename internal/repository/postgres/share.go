package postgres

import (
	"context"

	"filehub/internal/domain/share"
	apperrors "filehub/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	grantColumns = `id, file_entry_id, shared_with_user_id, shared_by_user_id, shared_at, expires_at, can_edit, can_delete, is_active`
	linkColumns  = `id, file_entry_id, file_name, owner_user_id, expiration_date, created_at`
)

type ShareRepository struct {
	db *DB
}

func NewShareRepository(db *DB) *ShareRepository {
	return &ShareRepository{db: db}
}

func scanGrant(row pgx.Row) (*share.Grant, error) {
	g := &share.Grant{}
	err := row.Scan(&g.ID, &g.FileEntryID, &g.SharedWithUserID, &g.SharedByUserID, &g.SharedAt, &g.ExpiresAt,
		&g.CanEdit, &g.CanDelete, &g.IsActive)
	return g, err
}

func scanLink(row pgx.Row) (*share.Link, error) {
	l := &share.Link{}
	err := row.Scan(&l.ID, &l.FileEntryID, &l.FileName, &l.OwnerUserID, &l.ExpirationDate, &l.CreatedAt)
	return l, err
}

func (r *ShareRepository) CreateGrant(ctx context.Context, in share.CreateGrantInput) (*share.Grant, error) {
	query := `
		INSERT INTO file_shares (file_entry_id, shared_with_user_id, shared_by_user_id, expires_at, can_edit, can_delete)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + grantColumns

	g, err := scanGrant(r.db.Pool.QueryRow(ctx, query,
		in.FileEntryID, in.SharedWithUserID, in.SharedByUserID, in.ExpiresAt, in.CanEdit, in.CanDelete))
	if err != nil {
		return nil, errFailedCreateShare(err)
	}
	return g, nil
}

func (r *ShareRepository) GetGrant(ctx context.Context, id int64) (*share.Grant, error) {
	g, err := scanGrant(r.db.Pool.QueryRow(ctx, `SELECT `+grantColumns+` FROM file_shares WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errShareNotFound)
		}
		return nil, errFailedGetShare(err)
	}
	return g, nil
}

// ListGrants returns the active grants of a file, newest first.
func (r *ShareRepository) ListGrants(ctx context.Context, fileID int64) ([]share.Grant, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+grantColumns+` FROM file_shares
		WHERE file_entry_id = $1 AND is_active
		ORDER BY shared_at DESC`, fileID)
	if err != nil {
		return nil, errFailedListShares(err)
	}
	defer rows.Close()

	grants := []share.Grant{}
	for rows.Next() {
		g, err := scanGrant(rows)
		if err != nil {
			return nil, errFailedListShares(err)
		}
		grants = append(grants, *g)
	}
	return grants, rows.Err()
}

func (r *ShareRepository) DeactivateGrant(ctx context.Context, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `UPDATE file_shares SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return errFailedUpdateShare(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(errShareNotFound)
	}
	return nil
}

func (r *ShareRepository) CreateLink(ctx context.Context, in share.CreateLinkInput) (*share.Link, error) {
	query := `
		INSERT INTO shared_links (id, file_entry_id, file_name, owner_user_id, expiration_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + linkColumns

	l, err := scanLink(r.db.Pool.QueryRow(ctx, query, uuid.New(), in.FileEntryID, in.FileName, in.OwnerUserID, in.ExpirationDate))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("shared link already exists")
		}
		return nil, errFailedCreateLink(err)
	}
	return l, nil
}

func (r *ShareRepository) GetLink(ctx context.Context, id uuid.UUID) (*share.Link, error) {
	l, err := scanLink(r.db.Pool.QueryRow(ctx, `SELECT `+linkColumns+` FROM shared_links WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errLinkNotFound)
		}
		return nil, errFailedGetLink(err)
	}
	return l, nil
}
