package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"filehub/internal/domain/file"
	apperrors "filehub/pkg/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const entryColumns = `id, name, path, kind, size, mime_type, owner_id, client_id, created_at, modified_at,
	is_deleted, deleted_at, title, expiration_date, storage_key`

type FileRepository struct {
	db *DB
}

func NewFileRepository(db *DB) *FileRepository {
	return &FileRepository{db: db}
}

func scanEntry(row pgx.Row) (*file.Entry, error) {
	e := &file.Entry{}
	err := row.Scan(
		&e.ID, &e.Name, &e.Path, &e.Kind, &e.Size, &e.MimeType, &e.OwnerID, &e.ClientID, &e.CreatedAt, &e.ModifiedAt,
		&e.IsDeleted, &e.DeletedAt, &e.Title, &e.ExpirationDate, &e.StorageKey,
	)
	return e, err
}

func collectEntries(rows pgx.Rows) ([]file.Entry, error) {
	defer rows.Close()

	entries := []file.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, errFailedScanEntry(err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, errFailedListEntries(err)
	}
	return entries, nil
}

func (r *FileRepository) Create(ctx context.Context, in *file.NewEntry) (*file.Entry, error) {
	query := `
		INSERT INTO file_entries (name, path, kind, size, mime_type, owner_id, client_id, created_at, modified_at,
			title, expiration_date, storage_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8, $9, $10, $11)
		RETURNING ` + entryColumns

	e, err := scanEntry(r.db.Pool.QueryRow(ctx, query,
		in.Name, in.Path, in.Kind, in.Size, in.MimeType, in.OwnerID, in.ClientID, in.CreatedAt,
		in.Title, in.ExpirationDate, in.StorageKey,
	))
	if err != nil {
		return nil, errFailedCreateEntry(err)
	}
	return e, nil
}

func (r *FileRepository) GetByID(ctx context.Context, id int64) (*file.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM file_entries WHERE id = $1`

	e, err := scanEntry(r.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errEntryNotFound)
		}
		return nil, errFailedGetEntry(err)
	}
	return e, nil
}

func (r *FileRepository) GetFolderByPath(ctx context.Context, path string) (*file.Entry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM file_entries
		WHERE path = $1 AND kind = $2 AND NOT is_deleted
		ORDER BY id
		LIMIT 1`

	e, err := scanEntry(r.db.Pool.QueryRow(ctx, query, path, file.KindFolder))
	if err != nil {
		if isNoRows(err) {
			return nil, apperrors.NotFound(errFolderNotFound)
		}
		return nil, errFailedGetEntry(err)
	}
	return e, nil
}

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func (w *whereBuilder) add(cond string, args ...any) {
	for _, a := range args {
		w.args = append(w.args, a)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1)
	}
	w.conds = append(w.conds, cond)
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

func addScope(w *whereBuilder, scope *uuid.UUID) {
	if scope != nil {
		w.add("(owner_id = ? OR client_id = ?)", *scope, *scope)
	}
}

func (r *FileRepository) List(ctx context.Context, f file.ListFilter) ([]file.Entry, error) {
	w := &whereBuilder{}
	w.add("NOT is_deleted")
	addScope(w, f.Scope)
	if f.ClientID != nil {
		w.add("client_id = ?", *f.ClientID)
	}
	if f.PathPrefix == "" {
		w.add("strpos(path, '/') = 0")
	} else {
		w.add(`path LIKE ? ESCAPE '\'`, escapeLikePattern(f.PathPrefix)+"%")
	}
	if f.KindOnly != nil {
		w.add("kind = ?", *f.KindOnly)
	}

	query := `SELECT ` + entryColumns + ` FROM file_entries` + w.sql() + ` ORDER BY kind, name`
	rows, err := r.db.Pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, errFailedListEntries(err)
	}
	return collectEntries(rows)
}

func (r *FileRepository) ListFolders(ctx context.Context, scope *uuid.UUID) ([]file.Entry, error) {
	w := &whereBuilder{}
	w.add("NOT is_deleted")
	w.add("kind = ?", file.KindFolder)
	addScope(w, scope)

	query := `SELECT ` + entryColumns + ` FROM file_entries` + w.sql() + ` ORDER BY path`
	rows, err := r.db.Pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, errFailedListEntries(err)
	}
	return collectEntries(rows)
}

func (r *FileRepository) GetMany(ctx context.Context, ids []int64, scope *uuid.UUID) ([]file.Entry, error) {
	w := &whereBuilder{}
	w.add("id = ANY(?)", ids)
	w.add("NOT is_deleted")
	addScope(w, scope)

	query := `SELECT ` + entryColumns + ` FROM file_entries` + w.sql() + ` ORDER BY id`
	rows, err := r.db.Pool.Query(ctx, query, w.args...)
	if err != nil {
		return nil, errFailedListEntries(err)
	}
	return collectEntries(rows)
}

func (r *FileRepository) SoftDelete(ctx context.Context, ids []int64, at time.Time) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE file_entries SET is_deleted = TRUE, deleted_at = $2, modified_at = $2
			WHERE id = ANY($1) AND NOT is_deleted`, ids, at)
		if err != nil {
			return errFailedUpdateEntry(err)
		}
		return nil
	})
}

func (r *FileRepository) UpdatePaths(ctx context.Context, updates []file.PathUpdate, at time.Time) error {
	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, u := range updates {
			batch.Queue(`UPDATE file_entries SET path = $2, modified_at = $3 WHERE id = $1`, u.ID, u.Path, at)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return errFailedUpdateEntry(err)
		}
		return nil
	})
}

func (r *FileRepository) UpdateProperties(ctx context.Context, id int64, p file.PropertiesUpdate, at time.Time) error {
	tag, err := r.db.Pool.Exec(ctx, `
		UPDATE file_entries SET title = $2, expiration_date = $3, modified_at = $4
		WHERE id = $1 AND NOT is_deleted`, id, p.Title, p.ExpirationDate, at)
	if err != nil {
		return errFailedUpdateEntry(err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound(errEntryNotFound)
	}
	return nil
}

func (r *FileRepository) UpdateExpirations(ctx context.Context, ids []int64, u file.ExpirationUpdate, at time.Time) error {
	var query string
	args := []any{ids, at}
	switch {
	case u.Clear:
		query = `UPDATE file_entries SET expiration_date = NULL, modified_at = $2 WHERE id = ANY($1)`
	case u.Date != nil:
		query = `UPDATE file_entries SET expiration_date = $3, modified_at = $2 WHERE id = ANY($1)`
		args = append(args, *u.Date)
	default:
		query = `UPDATE file_entries SET modified_at = $2 WHERE id = ANY($1)`
	}

	return r.db.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return errFailedUpdateEntry(err)
		}
		return nil
	})
}

// ListDeletedBefore returns entries soft-deleted before cutoff, oldest id first.
func (r *FileRepository) ListDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]file.Entry, error) {
	query := `
		SELECT ` + entryColumns + ` FROM file_entries
		WHERE is_deleted AND deleted_at < $1
		ORDER BY id
		LIMIT $2`

	rows, err := r.db.Pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, errFailedListEntries(err)
	}
	return collectEntries(rows)
}

// HardDelete removes soft-deleted rows; live rows in ids are left alone.
func (r *FileRepository) HardDelete(ctx context.Context, ids []int64) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM file_entries WHERE id = ANY($1) AND is_deleted`, ids)
	if err != nil {
		return 0, errFailedDeleteEntry(err)
	}
	return tag.RowsAffected(), nil
}
