package postgres

import (
	"context"
	"fmt"
	"time"

	"filehub/internal/audit"

	"github.com/jackc/pgx/v5"
)

const auditColumns = `id, action, user_id, user_email, description, target_user_id, target_user_email,
	additional_data, ip_address, user_agent, timestamp, is_successful, error_message`

// AuditRepository is the append-only audit_logs store.
type AuditRepository struct {
	db *DB
}

func NewAuditRepository(db *DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func scanAudit(row pgx.Row) (*audit.Record, error) {
	rec := &audit.Record{}
	err := row.Scan(
		&rec.ID, &rec.Action, &rec.UserID, &rec.UserEmail, &rec.Description, &rec.TargetUserID, &rec.TargetUserEmail,
		&rec.AdditionalData, &rec.IPAddress, &rec.UserAgent, &rec.Timestamp, &rec.IsSuccessful, &rec.ErrorMessage,
	)
	return rec, err
}

func (r *AuditRepository) Insert(ctx context.Context, rec *audit.Record) error {
	query := `
		INSERT INTO audit_logs (action, user_id, user_email, description, target_user_id, target_user_email,
			additional_data, ip_address, user_agent, timestamp, is_successful, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id`

	var data map[string]any
	if len(rec.AdditionalData) > 0 {
		data = rec.AdditionalData
	}

	err := r.db.Pool.QueryRow(ctx, query,
		rec.Action, rec.UserID, rec.UserEmail, rec.Description, rec.TargetUserID, rec.TargetUserEmail,
		data, rec.IPAddress, rec.UserAgent, rec.Timestamp, rec.IsSuccessful, rec.ErrorMessage,
	).Scan(&rec.ID)
	if err != nil {
		return errFailedInsertAudit(err)
	}
	return nil
}

// Query returns matching records newest first. A non-positive limit
// returns everything after offset.
func (r *AuditRepository) Query(ctx context.Context, f audit.Filter, limit, offset int) ([]audit.Record, error) {
	w := &whereBuilder{}
	if f.From != nil {
		w.add("timestamp >= ?", *f.From)
	}
	if f.To != nil {
		w.add("timestamp <= ?", *f.To)
	}
	if f.UserID != "" {
		w.add("user_id = ?", f.UserID)
	}
	if f.Action != nil {
		w.add("action = ?", string(*f.Action))
	}

	query := `SELECT ` + auditColumns + ` FROM audit_logs` + w.sql() + ` ORDER BY timestamp DESC, id DESC`
	args := w.args
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset > 0 {
		args = append(args, offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedQueryAudit(err)
	}
	defer rows.Close()

	records := []audit.Record{}
	for rows.Next() {
		rec, err := scanAudit(rows)
		if err != nil {
			return nil, errFailedScanAudit(err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errFailedQueryAudit(err)
	}
	return records, nil
}

// DeleteBefore removes records strictly older than cutoff.
func (r *AuditRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM audit_logs WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, errFailedDeleteAudit(err)
	}
	return tag.RowsAffected(), nil
}
