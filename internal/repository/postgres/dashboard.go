package postgres

import (
	"context"
	"time"

	"filehub/internal/audit"
	"filehub/internal/dashboard"
	"filehub/internal/domain/file"
)

// DashboardRepository answers the dashboard's aggregate queries.
type DashboardRepository struct {
	db *DB
}

func NewDashboardRepository(db *DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

func (r *DashboardRepository) count(ctx context.Context, what, query string, args ...any) (int, error) {
	var n int
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, errFailedAggregate(what, err)
	}
	return n, nil
}

func (r *DashboardRepository) CountUsers(ctx context.Context, f dashboard.UserFilter) (int, error) {
	w := &whereBuilder{}
	if f.Active != nil {
		w.add("is_active = ?", *f.Active)
	}
	if f.Type != nil {
		w.add("user_type = ?", *f.Type)
	}
	if f.CreatedFrom != nil {
		w.add("created_at >= ?", *f.CreatedFrom)
	}
	return r.count(ctx, "users", `SELECT COUNT(*) FROM users`+w.sql(), w.args...)
}

func (r *DashboardRepository) LastUserCreated(ctx context.Context) (*time.Time, error) {
	var last *time.Time
	if err := r.db.Pool.QueryRow(ctx, `SELECT MAX(created_at) FROM users`).Scan(&last); err != nil {
		return nil, errFailedAggregate("users", err)
	}
	if last != nil {
		t := last.UTC()
		last = &t
	}
	return last, nil
}

func entryWhere(f dashboard.EntryFilter) *whereBuilder {
	w := &whereBuilder{}
	if f.Kind != nil {
		w.add("kind = ?", *f.Kind)
	}
	if f.Deleted != nil {
		w.add("is_deleted = ?", *f.Deleted)
	}
	if f.CreatedFrom != nil {
		w.add("created_at >= ?", *f.CreatedFrom)
	}
	if f.CreatedBefore != nil {
		w.add("created_at < ?", *f.CreatedBefore)
	}
	return w
}

func (r *DashboardRepository) CountEntries(ctx context.Context, f dashboard.EntryFilter) (int, error) {
	w := entryWhere(f)
	return r.count(ctx, "file entries", `SELECT COUNT(*) FROM file_entries`+w.sql(), w.args...)
}

func (r *DashboardRepository) SumEntrySize(ctx context.Context, f dashboard.EntryFilter) (int64, error) {
	w := entryWhere(f)
	var sum int64
	err := r.db.Pool.QueryRow(ctx, `SELECT COALESCE(SUM(size), 0)::bigint FROM file_entries`+w.sql(), w.args...).Scan(&sum)
	if err != nil {
		return 0, errFailedAggregate("file sizes", err)
	}
	return sum, nil
}

// ExtensionHistogram keys live files by lower-cased extension, dot included.
func (r *DashboardRepository) ExtensionHistogram(ctx context.Context) (map[string]int, error) {
	query := `
		SELECT ext, COUNT(*) FROM (
			SELECT COALESCE(NULLIF(LOWER(SUBSTRING(name FROM '\.[^.]*$')), '.'), $2) AS ext
			FROM file_entries
			WHERE kind = $1 AND NOT is_deleted
		) t
		GROUP BY ext`

	rows, err := r.db.Pool.Query(ctx, query, file.KindFile, dashboard.NoExtension)
	if err != nil {
		return nil, errFailedAggregate("extensions", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var ext string
		var n int
		if err := rows.Scan(&ext, &n); err != nil {
			return nil, errFailedAggregate("extensions", err)
		}
		out[ext] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errFailedAggregate("extensions", err)
	}
	return out, nil
}

func (r *DashboardRepository) TopOwners(ctx context.Context, limit int) ([]dashboard.OwnerTotals, error) {
	query := `
		SELECT e.owner_id::text, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''), COALESCE(u.email, ''),
			COUNT(*), COALESCE(SUM(e.size), 0)::bigint
		FROM file_entries e
		LEFT JOIN users u ON u.id = e.owner_id
		WHERE e.kind = $1 AND NOT e.is_deleted
		GROUP BY e.owner_id, u.first_name, u.last_name, u.email
		ORDER BY COUNT(*) DESC, SUM(e.size) DESC
		LIMIT $2`

	rows, err := r.db.Pool.Query(ctx, query, file.KindFile, limit)
	if err != nil {
		return nil, errFailedAggregate("top owners", err)
	}
	defer rows.Close()

	out := []dashboard.OwnerTotals{}
	for rows.Next() {
		var t dashboard.OwnerTotals
		if err := rows.Scan(&t.UserID, &t.FirstName, &t.LastName, &t.Email, &t.FileCount, &t.TotalSize); err != nil {
			return nil, errFailedAggregate("top owners", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errFailedAggregate("top owners", err)
	}
	return out, nil
}

func (r *DashboardRepository) CountAudit(ctx context.Context, f dashboard.AuditFilter) (int, error) {
	w := &whereBuilder{}
	if len(f.Actions) > 0 {
		w.add("action = ANY(?)", actionNames(f.Actions))
	}
	if f.From != nil {
		w.add("timestamp >= ?", *f.From)
	}
	if f.Successful != nil {
		w.add("is_successful = ?", *f.Successful)
	}
	return r.count(ctx, "audit records", `SELECT COUNT(*) FROM audit_logs`+w.sql(), w.args...)
}

func (r *DashboardRepository) ActionHistogram(ctx context.Context) (map[audit.Action]int, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT action, COUNT(*) FROM audit_logs GROUP BY action`)
	if err != nil {
		return nil, errFailedAggregate("actions", err)
	}
	defer rows.Close()

	out := map[audit.Action]int{}
	for rows.Next() {
		var action string
		var n int
		if err := rows.Scan(&action, &n); err != nil {
			return nil, errFailedAggregate("actions", err)
		}
		out[audit.Action(action)] = n
	}
	if err := rows.Err(); err != nil {
		return nil, errFailedAggregate("actions", err)
	}
	return out, nil
}

// RecentActivity joins the newest records with their actor by id.
func (r *DashboardRepository) RecentActivity(ctx context.Context, limit int) ([]dashboard.ActivityRow, error) {
	query := `
		SELECT a.id, a.action, a.user_id, a.user_email, a.description, a.target_user_id, a.target_user_email,
			a.additional_data, a.ip_address, a.user_agent, a.timestamp, a.is_successful, a.error_message,
			u.id IS NOT NULL, COALESCE(TRIM(u.first_name || ' ' || u.last_name), '')
		FROM audit_logs a
		LEFT JOIN users u ON u.id::text = a.user_id
		ORDER BY a.timestamp DESC, a.id DESC
		LIMIT $1`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, errFailedAggregate("recent activity", err)
	}
	defer rows.Close()

	out := []dashboard.ActivityRow{}
	for rows.Next() {
		var row dashboard.ActivityRow
		rec := &row.Record
		err := rows.Scan(
			&rec.ID, &rec.Action, &rec.UserID, &rec.UserEmail, &rec.Description, &rec.TargetUserID, &rec.TargetUserEmail,
			&rec.AdditionalData, &rec.IPAddress, &rec.UserAgent, &rec.Timestamp, &rec.IsSuccessful, &rec.ErrorMessage,
			&row.UserFound, &row.UserName,
		)
		if err != nil {
			return nil, errFailedAggregate("recent activity", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errFailedAggregate("recent activity", err)
	}
	return out, nil
}

// CountLinks never matches a link without expiration unless f is empty.
func (r *DashboardRepository) CountLinks(ctx context.Context, f dashboard.LinkFilter) (int, error) {
	w := &whereBuilder{}
	if f.ExpiresAfter != nil {
		w.add("expiration_date > ?", *f.ExpiresAfter)
	}
	if f.ExpiresNotAfter != nil {
		w.add("expiration_date <= ?", *f.ExpiresNotAfter)
	}
	if f.ExpiresFrom != nil {
		w.add("expiration_date >= ?", *f.ExpiresFrom)
	}
	return r.count(ctx, "shared links", `SELECT COUNT(*) FROM shared_links`+w.sql(), w.args...)
}

func (r *DashboardRepository) LinksExpiringBetween(ctx context.Context, after, notAfter time.Time) ([]dashboard.LinkRow, error) {
	query := `
		SELECT l.file_name, l.expiration_date, u.email,
			CASE WHEN u.id IS NULL THEN NULL ELSE TRIM(u.first_name || ' ' || u.last_name) END
		FROM shared_links l
		LEFT JOIN users u ON u.id = l.owner_user_id
		WHERE l.expiration_date > $1 AND l.expiration_date <= $2
		ORDER BY l.expiration_date`

	rows, err := r.db.Pool.Query(ctx, query, after, notAfter)
	if err != nil {
		return nil, errFailedAggregate("expiring links", err)
	}
	defer rows.Close()

	out := []dashboard.LinkRow{}
	for rows.Next() {
		var row dashboard.LinkRow
		if err := rows.Scan(&row.FileName, &row.ExpirationDate, &row.OwnerEmail, &row.OwnerName); err != nil {
			return nil, errFailedAggregate("expiring links", err)
		}
		row.ExpirationDate = row.ExpirationDate.UTC()
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errFailedAggregate("expiring links", err)
	}
	return out, nil
}

func (r *DashboardRepository) MostSharedFiles(ctx context.Context, limit int) ([]dashboard.SharedFileRow, error) {
	query := `
		SELECT l.file_name, MIN(u.email), COUNT(*), MAX(l.created_at)
		FROM shared_links l
		LEFT JOIN users u ON u.id = l.owner_user_id
		GROUP BY l.file_name
		ORDER BY COUNT(*) DESC, MAX(l.created_at) DESC
		LIMIT $1`

	rows, err := r.db.Pool.Query(ctx, query, limit)
	if err != nil {
		return nil, errFailedAggregate("shared files", err)
	}
	defer rows.Close()

	out := []dashboard.SharedFileRow{}
	for rows.Next() {
		var row dashboard.SharedFileRow
		if err := rows.Scan(&row.FileName, &row.OwnerEmail, &row.ShareCount, &row.LastShared); err != nil {
			return nil, errFailedAggregate("shared files", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errFailedAggregate("shared files", err)
	}
	return out, nil
}

// DailySeries builds one row per UTC day with generate_series so days
// without activity still appear.
func (r *DashboardRepository) DailySeries(ctx context.Context, fromDay, toDay time.Time, adminActions []audit.Action) ([]dashboard.DayBucket, error) {
	query := `
		SELECT d.day,
			(SELECT COUNT(*) FROM file_entries e
				WHERE e.kind = $3 AND e.created_at >= d.day AND e.created_at < d.day + INTERVAL '1 day'),
			(SELECT COUNT(*) FROM audit_logs a
				WHERE a.action = $4 AND a.timestamp >= d.day AND a.timestamp < d.day + INTERVAL '1 day'),
			(SELECT COUNT(*) FROM audit_logs a
				WHERE a.action = ANY($5) AND a.timestamp >= d.day AND a.timestamp < d.day + INTERVAL '1 day'),
			(SELECT COALESCE(SUM(e.size), 0)::bigint FROM file_entries e
				WHERE e.kind = $3 AND NOT e.is_deleted AND e.created_at < d.day + INTERVAL '1 day')
		FROM generate_series($1::timestamptz, $2::timestamptz, INTERVAL '1 day') AS d(day)
		ORDER BY d.day`

	rows, err := r.db.Pool.Query(ctx, query,
		fromDay.UTC(), toDay.UTC(), file.KindFile, string(audit.ActionLogin), actionNames(adminActions),
	)
	if err != nil {
		return nil, errFailedAggregate("daily series", err)
	}
	defer rows.Close()

	out := []dashboard.DayBucket{}
	for rows.Next() {
		var b dashboard.DayBucket
		if err := rows.Scan(&b.Day, &b.FileUploads, &b.UserLogins, &b.AdminActions, &b.StorageUsed); err != nil {
			return nil, errFailedAggregate("daily series", err)
		}
		b.Day = b.Day.UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, errFailedAggregate("daily series", err)
	}
	return out, nil
}

func actionNames(actions []audit.Action) []string {
	out := make([]string, len(actions))
	for i, a := range actions {
		out[i] = string(a)
	}
	return out
}
