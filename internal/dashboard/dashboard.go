// Package dashboard computes read-only administrative statistics. Every
// count, sum and histogram is delegated to the Store as an aggregate query.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"filehub/internal/audit"
	"filehub/internal/domain/file"
	"filehub/internal/domain/user"
)

const (
	TopFileUsersCount     = 5
	RecentActivitiesCount = 10
	MostSharedFilesCount  = 5
	ExpiringLookaheadDays = 7

	performanceWindowDays = 30
	rollingWeekDays       = 7
	notAvailable          = "N/A"

	errSectionFmt = "dashboard %s: %w"
)

// UserFilter selects users for CountUsers. Nil fields do not filter.
type UserFilter struct {
	Active      *bool
	Type        *user.Type
	CreatedFrom *time.Time
}

// EntryFilter selects file entries for CountEntries and SumEntrySize.
type EntryFilter struct {
	Kind          *file.Kind
	Deleted       *bool
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
}

// AuditFilter selects audit records for CountAudit.
type AuditFilter struct {
	Actions    []audit.Action
	From       *time.Time
	Successful *bool
}

// LinkFilter selects shared links by expiration. A link without an
// expiration matches only the empty filter.
type LinkFilter struct {
	ExpiresAfter    *time.Time
	ExpiresNotAfter *time.Time
	ExpiresFrom     *time.Time
}

// OwnerTotals is one row of the per-owner file aggregate.
type OwnerTotals struct {
	UserID    string
	FirstName string
	LastName  string
	Email     string
	FileCount int
	TotalSize int64
}

// ActivityRow is an audit record joined with its actor, if still known.
type ActivityRow struct {
	Record    audit.Record
	UserFound bool
	UserName  string
}

// LinkRow is a shared link joined with its owner, if still known.
type LinkRow struct {
	FileName       string
	ExpirationDate time.Time
	OwnerEmail     *string
	OwnerName      *string
}

// SharedFileRow aggregates shared links by file name.
type SharedFileRow struct {
	FileName   string
	OwnerEmail *string
	ShareCount int
	LastShared *time.Time
}

// DayBucket is one calendar day of the daily series.
type DayBucket struct {
	Day          time.Time
	FileUploads  int
	UserLogins   int
	AdminActions int
	StorageUsed  int64
}

// Store is the aggregate query surface the dashboard reads from.
type Store interface {
	CountUsers(ctx context.Context, f UserFilter) (int, error)
	LastUserCreated(ctx context.Context) (*time.Time, error)

	CountEntries(ctx context.Context, f EntryFilter) (int, error)
	SumEntrySize(ctx context.Context, f EntryFilter) (int64, error)
	ExtensionHistogram(ctx context.Context) (map[string]int, error)
	TopOwners(ctx context.Context, limit int) ([]OwnerTotals, error)

	CountAudit(ctx context.Context, f AuditFilter) (int, error)
	ActionHistogram(ctx context.Context) (map[audit.Action]int, error)
	RecentActivity(ctx context.Context, limit int) ([]ActivityRow, error)

	CountLinks(ctx context.Context, f LinkFilter) (int, error)
	LinksExpiringBetween(ctx context.Context, after, notAfter time.Time) ([]LinkRow, error)
	MostSharedFiles(ctx context.Context, limit int) ([]SharedFileRow, error)

	// DailySeries returns one bucket per UTC day from fromDay to toDay
	// inclusive. adminActions selects what counts as an admin action.
	DailySeries(ctx context.Context, fromDay, toDay time.Time, adminActions []audit.Action) ([]DayBucket, error)
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) GetDashboardStats(ctx context.Context) (*Stats, error) {
	users, err := s.GetUserStats(ctx)
	if err != nil {
		return nil, fmt.Errorf(errSectionFmt, "users", err)
	}
	files, err := s.GetFileStats(ctx)
	if err != nil {
		return nil, fmt.Errorf(errSectionFmt, "files", err)
	}
	activity, err := s.GetActivityStats(ctx)
	if err != nil {
		return nil, fmt.Errorf(errSectionFmt, "activity", err)
	}
	perf, err := s.GetSystemPerformance(ctx)
	if err != nil {
		return nil, fmt.Errorf(errSectionFmt, "performance", err)
	}
	links, err := s.GetSharedLinkStats(ctx)
	if err != nil {
		return nil, fmt.Errorf(errSectionFmt, "shared links", err)
	}

	return &Stats{
		UserStats:         *users,
		FileStats:         *files,
		ActivityStats:     *activity,
		SystemPerformance: *perf,
		SharedLinkStats:   *links,
	}, nil
}

func (s *Service) GetUserStats(ctx context.Context) (*UserStats, error) {
	w := WindowsAt(s.now())
	active, inactive := true, false
	admin, client := user.TypeAdmin, user.TypeClient

	var stats UserStats
	counts := []struct {
		dst *int
		f   UserFilter
	}{
		{&stats.TotalUsers, UserFilter{}},
		{&stats.ActiveUsers, UserFilter{Active: &active}},
		{&stats.InactiveUsers, UserFilter{Active: &inactive}},
		{&stats.AdminUsers, UserFilter{Type: &admin}},
		{&stats.RegularUsers, UserFilter{Type: &client}},
		{&stats.NewUsersThisWeek, UserFilter{CreatedFrom: &w.WeekStart}},
		{&stats.NewUsersThisMonth, UserFilter{CreatedFrom: &w.MonthStart}},
	}
	for _, c := range counts {
		n, err := s.store.CountUsers(ctx, c.f)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}

	last, err := s.store.LastUserCreated(ctx)
	if err != nil {
		return nil, err
	}
	stats.LastUserCreated = last
	stats.UserTypeDistribution = map[string]int{
		user.TypeAdmin.String():  stats.AdminUsers,
		user.TypeClient.String(): stats.RegularUsers,
	}
	return &stats, nil
}

func (s *Service) GetFileStats(ctx context.Context) (*FileStats, error) {
	w := WindowsAt(s.now())
	fileKind, folderKind := file.KindFile, file.KindFolder
	live, deleted := false, true

	var stats FileStats
	counts := []struct {
		dst *int
		f   EntryFilter
	}{
		{&stats.TotalFiles, EntryFilter{Kind: &fileKind, Deleted: &live}},
		{&stats.TotalFolders, EntryFilter{Kind: &folderKind, Deleted: &live}},
		{&stats.DeletedFiles, EntryFilter{Deleted: &deleted}},
		{&stats.FilesUploadedToday, EntryFilter{Kind: &fileKind, Deleted: &live, CreatedFrom: &w.Today}},
		{&stats.FilesUploadedThisWeek, EntryFilter{Kind: &fileKind, Deleted: &live, CreatedFrom: &w.WeekStart}},
		{&stats.FilesUploadedThisMonth, EntryFilter{Kind: &fileKind, Deleted: &live, CreatedFrom: &w.MonthStart}},
	}
	for _, c := range counts {
		n, err := s.store.CountEntries(ctx, c.f)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}

	total, err := s.store.SumEntrySize(ctx, EntryFilter{Kind: &fileKind, Deleted: &live})
	if err != nil {
		return nil, err
	}
	stats.TotalSizeBytes = total
	stats.TotalSizeFormatted = FormatFileSize(total)
	if stats.TotalFiles > 0 {
		stats.AverageFileSize = total / int64(stats.TotalFiles)
	}

	if stats.FileTypeDistribution, err = s.store.ExtensionHistogram(ctx); err != nil {
		return nil, err
	}
	if stats.SharedFiles, err = s.store.CountLinks(ctx, LinkFilter{}); err != nil {
		return nil, err
	}
	if stats.TopFileUsers, err = s.GetTopFileUsers(ctx, TopFileUsersCount); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetTopFileUsers ranks owners by live file count.
func (s *Service) GetTopFileUsers(ctx context.Context, count int) ([]TopFileUser, error) {
	if count <= 0 {
		count = TopFileUsersCount
	}
	rows, err := s.store.TopOwners(ctx, count)
	if err != nil {
		return nil, err
	}

	out := make([]TopFileUser, 0, len(rows))
	for _, r := range rows {
		out = append(out, TopFileUser{
			UserID:             r.UserID,
			UserName:           strings.TrimSpace(r.FirstName + " " + r.LastName),
			UserEmail:          r.Email,
			FileCount:          r.FileCount,
			TotalSizeBytes:     r.TotalSize,
			TotalSizeFormatted: FormatFileSize(r.TotalSize),
		})
	}
	return out, nil
}

func (s *Service) GetActivityStats(ctx context.Context) (*ActivityStats, error) {
	w := WindowsAt(s.now())
	login := []audit.Action{audit.ActionLogin}
	failed := false

	var stats ActivityStats
	counts := []struct {
		dst *int
		f   AuditFilter
	}{
		{&stats.TotalAuditLogs, AuditFilter{}},
		{&stats.LoginsToday, AuditFilter{Actions: login, From: &w.Today}},
		{&stats.LoginsThisWeek, AuditFilter{Actions: login, From: &w.WeekStart}},
		{&stats.LoginsThisMonth, AuditFilter{Actions: login, From: &w.MonthStart}},
		{&stats.FailedLoginsToday, AuditFilter{Actions: login, From: &w.Today, Successful: &failed}},
		{&stats.AdminActionsToday, AuditFilter{Actions: audit.AdminActions, From: &w.Today}},
		{&stats.AdminActionsThisWeek, AuditFilter{Actions: audit.AdminActions, From: &w.WeekStart}},
	}
	for _, c := range counts {
		n, err := s.store.CountAudit(ctx, c.f)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}

	var err error
	if stats.RecentActivities, err = s.GetRecentActivities(ctx, RecentActivitiesCount); err != nil {
		return nil, err
	}
	if stats.ActionDistribution, err = s.store.ActionHistogram(ctx); err != nil {
		return nil, err
	}
	return &stats, nil
}

// GetRecentActivities lists the newest audit records with the actor's
// display name, or N/A when the actor is unknown.
func (s *Service) GetRecentActivities(ctx context.Context, count int) ([]RecentActivity, error) {
	if count <= 0 {
		count = RecentActivitiesCount
	}
	rows, err := s.store.RecentActivity(ctx, count)
	if err != nil {
		return nil, err
	}

	out := make([]RecentActivity, 0, len(rows))
	for _, r := range rows {
		name := notAvailable
		if r.UserFound {
			name = r.UserName
		}
		out = append(out, RecentActivity{
			UserEmail:    r.Record.UserEmail,
			UserName:     name,
			Action:       r.Record.Action,
			Description:  r.Record.Description,
			Timestamp:    r.Record.Timestamp,
			IsSuccessful: r.Record.IsSuccessful,
			IPAddress:    r.Record.IPAddress,
		})
	}
	return out, nil
}

// GetSystemPerformance reports rolling 30- and 7-day upload figures
// measured back from now, and the daily series for the last 7 days.
func (s *Service) GetSystemPerformance(ctx context.Context) (*SystemPerformance, error) {
	now := s.now()
	thirtyDaysAgo := now.AddDate(0, 0, -performanceWindowDays)
	sevenDaysAgo := now.AddDate(0, 0, -rollingWeekDays)
	today := StartOfDay(now)
	fileKind, live := file.KindFile, false

	recent := EntryFilter{Kind: &fileKind, Deleted: &live, CreatedFrom: &thirtyDaysAgo}
	n30, err := s.store.CountEntries(ctx, recent)
	if err != nil {
		return nil, err
	}
	n7, err := s.store.CountEntries(ctx, EntryFilter{Kind: &fileKind, Deleted: &live, CreatedFrom: &sevenDaysAgo})
	if err != nil {
		return nil, err
	}
	nToday, err := s.store.CountEntries(ctx, EntryFilter{Kind: &fileKind, Deleted: &live, CreatedFrom: &today})
	if err != nil {
		return nil, err
	}
	logins30, err := s.store.CountAudit(ctx, AuditFilter{Actions: []audit.Action{audit.ActionLogin}, From: &thirtyDaysAgo})
	if err != nil {
		return nil, err
	}
	newSize, err := s.store.SumEntrySize(ctx, recent)
	if err != nil {
		return nil, err
	}
	oldSize, err := s.store.SumEntrySize(ctx, EntryFilter{Kind: &fileKind, Deleted: &live, CreatedBefore: &thirtyDaysAgo})
	if err != nil {
		return nil, err
	}

	daily, err := s.GetDailyMetrics(ctx, sevenDaysAgo, now)
	if err != nil {
		return nil, err
	}

	perf := &SystemPerformance{
		AverageFilesPerDay:     float64(n30) / performanceWindowDays,
		AverageFilesPerWeek:    float64(n7) / rollingWeekDays * rollingWeekDays,
		AverageFilesPerMonth:   float64(n30),
		AverageLoginsPerDay:    float64(logins30) / performanceWindowDays,
		FilesUploadedToday:     nToday,
		FilesUploadedThisWeek:  n7,
		FilesUploadedThisMonth: n30,
		DailyMetrics:           daily,
	}
	if oldSize > 0 {
		perf.StorageGrowthPercentage = float64(newSize) / float64(oldSize) * 100
	}
	return perf, nil
}

// GetDailyMetrics returns one entry per calendar day between from and to,
// both inclusive. Uploads count every file created that day, deleted or
// not; storage is the live total created before the next midnight.
func (s *Service) GetDailyMetrics(ctx context.Context, from, to time.Time) ([]DailyMetric, error) {
	fromDay, toDay := StartOfDay(from), StartOfDay(to)
	if toDay.Before(fromDay) {
		return []DailyMetric{}, nil
	}

	buckets, err := s.store.DailySeries(ctx, fromDay, toDay, audit.DailyAdminActions)
	if err != nil {
		return nil, err
	}

	out := make([]DailyMetric, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, DailyMetric{
			Date:         b.Day,
			FileUploads:  b.FileUploads,
			UserLogins:   b.UserLogins,
			AdminActions: b.AdminActions,
			StorageUsed:  b.StorageUsed,
		})
	}
	return out, nil
}

func (s *Service) GetSharedLinkStats(ctx context.Context) (*SharedLinkStats, error) {
	w := WindowsAt(s.now())
	weekAhead := w.Now.AddDate(0, 0, ExpiringLookaheadDays)

	var stats SharedLinkStats
	counts := []struct {
		dst *int
		f   LinkFilter
	}{
		{&stats.TotalSharedLinks, LinkFilter{}},
		{&stats.ActiveSharedLinks, LinkFilter{ExpiresAfter: &w.Now}},
		{&stats.ExpiredSharedLinks, LinkFilter{ExpiresNotAfter: &w.Now}},
		{&stats.LinksExpiringThisWeek, LinkFilter{ExpiresAfter: &w.Now, ExpiresNotAfter: &weekAhead}},
		{&stats.LinksCreatedThisMonth, LinkFilter{ExpiresFrom: &w.MonthStart}},
	}
	for _, c := range counts {
		n, err := s.store.CountLinks(ctx, c.f)
		if err != nil {
			return nil, err
		}
		*c.dst = n
	}

	var err error
	if stats.LinksExpiringSoon, err = s.GetLinksExpiringSoon(ctx, ExpiringLookaheadDays); err != nil {
		return nil, err
	}

	rows, err := s.store.MostSharedFiles(ctx, MostSharedFilesCount)
	if err != nil {
		return nil, err
	}
	stats.MostSharedFiles = make([]PopularSharedFile, 0, len(rows))
	for _, r := range rows {
		stats.MostSharedFiles = append(stats.MostSharedFiles, PopularSharedFile{
			FileName:   r.FileName,
			OwnerEmail: orNA(r.OwnerEmail),
			ShareCount: r.ShareCount,
			LastShared: r.LastShared,
		})
	}
	return &stats, nil
}

// GetLinksExpiringSoon lists links expiring within daysAhead days,
// soonest first, with whole days remaining.
func (s *Service) GetLinksExpiringSoon(ctx context.Context, daysAhead int) ([]ExpiringLink, error) {
	if daysAhead <= 0 {
		daysAhead = ExpiringLookaheadDays
	}
	now := s.now()
	rows, err := s.store.LinksExpiringBetween(ctx, now, now.AddDate(0, 0, daysAhead))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].ExpirationDate.Before(rows[j].ExpirationDate) })

	out := make([]ExpiringLink, 0, len(rows))
	for _, r := range rows {
		out = append(out, ExpiringLink{
			FileName:            r.FileName,
			OwnerEmail:          orNA(r.OwnerEmail),
			OwnerUserName:       orNA(r.OwnerName),
			ExpirationDate:      r.ExpirationDate,
			DaysUntilExpiration: int(r.ExpirationDate.Sub(now).Hours() / 24),
		})
	}
	return out, nil
}

func orNA(s *string) string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return notAvailable
	}
	return *s
}
