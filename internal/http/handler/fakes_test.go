package handler

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"filehub/internal/access"
	"filehub/internal/audit"
	"filehub/internal/auth"
	"filehub/internal/dashboard"
	"filehub/internal/domain/file"
	"filehub/internal/domain/share"
	"filehub/internal/domain/user"
	"filehub/internal/purge"
	apperrors "filehub/pkg/errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// fakeFiles records the last call and returns canned values.
type fakeFiles struct {
	entry    *file.Entry
	entries  []file.Entry
	allowed  bool
	isAdmin  bool
	content  string
	err      error
	lastPath string
	lastIDs  []int64
	saved    *file.SaveFileInput
	savedRaw string
	grant    *share.Grant
	link     *share.Link
}

func (f *fakeFiles) Caller(_ context.Context, userID uuid.UUID) (access.Caller, error) {
	return access.Caller{UserID: userID, IsAdmin: f.isAdmin}, f.err
}

func (f *fakeFiles) ListFiles(_ context.Context, _ uuid.UUID, path string) ([]file.Entry, error) {
	f.lastPath = path
	return f.entries, f.err
}

func (f *fakeFiles) ListClientFiles(_ context.Context, _ uuid.UUID, path string) ([]file.Entry, error) {
	f.lastPath = path
	return f.entries, f.err
}

func (f *fakeFiles) GetClients(context.Context) ([]user.User, error) {
	return []user.User{{ID: uuid.New(), FirstName: "Ana"}}, f.err
}

func (f *fakeFiles) CreateFolder(_ context.Context, in file.CreateFolderInput) (*file.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &file.Entry{ID: 1, Name: in.Name, Path: file.Join(in.Path, in.Name), Kind: file.KindFolder}, nil
}

func (f *fakeFiles) SaveFileWithContent(_ context.Context, in file.SaveFileInput) (*file.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, _ := io.ReadAll(in.Content)
	f.saved, f.savedRaw = &in, string(raw)
	return &file.Entry{ID: 7, Name: in.FileName, Path: file.Join(in.Path, in.FileName), Size: int64(len(raw))}, nil
}

func (f *fakeFiles) SaveFileMetadata(_ context.Context, in file.SaveMetadataInput) (*file.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &file.Entry{ID: 8, Name: in.FileName, Path: file.Join(in.Path, in.FileName), Size: in.Size}, nil
}

func (f *fakeFiles) GetFileItem(context.Context, int64) (*file.Entry, error) {
	if f.entry == nil {
		return nil, apperrors.NotFound("file item not found")
	}
	return f.entry, nil
}

func (f *fakeFiles) GetSelectedFileItems(_ context.Context, ids []int64, _ uuid.UUID) ([]file.Entry, error) {
	f.lastIDs = ids
	return f.entries, f.err
}

func (f *fakeFiles) CanUserAccess(context.Context, int64, uuid.UUID) (bool, error) {
	return f.allowed, f.err
}

func (f *fakeFiles) GetFolderTree(_ context.Context, _ uuid.UUID, isAdmin bool) ([]file.Entry, error) {
	if isAdmin {
		return f.entries, nil
	}
	return nil, nil
}

func (f *fakeFiles) DeleteFileItem(context.Context, int64, uuid.UUID) (*file.Entry, error) {
	return f.entry, f.err
}

func (f *fakeFiles) DeleteMultipleFileItems(_ context.Context, ids []int64, _ uuid.UUID) ([]file.Entry, error) {
	f.lastIDs = ids
	return f.entries, f.err
}

func (f *fakeFiles) MoveFileItem(_ context.Context, _ int64, newPath string, _ uuid.UUID) (*file.Entry, error) {
	f.lastPath = newPath
	return f.entry, f.err
}

func (f *fakeFiles) MoveMultipleFileItems(_ context.Context, ids []int64, base string, _ uuid.UUID) ([]file.Entry, error) {
	f.lastIDs, f.lastPath = ids, base
	return f.entries, f.err
}

func (f *fakeFiles) UpdateFileProperties(_ context.Context, _ int64, title string, exp *time.Time, _ uuid.UUID) (*file.Entry, error) {
	if f.err != nil {
		return nil, f.err
	}
	e := *f.entry
	e.Title, e.ExpirationDate = &title, exp
	return &e, nil
}

func (f *fakeFiles) UpdateMultipleFileProperties(_ context.Context, ids []int64, _ *time.Time, _ bool, _ uuid.UUID) ([]file.Entry, error) {
	f.lastIDs = ids
	return f.entries, f.err
}

func (f *fakeFiles) OpenFile(context.Context, int64, uuid.UUID) (*file.Entry, io.ReadCloser, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.entry, io.NopCloser(strings.NewReader(f.content)), nil
}

func (f *fakeFiles) ShareFile(_ context.Context, in share.CreateGrantInput) (*share.Grant, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.grant = &share.Grant{ID: 3, FileEntryID: in.FileEntryID, SharedWithUserID: in.SharedWithUserID, IsActive: true}
	return f.grant, nil
}

func (f *fakeFiles) ListShares(context.Context, int64, uuid.UUID) ([]share.Grant, error) {
	return []share.Grant{}, f.err
}

func (f *fakeFiles) RevokeShare(context.Context, int64, uuid.UUID) error {
	return f.err
}

func (f *fakeFiles) CreateSharedLink(_ context.Context, fileID int64, exp *time.Time, userID uuid.UUID) (*share.Link, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.link = &share.Link{ID: uuid.New(), FileEntryID: fileID, FileName: "a.pdf", OwnerUserID: userID, ExpirationDate: exp}
	return f.link, nil
}

func (f *fakeFiles) ResolveSharedLink(_ context.Context, id uuid.UUID) (*share.Link, *file.Entry, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return &share.Link{ID: id, FileName: f.entry.Name}, f.entry, nil
}

func (f *fakeFiles) OpenSharedLink(context.Context, uuid.UUID) (*file.Entry, io.ReadCloser, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.entry, io.NopCloser(strings.NewReader(f.content)), nil
}

// auditSpy collects request-scoped entries synchronously.
type auditSpy struct {
	mu      sync.Mutex
	entries []audit.Entry
	records []audit.Record
	removed int64
	filter  audit.Filter
	page    [2]int
}

func (a *auditSpy) RecordFromContext(_ echo.Context, e audit.Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
}

func (a *auditSpy) Query(_ context.Context, f audit.Filter) ([]audit.Record, error) {
	a.filter = f
	return a.records, nil
}

func (a *auditSpy) Recent(_ context.Context, count int) ([]audit.Record, error) {
	a.page = [2]int{count, 0}
	return a.records, nil
}

func (a *auditSpy) ForUser(_ context.Context, userID string, pageSize, pageNumber int) ([]audit.Record, error) {
	a.filter = audit.Filter{UserID: userID}
	a.page = [2]int{pageSize, pageNumber}
	return a.records, nil
}

func (a *auditSpy) Cleanup(_ context.Context, daysToKeep int) (int64, error) {
	a.page = [2]int{daysToKeep, 0}
	return a.removed, nil
}

func (a *auditSpy) actions() []audit.Action {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]audit.Action, len(a.entries))
	for i, e := range a.entries {
		out[i] = e.Action
	}
	return out
}

type fakeLogin struct {
	err       error
	lastInput auth.LoginInput
	loggedOut uuid.UUID
}

func (f *fakeLogin) Login(_ context.Context, in auth.LoginInput) (*auth.LoginResult, error) {
	f.lastInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &auth.LoginResult{Token: "tok", User: &user.User{Email: in.Email}}, nil
}

func (f *fakeLogin) Logout(_ context.Context, userID uuid.UUID, _, _, _ string) {
	f.loggedOut = userID
}

type fakeDashboard struct {
	DashboardService
	from, to time.Time
	count    int
}

func (f *fakeDashboard) GetDashboardStats(context.Context) (*dashboard.Stats, error) {
	return &dashboard.Stats{FileStats: dashboard.FileStats{TotalFiles: 3}}, nil
}

func (f *fakeDashboard) GetDailyMetrics(_ context.Context, from, to time.Time) ([]dashboard.DailyMetric, error) {
	f.from, f.to = from, to
	return []dashboard.DailyMetric{}, nil
}

func (f *fakeDashboard) GetTopFileUsers(_ context.Context, count int) ([]dashboard.TopFileUser, error) {
	f.count = count
	return []dashboard.TopFileUser{}, nil
}

type fakePurger struct{ result purge.Result }

func (f *fakePurger) RunOnce(context.Context) (*purge.Result, error) {
	return &f.result, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

// newContext builds an echo context, authenticated when userID is non-nil.
func newContext(method, target string, body io.Reader, userID *uuid.UUID) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != nil {
		c.Set(auth.ContextKeyUserID, *userID)
		c.Set(auth.ContextKeyEmail, "u@example.com")
	}
	return c, rec
}

func jsonBody(s string) io.Reader {
	return bytes.NewBufferString(s)
}
