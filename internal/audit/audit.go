package audit

import (
	"context"
	"net"
	"strings"
	"time"

	apperrors "filehub/pkg/errors"
	"filehub/pkg/logger"
	"filehub/pkg/metrics"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	// Unknown stands in for a missing IP address or user agent.
	Unknown = "Unknown"

	// SystemUserID attributes records written by the process itself.
	SystemUserID    = "SYSTEM"
	SystemIP        = "127.0.0.1"
	SystemUserAgent = "System Initialization"

	DefaultRecentCount = 100
	DefaultPageSize    = 50
	DefaultRetention   = 90

	asyncTimeout = 2 * time.Second

	msgRetentionPositive = "days to keep must be positive"

	headerForwardedFor = "X-Forwarded-For"
	headerRealIP       = "X-Real-IP"
	contextKeyUserID   = "user_id"
	contextKeyEmail    = "user_email"
)

// Record is one immutable audit entry.
type Record struct {
	ID              int64          `json:"id"`
	Action          Action         `json:"action"`
	UserID          string         `json:"user_id"`
	UserEmail       string         `json:"user_email"`
	Description     string         `json:"description"`
	TargetUserID    *string        `json:"target_user_id,omitempty"`
	TargetUserEmail *string        `json:"target_user_email,omitempty"`
	AdditionalData  map[string]any `json:"additional_data,omitempty"`
	IPAddress       string         `json:"ip_address"`
	UserAgent       string         `json:"user_agent"`
	Timestamp       time.Time      `json:"timestamp"`
	IsSuccessful    bool           `json:"is_successful"`
	ErrorMessage    *string        `json:"error_message,omitempty"`
}

// Entry is what callers hand to Record. A non-empty Failure marks the
// record unsuccessful and becomes its error message.
type Entry struct {
	Action          Action
	UserID          string
	UserEmail       string
	Description     string
	TargetUserID    string
	TargetUserEmail string
	AdditionalData  map[string]any
	IPAddress       string
	UserAgent       string
	Failure         string
}

// Filter narrows Query. All fields are optional and conjunctive.
type Filter struct {
	From   *time.Time
	To     *time.Time
	UserID string
	Action *Action
}

// Store persists audit records.
type Store interface {
	Insert(ctx context.Context, rec *Record) error
	Query(ctx context.Context, filter Filter, limit, offset int) ([]Record, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Logger handles audit logging
type Logger struct {
	store Store
	log   *zap.Logger
	now   func() time.Time
}

func NewLogger(store Store, log *zap.Logger) *Logger {
	if log == nil {
		log = zap.NewNop()
	}
	return &Logger{
		store: store,
		log:   log.Named("audit"),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Record appends one entry, timestamped now.
func (l *Logger) Record(ctx context.Context, e Entry) error {
	rec := &Record{
		Action:         e.Action,
		UserID:         e.UserID,
		UserEmail:      e.UserEmail,
		Description:    e.Description,
		AdditionalData: e.AdditionalData,
		IPAddress:      orUnknown(e.IPAddress),
		UserAgent:      orUnknown(e.UserAgent),
		Timestamp:      l.now(),
		IsSuccessful:   e.Failure == "",
	}
	if e.TargetUserID != "" {
		rec.TargetUserID = &e.TargetUserID
	}
	if e.TargetUserEmail != "" {
		rec.TargetUserEmail = &e.TargetUserEmail
	}
	if e.Failure != "" {
		rec.ErrorMessage = &e.Failure
	}

	if err := l.store.Insert(ctx, rec); err != nil {
		return err
	}

	success := "true"
	if !rec.IsSuccessful {
		success = "false"
	}
	metrics.AuditRecordsTotal.WithLabelValues(string(rec.Action), success).Inc()
	return nil
}

// RecordFromContext fills origin and actor from the request and writes the
// record in the background so the request is never blocked on it.
func (l *Logger) RecordFromContext(c echo.Context, e Entry) {
	if e.IPAddress == "" {
		e.IPAddress = ClientIP(c.Request().Header, c.Request().RemoteAddr)
	}
	if e.UserAgent == "" {
		e.UserAgent = c.Request().UserAgent()
	}
	if e.UserID == "" {
		if uid, ok := c.Get(contextKeyUserID).(uuid.UUID); ok {
			e.UserID = uid.String()
		}
	}
	if e.UserEmail == "" {
		if email, ok := c.Get(contextKeyEmail).(string); ok {
			e.UserEmail = email
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
	go func() {
		defer cancel()
		if err := l.Record(ctx, e); err != nil {
			l.log.Warn("audit record failed",
				zap.String("action", string(e.Action)),
				logger.SafeError(err),
			)
		}
	}()
}

// Query returns matching records, newest first.
func (l *Logger) Query(ctx context.Context, f Filter) ([]Record, error) {
	return l.store.Query(ctx, f, 0, 0)
}

// Recent returns the latest count records. Non-positive count means 100.
func (l *Logger) Recent(ctx context.Context, count int) ([]Record, error) {
	if count <= 0 {
		count = DefaultRecentCount
	}
	return l.store.Query(ctx, Filter{}, count, 0)
}

// ForUser pages through one user's records, newest first. Page numbers
// start at 1; invalid arguments fall back to 50 per page, page 1.
func (l *Logger) ForUser(ctx context.Context, userID string, pageSize, pageNumber int) ([]Record, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageNumber <= 0 {
		pageNumber = 1
	}
	return l.store.Query(ctx, Filter{UserID: userID}, pageSize, (pageNumber-1)*pageSize)
}

// Cleanup deletes records strictly older than daysToKeep days and reports
// how many were removed. daysToKeep must be positive.
func (l *Logger) Cleanup(ctx context.Context, daysToKeep int) (int64, error) {
	if daysToKeep <= 0 {
		return 0, apperrors.Validation(msgRetentionPositive)
	}
	cutoff := l.now().AddDate(0, 0, -daysToKeep)

	removed, err := l.store.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	l.log.Info("audit cleanup finished",
		zap.Int("days_to_keep", daysToKeep),
		zap.Time("cutoff", cutoff),
		zap.Int64("removed", removed),
	)
	return removed, nil
}

// ClientIP picks the first X-Forwarded-For hop, then X-Real-IP, then the
// peer address.
func ClientIP(h interface{ Get(string) string }, remoteAddr string) string {
	if fwd := h.Get(headerForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(h.Get(headerRealIP)); ip != "" {
		return ip
	}
	if remoteAddr != "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
			return host
		}
		return remoteAddr
	}
	return Unknown
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return Unknown
	}
	return s
}
