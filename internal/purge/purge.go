// Package purge physically removes entries that have stayed soft-deleted
// past the retention window.
package purge

import (
	"context"
	"fmt"
	"sync"
	"time"

	"filehub/internal/audit"
	"filehub/internal/domain/file"
	apperrors "filehub/pkg/errors"
	"filehub/pkg/logger"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

var (
	runsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "filehub",
		Name:      "purge_runs_total",
		Help:      "Number of purge runs.",
	})
	entriesPurgedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "filehub",
		Name:      "purge_entries_total",
		Help:      "Soft-deleted entries removed by purge.",
	})
	errorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "filehub",
		Name:      "purge_errors_total",
		Help:      "Entries purge could not remove.",
	})
	durationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "filehub",
		Name:      "purge_duration_seconds",
		Help:      "Duration of purge runs.",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
)

const (
	defaultBatchSize = 200
	purgeDescription = "Purged %d soft-deleted entries older than %d days"
)

// Store lists and hard-deletes soft-deleted catalog rows.
type Store interface {
	ListDeletedBefore(ctx context.Context, cutoff time.Time, limit int) ([]file.Entry, error)
	HardDelete(ctx context.Context, ids []int64) (int64, error)
}

// BlobRemover deletes stored bytes. Removing a missing key succeeds.
type BlobRemover interface {
	Remove(ctx context.Context, key string) error
}

type Auditor interface {
	Record(ctx context.Context, e audit.Entry) error
}

type Result struct {
	Purged   int           `json:"purged"`
	Errors   int           `json:"errors"`
	Duration time.Duration `json:"duration_ns"`
}

// Service purges in batches. Rows whose blob could not be removed stay in
// place and are retried on the next run.
type Service struct {
	store     Store
	blobs     BlobRemover
	auditor   Auditor
	retention int
	batchSize int
	log       *zap.Logger
	now       func() time.Time

	mu sync.Mutex
}

func NewService(store Store, blobs BlobRemover, auditor Auditor, retentionDays int, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:     store,
		blobs:     blobs,
		auditor:   auditor,
		retention: retentionDays,
		batchSize: defaultBatchSize,
		log:       log.Named("purge"),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce purges every eligible entry. Concurrent calls are serialized.
func (s *Service) RunOnce(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	result := &Result{}
	cutoff := s.now().AddDate(0, 0, -s.retention)

	err := s.run(ctx, cutoff, result)

	result.Duration = time.Since(start)
	runsTotal.Inc()
	entriesPurgedTotal.Add(float64(result.Purged))
	errorsTotal.Add(float64(result.Errors))
	durationSeconds.Observe(result.Duration.Seconds())

	s.log.Info("purge finished",
		zap.Int("purged", result.Purged),
		zap.Int("errors", result.Errors),
		zap.Duration("duration", result.Duration),
	)

	if result.Purged > 0 && s.auditor != nil {
		if aErr := s.auditor.Record(ctx, audit.Entry{
			Action:      audit.ActionFilePurged,
			UserID:      audit.SystemUserID,
			Description: fmt.Sprintf(purgeDescription, result.Purged, s.retention),
			AdditionalData: map[string]any{
				"purged": result.Purged,
				"errors": result.Errors,
				"cutoff": cutoff,
			},
			IPAddress: audit.SystemIP,
			UserAgent: audit.SystemUserAgent,
		}); aErr != nil {
			s.log.Warn("failed to audit purge", logger.SafeError(aErr))
		}
	}

	return result, err
}

func (s *Service) run(ctx context.Context, cutoff time.Time, result *Result) error {
	// Entries that failed stay listed; skip them so the loop terminates.
	failed := map[int64]bool{}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		limit := s.batchSize + len(failed)
		batch, err := s.store.ListDeletedBefore(ctx, cutoff, limit)
		if err != nil {
			return apperrors.Persistence("failed to list purgeable entries", err)
		}

		ids := make([]int64, 0, len(batch))
		for _, e := range batch {
			if failed[e.ID] {
				continue
			}
			if e.StorageKey != nil {
				if err := s.blobs.Remove(ctx, *e.StorageKey); err != nil {
					s.log.Error("failed to remove blob",
						zap.Int64("entry_id", e.ID),
						zap.String("key", *e.StorageKey),
						logger.SafeError(err),
					)
					failed[e.ID] = true
					result.Errors++
					continue
				}
			}
			ids = append(ids, e.ID)
		}

		if len(ids) == 0 {
			return nil
		}
		n, err := s.store.HardDelete(ctx, ids)
		if err != nil {
			return apperrors.Persistence("failed to delete purged entries", err)
		}
		result.Purged += int(n)

		if len(batch) < limit {
			return nil
		}
	}
}
