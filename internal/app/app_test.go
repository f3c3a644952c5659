package app

import (
	"testing"

	"filehub/internal/config"
	"filehub/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRegisterJobs(t *testing.T) {
	cfg := &config.Config{Maintenance: config.MaintenanceConfig{
		PurgeSchedule:        "30 3 * * *",
		AuditCleanupSchedule: "0 4 * * 0",
		AuditRetentionDays:   90,
	}}
	s := jobs.NewScheduler(zap.NewNop())

	require.NoError(t, registerJobs(s, cfg, &Components{}))
	assert.Error(t, s.Register(JobPurge, "* * * * *", nil))
	assert.Error(t, s.Register(JobAuditCleanup, "* * * * *", nil))
}

func TestRegisterJobs_InvalidSchedule(t *testing.T) {
	cfg := &config.Config{Maintenance: config.MaintenanceConfig{PurgeSchedule: "every day"}}

	err := registerJobs(jobs.NewScheduler(zap.NewNop()), cfg, &Components{})

	assert.Error(t, err)
}

func TestRegisterJobs_DisabledSchedules(t *testing.T) {
	s := jobs.NewScheduler(zap.NewNop())

	require.NoError(t, registerJobs(s, &config.Config{}, &Components{}))
	assert.Error(t, s.RunNow(JobAuditCleanup))
}

func TestOpenBlobStore_Disk(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: config.StorageBackendDisk, Root: t.TempDir()}}

	store, err := openBlobStore(cfg)

	require.NoError(t, err)
	assert.NotEmpty(t, store.Location("a.txt"))
}
