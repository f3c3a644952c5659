package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"filehub/internal/audit"

	"github.com/labstack/echo/v4"
)

const healthCheckTimeout = 2 * time.Second

type MaintenanceHandler struct {
	purger Purger
	audit  AuditRecorder
}

func NewMaintenanceHandler(purger Purger, audit AuditRecorder) *MaintenanceHandler {
	return &MaintenanceHandler{purger: purger, audit: audit}
}

// Purge runs one purge pass now and reports its result.
func (h *MaintenanceHandler) Purge(c echo.Context) error {
	res, err := h.purger.RunOnce(c.Request().Context())
	if err != nil {
		return err
	}

	h.audit.RecordFromContext(c, audit.Entry{
		Action:      audit.ActionAdminActionPerformed,
		Description: fmt.Sprintf(descPurgeRun, res.Purged),
	})
	return c.JSON(http.StatusOK, res)
}

type HealthHandler struct {
	db Pinger
}

func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db}
}

// Health reports 503 when the database does not answer a ping.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{jsonKeyStatus: statusDegraded})
	}
	return c.JSON(http.StatusOK, map[string]string{jsonKeyStatus: statusOK})
}
