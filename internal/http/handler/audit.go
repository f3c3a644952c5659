package handler

import (
	"fmt"
	"net/http"

	"filehub/internal/audit"
	"filehub/internal/auth"
	"filehub/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuditHandler struct {
	audit AuditService
	log   *zap.Logger
}

func NewAuditHandler(audit AuditService, log *zap.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, log: log.Named("audit_handler")}
}

func (h *AuditHandler) filter(c echo.Context) (audit.Filter, error) {
	var f audit.Filter
	var err error
	if f.From, err = queryTime(c, queryFrom); err != nil {
		return f, err
	}
	if f.To, err = queryTime(c, queryTo); err != nil {
		return f, err
	}
	f.UserID = c.QueryParam(queryUserID)
	if raw := c.QueryParam(queryAction); raw != "" {
		action, ok := audit.ParseAction(raw)
		if !ok {
			return f, echo.NewHTTPError(http.StatusBadRequest, msgInvalidAction)
		}
		f.Action = &action
	}
	return f, nil
}

// Query filters by ?from, ?to, ?user_id and ?action.
func (h *AuditHandler) Query(c echo.Context) error {
	f, err := h.filter(c)
	if err != nil {
		return handleHTTPError(c, err)
	}

	records, err := h.audit.Query(c.Request().Context(), f)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

func (h *AuditHandler) Recent(c echo.Context) error {
	count, err := queryInt(c, queryCount, audit.DefaultRecentCount)
	if err != nil {
		return handleHTTPError(c, err)
	}

	records, err := h.audit.Recent(c.Request().Context(), count)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

func (h *AuditHandler) ForUser(c echo.Context) error {
	pageSize, err := queryInt(c, queryPageSize, audit.DefaultPageSize)
	if err != nil {
		return handleHTTPError(c, err)
	}
	page, err := queryInt(c, queryPage, 1)
	if err != nil {
		return handleHTTPError(c, err)
	}

	records, err := h.audit.ForUser(c.Request().Context(), c.Param(paramUserID), pageSize, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, records)
}

// Cleanup deletes records older than ?days_to_keep. An absent parameter
// means 90; zero or negative values are rejected rather than wiping the log.
func (h *AuditHandler) Cleanup(c echo.Context) error {
	days, err := queryInt(c, queryDaysToKeep, audit.DefaultRetention)
	if err != nil {
		return handleHTTPError(c, err)
	}
	if days <= 0 {
		return respondError(c, http.StatusBadRequest, msgInvalidDaysToKeep)
	}

	removed, err := h.audit.Cleanup(c.Request().Context(), days)
	if err != nil {
		return err
	}

	h.audit.RecordFromContext(c, audit.Entry{
		Action:      audit.ActionAdminActionPerformed,
		Description: fmt.Sprintf(descAuditCleanup, days, removed),
	})
	return c.JSON(http.StatusOK, map[string]int64{jsonKeyRemoved: removed})
}

// Export renders the filtered records as an XLSX workbook.
func (h *AuditHandler) Export(c echo.Context) error {
	f, err := h.filter(c)
	if err != nil {
		return handleHTTPError(c, err)
	}

	records, err := h.audit.Query(c.Request().Context(), f)
	if err != nil {
		return err
	}

	data, err := audit.ExportXLSX(records)
	if err != nil {
		h.log.Error("audit export failed", logger.SafeError(err), zap.String("user_email", auth.GetEmail(c)))
		return respondError(c, http.StatusInternalServerError, msgExportFailed)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+auditExportName+`"`)
	return c.Blob(http.StatusOK, xlsxContentType, data)
}
