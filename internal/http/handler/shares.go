package handler

import (
	"fmt"
	"net/http"
	"time"

	"filehub/internal/audit"
	"filehub/internal/domain/share"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type ShareHandler struct {
	shares ShareService
	audit  AuditRecorder
}

func NewShareHandler(shares ShareService, audit AuditRecorder) *ShareHandler {
	return &ShareHandler{shares: shares, audit: audit}
}

type ShareRequest struct {
	UserID    uuid.UUID  `json:"user_id"`
	ExpiresAt *time.Time `json:"expires_at"`
	CanEdit   bool       `json:"can_edit"`
	CanDelete bool       `json:"can_delete"`
}

func (h *ShareHandler) Share(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	fileID, err := pathID(c)
	if err != nil {
		return handleHTTPError(c, err)
	}
	var req ShareRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	g, err := h.shares.ShareFile(c.Request().Context(), share.CreateGrantInput{
		FileEntryID:      fileID,
		SharedWithUserID: req.UserID,
		SharedByUserID:   userID,
		ExpiresAt:        req.ExpiresAt,
		CanEdit:          req.CanEdit,
		CanDelete:        req.CanDelete,
	})
	if err != nil {
		return err
	}

	h.audit.RecordFromContext(c, audit.Entry{
		Action:         audit.ActionFileShared,
		Description:    fmt.Sprintf(descFileShared, c.Param(paramID)),
		TargetUserID:   req.UserID.String(),
		AdditionalData: map[string]any{"file_id": fileID, "share_id": g.ID},
	})
	return c.JSON(http.StatusCreated, g)
}

func (h *ShareHandler) List(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	fileID, err := pathID(c)
	if err != nil {
		return handleHTTPError(c, err)
	}

	grants, err := h.shares.ListShares(c.Request().Context(), fileID, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, grants)
}

func (h *ShareHandler) Revoke(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	grantID, err := pathID(c)
	if err != nil {
		return handleHTTPError(c, err)
	}

	if err := h.shares.RevokeShare(c.Request().Context(), grantID, userID); err != nil {
		return err
	}

	h.audit.RecordFromContext(c, audit.Entry{
		Action:      audit.ActionPermissionRevoked,
		Description: fmt.Sprintf(descShareRevoked, grantID),
	})
	return c.NoContent(http.StatusNoContent)
}

type CreateLinkRequest struct {
	ExpirationDate *time.Time `json:"expiration_date"`
}

func (h *ShareHandler) CreateLink(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	fileID, err := pathID(c)
	if err != nil {
		return handleHTTPError(c, err)
	}
	var req CreateLinkRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	l, err := h.shares.CreateSharedLink(c.Request().Context(), fileID, req.ExpirationDate, userID)
	if err != nil {
		return err
	}

	h.audit.RecordFromContext(c, audit.Entry{
		Action:         audit.ActionFileShared,
		Description:    fmt.Sprintf(descLinkCreated, l.FileName),
		AdditionalData: map[string]any{"file_id": fileID, "link_id": l.ID.String()},
	})
	return c.JSON(http.StatusCreated, l)
}

// LinkInfo describes a public link without downloading it.
func (h *ShareHandler) LinkInfo(c echo.Context) error {
	linkID, err := pathUUID(c, paramLinkID, msgInvalidLinkID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	l, e, err := h.shares.ResolveSharedLink(c.Request().Context(), linkID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"link": l,
		"file": map[string]any{"name": e.Name, "size": e.Size, "mime_type": e.MimeType},
	})
}

// OpenLink streams the file behind a public link. No authentication.
func (h *ShareHandler) OpenLink(c echo.Context) error {
	linkID, err := pathUUID(c, paramLinkID, msgInvalidLinkID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	e, rc, err := h.shares.OpenSharedLink(c.Request().Context(), linkID)
	if err != nil {
		return err
	}
	defer rc.Close()

	return streamEntry(c, e, rc)
}
