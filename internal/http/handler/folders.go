package handler

import (
	"fmt"
	"net/http"

	"filehub/internal/audit"
	"filehub/internal/domain/file"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type FolderHandler struct {
	files FileService
	audit AuditRecorder
}

func NewFolderHandler(files FileService, audit AuditRecorder) *FolderHandler {
	return &FolderHandler{files: files, audit: audit}
}

type CreateFolderRequest struct {
	Name     string     `json:"name"`
	Path     string     `json:"path"`
	ClientID *uuid.UUID `json:"client_id"`
}

func (h *FolderHandler) Create(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req CreateFolderRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	e, err := h.files.CreateFolder(c.Request().Context(), file.CreateFolderInput{
		Name:     req.Name,
		Path:     req.Path,
		OwnerID:  userID,
		ClientID: req.ClientID,
	})
	if err != nil {
		return recordFailure(c, h.audit, audit.Entry{
			Action:      audit.ActionFolderCreated,
			Description: fmt.Sprintf(descFolderCreated, file.Join(req.Path, req.Name)),
		}, err)
	}

	h.audit.RecordFromContext(c, audit.Entry{
		Action:         audit.ActionFolderCreated,
		Description:    fmt.Sprintf(descFolderCreated, e.Path),
		AdditionalData: map[string]any{"folder_id": e.ID},
	})
	return c.JSON(http.StatusCreated, e)
}

// Tree lists every folder the caller can see, ordered by path.
func (h *FolderHandler) Tree(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	caller, err := h.files.Caller(ctx, userID)
	if err != nil {
		return err
	}

	folders, err := h.files.GetFolderTree(ctx, userID, caller.IsAdmin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, folders)
}

// Clients lists active client accounts, for assigning folders.
func (h *FolderHandler) Clients(c echo.Context) error {
	clients, err := h.files.GetClients(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, clients)
}

// ClientFiles lists one client's entries under ?path=. Admin only.
func (h *FolderHandler) ClientFiles(c echo.Context) error {
	clientID, err := pathUUID(c, paramID, msgInvalidUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	entries, err := h.files.ListClientFiles(c.Request().Context(), clientID, c.QueryParam(queryPath))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}
