package handler

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"filehub/internal/audit"
	"filehub/internal/domain/file"
	apperrors "filehub/pkg/errors"

	"github.com/labstack/echo/v4"
)

const defaultContentType = "application/octet-stream"

type FileHandler struct {
	files         FileService
	audit         AuditRecorder
	maxUploadSize int64
}

func NewFileHandler(files FileService, audit AuditRecorder, maxUploadSize int64) *FileHandler {
	return &FileHandler{files: files, audit: audit, maxUploadSize: maxUploadSize}
}

// List returns the caller's visible entries under ?path=, or the root.
func (h *FileHandler) List(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	entries, err := h.files.ListFiles(c.Request().Context(), userID, c.QueryParam(queryPath))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

func (h *FileHandler) Get(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return handleHTTPError(c, err)
	}

	ctx := c.Request().Context()
	e, err := h.files.GetFileItem(ctx, id)
	if err != nil {
		return err
	}

	allowed, err := h.files.CanUserAccess(ctx, id, userID)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.Forbidden(msgAccessDenied)
	}
	return c.JSON(http.StatusOK, e)
}

// Access reports whether the caller may see the entry.
func (h *FileHandler) Access(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return handleHTTPError(c, err)
	}

	allowed, err := h.files.CanUserAccess(c.Request().Context(), id, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{jsonKeyAllowed: allowed})
}

func (h *FileHandler) Selected(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req IDsRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	if err := requireIDs(req.IDs); err != nil {
		return handleHTTPError(c, err)
	}

	entries, err := h.files.GetSelectedFileItems(c.Request().Context(), req.IDs, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entries)
}

// Upload stores a multipart "file" under form field "path".
func (h *FileHandler) Upload(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	fh, err := c.FormFile(formFile)
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgFileRequired)
	}
	if h.maxUploadSize > 0 && fh.Size > h.maxUploadSize {
		return respondError(c, http.StatusRequestEntityTooLarge, msgFileTooLarge)
	}

	expiration, err := parseTime(c.FormValue(formExpirationDate))
	if err != nil {
		return handleHTTPError(c, err)
	}

	src, err := fh.Open()
	if err != nil {
		return respondError(c, http.StatusBadRequest, msgFileOpenFailed)
	}
	defer src.Close()

	var content io.Reader = src
	if h.maxUploadSize > 0 {
		content = io.LimitReader(src, h.maxUploadSize)
	}

	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" {
		contentType = defaultContentType
	}

	e, err := h.files.SaveFileWithContent(c.Request().Context(), file.SaveFileInput{
		FileName:       fh.Filename,
		Path:           c.FormValue(formPath),
		Content:        content,
		MimeType:       contentType,
		OwnerID:        userID,
		Title:          c.FormValue(formTitle),
		ExpirationDate: expiration,
	})
	if err != nil {
		return recordFailure(c, h.audit, audit.Entry{
			Action:      audit.ActionFileUploaded,
			Description: fmt.Sprintf(descFileUploaded, file.Join(c.FormValue(formPath), fh.Filename)),
		}, err)
	}

	h.audit.RecordFromContext(c, audit.Entry{
		Action:         audit.ActionFileUploaded,
		Description:    fmt.Sprintf(descFileUploaded, e.Path),
		AdditionalData: map[string]any{"file_id": e.ID, "size": e.Size},
	})
	return c.JSON(http.StatusCreated, e)
}

type SaveMetadataRequest struct {
	FileName string `json:"file_name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
}

// SaveMetadata registers a file whose bytes were stored out of band.
func (h *FileHandler) SaveMetadata(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req SaveMetadataRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	e, err := h.files.SaveFileMetadata(c.Request().Context(), file.SaveMetadataInput{
		FileName: req.FileName,
		Path:     req.Path,
		Size:     req.Size,
		MimeType: req.MimeType,
		OwnerID:  userID,
	})
	if err != nil {
		return recordFailure(c, h.audit, audit.Entry{
			Action:      audit.ActionFileUploaded,
			Description: fmt.Sprintf(descFileRegistered, file.Join(req.Path, req.FileName)),
		}, err)
	}

	h.audit.RecordFromContext(c, audit.Entry{
		Action:      audit.ActionFileUploaded,
		Description: fmt.Sprintf(descFileRegistered, e.Path),
	})
	return c.JSON(http.StatusCreated, e)
}

func (h *FileHandler) Download(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return handleHTTPError(c, err)
	}

	e, rc, err := h.files.OpenFile(c.Request().Context(), id, userID)
	if err != nil {
		return err
	}
	defer rc.Close()

	return streamEntry(c, e, rc)
}

func (h *FileHandler) Delete(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return handleHTTPError(c, err)
	}

	e, err := h.files.DeleteFileItem(c.Request().Context(), id, userID)
	if err != nil {
		return recordFailure(c, h.audit, audit.Entry{
			Action:         audit.ActionFileDeleted,
			Description:    fmt.Sprintf(descFileDeleted, strconv.FormatInt(id, 10)),
			AdditionalData: map[string]any{"file_id": id},
		}, err)
	}

	h.audit.RecordFromContext(c, audit.Entry{
		Action:         audit.ActionFileDeleted,
		Description:    fmt.Sprintf(descFileDeleted, e.Path),
		AdditionalData: map[string]any{"file_id": e.ID},
	})
	return c.JSON(http.StatusOK, e)
}

func (h *FileHandler) DeleteMany(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req IDsRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	if err := requireIDs(req.IDs); err != nil {
		return handleHTTPError(c, err)
	}

	deleted, err := h.files.DeleteMultipleFileItems(c.Request().Context(), req.IDs, userID)
	if err != nil {
		return recordFailure(c, h.audit, audit.Entry{
			Action:         audit.ActionFileDeleted,
			Description:    fmt.Sprintf(descFilesDeleted, len(req.IDs)),
			AdditionalData: map[string]any{"file_ids": req.IDs},
		}, err)
	}

	h.audit.RecordFromContext(c, audit.Entry{
		Action:         audit.ActionFileDeleted,
		Description:    fmt.Sprintf(descFilesDeleted, len(deleted)),
		AdditionalData: map[string]any{"file_ids": idsOf(deleted)},
	})
	return c.JSON(http.StatusOK, deleted)
}

type MoveRequest struct {
	Path string `json:"path"`
}

func (h *FileHandler) Move(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return handleHTTPError(c, err)
	}
	var req MoveRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	e, err := h.files.MoveFileItem(c.Request().Context(), id, req.Path, userID)
	if err != nil {
		return recordFailure(c, h.audit, audit.Entry{
			Action:         audit.ActionFileMoved,
			Description:    fmt.Sprintf(descFileMoved, req.Path),
			AdditionalData: map[string]any{"file_id": id},
		}, err)
	}

	h.audit.RecordFromContext(c, audit.Entry{
		Action:         audit.ActionFileMoved,
		Description:    fmt.Sprintf(descFileMoved, e.Path),
		AdditionalData: map[string]any{"file_id": e.ID},
	})
	return c.JSON(http.StatusOK, e)
}

type MoveManyRequest struct {
	IDs  []int64 `json:"ids"`
	Path string  `json:"path"`
}

func (h *FileHandler) MoveMany(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req MoveManyRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	if err := requireIDs(req.IDs); err != nil {
		return handleHTTPError(c, err)
	}

	moved, err := h.files.MoveMultipleFileItems(c.Request().Context(), req.IDs, req.Path, userID)
	if err != nil {
		return recordFailure(c, h.audit, audit.Entry{
			Action:         audit.ActionFileMoved,
			Description:    fmt.Sprintf(descFilesMoved, req.Path, len(req.IDs)),
			AdditionalData: map[string]any{"file_ids": req.IDs},
		}, err)
	}

	h.audit.RecordFromContext(c, audit.Entry{
		Action:         audit.ActionFileMoved,
		Description:    fmt.Sprintf(descFilesMoved, req.Path, len(moved)),
		AdditionalData: map[string]any{"file_ids": idsOf(moved)},
	})
	return c.JSON(http.StatusOK, moved)
}

type PropertiesRequest struct {
	Title          string     `json:"title"`
	ExpirationDate *time.Time `json:"expiration_date"`
}

func (h *FileHandler) UpdateProperties(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return handleHTTPError(c, err)
	}
	var req PropertiesRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	e, err := h.files.UpdateFileProperties(c.Request().Context(), id, req.Title, req.ExpirationDate, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, e)
}

type BatchPropertiesRequest struct {
	IDs                 []int64    `json:"ids"`
	ExpirationDate      *time.Time `json:"expiration_date"`
	RemoveExistingDates bool       `json:"remove_existing_dates"`
}

func (h *FileHandler) UpdateManyProperties(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}
	var req BatchPropertiesRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}
	if err := requireIDs(req.IDs); err != nil {
		return handleHTTPError(c, err)
	}

	updated, err := h.files.UpdateMultipleFileProperties(c.Request().Context(), req.IDs, req.ExpirationDate, req.RemoveExistingDates, userID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

func streamEntry(c echo.Context, e *file.Entry, content io.Reader) error {
	contentType := defaultContentType
	if e.MimeType != nil && *e.MimeType != "" {
		contentType = *e.MimeType
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		mime.FormatMediaType("attachment", map[string]string{"filename": e.Name}))
	return c.Stream(http.StatusOK, contentType, content)
}

func idsOf(entries []file.Entry) []int64 {
	ids := make([]int64, len(entries))
	for i := range entries {
		ids[i] = entries[i].ID
	}
	return ids
}
