package handler

import (
	"fmt"
	"net/http"

	"filehub/internal/audit"
	"filehub/internal/domain/user"
	"filehub/internal/users"

	"github.com/labstack/echo/v4"
)

// UsersHandler is the admin surface for accounts and role membership.
type UsersHandler struct {
	users UserAdmin
	audit AuditRecorder
}

func NewUsersHandler(users UserAdmin, audit AuditRecorder) *UsersHandler {
	return &UsersHandler{users: users, audit: audit}
}

// List accepts ?type=client|admin.
func (h *UsersHandler) List(c echo.Context) error {
	var filter *user.Type
	if raw := c.QueryParam(queryType); raw != "" {
		t, ok := user.ParseType(raw)
		if !ok {
			return respondError(c, http.StatusBadRequest, msgInvalidUserType)
		}
		filter = &t
	}

	list, err := h.users.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

func (h *UsersHandler) Get(c echo.Context) error {
	id, err := pathUUID(c, paramID, msgInvalidUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	u, err := h.users.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

type CreateUserRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	UserType  string `json:"user_type"`
}

// Create onboards an account. user_type defaults to client.
func (h *UsersHandler) Create(c echo.Context) error {
	actorID, err := callerID(c)
	if err != nil {
		return err
	}
	var req CreateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	userType := user.TypeClient
	if req.UserType != "" {
		t, ok := user.ParseType(req.UserType)
		if !ok {
			return respondError(c, http.StatusBadRequest, msgInvalidUserType)
		}
		userType = t
	}

	entry := audit.Entry{
		Action:          audit.ActionUserCreated,
		Description:     fmt.Sprintf(descUserCreated, req.Email, userType),
		TargetUserEmail: req.Email,
	}
	u, err := h.users.Create(c.Request().Context(), users.CreateInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Type:      userType,
		CreatedBy: actorID,
	})
	if err != nil {
		return recordFailure(c, h.audit, entry, err)
	}

	entry.TargetUserID = u.ID.String()
	h.audit.RecordFromContext(c, entry)
	h.audit.RecordFromContext(c, audit.Entry{
		Action:          audit.ActionRoleAssigned,
		Description:     fmt.Sprintf(descRoleAssigned, userType.DefaultRole(), u.Email),
		TargetUserID:    u.ID.String(),
		TargetUserEmail: u.Email,
	})
	return c.JSON(http.StatusCreated, u)
}

type UpdateUserRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address   string `json:"address"`
}

func (h *UsersHandler) Update(c echo.Context) error {
	id, err := pathUUID(c, paramID, msgInvalidUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}
	var req UpdateUserRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	entry := audit.Entry{Action: audit.ActionUserUpdated, TargetUserID: id.String()}
	u, err := h.users.UpdateProfile(c.Request().Context(), id, user.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Address:   req.Address,
	})
	if err != nil {
		entry.Description = fmt.Sprintf(descUserUpdated, id)
		return recordFailure(c, h.audit, entry, err)
	}

	entry.Description = fmt.Sprintf(descUserUpdated, u.Email)
	entry.TargetUserEmail = u.Email
	h.audit.RecordFromContext(c, entry)
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHandler) Activate(c echo.Context) error {
	return h.setActive(c, true)
}

func (h *UsersHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false)
}

func (h *UsersHandler) setActive(c echo.Context, active bool) error {
	actorID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, paramID, msgInvalidUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}

	action, desc := audit.ActionUserActivated, descUserActivated
	if !active {
		action, desc = audit.ActionUserDeactivated, descUserDeactivated
	}
	entry := audit.Entry{Action: action, TargetUserID: id.String(), Description: fmt.Sprintf(desc, id)}

	u, err := h.users.SetActive(c.Request().Context(), id, active, actorID)
	if err != nil {
		return recordFailure(c, h.audit, entry, err)
	}

	entry.Description = fmt.Sprintf(desc, u.Email)
	entry.TargetUserEmail = u.Email
	h.audit.RecordFromContext(c, entry)
	return c.JSON(http.StatusOK, u)
}

type RoleRequest struct {
	Role string `json:"role"`
}

func (h *UsersHandler) AssignRole(c echo.Context) error {
	id, err := pathUUID(c, paramID, msgInvalidUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}
	var req RoleRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	entry := audit.Entry{
		Action:       audit.ActionRoleAssigned,
		TargetUserID: id.String(),
		Description:  fmt.Sprintf(descRoleAssigned, req.Role, id),
	}
	u, err := h.users.AssignRole(c.Request().Context(), id, req.Role)
	if err != nil {
		return recordFailure(c, h.audit, entry, err)
	}

	h.audit.RecordFromContext(c, withTarget(entry, u, descRoleAssigned, req.Role))
	return c.JSON(http.StatusOK, u)
}

func (h *UsersHandler) RemoveRole(c echo.Context) error {
	actorID, err := callerID(c)
	if err != nil {
		return err
	}
	id, err := pathUUID(c, paramID, msgInvalidUserID)
	if err != nil {
		return handleHTTPError(c, err)
	}
	role := c.Param(paramRole)

	entry := audit.Entry{
		Action:       audit.ActionRoleRemoved,
		TargetUserID: id.String(),
		Description:  fmt.Sprintf(descRoleRemoved, role, id),
	}
	u, err := h.users.RemoveRole(c.Request().Context(), id, role, actorID)
	if err != nil {
		return recordFailure(c, h.audit, entry, err)
	}

	h.audit.RecordFromContext(c, withTarget(entry, u, descRoleRemoved, role))
	return c.JSON(http.StatusOK, u)
}

func withTarget(e audit.Entry, u *user.User, descFmt, role string) audit.Entry {
	e.TargetUserEmail = u.Email
	e.Description = fmt.Sprintf(descFmt, role, u.Email)
	return e
}
