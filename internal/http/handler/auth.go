package handler

import (
	"net/http"

	"filehub/internal/audit"
	"filehub/internal/auth"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	auth  LoginService
	users UserGetter
}

func NewAuthHandler(auth LoginService, users UserGetter) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return handleHTTPError(c, err)
	}

	res, err := h.auth.Login(c.Request().Context(), auth.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: audit.ClientIP(c.Request().Header, c.Request().RemoteAddr),
		UserAgent: c.Request().UserAgent(),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	h.auth.Logout(c.Request().Context(), userID, auth.GetEmail(c),
		audit.ClientIP(c.Request().Header, c.Request().RemoteAddr), c.Request().UserAgent())

	return respondMessage(c, http.StatusOK, msgLoggedOut)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := callerID(c)
	if err != nil {
		return err
	}

	u, err := h.users.GetByID(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, u)
}
