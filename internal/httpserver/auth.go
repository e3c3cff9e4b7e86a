package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fveldev/blog-auth/internal/domain"
	"github.com/fveldev/blog-auth/internal/logging"
	"github.com/fveldev/blog-auth/internal/service"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" || req.FirstName == "" {
		l.Warn("register_error", "status", 400, "reason", "missing fields")
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		return h.mapError(c, "register_failed", err)
	}

	l.Info("register_success", "status", 200)
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		return h.mapError(c, "login_failed", err)
	}

	l.Info("login_successful")
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) GoogleLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_google")

	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil || req.Code == "" {
		l.Warn("google_login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.GoogleLogin(ctx, req.Code)
	if err != nil {
		return h.mapError(c, "google_login_failed", err)
	}

	l.Info("google_login_successful")
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		l.Warn("refresh_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		return h.mapError(c, "refresh_failed", err)
	}

	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("logout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	l.Info("logout_successful")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_me")

	id, ok := principalID(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
	}

	profile, err := h.Svc.Profile(ctx, id)
	if err != nil {
		l.Error("profile_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, profile)
}

// mapError turns domain failures into stable status/message pairs. Causes
// stay in the log; responses never carry internals.
func (h *AuthHTTP) mapError(c echo.Context, event string, err error) error {
	l := logging.FromContext(c.Request().Context()).With("handler", event)

	switch {
	case errors.Is(err, domain.ErrEmailExists):
		l.Warn(event, "status", 409, "reason", "email_exists")
		return echo.NewHTTPError(http.StatusConflict, "email already registered")
	case errors.Is(err, domain.ErrMethodConflict):
		l.Warn(event, "status", 409, "reason", "method_conflict")
		return echo.NewHTTPError(http.StatusConflict, "account registered with a different method")
	case errors.Is(err, domain.ErrInvalidRefreshToken):
		l.Warn(event, "status", 401, "reason", "invalid_refresh_token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid refresh token")
	case errors.Is(err, domain.ErrAuthentication):
		l.Warn(event, "status", 401, "reason", "authentication_failed")
		return echo.NewHTTPError(http.StatusUnauthorized, "authentication failed")
	case errors.Is(err, domain.ErrExternalService):
		l.Error(event, "status", 502, "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "external service error")
	case errors.Is(err, domain.ErrRoleResolution):
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	default:
		l.Error(event, "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
