package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fveldev/blog-auth/internal/token"
)

type Deps struct {
	AuthHandler *AuthHTTP
	Codec       *token.Codec
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authMw := &AuthMiddleware{Codec: d.Codec}

	auth := e.Group("/auth")
	auth.POST("/register", d.AuthHandler.Register)
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/google", d.AuthHandler.GoogleLogin)
	auth.POST("/refresh", d.AuthHandler.Refresh)

	private := auth.Group("")
	private.Use(authMw.RequireAuth)
	private.POST("/logout", d.AuthHandler.Logout)
	private.GET("/me", d.AuthHandler.Me)
}
