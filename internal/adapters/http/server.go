package http

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var corsConfig = middleware.CORSConfig{
	AllowOrigins: []string{"*"},
	AllowMethods: []string{
		http.MethodGet, http.MethodOptions, http.MethodPatch,
		http.MethodDelete, http.MethodPost, http.MethodPut,
	},
	AllowHeaders: []string{
		"X-CSRF-Token", "X-Requested-With", "Accept", "Accept-Version",
		"Content-Length", "Content-MD5", "Content-Type", "Date", "X-Api-Version",
	},
	ExposeHeaders: []string{headerRequestID, "Retry-After", headerRemainingHour, headerRemainingDay},
}

// NewServer builds the echo instance with middleware and routes.
func NewServer(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = h.errorHandler

	e.Use(RequestIDMiddleware())
	e.Use(LoggingMiddleware(h.logger))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(corsConfig))
	e.Use(middleware.BodyLimit("1M"))

	h.Register(e)
	return e
}
