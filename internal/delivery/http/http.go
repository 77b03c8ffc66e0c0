package http

import (
	"context"
	"net/http"

	goValidator "github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"etf-momentum/internal/service"
)

type HttpAPIHandler struct {
	echo      *echo.Echo
	validator *goValidator.Validate
	service   *service.Service
}

func NewHttpAPIHandler(ctx context.Context, e *echo.Echo, validator *goValidator.Validate, svc *service.Service) *HttpAPIHandler {
	return &HttpAPIHandler{
		echo:      e,
		validator: validator,
		service:   svc,
	}
}

func (h *HttpAPIHandler) SetupRoutes() {
	h.echo.Use(middleware.Recover())
	h.echo.Use(middleware.RequestID())

	h.echo.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	base := h.echo.Group("/api")
	h.SetupBacktest(base)
}
