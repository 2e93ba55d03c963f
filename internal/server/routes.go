package server

import (
	"net/http"

	"catalog/internal/config"
	"catalog/internal/handler"
	"catalog/internal/middleware"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func RegisterRoutes(
	e *echo.Echo,
	cfg config.Config,
	productH *handler.ProductHandler,
	adminH *handler.AdminProductHandler,
	gatherer prometheus.Gatherer,
) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	productH.RegisterRoutes(e)

	//JWT_SECRETがあるときだけ更新系をADMINに限定
	var guards []echo.MiddlewareFunc
	if cfg.AuthEnabled() {
		guards = append(guards, middleware.AuthJWT(cfg.JWTSecret), middleware.AdminRoleGuard())
	}
	adminH.RegisterRoutes(e, guards...)
}
