package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"catalog/internal/config"
	"catalog/internal/handler"
	"catalog/internal/middleware"
	"catalog/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// echoを組み立てる（起動はしない）
func New(
	cfg config.Config,
	uc *usecase.ProductUsecase,
	logger *zap.Logger,
	tracer trace.Tracer,
	gatherer prometheus.Gatherer,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(echomw.Recover())
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.Tracing(tracer))

	RegisterRoutes(e, cfg, handler.NewProductHandler(uc), handler.NewAdminProductHandler(uc), gatherer)
	return e
}

// ctxがキャンセルされるまで待ち受け、その後graceful shutdown
func Start(ctx context.Context, e *echo.Echo, addr string, shutdownTimeout time.Duration) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
