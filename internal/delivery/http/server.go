// Package http assembles the Echo server for the HTTP delivery.
package http

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"rentdesk/config"
	"rentdesk/internal/delivery"
	custommiddleware "rentdesk/internal/delivery/http/middleware"
	"rentdesk/internal/delivery/http/router"
	"rentdesk/internal/delivery/http/validator"
	deliverymiddleware "rentdesk/internal/delivery/middleware"
	"rentdesk/internal/domain/lifecycle"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	slogecho "github.com/samber/slog-echo"
	"go.uber.org/fx"
)

// HTTPParams holds dependencies for the HTTP server, injected by Fx.
type HTTPParams struct {
	fx.In
	fx.Lifecycle

	Config          *config.Config
	Logger          *slog.Logger
	RouterParams    router.RouterParams
	RequestIDMw     *deliverymiddleware.RequestIDMiddleware
	LoggerMw        *deliverymiddleware.LoggerMiddleware
	ErrorMiddleware *custommiddleware.ErrorMiddleware
}

type httpServer struct {
	cfg    *config.Config
	logger *slog.Logger
	server *echo.Echo
}

// NewServer builds the Echo server with middleware and routes registered.
func NewServer(params HTTPParams) (delivery.Delivery, error) {
	echoServer := echo.New()
	echoServer.HideBanner = true
	echoServer.Validator = validator.New()
	echoServer.HTTPErrorHandler = params.ErrorMiddleware.HandleHTTPError
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(echomiddleware.CORS())
	echoServer.Use(params.RequestIDMw.Process)
	echoServer.Use(params.LoggerMw.Handle)
	echoServer.Use(slogecho.New(params.Logger))

	if params.Config.HTTP.Timeouts.ReadTimeout > 0 {
		echoServer.Server.ReadTimeout = params.Config.HTTP.Timeouts.ReadTimeout
	}
	if params.Config.HTTP.Timeouts.ReadHeaderTimeout > 0 {
		echoServer.Server.ReadHeaderTimeout = params.Config.HTTP.Timeouts.ReadHeaderTimeout
	}
	if params.Config.HTTP.Timeouts.WriteTimeout > 0 {
		echoServer.Server.WriteTimeout = params.Config.HTTP.Timeouts.WriteTimeout
	}
	if params.Config.HTTP.Timeouts.IdleTimeout > 0 {
		echoServer.Server.IdleTimeout = params.Config.HTTP.Timeouts.IdleTimeout
	}

	r := router.NewRouter(params.RouterParams)
	r.RegisterRoutes(echoServer)

	srv := &httpServer{
		cfg:    params.Config,
		logger: params.Logger,
		server: echoServer,
	}

	params.Append(fx.Hook{
		OnStop: srv.stop,
	})

	return srv, nil
}

// Serve starts the HTTP listener and blocks until shutdown.
func (s *httpServer) Serve(ctx context.Context) error {
	hostPort := net.JoinHostPort("0.0.0.0", strconv.Itoa(s.cfg.HTTP.Port))
	s.logger.Info("Starting HTTP server", slog.String("hostPort", hostPort))
	if err := s.server.Start(hostPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "failed to serve http")
	}

	return nil
}

func (s *httpServer) stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, lifecycle.DefaultTimeout)
	defer cancel()

	s.logger.Info("Shutting down HTTP server")

	return errors.WithStack(s.server.Shutdown(shutdownCtx))
}
