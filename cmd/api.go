package cmd

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"etf-momentum/internal/delivery/http"
)

const shutdownGrace = 10 * time.Second

type HTTPServer struct {
	appDep  *AppDependency
	handler *http.HttpAPIHandler
}

func NewHTTPServer(ctx context.Context, appDep *AppDependency, handler *http.HttpAPIHandler) *HTTPServer {
	return &HTTPServer{appDep: appDep, handler: handler}
}

func (s *HTTPServer) Start() error {
	s.handler.SetupRoutes()

	addr := fmt.Sprintf(":%d", s.appDep.cfg.API.Port)
	s.appDep.log.Info("HTTP server listening", zap.String("addr", addr))
	return s.appDep.echo.Start(addr)
}

// Stop drains in-flight requests, giving up after the grace period.
func (s *HTTPServer) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()

	if err := s.appDep.echo.Shutdown(ctx); err != nil {
		s.appDep.log.Warn("HTTP server shutdown incomplete", zap.Error(err))
		return err
	}
	s.appDep.log.Info("HTTP server stopped")
	return nil
}
