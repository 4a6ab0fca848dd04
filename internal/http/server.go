package http

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/geograph/internal/config"
	"github.com/yungbote/geograph/internal/platform/logger"
)

type Server struct {
	Engine *gin.Engine
	srv    *nethttp.Server
	cfg    config.HTTPConfig
	log    *logger.Logger
}

func NewServer(httpCfg config.HTTPConfig, routes RouterConfig, log *logger.Logger) *Server {
	if routes.CORSOrigins == nil {
		routes.CORSOrigins = httpCfg.CORSOrigins
	}
	if routes.Log == nil {
		routes.Log = log
	}
	engine := NewRouter(routes)

	var handler nethttp.Handler = engine
	if httpCfg.MaxRequestBytes > 0 {
		handler = nethttp.MaxBytesHandler(engine, httpCfg.MaxRequestBytes)
	}
	return &Server{
		Engine: engine,
		cfg:    httpCfg,
		log:    log,
		srv: &nethttp.Server{
			Addr:              httpCfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: httpCfg.ReadHeaderTimeout.Duration,
			IdleTimeout:       httpCfg.IdleTimeout.Duration,
		},
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests for at
// most the configured shutdown timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout.Duration
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.log.Info("http server shutting down", "timeout", timeout.String())
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
