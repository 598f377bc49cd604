package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sonder-backend/internal/platform/logger"
)

// Server wraps the std http.Server around the gin engine with sane timeouts
// and graceful shutdown.
type Server struct {
	log  *logger.Logger
	srv  *http.Server
	port string
}

func NewServer(log *logger.Logger, engine *gin.Engine, port string) *Server {
	return &Server{
		log:  log.With("component", "HTTPServer"),
		port: port,
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       60 * time.Second,
			WriteTimeout:      120 * time.Second,
			IdleTimeout:       90 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	s.log.Info("http server listening", "port", s.port)
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("http server shutting down")
	return s.srv.Shutdown(ctx)
}
