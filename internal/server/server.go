// Package server exposes table ordering over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/dbsmedya/fkorder/internal/config"
	"github.com/dbsmedya/fkorder/internal/logger"
	"github.com/dbsmedya/fkorder/internal/schema"
)

// shutdownTimeout bounds how long in-flight requests may finish after the
// context is cancelled.
const shutdownTimeout = 5 * time.Second

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server serves the ordering API.
type Server struct {
	cfg    *config.Config
	src    schema.ForeignKeySource
	pinger Pinger
	log    *logger.Logger
	router *gin.Engine
}

// New creates a server answering sort requests from src. pinger may be nil.
func New(cfg *config.Config, src schema.ForeignKeySource, pinger Pinger, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		src:    src,
		pinger: pinger,
		log:    log,
	}
	s.router = s.newRouter()
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestID, accessLog(s.log))

	if origins := s.cfg.Server.AllowedOrigins; len(origins) > 0 {
		corsCfg := cors.Config{
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}
		if len(origins) == 1 && origins[0] == "*" {
			corsCfg.AllowAllOrigins = true
		} else {
			corsCfg.AllowOrigins = origins
		}
		router.Use(cors.New(corsCfg))
	}

	router.GET("/healthz", s.health)

	api := router.Group("/api/v1")
	{
		api.GET("/sets", s.listSets)
		api.POST("/sort", s.sort)
	}

	return router
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Server.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Infof("Server listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("Shutting down server gracefully")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
