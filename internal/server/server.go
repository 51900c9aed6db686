package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danmuck/steemtx/internal/auth"
	"github.com/danmuck/steemtx/internal/config"
	"github.com/danmuck/steemtx/internal/observability"
	"github.com/danmuck/steemtx/internal/protocol/schema"
	"github.com/danmuck/steemtx/internal/tx"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Server exposes the codec and signer over HTTP. Signing is only routed
// when both a signer and a token validator are configured.
type Server struct {
	ID       string
	Addr     string
	Started  time.Time
	Registry *schema.Registry

	builder   *tx.Builder
	signer    *tx.Signer
	validator auth.Validator
	router    *gin.Engine
}

type Options struct {
	ID        string
	Config    config.Config
	Builder   *tx.Builder
	Signer    *tx.Signer
	Validator auth.Validator
}

func New(opts Options) *Server {
	observability.RegisterMetrics()
	if opts.ID == "" {
		opts.ID = "steemtx-signd"
	}
	if opts.Builder == nil {
		opts.Builder = tx.NewBuilder(opts.Config)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(opts.ID))
	r.Use(cors.New(cors.Config{
		AllowOrigins: normalizeOrigins(opts.Config.Server.CorsOrigins),
		AllowMethods: []string{"GET", "POST"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	return &Server{
		ID:        opts.ID,
		Addr:      opts.Config.Server.Addr,
		Started:   time.Now(),
		Registry:  schema.Default(),
		builder:   opts.Builder,
		signer:    opts.Signer,
		validator: opts.Validator,
		router:    r,
	}
}

func (s *Server) HTTPRouter() *gin.Engine {
	return s.router
}

func (s *Server) SigningEnabled() bool {
	return s.signer != nil && s.validator != nil
}

// Run serves until ctx ends, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	s.RegisterRoutes()
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	log.Info().
		Str("id", s.ID).
		Str("addr", s.Addr).
		Bool("signing", s.SigningEnabled()).
		Str("chain", string(s.builder.Chain())).
		Msg("server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	log.Info().Str("id", s.ID).Msg("server shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"uptime":  time.Since(s.Started).String(),
		"service": s.ID,
		"chain":   s.builder.Chain(),
		"signing": s.SigningEnabled(),
	})
}
