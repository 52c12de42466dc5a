package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"gamatrix/internal/config"
	"gamatrix/internal/logging"
	"gamatrix/internal/reconcile"
)

// CacheSaver persists the metadata cache after a comparison mutates it.
// May be nil when the server runs without a metadata client.
type CacheSaver interface {
	Save() error
}

// Server serves the comparison API.
type Server struct {
	cfg    *config.Config
	engine *reconcile.Engine
	cache  CacheSaver
	logger *slog.Logger

	// mu serializes comparisons and uploads.
	mu sync.Mutex
}

// New returns a server. engine must be non-nil; cache may be nil.
func New(cfg *config.Config, engine *reconcile.Engine, cache CacheSaver, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Server{
		cfg:    cfg,
		engine: engine,
		cache:  cache,
		logger: logging.WithComponent(logger, "server"),
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestID())
	router.Use(s.accessLog())
	router.Use(s.allowedNetworks())

	api := router.Group("/api")
	api.GET("/users", s.handleUsers)
	api.POST("/compare", s.handleCompare)
	api.POST("/upload", s.handleUpload)

	return router
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Bind,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", logging.String("bind", s.cfg.Server.Bind))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
