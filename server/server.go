package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/Irisfrogy/data-visulization/config"
	"github.com/Irisfrogy/data-visulization/services"
	"github.com/Irisfrogy/data-visulization/utils"
)

// App is the dashboard HTTP server.
type App struct {
	cfg     *config.Config
	router  *http.ServeMux
	handler http.Handler
	logger  *utils.Logger
}

// NewApp registers the routes for svc. cache may be nil when the dashboard
// runs without a view cache.
func NewApp(cfg *config.Config, svc *services.DashboardService, cache CacheStatus, logger *utils.Logger) *App {
	app := &App{
		cfg:    cfg,
		router: http.NewServeMux(),
		logger: logger,
	}

	h := NewDashboardHandler(svc, cache, logger)
	SetDashboardRoutes(app.router, h)
	if cfg.Debug {
		SetDebugRoutes(app.router, h)
	}
	app.handler = withRequestLog(app.router, logger)
	return app
}

// SetDashboardRoutes sets up the page and its API.
func SetDashboardRoutes(router *http.ServeMux, h *DashboardHandler) {
	router.HandleFunc("GET /{$}", h.GetIndex)
	router.HandleFunc("GET /api/options", h.GetOptions)
	router.HandleFunc("GET /api/view", h.GetView)
	router.HandleFunc("GET /api/listings.csv", h.GetListingsCSV)
	router.HandleFunc("GET /health", h.GetHealth)
}

// SetDebugRoutes sets up routes only served in debug mode.
func SetDebugRoutes(router *http.ServeMux, h *DashboardHandler) {
	router.HandleFunc("GET /debug/stats", h.GetStats)
}

// Handler returns the routed handler with middleware applied.
func (app *App) Handler() http.Handler { return app.handler }

// Run listens on the configured port until ctx is cancelled.
func (app *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", app.cfg.Port))
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return app.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (app *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()
	app.logger.Info("[server] Dashboard running on http://%s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: serve: %w", err)
	case <-ctx.Done():
	}

	app.logger.Info("[server] Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
