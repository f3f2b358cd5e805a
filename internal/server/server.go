package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/service"
	"github.com/UnknownOlympus/pinpoint/internal/viewport"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Viewport is the controller session driven over HTTP.
type Viewport interface {
	CenterOnDevice(ctx context.Context) error
	ConsumeSelection(ctx context.Context) (bool, error)
	ConfirmLocation() models.ConfirmedLocation
	Snapshot() viewport.State
}

// MapWidget receives user gestures replayed by the client.
type MapWidget interface {
	Pan(path ...models.Region)
}

// SelectionSink receives results of the address search screen.
type SelectionSink interface {
	Deliver(ctx context.Context, sel models.Selection)
}

// Locator is the device location service driven by the client: it accepts
// position fixes and the user's answer to the permission prompt.
type Locator interface {
	Report(ctx context.Context, coords models.Coordinates) error
	SetPermission(granted bool)
}

// Confirmer finishes the location step.
type Confirmer interface {
	Confirm(ctx context.Context, source service.LocationSource) (models.SavedLocation, error)
	Recent(ctx context.Context, limit int) ([]models.SavedLocation, error)
}

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators behind the HTTP surface.
type Deps struct {
	Viewport  Viewport
	Map       MapWidget
	Selection SelectionSink
	Locator   Locator
	Confirmer Confirmer
	DB        Pinger
	Registry  *prometheus.Registry
}

// Server exposes a viewport session, confirmation and monitoring endpoints.
type Server struct {
	log  *slog.Logger
	deps Deps
	mux  *http.ServeMux
}

// New creates a server and registers its routes.
func New(log *slog.Logger, deps Deps) *Server {
	srv := &Server{log: log, deps: deps, mux: http.NewServeMux()}
	srv.routes()
	return srv
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run listens on port until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, port int) error {
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoContext(ctx, "Starting http server", "port", port)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(writeTimeout)*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down http server: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}

	return nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /v1/state", s.handleState)
	s.mux.HandleFunc("POST /v1/center", s.handleCenter)
	s.mux.HandleFunc("POST /v1/pan", s.handlePan)
	s.mux.HandleFunc("POST /v1/selection", s.handleSelection)
	s.mux.HandleFunc("POST /v1/device/position", s.handleDevicePosition)
	s.mux.HandleFunc("POST /v1/device/permission", s.handleDevicePermission)
	s.mux.HandleFunc("POST /v1/confirm", s.handleConfirm)
	s.mux.HandleFunc("GET /v1/recent", s.handleRecent)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.deps.Registry != nil {
		s.mux.Handle("GET /metrics", promhttp.HandlerFor(s.deps.Registry, promhttp.HandlerOpts{}))
	}
}
