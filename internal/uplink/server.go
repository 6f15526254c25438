// Package uplink is the network-facing surface of a satellite: it
// authenticates inbound control-plane requests, maps capsules to running
// containers, and dispatches workload operations to the executor.
package uplink

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"voidnet/internal/observability"
)

// shutdownGrace bounds how long in-flight requests may run after the agent
// is told to stop.
const shutdownGrace = 10 * time.Second

// Server is the capsule agent API. Construct one per process and pass it
// by reference; it holds no global state.
type Server struct {
	// Name is the satellite name, for health reports and metrics labels.
	Name string
	// Version is reported on the banner endpoint.
	Version string
	// APIKey is the shared-secret credential. Empty means open (dev) mode.
	APIKey string

	Runtime  ContainerRuntime
	Executor WorkloadExecutor

	// OnReady, when set, is called once the listener is accepting. The
	// daemon uses it for sd_notify.
	OnReady func()
}

// Router builds the HTTP surface. Split from ListenAndServe so tests can
// drive handlers through httptest without a real listener.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), observability.RequestLogger(), observability.RequestMetrics(s.Name))

	r.GET("/", s.handleRoot)
	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	authed := r.Group("/", RequireAPIKey(s.APIKey))
	authed.POST("/deploy", s.handleDeploy)
	authed.POST("/stop", s.handleStop)
	authed.GET("/logs", s.handleLogs)
	authed.GET("/containers", s.handleContainers)
	return r
}

// ListenAndServe serves the agent API until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	observability.SetOpenMode(s.Name, s.APIKey == "")
	if s.APIKey == "" {
		slog.Warn("no credential configured; uplink accepts unauthenticated requests (dev mode)")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s.Router()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("uplink listening", "addr", ln.Addr().String(), "satellite", s.Name)
	if s.OnReady != nil {
		s.OnReady()
	}
	if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
