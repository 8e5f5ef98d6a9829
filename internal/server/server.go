// Package server exposes the management endpoints of the translator: HTTP
// metrics and status, and the gRPC health service.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	log "go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/yanet-platform/tripso/internal/monitoring/metrics"
	"github.com/yanet-platform/tripso/internal/types/requestid"
)

// StatusFunc returns the current state of the service, it is rendered as
// JSON.
type StatusFunc func() any

// Server is used to observe the translator: it serves Prometheus metrics,
// the running status and the gRPC health checks.
type Server struct {
	config     *Config
	health     *health.Server
	grpcServer *grpc.Server
	httpServer *http.Server
	logger     *log.Logger
}

// New creates a new Server instance. Both servers are created, but nothing
// listens until Run.
func New(config *Config, gatherer metrics.Gatherer, status StatusFunc, logger *log.Logger) *Server {
	logger = logger.With(log.String("event_type", "server"))

	healthServer := health.NewServer()
	gRPCServer := grpc.NewServer()
	healthpb.RegisterHealthServer(gRPCServer, healthServer)

	// Register reflection service on gRPC server.
	reflection.Register(gRPCServer)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", gatherer.GetHTTPHandler())
	mux.HandleFunc("GET /status", statusHandler(status, logger))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok\n"))
	})

	httpServer := &http.Server{
		Addr:              config.HTTPAddr,
		Handler:           requestIDMiddleware(logger)(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return &Server{
		config:     config,
		health:     healthServer,
		grpcServer: gRPCServer,
		httpServer: httpServer,
		logger:     logger,
	}
}

// Run starts both the gRPC and HTTP servers. They serve until Stop.
func (m *Server) Run(ctx context.Context) error {
	wg, _ := errgroup.WithContext(ctx)
	if m.config.GRPCAddr != "" {
		wg.Go(func() error {
			return m.runGRPCServer()
		})
	}
	wg.Go(func() error {
		return m.runHTTPServer()
	})
	return wg.Wait()
}

// SetServing reports the serving state through the health service.
func (m *Server) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	m.health.SetServingStatus("", status)
}

// Stop gracefully stops both the gRPC and HTTP servers.
func (m *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	m.health.Shutdown()
	m.grpcServer.Stop()
	if err := m.httpServer.Shutdown(ctx); err != nil {
		m.logger.Error("failed to shutdown HTTP server", log.Error(err))
	}
}

func (m *Server) runGRPCServer() error {
	listener, err := net.Listen("tcp", m.config.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	return m.grpcServer.Serve(listener)
}

func (m *Server) runHTTPServer() error {
	err := m.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func statusHandler(status StatusFunc, logger *log.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(status()); err != nil {
			logger.Error("failed to encode status", requestid.Field(r.Context()), log.Error(err))
		}
	}
}
