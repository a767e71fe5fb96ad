// Package grpc exposes the standard gRPC health protocol so that orchestrators
// and load balancers can tell when the moderation runtime is accepting work.
package grpc

import (
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ModerationService is the service name reported by the health endpoint.
const ModerationService = "firechat.moderation"

type HealthServer struct {
	server *grpc.Server
	health *health.Server
	log    *slog.Logger
}

// NewHealthServer starts NOT_SERVING until MarkServing is called.
func NewHealthServer(log *slog.Logger) *HealthServer {
	s := grpc.NewServer()
	h := health.NewServer()
	h.SetServingStatus(ModerationService, healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(s, h)
	return &HealthServer{server: s, health: h, log: log}
}

func (h *HealthServer) MarkServing() {
	h.health.SetServingStatus(ModerationService, healthpb.HealthCheckResponse_SERVING)
	h.log.Info("Moderation runtime reported as serving")
}

func (h *HealthServer) MarkNotServing() {
	h.health.SetServingStatus(ModerationService, healthpb.HealthCheckResponse_NOT_SERVING)
}

// Serve blocks until the listener fails or GracefulStop is called.
func (h *HealthServer) Serve(listener net.Listener) error {
	if err := h.server.Serve(listener); err != nil && err != grpc.ErrServerStopped {
		return err
	}
	return nil
}

// GracefulStop reports every service as NOT_SERVING, then waits for pending RPCs.
func (h *HealthServer) GracefulStop() {
	h.health.Shutdown()
	h.server.GracefulStop()
}
