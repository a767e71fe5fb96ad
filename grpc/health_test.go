package grpc

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestHealthServer_Reports_Runtime_State(t *testing.T) {
	req := require.New(t)
	listener := bufconn.Listen(1024 * 1024)
	server := NewHealthServer(slog.Default())

	done := make(chan error, 1)
	go func() { done <- server.Serve(listener) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return listener.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	req.NoError(err)
	defer conn.Close()
	client := healthpb.NewHealthClient(conn)

	check := func() healthpb.HealthCheckResponse_ServingStatus {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ModerationService})
		req.NoError(err)
		return resp.GetStatus()
	}

	// Before the runtime is started
	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, check())

	server.MarkServing()
	req.Equal(healthpb.HealthCheckResponse_SERVING, check())

	server.MarkNotServing()
	req.Equal(healthpb.HealthCheckResponse_NOT_SERVING, check())

	server.GracefulStop()
	req.NoError(<-done)
}
