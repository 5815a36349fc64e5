package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func startServer(t *testing.T) *Server {
	t.Helper()
	s, err := Listen("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return s
}

func TestCheckReflectsServingState(t *testing.T) {
	s := startServer(t)

	resp, err := Check(context.Background(), s.Addr(), 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	s.SetServing(true)
	resp, err = Check(context.Background(), s.Addr(), 2*time.Second)
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	require.Contains(t, Render(resp), "SERVING")
}

func TestCheckUnreachable(t *testing.T) {
	_, err := Check(context.Background(), "127.0.0.1:1", 200*time.Millisecond)
	require.Error(t, err)
}

func TestMonitorTriggersOnRecoveryOnly(t *testing.T) {
	errDown := errors.New("connection refused")
	type step struct {
		status healthpb.HealthCheckResponse_ServingStatus
		err    error
	}
	steps := []step{
		{err: errDown},
		{status: healthpb.HealthCheckResponse_NOT_SERVING},
		{status: healthpb.HealthCheckResponse_SERVING},
		{status: healthpb.HealthCheckResponse_NOT_SERVING},
		{status: healthpb.HealthCheckResponse_SERVING},
		{err: errDown},
		{status: healthpb.HealthCheckResponse_SERVING},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu       sync.Mutex
		idx      int
		triggers []int
	)
	m := &Monitor{
		Interval: time.Millisecond,
		OnServing: func() {
			mu.Lock()
			defer mu.Unlock()
			triggers = append(triggers, idx-1)
		},
		check: func(context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
			mu.Lock()
			defer mu.Unlock()
			if idx >= len(steps) {
				cancel()
				return healthpb.HealthCheckResponse_UNKNOWN, nil
			}
			s := steps[idx]
			idx++
			return s.status, s.err
		},
	}

	m.Run(ctx)
	require.Equal(t, []int{2, 6}, triggers)
}
