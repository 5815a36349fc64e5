package health

import (
	"context"
	"log/slog"
	"time"

	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Monitor polls the host and calls OnServing whenever it reports SERVING
// after having been unreachable. A restarted host comes up with only the
// self-test grammar, so the consumer resyncs on that edge.
type Monitor struct {
	Addr      string
	Interval  time.Duration
	Timeout   time.Duration
	OnServing func()
	Logger    *slog.Logger

	check func(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error)
}

// Run polls until ctx ends.
func (m *Monitor) Run(ctx context.Context) {
	logger := m.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	interval := m.Interval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	check := m.check
	if check == nil {
		check = func(ctx context.Context) (healthpb.HealthCheckResponse_ServingStatus, error) {
			resp, err := Check(ctx, m.Addr, m.Timeout)
			if err != nil {
				return healthpb.HealthCheckResponse_UNKNOWN, err
			}
			return resp.GetStatus(), nil
		}
	}

	// Start as down so the first SERVING observation triggers a sync.
	// NOT_SERVING while reachable is an install in progress, not a restart.
	down := true
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := check(ctx)
		switch {
		case err != nil:
			if !down {
				logger.Warn("recognition host unreachable", "addr", m.Addr, "error", err.Error())
			}
			down = true
		case status == healthpb.HealthCheckResponse_SERVING && down:
			logger.Info("recognition host serving", "addr", m.Addr)
			down = false
			if m.OnServing != nil {
				m.OnServing()
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
