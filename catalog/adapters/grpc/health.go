package grpc

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/SamuelNgundi/fullstack-comic-app/catalog/core"
)

// Monitor serves grpc.health.v1 for the catalog and flips the status with
// the reachability of its database.
type Monitor struct {
	log     *slog.Logger
	db      core.Pinger
	server  *health.Server
	service string
	period  time.Duration
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewMonitor(log *slog.Logger, db core.Pinger, service string, period time.Duration) *Monitor {
	s := health.NewServer()
	s.SetServingStatus(service, healthpb.HealthCheckResponse_NOT_SERVING)
	s.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	return &Monitor{
		log:     log,
		db:      db,
		server:  s,
		service: service,
		period:  period,
	}
}

func (m *Monitor) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, m.server)
}

// Check pings the database once and publishes the outcome.
func (m *Monitor) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := m.db.Ping(ctx); err != nil {
		m.log.Warn("database ping failed", "error", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.server.SetServingStatus(m.service, status)
	m.server.SetServingStatus("", status)
	return status
}

func (m *Monitor) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)
		m.Check(ctx)
		ticker := time.NewTicker(m.period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				m.log.Info("health monitor stopped")
				return
			case <-ticker.C:
				m.Check(ctx)
			}
		}
	}()
}

// Stop ends the checks and reports NOT_SERVING from then on.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
	m.server.Shutdown()
}
