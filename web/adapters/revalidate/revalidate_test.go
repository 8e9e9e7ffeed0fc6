package revalidate

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func runNATSServer(t *testing.T) *server.Server {
	t.Helper()

	opts := &server.Options{
		Host:   "127.0.0.1",
		Port:   -1,
		NoLog:  true,
		NoSigs: true,
	}

	s, err := server.NewServer(opts)
	require.NoError(t, err)

	go s.Start()

	if !s.ReadyForConnections(5 * time.Second) {
		s.Shutdown()
		t.Fatalf("nats server not ready")
	}
	t.Cleanup(s.Shutdown)
	return s
}

type countingPages struct {
	invalidated atomic.Int32
	prerendered atomic.Int32
}

func (p *countingPages) Invalidate() { p.invalidated.Add(1) }

func (p *countingPages) Prerender(context.Context) (int, error) {
	p.prerendered.Add(1)
	return 1, nil
}

func TestEventRevalidator_DebouncesEvents(t *testing.T) {
	s := runNATSServer(t)

	nc, err := nats.Connect(s.ClientURL())
	require.NoError(t, err)
	t.Cleanup(nc.Close)

	pages := &countingPages{}
	r := NewEventRevalidator(testLogger(), pages, nc, 300*time.Millisecond)
	require.NoError(t, r.Start(context.Background()))
	t.Cleanup(r.Stop)
	require.NoError(t, nc.Flush())

	pub, err := nats.Connect(s.ClientURL())
	require.NoError(t, err)
	t.Cleanup(pub.Close)
	for range 5 {
		require.NoError(t, pub.Publish(SubjectCatalogUpdated, []byte("one-piece")))
	}
	require.NoError(t, pub.Flush())

	require.Eventually(t, func() bool {
		return pages.invalidated.Load() == 1
	}, 2*time.Second, 10*time.Millisecond)

	time.Sleep(400 * time.Millisecond)
	require.Equal(t, int32(1), pages.invalidated.Load())
}

func TestEventRevalidator_NilConn(t *testing.T) {
	r := NewEventRevalidator(testLogger(), &countingPages{}, nil, 0)
	require.Error(t, r.Start(context.Background()))
}

func TestWarmer(t *testing.T) {
	pages := &countingPages{}
	w := NewWarmer(testLogger(), pages, 20*time.Millisecond)
	w.Start(context.Background())

	require.Eventually(t, func() bool {
		return pages.prerendered.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
	w.Stop()

	n := pages.prerendered.Load()
	time.Sleep(60 * time.Millisecond)
	require.Equal(t, n, pages.prerendered.Load())
}

func TestWarmer_NoPeriod(t *testing.T) {
	pages := &countingPages{}
	w := NewWarmer(testLogger(), pages, 0)
	w.Start(context.Background())

	require.Eventually(t, func() bool {
		return pages.prerendered.Load() == 1
	}, 2*time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	w.Stop()
	require.EqualValues(t, 1, pages.prerendered.Load())
}
