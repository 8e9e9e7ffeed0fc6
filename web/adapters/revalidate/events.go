package revalidate

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
)

const (
	SubjectCatalogUpdated = "catalog.comics.updated"
	defaultDebounce       = 2 * time.Second
)

type Invalidator interface {
	Invalidate()
}

// EventRevalidator drops cached page props after catalog updates. Bursts of
// events within the debounce window cause a single invalidation.
type EventRevalidator struct {
	log      *slog.Logger
	pages    Invalidator
	nc       *nats.Conn
	debounce time.Duration

	cancel context.CancelFunc
	done   chan struct{}

	pending atomic.Bool
}

func NewEventRevalidator(log *slog.Logger, pages Invalidator, nc *nats.Conn, debounce time.Duration) *EventRevalidator {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &EventRevalidator{
		log:      log,
		pages:    pages,
		nc:       nc,
		debounce: debounce,
	}
}

func (r *EventRevalidator) Start(ctx context.Context) error {
	if r.pages == nil || r.nc == nil {
		return errors.New("event revalidator: nil dependency")
	}

	ch := make(chan *nats.Msg, 16)
	sub, err := r.nc.ChanSubscribe(SubjectCatalogUpdated, ch)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		defer func() {
			if err := sub.Unsubscribe(); err != nil {
				r.log.Error("failed to unsubscribe from nats", "error", err)
			}
			r.log.Info("event revalidator stopped")
		}()

		ticker := time.NewTicker(r.debounce)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				if r.pending.Swap(false) {
					r.log.Info("invalidating pages after catalog update")
					r.pages.Invalidate()
				}

			case msg := <-ch:
				r.log.Debug("catalog update event", "slug", string(msg.Data))
				r.pending.Store(true)
			}
		}
	}()

	return nil
}

func (r *EventRevalidator) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}
