package revalidate

import (
	"context"
	"log/slog"
	"time"
)

type Prerenderer interface {
	Prerender(ctx context.Context) (int, error)
}

// Warmer prerenders every category page on start and then once per period.
// A non-positive period prerenders once.
type Warmer struct {
	log    *slog.Logger
	pages  Prerenderer
	period time.Duration
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWarmer(log *slog.Logger, pages Prerenderer, period time.Duration) *Warmer {
	return &Warmer{
		log:    log,
		pages:  pages,
		period: period,
	}
}

func (w *Warmer) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.done = make(chan struct{})

	go func() {
		defer close(w.done)
		if _, err := w.pages.Prerender(ctx); err != nil {
			w.log.Error("initial prerender failed", "error", err)
		}
		if w.period <= 0 {
			<-ctx.Done()
			return
		}
		ticker := time.NewTicker(w.period)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				w.log.Info("page warmer stopped")
				return
			case <-ticker.C:
				if _, err := w.pages.Prerender(ctx); err != nil {
					w.log.Error("prerender failed", "error", err)
				}
			}
		}
	}()
}

func (w *Warmer) Stop() {
	if w.cancel != nil {
		w.cancel()
		<-w.done
	}
}
