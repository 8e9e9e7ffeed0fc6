package core

import (
	"context"
	"log/slog"
	"sync"
)

type FetchFunc[T any] func(ctx context.Context, params PageParams) (Page[T], error)

type QueryState struct {
	CurrentPage int
	Loading     bool
	Err         error
	Count       int
}

// PaginatedQuery refetches a page whenever the current page or the filter
// options change and pushes the transformed results to a setter.
//
// Requests are never cancelled when superseded. Each one carries a sequence
// number and only the latest may touch state once it resolves, so a slow
// response for page N cannot overwrite page M requested after it. A failed
// fetch records the error and leaves the displayed items alone.
//
// The setter and the OnChange observer run one at a time and must not call
// back into the query.
type PaginatedQuery[T, U any] struct {
	log       *slog.Logger
	set       func([]U)
	fetch     FetchFunc[T]
	transform func(T) U
	onChange  func(QueryState)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// apply serializes resolution; mu guards the fields below.
	apply sync.Mutex
	mu    sync.Mutex
	seq   uint64
	state QueryState
	opts  FilterOptions
}

// NewPaginatedQuery builds a query. A nil transform means identity and is only
// allowed when T values are also U values. initialPage below 1 starts at 1.
func NewPaginatedQuery[T, U any](
	ctx context.Context,
	log *slog.Logger,
	set func([]U),
	fetch FetchFunc[T],
	initialPage int,
	opts FilterOptions,
	transform func(T) U,
) (*PaginatedQuery[T, U], error) {
	if log == nil || set == nil || fetch == nil {
		return nil, ErrNilDependency
	}
	if transform == nil {
		var zero T
		if _, ok := any(zero).(U); !ok {
			return nil, ErrBadTransform
		}
		transform = func(t T) U {
			u, _ := any(t).(U)
			return u
		}
	}
	if initialPage < 1 {
		initialPage = 1
	}
	ctx, cancel := context.WithCancel(ctx)
	return &PaginatedQuery[T, U]{
		log:       log,
		set:       set,
		fetch:     fetch,
		transform: transform,
		ctx:       ctx,
		cancel:    cancel,
		state:     QueryState{CurrentPage: initialPage},
		opts:      opts,
	}, nil
}

// OnChange registers an observer called after every state change that comes
// from a resolved request.
func (q *PaginatedQuery[T, U]) OnChange(fn func(QueryState)) {
	q.mu.Lock()
	q.onChange = fn
	q.mu.Unlock()
}

// Start issues the first fetch.
func (q *PaginatedQuery[T, U]) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.issueLocked()
}

func (q *PaginatedQuery[T, U]) SetCurrentPage(page int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if page == q.state.CurrentPage {
		return
	}
	q.state.CurrentPage = page
	q.issueLocked()
}

// SetOptions changes the filter and returns to the first page.
func (q *PaginatedQuery[T, U]) SetOptions(opts FilterOptions) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if opts == q.opts {
		return
	}
	q.opts = opts
	q.state.CurrentPage = 1
	q.issueLocked()
}

func (q *PaginatedQuery[T, U]) State() QueryState {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *PaginatedQuery[T, U]) Options() FilterOptions {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.opts
}

// Wait blocks until every issued fetch has resolved.
func (q *PaginatedQuery[T, U]) Wait() {
	q.wg.Wait()
}

// Close cancels outstanding fetches and waits for them to return.
func (q *PaginatedQuery[T, U]) Close() {
	q.cancel()
	q.wg.Wait()
}

func (q *PaginatedQuery[T, U]) issueLocked() {
	if q.ctx.Err() != nil {
		return
	}
	q.seq++
	seq := q.seq
	params := PageParams{Page: q.state.CurrentPage, FilterOptions: q.opts}
	q.state.Loading = true
	q.state.Err = nil

	q.wg.Go(func() {
		res, err := q.fetch(q.ctx, params)
		q.resolve(seq, params, res, err)
	})
}

func (q *PaginatedQuery[T, U]) resolve(seq uint64, params PageParams, res Page[T], err error) {
	q.apply.Lock()
	defer q.apply.Unlock()

	q.mu.Lock()
	if seq != q.seq {
		q.mu.Unlock()
		q.log.Debug("dropping stale page", "page", params.Page, "category", params.Category)
		return
	}
	var items []U
	q.state.Loading = false
	if err != nil {
		q.state.Err = err
	} else {
		items = make([]U, 0, len(res.Results))
		for _, r := range res.Results {
			items = append(items, q.transform(r))
		}
		q.state.Count = res.Count
	}
	state := q.state
	onChange := q.onChange
	q.mu.Unlock()

	if err != nil {
		q.log.Warn("page fetch failed", "page", params.Page, "category", params.Category, "error", err)
	} else {
		q.set(items)
	}
	if onChange != nil {
		onChange(state)
	}
}
