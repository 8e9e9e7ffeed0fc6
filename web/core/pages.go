package core

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/cases"
)

const prerenderConcurrency = 4

// StaticProps is what a category route is built from before any user
// interaction: the first page of comics and the category list.
type StaticProps struct {
	Comics         Page[Comic]
	Categories     []Category
	ActiveCategory string
}

type CategoryPage struct {
	ActiveCategory string
	Nav            FilterNav
	List           ListView
	// Err is set when the requested page could not be fetched and the
	// first page is shown instead.
	Err     error
	Session *Session
}

type propsEntry struct {
	props     StaticProps
	expiresAt time.Time
}

type Pages struct {
	log        *slog.Logger
	catalog    Catalog
	normalizer Normalizer
	pageSize   int
	revalidate time.Duration
	now        func() time.Time

	// gen is bumped by Invalidate; fetches started under an older
	// generation never reach the cache.
	mu    sync.RWMutex
	gen   uint64
	cache map[string]propsEntry

	fetches singleflight.Group
}

func NewPages(log *slog.Logger, catalog Catalog, normalizer Normalizer, pageSize int, revalidate time.Duration) (*Pages, error) {
	if log == nil || catalog == nil {
		return nil, ErrNilDependency
	}
	if pageSize <= 0 {
		return nil, fmt.Errorf("page size %d: %w", pageSize, ErrBadArguments)
	}
	if revalidate <= 0 {
		return nil, fmt.Errorf("revalidate period %s: %w", revalidate, ErrBadArguments)
	}
	return &Pages{
		log:        log,
		catalog:    catalog,
		normalizer: normalizer,
		pageSize:   pageSize,
		revalidate: revalidate,
		now:        time.Now,
		cache:      make(map[string]propsEntry),
	}, nil
}

func (p *Pages) PageSize() int { return p.pageSize }

// StaticProps returns cached props for the category, fetching them when the
// entry is missing or older than the revalidate period. A failed refetch
// keeps serving the expired entry; with nothing cached it is ErrNotFound.
func (p *Pages) StaticProps(ctx context.Context, category string) (StaticProps, error) {
	key := cacheKey(category)

	p.mu.RLock()
	entry, ok := p.cache[key]
	gen := p.gen
	p.mu.RUnlock()
	if ok && p.now().Before(entry.expiresAt) {
		return entry.props, nil
	}

	v, err, _ := p.fetches.Do(strconv.FormatUint(gen, 10)+"/"+key, func() (any, error) {
		props, err := p.fetchProps(ctx, category)
		if err != nil {
			return StaticProps{}, err
		}
		p.mu.Lock()
		if p.gen == gen {
			p.cache[key] = propsEntry{props: props, expiresAt: p.now().Add(p.revalidate)}
		} else {
			p.log.Debug("props outdated by invalidation, not cached", "category", category)
		}
		p.mu.Unlock()
		return props, nil
	})
	if err != nil {
		if ok {
			p.log.Warn("revalidation failed, serving stale props", "category", category, "error", err)
			return entry.props, nil
		}
		return StaticProps{}, fmt.Errorf("%w: category %q: %w", ErrNotFound, category, err)
	}
	return v.(StaticProps), nil
}

func (p *Pages) fetchProps(ctx context.Context, category string) (StaticProps, error) {
	var (
		comics     Page[RawComic]
		categories []Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		comics, err = p.catalog.Comics(gctx, PageParams{Page: 1, FilterOptions: FilterOptions{Category: category}})
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = p.catalog.Categories(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return StaticProps{}, err
	}
	return StaticProps{
		Comics:         Page[Comic]{Results: p.normalizer.Comics(comics.Results), Count: comics.Count},
		Categories:     categories,
		ActiveCategory: category,
	}, nil
}

// StaticPaths lists every category route, "All" first.
func (p *Pages) StaticPaths(ctx context.Context) ([]string, error) {
	categories, err := p.catalog.Categories(ctx)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(categories)+1)
	paths = append(paths, AllCategory)
	for _, c := range categories {
		paths = append(paths, c.Name)
	}
	return paths, nil
}

// Prerender warms the props cache for every static path. Paths that fail are
// logged and left to be fetched on first request.
func (p *Pages) Prerender(ctx context.Context) (int, error) {
	paths, err := p.StaticPaths(ctx)
	if err != nil {
		return 0, err
	}
	var (
		mu   sync.Mutex
		done int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(prerenderConcurrency)
	for _, path := range paths {
		g.Go(func() error {
			if _, err := p.StaticProps(gctx, path); err != nil {
				p.log.Warn("prerender failed", "category", path, "error", err)
				return nil
			}
			mu.Lock()
			done++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	p.log.Info("prerendered category pages", "paths", len(paths), "ok", done)
	return done, nil
}

// Invalidate forgets every cached props entry.
func (p *Pages) Invalidate() {
	p.mu.Lock()
	p.gen++
	p.cache = make(map[string]propsEntry)
	p.mu.Unlock()
	p.log.Info("static props invalidated")
}

// CategoryPage assembles the category listing for the given page. Page one
// comes straight from the static props; later pages go through a
// PaginatedQuery seeded with them. Pages past the last one are ErrNotFound.
func (p *Pages) CategoryPage(ctx context.Context, category string, page, limit int, session *Session) (CategoryPage, error) {
	if page < 1 {
		return CategoryPage{}, fmt.Errorf("page %d: %w", page, ErrBadArguments)
	}
	props, err := p.StaticProps(ctx, category)
	if err != nil {
		return CategoryPage{}, err
	}

	pagination := PaginationState{CurrentPage: page, PageSize: p.pageSize, TotalCount: props.Comics.Count}
	if !pagination.Valid(page) {
		return CategoryPage{}, fmt.Errorf("page %d of %d: %w", page, pagination.TotalPages(), ErrNotFound)
	}

	items := props.Comics.Results
	var fetchErr error
	if page > 1 {
		var fetched []Comic
		q, err := NewPaginatedQuery(ctx, p.log, func(c []Comic) { fetched = c },
			p.catalog.Comics, page, FilterOptions{Category: category}, p.normalizer.Comic)
		if err != nil {
			return CategoryPage{}, err
		}
		q.Start()
		q.Wait()
		st := q.State()
		q.Close()
		if st.Err != nil {
			fetchErr = st.Err
		} else {
			items, pagination.TotalCount = fetched, st.Count
		}
	}

	return CategoryPage{
		ActiveCategory: category,
		Nav:            BuildFilterNav(props.Categories, category),
		List: BuildListView(ListInput{
			Items:      FilterByCategory(items, category),
			Limit:      limit,
			Pagination: pagination,
		}),
		Err:     fetchErr,
		Session: session,
	}, nil
}

func cacheKey(category string) string {
	if IsAllCategory(category) {
		return "all"
	}
	return cases.Fold().String(category)
}
