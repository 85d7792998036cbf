// Package listing drives paginated, infinitely scrolled remote listings.
package listing

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"storefront/internal/domain"
	"storefront/internal/infrastructure/metrics"
)

type State string

const (
	StateIdle             State = "idle"
	StateLoadingFirstPage State = "loading_first_page"
	StateLoadingNextPage  State = "loading_next_page"
	StateLoaded           State = "loaded"
	StateExhausted        State = "exhausted"
	StateErrored          State = "errored"
)

// Loading reports whether a fetch is in flight.
func (s State) Loading() bool {
	return s == StateLoadingFirstPage || s == StateLoadingNextPage
}

// FetchFunc fetches one page of a listing.
type FetchFunc[T any] func(ctx context.Context, filter domain.ListingFilter) (domain.Page[T], error)

// Snapshot is the read model of an orchestrator.
type Snapshot[T any] struct {
	State       State                `json:"state"`
	Items       []T                  `json:"items"`
	Filter      domain.ListingFilter `json:"filter"`
	CurrentPage int                  `json:"currentPage"`
	TotalPages  int                  `json:"totalPages"`
	TotalCount  int64                `json:"totalCount"`
	Error       string               `json:"error,omitempty"`
}

// HasMore reports whether LoadNext would fetch another page.
func (s Snapshot[T]) HasMore() bool {
	return s.State == StateLoaded && s.CurrentPage < s.TotalPages
}

// NoResults reports a completed listing that matched nothing.
func (s Snapshot[T]) NoResults() bool {
	return s.State == StateExhausted && len(s.Items) == 0
}

// Orchestrator owns one listing's accumulated items. Fetches run outside the
// lock; a response is applied only if no newer filter was issued meanwhile.
type Orchestrator[T any] struct {
	mu       sync.Mutex
	name     string
	fetch    FetchFunc[T]
	pageSize int
	log      zerolog.Logger

	state       State
	filter      domain.ListingFilter
	generation  uint64
	items       []T
	currentPage int
	totalPages  int
	totalCount  int64
	errMsg      string
}

func New[T any](name string, pageSize int, fetch FetchFunc[T], log zerolog.Logger) *Orchestrator[T] {
	if pageSize < 1 {
		pageSize = 20
	}
	return &Orchestrator[T]{
		name:     name,
		fetch:    fetch,
		pageSize: pageSize,
		log:      log.With().Str("listing", name).Logger(),
		state:    StateIdle,
	}
}

// ApplyFilter starts a new listing for filter from page 1, discarding loaded items.
// Re-applying the current filter while it is loading or loaded changes nothing.
func (o *Orchestrator[T]) ApplyFilter(ctx context.Context, filter domain.ListingFilter) Snapshot[T] {
	filter.Page = 1
	if filter.Limit < 1 {
		filter.Limit = o.pageSize
	}

	o.mu.Lock()
	if o.state != StateIdle && o.state != StateErrored && o.filter.SameQuery(filter) {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		return snap
	}
	gen := o.restartLocked(filter)
	o.mu.Unlock()

	return o.run(ctx, gen, filter)
}

// LoadNext fetches the following page. It does nothing unless the listing is
// loaded and has pages left.
func (o *Orchestrator[T]) LoadNext(ctx context.Context) Snapshot[T] {
	o.mu.Lock()
	if o.state != StateLoaded || o.currentPage >= o.totalPages {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		return snap
	}
	filter := o.filter.WithPage(o.currentPage + 1)
	gen := o.generation
	o.state = StateLoadingNextPage
	o.errMsg = ""
	o.mu.Unlock()

	return o.run(ctx, gen, filter)
}

// Retry re-issues the current filter from page 1 after an error.
func (o *Orchestrator[T]) Retry(ctx context.Context) Snapshot[T] {
	o.mu.Lock()
	if o.state != StateErrored {
		snap := o.snapshotLocked()
		o.mu.Unlock()
		return snap
	}
	filter := o.filter.WithPage(1)
	gen := o.restartLocked(filter)
	o.mu.Unlock()

	return o.run(ctx, gen, filter)
}

func (o *Orchestrator[T]) Snapshot() Snapshot[T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

func (o *Orchestrator[T]) restartLocked(filter domain.ListingFilter) uint64 {
	o.generation++
	o.filter = filter
	o.state = StateLoadingFirstPage
	o.items = nil
	o.currentPage = 0
	o.totalPages = 0
	o.totalCount = 0
	o.errMsg = ""
	return o.generation
}

func (o *Orchestrator[T]) run(ctx context.Context, gen uint64, filter domain.ListingFilter) Snapshot[T] {
	start := time.Now()
	page, err := o.fetch(ctx, filter)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.ListingFetchDuration.WithLabelValues(o.name, outcome).Observe(time.Since(start).Seconds())

	o.mu.Lock()
	defer o.mu.Unlock()

	if gen != o.generation {
		metrics.StaleResponses.WithLabelValues(o.name).Inc()
		o.log.Debug().
			Uint64("generation", gen).
			Uint64("current", o.generation).
			Int("page", filter.Page).
			Msg("Discarded stale listing response")
		return o.snapshotLocked()
	}

	if err != nil {
		o.state = StateErrored
		o.errMsg = domain.Message(err)
		o.log.Warn().Err(err).Int("page", filter.Page).Msg("Listing fetch failed")
		return o.snapshotLocked()
	}

	if filter.Page == 1 {
		o.items = append([]T(nil), page.Items...)
	} else {
		o.items = append(o.items, page.Items...)
	}
	o.currentPage = filter.Page
	o.totalPages = page.TotalPages
	o.totalCount = page.TotalCount
	if o.currentPage >= o.totalPages {
		o.state = StateExhausted
	} else {
		o.state = StateLoaded
	}
	return o.snapshotLocked()
}

func (o *Orchestrator[T]) snapshotLocked() Snapshot[T] {
	items := make([]T, len(o.items))
	copy(items, o.items)
	return Snapshot[T]{
		State:       o.state,
		Items:       items,
		Filter:      o.filter,
		CurrentPage: o.currentPage,
		TotalPages:  o.totalPages,
		TotalCount:  o.totalCount,
		Error:       o.errMsg,
	}
}
