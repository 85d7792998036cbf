package listing

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
)

// pagedFetcher serves totalPages pages of two items each, labelled by query and page.
func pagedFetcher(totalPages int) FetchFunc[string] {
	return func(_ context.Context, f domain.ListingFilter) (domain.Page[string], error) {
		if totalPages == 0 {
			return domain.Page[string]{Items: []string{}, CurrentPage: 1}, nil
		}
		return domain.Page[string]{
			Items: []string{
				fmt.Sprintf("%s-%d-a", f.SearchQuery, f.Page),
				fmt.Sprintf("%s-%d-b", f.SearchQuery, f.Page),
			},
			CurrentPage: f.Page,
			TotalPages:  totalPages,
			TotalCount:  int64(totalPages * 2),
		}, nil
	}
}

func TestApplyFilter_ReplacesAndLoadNextAppends(t *testing.T) {
	ctx := context.Background()
	o := New("products", 2, pagedFetcher(3), zerolog.Nop())

	snap := o.ApplyFilter(ctx, domain.ListingFilter{SearchQuery: "q"})
	assert.Equal(t, StateLoaded, snap.State)
	assert.Equal(t, []string{"q-1-a", "q-1-b"}, snap.Items)

	snap = o.LoadNext(ctx)
	assert.Equal(t, StateLoaded, snap.State)
	assert.Equal(t, 2, snap.CurrentPage)
	assert.Len(t, snap.Items, 4)

	snap = o.LoadNext(ctx)
	assert.Equal(t, StateExhausted, snap.State)
	assert.Len(t, snap.Items, 6)
	assert.False(t, snap.HasMore())

	snap = o.ApplyFilter(ctx, domain.ListingFilter{SearchQuery: "r"})
	assert.Equal(t, []string{"r-1-a", "r-1-b"}, snap.Items)
	assert.Equal(t, 1, snap.CurrentPage)
}

func TestLoadNext_NoopWhenNotLoaded(t *testing.T) {
	ctx := context.Background()
	calls := 0
	fetch := func(ctx context.Context, f domain.ListingFilter) (domain.Page[string], error) {
		calls++
		return pagedFetcher(1)(ctx, f)
	}
	o := New[string]("products", 2, fetch, zerolog.Nop())

	snap := o.LoadNext(ctx)
	assert.Equal(t, StateIdle, snap.State)
	assert.Zero(t, calls)

	o.ApplyFilter(ctx, domain.ListingFilter{})
	snap = o.LoadNext(ctx)
	assert.Equal(t, StateExhausted, snap.State)
	assert.Equal(t, 1, calls)
}

func TestApplyFilter_EmptyResultIsExhaustedNotError(t *testing.T) {
	o := New("shops", 10, pagedFetcher(0), zerolog.Nop())

	snap := o.ApplyFilter(context.Background(), domain.ListingFilter{SearchQuery: "nothing"})
	assert.Equal(t, StateExhausted, snap.State)
	assert.Empty(t, snap.Items)
	assert.Empty(t, snap.Error)
	assert.True(t, snap.NoResults())
}

func TestApplyFilter_SameFilterIsNoop(t *testing.T) {
	ctx := context.Background()
	calls := 0
	fetch := func(ctx context.Context, f domain.ListingFilter) (domain.Page[string], error) {
		calls++
		return pagedFetcher(3)(ctx, f)
	}
	o := New[string]("products", 2, fetch, zerolog.Nop())

	o.ApplyFilter(ctx, domain.ListingFilter{Category: "shoes"})
	o.LoadNext(ctx)
	snap := o.ApplyFilter(ctx, domain.ListingFilter{Category: "shoes", Page: 7})

	assert.Equal(t, 2, calls)
	assert.Len(t, snap.Items, 4)
}

func TestErrorPreservesItemsAndRetryRestarts(t *testing.T) {
	ctx := context.Background()
	fail := false
	fetch := func(ctx context.Context, f domain.ListingFilter) (domain.Page[string], error) {
		if fail {
			return domain.Page[string]{}, errors.New("backend down")
		}
		return pagedFetcher(3)(ctx, f)
	}
	o := New[string]("products", 2, fetch, zerolog.Nop())

	o.ApplyFilter(ctx, domain.ListingFilter{SearchQuery: "q"})
	fail = true
	snap := o.LoadNext(ctx)
	assert.Equal(t, StateErrored, snap.State)
	assert.Equal(t, "backend down", snap.Error)
	assert.Equal(t, []string{"q-1-a", "q-1-b"}, snap.Items)

	// LoadNext from Errored does nothing.
	snap = o.LoadNext(ctx)
	assert.Equal(t, StateErrored, snap.State)

	fail = false
	snap = o.Retry(ctx)
	assert.Equal(t, StateLoaded, snap.State)
	assert.Equal(t, 1, snap.CurrentPage)
	assert.Equal(t, []string{"q-1-a", "q-1-b"}, snap.Items)
	assert.Empty(t, snap.Error)
}

func TestRetry_NoopUnlessErrored(t *testing.T) {
	o := New("products", 2, pagedFetcher(2), zerolog.Nop())
	snap := o.Retry(context.Background())
	assert.Equal(t, StateIdle, snap.State)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	fetch := func(ctx context.Context, f domain.ListingFilter) (domain.Page[string], error) {
		if f.SearchQuery == "A" && f.Page == 2 {
			close(started)
			<-release
		}
		return pagedFetcher(3)(ctx, f)
	}
	o := New[string]("products", 2, fetch, zerolog.Nop())
	o.ApplyFilter(ctx, domain.ListingFilter{SearchQuery: "A"})

	var wg sync.WaitGroup
	var late Snapshot[string]
	wg.Add(1)
	go func() {
		defer wg.Done()
		late = o.LoadNext(ctx)
	}()

	<-started
	fresh := o.ApplyFilter(ctx, domain.ListingFilter{SearchQuery: "B"})
	require.Equal(t, []string{"B-1-a", "B-1-b"}, fresh.Items)

	close(release)
	wg.Wait()

	assert.Equal(t, []string{"B-1-a", "B-1-b"}, late.Items)
	final := o.Snapshot()
	assert.Equal(t, StateLoaded, final.State)
	assert.Equal(t, "B", final.Filter.SearchQuery)
	assert.Equal(t, []string{"B-1-a", "B-1-b"}, final.Items)
	assert.Equal(t, 1, final.CurrentPage)
}

func TestStaleErrorIsDiscarded(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{})
	release := make(chan struct{})

	fetch := func(ctx context.Context, f domain.ListingFilter) (domain.Page[string], error) {
		if f.SearchQuery == "A" {
			close(started)
			<-release
			return domain.Page[string]{}, errors.New("timeout")
		}
		return pagedFetcher(1)(ctx, f)
	}
	o := New[string]("products", 2, fetch, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		defer close(done)
		o.ApplyFilter(ctx, domain.ListingFilter{SearchQuery: "A"})
	}()
	<-started
	o.ApplyFilter(ctx, domain.ListingFilter{SearchQuery: "B"})
	close(release)
	<-done

	snap := o.Snapshot()
	assert.Equal(t, StateExhausted, snap.State)
	assert.Empty(t, snap.Error)
	assert.Equal(t, []string{"B-1-a", "B-1-b"}, snap.Items)
}
