package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider returns canned responses and records the queries it saw.
type fakeProvider struct {
	name       string
	configured bool
	err        *SearchError
	items      []Item
	panics     bool

	mu      sync.Mutex
	queries []string
}

func (f *fakeProvider) Name() string     { return f.name }
func (f *fakeProvider) Configured() bool { return f.configured }

func (f *fakeProvider) Search(_ context.Context, query string, _ int) Response {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()

	if f.panics {
		panic("provider exploded")
	}
	if !f.configured {
		return Response{Err: &SearchError{Kind: KindMissingConfig, Provider: f.name}}
	}
	if f.err != nil {
		return Response{Items: []Item{}, Err: f.err, Diagnostics: Diagnostics{Provider: f.name, Query: query}}
	}
	return Response{Items: f.items, Diagnostics: Diagnostics{Provider: f.name, Query: query, ResultCount: len(f.items)}}
}

func (f *fakeProvider) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string{}, f.queries...)
}

func TestWebClient_PrimarySuccess(t *testing.T) {
	primary := &fakeProvider{name: "google", configured: true, items: []Item{{Title: "a", Link: "https://a.com"}}}
	secondary := &fakeProvider{name: "jina", configured: true}
	c := NewWebClient(primary, secondary, WebClientOptions{})

	resp := c.Search(context.Background(), "q")
	require.Nil(t, resp.Err)
	assert.Len(t, resp.Items, 1)
	assert.Empty(t, secondary.seen())
}

func TestWebClient_FallbackOnMissingConfig(t *testing.T) {
	primary := &fakeProvider{name: "google", configured: false}
	secondary := &fakeProvider{name: "jina", configured: true, items: []Item{{Title: "b", Link: "https://b.com"}}}
	c := NewWebClient(primary, secondary, WebClientOptions{})

	resp := c.Search(context.Background(), "q")
	require.Nil(t, resp.Err)
	assert.Equal(t, "jina", resp.Diagnostics.Provider)
	assert.Equal(t, []string{"q"}, secondary.seen())
}

func TestWebClient_NoFallbackOnDefinitiveErrors(t *testing.T) {
	for _, kind := range []ErrorKind{KindRateLimit, KindAuthError, KindAPIError} {
		t.Run(string(kind), func(t *testing.T) {
			primary := &fakeProvider{name: "google", configured: true, err: &SearchError{Kind: kind, Status: 429}}
			secondary := &fakeProvider{name: "jina", configured: true, items: []Item{{Title: "b"}}}
			c := NewWebClient(primary, secondary, WebClientOptions{})

			resp := c.Search(context.Background(), "q")
			require.NotNil(t, resp.Err)
			assert.Equal(t, kind, resp.Err.Kind)
			assert.Empty(t, secondary.seen())
		})
	}
}

func TestWebClient_BothUnconfigured(t *testing.T) {
	c := NewWebClient(&fakeProvider{name: "google"}, &fakeProvider{name: "jina"}, WebClientOptions{})
	assert.False(t, c.Configured())

	resp := c.Search(context.Background(), "q")
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindMissingConfig, resp.Err.Kind)
	assert.NotNil(t, resp.Items)
}

func TestWebClient_NilProviders(t *testing.T) {
	c := NewWebClient(nil, nil, WebClientOptions{})
	resp := c.Search(context.Background(), "q")
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindMissingConfig, resp.Err.Kind)
}

func TestWebClient_RecoversPanic(t *testing.T) {
	c := NewWebClient(&fakeProvider{name: "google", configured: true, panics: true}, nil, WebClientOptions{})

	var resp Response
	assert.NotPanics(t, func() {
		resp = c.Search(context.Background(), "q")
	})
	require.NotNil(t, resp.Err)
	assert.Equal(t, KindAPIError, resp.Err.Kind)
	assert.Contains(t, resp.Err.Message, "provider exploded")
}

func TestWebClient_SearchManyPreservesOrder(t *testing.T) {
	primary := &fakeProvider{name: "google", configured: true, items: []Item{{Title: "x", Link: "https://x.com"}}}
	c := NewWebClient(primary, nil, WebClientOptions{QueryDelay: time.Millisecond})

	queries := []string{"q1", "q2", "q3"}
	batch := c.SearchMany(context.Background(), queries)

	assert.True(t, batch.Configured)
	require.Len(t, batch.Results, 3)
	for i, q := range queries {
		assert.Equal(t, q, batch.Results[i].Query)
	}
	assert.Equal(t, queries, primary.seen())
	assert.Empty(t, batch.Errors)
	assert.Len(t, batch.Diagnostics, 3)
	assert.Equal(t, 3, batch.TotalItems())
}

func TestWebClient_SearchManyAppliesDelay(t *testing.T) {
	primary := &fakeProvider{name: "google", configured: true}
	c := NewWebClient(primary, nil, WebClientOptions{QueryDelay: 20 * time.Millisecond})

	start := time.Now()
	c.SearchMany(context.Background(), []string{"a", "b", "c"})
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestWebClient_SearchManyRateLimited(t *testing.T) {
	primary := &fakeProvider{name: "google", configured: true, err: &SearchError{Kind: KindRateLimit, Status: 429}}
	c := NewWebClient(primary, nil, WebClientOptions{QueryDelay: 0})

	batch := c.SearchMany(context.Background(), []string{"a", "b"})
	assert.True(t, batch.Configured)
	require.Len(t, batch.Results, 2)
	for _, r := range batch.Results {
		assert.Empty(t, r.Items)
	}
	require.Len(t, batch.Errors, 2)
	assert.Equal(t, KindRateLimit, batch.Errors[0].Err.Kind)
	assert.Equal(t, "b", batch.Errors[1].Query)
}

// cancellingProvider cancels the batch context after its first query.
type cancellingProvider struct {
	fakeProvider
	cancel context.CancelFunc
}

func (p *cancellingProvider) Search(ctx context.Context, query string, n int) Response {
	resp := p.fakeProvider.Search(ctx, query, n)
	p.cancel()
	return resp
}

func TestWebClient_SearchManyStopsWhenContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	primary := &cancellingProvider{
		fakeProvider: fakeProvider{name: "google", configured: true, items: []Item{{Title: "a"}}},
		cancel:       cancel,
	}
	c := NewWebClient(primary, nil, WebClientOptions{QueryDelay: 10 * time.Millisecond})

	batch := c.SearchMany(ctx, []string{"a", "b", "c"})
	assert.True(t, batch.Configured)
	require.Len(t, batch.Results, 1)
	assert.Equal(t, "a", batch.Results[0].Query)
	assert.Empty(t, batch.Errors)
	assert.Equal(t, []string{"a"}, primary.seen())
}

func TestWebClient_SearchManyCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	primary := &fakeProvider{name: "google", configured: true}
	c := NewWebClient(primary, nil, WebClientOptions{})

	batch := c.SearchMany(ctx, []string{"a", "b"})
	assert.True(t, batch.Configured)
	assert.Empty(t, batch.Results)
	assert.Empty(t, batch.Errors)
	assert.Empty(t, primary.seen())
}

func TestWebClient_SearchManyUnconfigured(t *testing.T) {
	c := NewWebClient(&fakeProvider{name: "google"}, nil, WebClientOptions{})

	batch := c.SearchMany(context.Background(), []string{"a"})
	assert.False(t, batch.Configured)
	require.Len(t, batch.Errors, 1)
	assert.Equal(t, KindMissingConfig, batch.Errors[0].Err.Kind)
}

func TestWebClient_SearchManyEmpty(t *testing.T) {
	c := NewWebClient(&fakeProvider{name: "google", configured: true}, nil, WebClientOptions{})
	batch := c.SearchMany(context.Background(), nil)
	assert.True(t, batch.Configured)
	assert.Empty(t, batch.Results)
	assert.NotNil(t, batch.Results)
}

func TestEmptyBatch(t *testing.T) {
	b := EmptyBatch()
	assert.False(t, b.Configured)
	assert.NotNil(t, b.Results)
	assert.Zero(t, b.TotalItems())
}
