package search

import (
	"context"
	"fmt"
	"log"
	"time"
)

// DefaultResultCount is the number of results requested per query.
const DefaultResultCount = 10

// DefaultQueryDelay is the pause between sequential queries in a batch.
const DefaultQueryDelay = 200 * time.Millisecond

// WebClientOptions configures a WebClient.
type WebClientOptions struct {
	ResultCount int
	QueryDelay  time.Duration
	Verbose     bool
}

// WebClient runs web searches against a primary provider, falling back to the
// secondary provider only when the primary is not configured.
type WebClient struct {
	primary     Provider
	secondary   Provider
	resultCount int
	delay       time.Duration
	verbose     bool
}

// NewWebClient creates a WebClient. Either provider may be nil.
func NewWebClient(primary, secondary Provider, opts WebClientOptions) *WebClient {
	if opts.ResultCount <= 0 {
		opts.ResultCount = DefaultResultCount
	}
	if opts.QueryDelay < 0 {
		opts.QueryDelay = 0
	}
	return &WebClient{
		primary:     primary,
		secondary:   secondary,
		resultCount: opts.ResultCount,
		delay:       opts.QueryDelay,
		verbose:     opts.Verbose,
	}
}

// Configured reports whether any provider has credentials.
func (c *WebClient) Configured() bool {
	return (c.primary != nil && c.primary.Configured()) || (c.secondary != nil && c.secondary.Configured())
}

// Search runs a single query. It never panics; any unexpected failure is
// reported as an api_error.
func (c *WebClient) Search(ctx context.Context, query string) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = Response{
				Items:       []Item{},
				Err:         &SearchError{Kind: KindAPIError, Message: fmt.Sprintf("search panicked: %v", r)},
				Diagnostics: Diagnostics{Query: query},
			}
		}
	}()

	resp = c.call(ctx, c.primary, query)
	if resp.Err != nil && resp.Err.Kind == KindMissingConfig && c.secondary != nil {
		if c.verbose {
			log.Printf("[SEARCH] Primary provider not configured, falling back to %s", c.secondary.Name())
		}
		resp = c.call(ctx, c.secondary, query)
	}

	if c.verbose {
		if resp.Err != nil {
			log.Printf("[SEARCH] %q failed: %v", query, resp.Err)
		} else {
			log.Printf("[SEARCH] %q returned %d results via %s in %v",
				query, len(resp.Items), resp.Diagnostics.Provider, resp.Diagnostics.Duration)
		}
	}
	return resp
}

func (c *WebClient) call(ctx context.Context, p Provider, query string) Response {
	if p == nil {
		return Response{
			Items:       []Item{},
			Err:         &SearchError{Kind: KindMissingConfig, Message: "no search provider configured"},
			Diagnostics: Diagnostics{Query: query},
		}
	}
	resp := p.Search(ctx, query, c.resultCount)
	if resp.Items == nil {
		resp.Items = []Item{}
	}
	return resp
}

// SearchMany runs the queries one after another with a delay between calls.
// Results keep submission order; a failed query yields an empty result and an
// entry in Errors without aborting the batch. Once ctx is done no further
// queries are issued and the batch holds only the queries that ran.
// Configured is true when at least one query reached a configured provider.
func (c *WebClient) SearchMany(ctx context.Context, queries []string) Batch {
	batch := Batch{
		Configured:  len(queries) == 0 && c.Configured(),
		Results:     make([]QueryResult, 0, len(queries)),
		Errors:      []QueryError{},
		Diagnostics: make([]Diagnostics, 0, len(queries)),
	}

	for i, q := range queries {
		var err error
		if i > 0 && c.delay > 0 {
			err = sleep(ctx, c.delay)
		}
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			if c.verbose {
				log.Printf("[SEARCH] Batch interrupted after %d/%d queries: %v", i, len(queries), err)
			}
			if i == 0 {
				batch.Configured = c.Configured()
			}
			break
		}

		resp := c.Search(ctx, q)
		batch.Results = append(batch.Results, QueryResult{Query: q, Items: resp.Items})
		batch.Diagnostics = append(batch.Diagnostics, resp.Diagnostics)
		if resp.Err == nil || resp.Err.Kind != KindMissingConfig {
			batch.Configured = true
		}
		if resp.Err != nil {
			batch.Errors = append(batch.Errors, QueryError{Query: q, Err: resp.Err})
		}
	}

	return batch
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
