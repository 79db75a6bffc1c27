package search

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/evidence-engine/internal/fetch"
	"google.golang.org/api/customsearch/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Provider is a single web search vendor.
type Provider interface {
	// Name identifies the provider in diagnostics and warnings.
	Name() string
	// Configured reports whether credentials are present.
	Configured() bool
	// Search runs one query. Implementations report failures in Response.Err.
	Search(ctx context.Context, query string, count int) Response
}

// googleMaxResults is the Custom Search API's per-request ceiling.
const googleMaxResults = 10

// GoogleProvider queries the Google Custom Search JSON API.
type GoogleProvider struct {
	svc *customsearch.Service
	cx  string
}

// NewGoogleProvider creates a Google Custom Search provider. Missing credentials
// are not an error: the provider reports missing_config on every call instead.
// A non-empty endpoint overrides the API base URL.
func NewGoogleProvider(ctx context.Context, apiKey, cx, endpoint string) (*GoogleProvider, error) {
	if apiKey == "" || cx == "" {
		return &GoogleProvider{cx: cx}, nil
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}

	svc, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, &fetch.Error{URL: endpoint, Message: "failed to create customsearch service", Cause: err}
	}
	return &GoogleProvider{svc: svc, cx: cx}, nil
}

// Name implements Provider.
func (g *GoogleProvider) Name() string { return "google" }

// Configured implements Provider.
func (g *GoogleProvider) Configured() bool { return g.svc != nil && g.cx != "" }

// Search implements Provider.
func (g *GoogleProvider) Search(ctx context.Context, query string, count int) Response {
	diag := Diagnostics{Provider: g.Name(), Query: query}
	if !g.Configured() {
		return Response{
			Items:       []Item{},
			Err:         &SearchError{Kind: KindMissingConfig, Provider: g.Name(), Message: "GOOGLE_SEARCH_API_KEY or GOOGLE_SEARCH_CX not set"},
			Diagnostics: diag,
		}
	}

	if count <= 0 || count > googleMaxResults {
		count = googleMaxResults
	}

	start := time.Now()
	resp, err := g.svc.Cse.List().Cx(g.cx).Q(query).Num(int64(count)).Context(ctx).Do()
	diag.Duration = time.Since(start)
	if err != nil {
		searchErr := &SearchError{Kind: KindAPIError, Provider: g.Name(), Message: err.Error()}
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			searchErr.Kind = KindForStatus(apiErr.Code)
			searchErr.Status = apiErr.Code
			diag.StatusCode = apiErr.Code
		}
		return Response{Items: []Item{}, Err: searchErr, Diagnostics: diag}
	}

	diag.StatusCode = resp.ServerResponse.HTTPStatusCode
	items := make([]Item, 0, len(resp.Items))
	for _, r := range resp.Items {
		if r == nil {
			continue
		}
		snippet := r.Snippet
		if r.HtmlSnippet != "" {
			snippet = r.HtmlSnippet
		}
		items = append(items, Item{
			Title:       fetch.HTMLToText(r.Title),
			Snippet:     fetch.HTMLToText(snippet),
			Link:        r.Link,
			DisplayLink: r.DisplayLink,
		})
	}
	diag.ResultCount = len(items)

	return Response{Items: items, Diagnostics: diag}
}
