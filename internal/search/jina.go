package search

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/jonathan/evidence-engine/internal/fetch"
)

// DefaultJinaURL is the Jina AI search endpoint.
const DefaultJinaURL = "https://s.jina.ai/"

// JinaProvider queries the Jina AI search API. It is the secondary provider.
type JinaProvider struct {
	apiKey  string
	baseURL string
	opts    *fetch.Options
}

// NewJinaProvider creates a Jina provider. An empty baseURL uses DefaultJinaURL.
func NewJinaProvider(apiKey, baseURL string, client *http.Client) *JinaProvider {
	if baseURL == "" {
		baseURL = DefaultJinaURL
	}
	opts := fetch.DefaultOptions()
	opts.Client = client
	opts.Headers = map[string]string{
		"Accept":          "application/json",
		"Authorization":   "Bearer " + apiKey,
		"X-Respond-With":  "no-content",
		"X-Retain-Images": "none",
	}
	return &JinaProvider{apiKey: apiKey, baseURL: baseURL, opts: opts}
}

// Name implements Provider.
func (j *JinaProvider) Name() string { return "jina" }

// Configured implements Provider.
func (j *JinaProvider) Configured() bool { return j.apiKey != "" }

type jinaResponse struct {
	Data []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Description string `json:"description"`
		Content     string `json:"content"`
	} `json:"data"`
}

// Search implements Provider.
func (j *JinaProvider) Search(ctx context.Context, query string, count int) Response {
	diag := Diagnostics{Provider: j.Name(), Query: query}
	if !j.Configured() {
		return Response{
			Items:       []Item{},
			Err:         &SearchError{Kind: KindMissingConfig, Provider: j.Name(), Message: "JINA_API_KEY not set"},
			Diagnostics: diag,
		}
	}

	endpoint := j.baseURL + "?q=" + url.QueryEscape(query)

	var body jinaResponse
	result, err := fetch.JSON(ctx, endpoint, j.opts, &body)
	if result != nil {
		diag.StatusCode = result.StatusCode
		diag.Duration = result.Duration
	}
	if err != nil {
		searchErr := &SearchError{Kind: KindAPIError, Provider: j.Name(), Message: err.Error()}
		var fetchErr *fetch.Error
		if errors.As(err, &fetchErr) && fetchErr.StatusCode != 0 && (fetchErr.StatusCode < 200 || fetchErr.StatusCode > 299) {
			searchErr.Kind = KindForStatus(fetchErr.StatusCode)
			searchErr.Status = fetchErr.StatusCode
		}
		return Response{Items: []Item{}, Err: searchErr, Diagnostics: diag}
	}

	items := make([]Item, 0, len(body.Data))
	for _, d := range body.Data {
		if count > 0 && len(items) >= count {
			break
		}
		snippet := d.Description
		if snippet == "" {
			snippet = truncate(d.Content, 300)
		}
		items = append(items, Item{
			Title:   fetch.HTMLToText(d.Title),
			Snippet: fetch.HTMLToText(snippet),
			Link:    d.URL,
		})
	}
	diag.ResultCount = len(items)

	return Response{Items: items, Diagnostics: diag}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
