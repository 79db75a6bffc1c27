// Package pipeline orchestrates evidence gathering: keyword derivation, query
// building, the parallel web and forum fetch, competitor extraction,
// normalization and scoring.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/evidence-engine/internal/competitors"
	"github.com/jonathan/evidence-engine/internal/evidence"
	"github.com/jonathan/evidence-engine/internal/keywords"
	"github.com/jonathan/evidence-engine/internal/search"
	"github.com/jonathan/evidence-engine/internal/signals"
	"github.com/jonathan/evidence-engine/internal/types"
)

// Default per-source timeouts
const (
	DefaultWebTimeout   = 6 * time.Second
	DefaultForumTimeout = 4 * time.Second
)

// State is a pipeline stage.
type State string

// Pipeline states, in execution order
const (
	StateBuildingQueries State = "building-queries"
	StateFetching        State = "fetching"
	StateExtracting      State = "extracting"
	StateNormalizing     State = "normalizing"
	StateScoring         State = "scoring"
	StateDone            State = "done"
)

// States lists every state in the order a run passes through them.
var States = []State{
	StateBuildingQueries,
	StateFetching,
	StateExtracting,
	StateNormalizing,
	StateScoring,
	StateDone,
}

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	State   State  `json:"state"`
	Message string `json:"message"`
	Content any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// WebSearcher runs a batch of web queries.
type WebSearcher interface {
	SearchMany(ctx context.Context, queries []string) search.Batch
}

// ForumSearcher searches forum stories by keyword.
type ForumSearcher interface {
	Search(ctx context.Context, kws []string) []search.ForumHit
}

// Options holds configuration for an Engine
type Options struct {
	WebTimeout   time.Duration
	ForumTimeout time.Duration
	MaxKeywords  int
	Verbose      bool
	OnProgress   ProgressCallback
	// Now overrides the clock used for timestamps and recency.
	Now func() time.Time
}

// Engine runs the evidence pipeline. It is safe for concurrent use.
type Engine struct {
	web   WebSearcher
	forum ForumSearcher
	opts  Options

	extract func([]search.QueryResult) []competitors.Competitor
	score   func(evidence.Normalized) evidence.Signals
}

// NewEngine creates an Engine. Zero timeouts use the defaults.
func NewEngine(web WebSearcher, forum ForumSearcher, opts Options) *Engine {
	if opts.WebTimeout <= 0 {
		opts.WebTimeout = DefaultWebTimeout
	}
	if opts.ForumTimeout <= 0 {
		opts.ForumTimeout = DefaultForumTimeout
	}
	if opts.MaxKeywords <= 0 {
		opts.MaxKeywords = keywords.DefaultMaxKeywords
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	scorer := signals.NewScorer()
	scorer.Now = opts.Now

	return &Engine{
		web:     web,
		forum:   forum,
		opts:    opts,
		extract: competitors.Extract,
		score:   scorer.Score,
	}
}

// emitProgress calls the progress callback if configured
func (e *Engine) emitProgress(cb ProgressCallback, state State, message string, content any) {
	if e.opts.Verbose {
		log.Printf("[PIPELINE] %s: %s", state, message)
	}
	if cb != nil {
		cb(ProgressEvent{State: state, Message: message, Content: content})
	}
}

// Run gathers and scores evidence for req. Source failures never produce an
// error; they appear as warnings on the result. The only errors returned are
// request validation failures and keywords.ErrEmptyInput.
func (e *Engine) Run(ctx context.Context, req types.EvidenceRequest) (*evidence.Scored, error) {
	return e.RunWithProgress(ctx, req, e.opts.OnProgress)
}

// RunWithProgress is Run with a per-call progress callback in place of
// Options.OnProgress.
func (e *Engine) RunWithProgress(ctx context.Context, req types.EvidenceRequest, onProgress ProgressCallback) (*evidence.Scored, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	// building-queries
	kws, err := e.deriveKeywords(req)
	if err != nil {
		return nil, err
	}
	queries := keywords.BuildQueries(kws, strings.TrimSpace(req.FeatureText+" "+req.BusinessContext))
	e.emitProgress(onProgress, StateBuildingQueries, fmt.Sprintf("Built %d queries from %d keywords", len(queries), len(kws)), queries)

	// fetching
	e.emitProgress(onProgress, StateFetching, "Searching web and forum sources in parallel", nil)
	raw := e.fetch(ctx, kws, queries)

	// extracting
	e.emitProgress(onProgress, StateExtracting, fmt.Sprintf("Extracting competitors from %d web results", raw.Web.TotalItems()), nil)
	cs, extractErr := e.safeExtract(raw.Web.Results)
	warnings := raw.Warnings
	if extractErr != nil {
		warnings = append(warnings, extractionWarning("extraction", extractErr))
	}
	summary := competitors.Summarize(cs)
	raw = evidence.NewRawFetch(raw.Keywords, raw.Queries, raw.Web, raw.Forum, warnings)

	// normalizing
	e.emitProgress(onProgress, StateNormalizing, fmt.Sprintf("Merging %d competitors and %d forum hits", len(cs), len(raw.Forum)), nil)
	normalized := e.safeNormalize(raw, cs, summary)

	// scoring
	e.emitProgress(onProgress, StateScoring, "Computing market signals", nil)
	var sig evidence.Signals
	if extractErr != nil {
		sig = signals.Zero("Signals unavailable: competitor extraction failed.")
	} else {
		var scoreErr error
		sig, scoreErr = e.safeScore(normalized)
		if scoreErr != nil {
			normalized.Warnings = append(normalized.Warnings, extractionWarning("scoring", scoreErr))
		}
	}

	scored := evidence.NewScored(normalized, sig)
	e.emitProgress(onProgress, StateDone, fmt.Sprintf("Overall score %d/100 with %d warnings", sig.OverallScore, len(scored.Warnings)), nil)
	return scored, nil
}

func (e *Engine) deriveKeywords(req types.EvidenceRequest) ([]string, error) {
	if len(req.Keywords) > 0 {
		kws, err := keywords.Normalize(req.Keywords, e.opts.MaxKeywords)
		if err != nil {
			return nil, fmt.Errorf("keyword override: %w", err)
		}
		return kws, nil
	}
	kws, err := keywords.Derive(req.FeatureText, e.opts.MaxKeywords)
	if err != nil {
		return nil, fmt.Errorf("feature text: %w", err)
	}
	return kws, nil
}

// fetch runs the web batch and the forum search concurrently, each bounded by
// its own timeout, and joins them.
func (e *Engine) fetch(ctx context.Context, kws, queries []string) evidence.RawFetch {
	var (
		batch         search.Batch
		hits          []search.ForumHit
		webWarnings   []evidence.Warning
		forumWarnings []evidence.Warning
	)

	g, gCtx := errgroup.WithContext(ctx)

	// Web branch
	g.Go(func() error {
		if e.web == nil {
			batch = search.EmptyBatch()
			webWarnings = webBatchWarnings(batch, len(queries))
			return nil
		}
		var err error
		batch, err = raceWithTimeout(gCtx, e.opts.WebTimeout, search.EmptyBatch(), func(ctx context.Context) search.Batch {
			return e.web.SearchMany(ctx, queries)
		})
		if err != nil {
			if e.opts.Verbose {
				log.Printf("[PIPELINE] Web search abandoned: %v", err)
			}
			webWarnings = []evidence.Warning{fetchFailureWarning(evidence.SourceWeb, err, e.opts.WebTimeout)}
			return nil
		}
		webWarnings = webBatchWarnings(batch, len(queries))
		return nil
	})

	// Forum branch
	g.Go(func() error {
		if e.forum == nil {
			hits = []search.ForumHit{}
			forumWarnings = forumHitWarnings(hits)
			return nil
		}
		var err error
		hits, err = raceWithTimeout(gCtx, e.opts.ForumTimeout, []search.ForumHit{}, func(ctx context.Context) []search.ForumHit {
			return e.forum.Search(ctx, kws)
		})
		if err != nil {
			if e.opts.Verbose {
				log.Printf("[PIPELINE] Forum search abandoned: %v", err)
			}
			forumWarnings = []evidence.Warning{fetchFailureWarning(evidence.SourceForum, err, e.opts.ForumTimeout)}
			return nil
		}
		forumWarnings = forumHitWarnings(hits)
		return nil
	})

	// Branches never return errors.
	_ = g.Wait()

	warnings := make([]evidence.Warning, 0, len(webWarnings)+len(forumWarnings))
	warnings = append(warnings, webWarnings...)
	warnings = append(warnings, forumWarnings...)
	return evidence.NewRawFetch(kws, queries, batch, hits, warnings)
}

func (e *Engine) safeExtract(results []search.QueryResult) (cs []competitors.Competitor, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{Stage: string(StateExtracting), Cause: r}
			cs = []competitors.Competitor{}
			log.Printf("[PIPELINE] %v", err)
		}
	}()
	cs = e.extract(results)
	if cs == nil {
		cs = []competitors.Competitor{}
	}
	return cs, nil
}

func (e *Engine) safeNormalize(raw evidence.RawFetch, cs []competitors.Competitor, summary competitors.Summary) (n evidence.Normalized) {
	defer func() {
		if r := recover(); r != nil {
			err := &ExtractionError{Stage: string(StateNormalizing), Cause: r}
			log.Printf("[PIPELINE] %v", err)
			warnings := append(raw.Warnings, extractionWarning("normalization", err))
			n = evidence.Normalize(evidence.RawFetch{Keywords: raw.Keywords, Warnings: warnings}, nil, competitors.Summarize(nil), e.opts.Now())
		}
	}()
	return evidence.Normalize(raw, cs, summary, e.opts.Now())
}

func (e *Engine) safeScore(n evidence.Normalized) (sig evidence.Signals, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{Stage: string(StateScoring), Cause: r}
			sig = signals.Zero("Signals unavailable: scoring failed.")
			log.Printf("[PIPELINE] %v", err)
		}
	}()
	return e.score(n), nil
}

// IsInputError reports whether err was caused by unusable input rather than
// by the engine.
func IsInputError(err error) bool {
	return errors.Is(err, keywords.ErrEmptyInput) || errors.Is(err, ErrInvalidRequest)
}
