package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/evidence-engine/internal/evidence"
	"github.com/jonathan/evidence-engine/internal/search"
)

// Warning codes that are not search error kinds.
const (
	WarningTimeout       = "timeout"
	WarningCancelled     = "cancelled"
	WarningNoResults     = "no_results"
	WarningInternalError = "internal_error"
)

// webBatchWarnings describes what went wrong in a completed web batch. At most
// one warning is produced per error kind.
func webBatchWarnings(batch search.Batch, queryCount int) []evidence.Warning {
	if !batch.Configured {
		return []evidence.Warning{{
			Source:  evidence.SourceWeb,
			Code:    string(search.KindMissingConfig),
			Message: "search not configured",
		}}
	}

	counts := make(map[search.ErrorKind]int)
	statuses := make(map[search.ErrorKind]int)
	for _, qe := range batch.Errors {
		if qe.Err == nil {
			continue
		}
		counts[qe.Err.Kind]++
		if qe.Err.Status != 0 {
			statuses[qe.Err.Kind] = qe.Err.Status
		}
	}

	var warnings []evidence.Warning
	for _, kind := range []search.ErrorKind{search.KindRateLimit, search.KindAuthError, search.KindAPIError} {
		n := counts[kind]
		if n == 0 {
			continue
		}
		msg := fmt.Sprintf("%s (%d of %d queries)", kindMessage(kind), n, queryCount)
		if status := statuses[kind]; status != 0 {
			msg = fmt.Sprintf("%s (%d of %d queries, status %d)", kindMessage(kind), n, queryCount, status)
		}
		warnings = append(warnings, evidence.Warning{Source: evidence.SourceWeb, Code: string(kind), Message: msg})
	}

	if batch.TotalItems() == 0 {
		warnings = append(warnings, evidence.Warning{
			Source:  evidence.SourceWeb,
			Code:    WarningNoResults,
			Message: "no results found",
		})
	}
	return warnings
}

func kindMessage(kind search.ErrorKind) string {
	switch kind {
	case search.KindRateLimit:
		return "rate limit reached"
	case search.KindAuthError:
		return "authentication failed"
	case search.KindMissingConfig:
		return "search not configured"
	default:
		return "search request failed"
	}
}

func forumHitWarnings(hits []search.ForumHit) []evidence.Warning {
	if len(hits) > 0 {
		return nil
	}
	return []evidence.Warning{{
		Source:  evidence.SourceForum,
		Code:    WarningNoResults,
		Message: "no forum discussions found",
	}}
}

// fetchFailureWarning describes a source that was abandoned before it
// returned.
func fetchFailureWarning(source string, err error, timeout time.Duration) evidence.Warning {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return evidence.Warning{
			Source:  source,
			Code:    WarningTimeout,
			Message: fmt.Sprintf("%s search timed out after %s", source, timeout),
		}
	case errors.Is(err, context.Canceled):
		return evidence.Warning{
			Source:  source,
			Code:    WarningCancelled,
			Message: fmt.Sprintf("%s search cancelled", source),
		}
	default:
		return evidence.Warning{
			Source:  source,
			Code:    WarningInternalError,
			Message: fmt.Sprintf("%s search failed: %v", source, err),
		}
	}
}

func extractionWarning(stage string, err error) evidence.Warning {
	return evidence.Warning{
		Source:  stage,
		Code:    WarningInternalError,
		Message: err.Error(),
	}
}
