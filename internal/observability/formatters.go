// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/evidence-engine/internal/competitors"
	"github.com/jonathan/evidence-engine/internal/evidence"
	"github.com/jonathan/evidence-engine/internal/pipeline"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(strings.TrimRight(content, "\n"), "\n") {
		if r := []rune(line); len(r) > boxWidth-4 {
			line = string(r[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintQueries outputs the derived keywords and the search queries built from them.
func (p *Printer) PrintQueries(kws, queries []string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Keywords: %s\n", strings.Join(kws, ", ")))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Queries (%d):\n", len(queries)))
	for _, q := range queries {
		sb.WriteString(fmt.Sprintf("  • %s\n", q))
	}
	p.printBox("SEARCH PLAN", sb.String())
}

// PrintCompetitors outputs the extracted competitors and saturation summary.
func (p *Printer) PrintCompetitors(cs []competitors.Competitor, summary competitors.Summary) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found:      %d\n", summary.TotalCompetitorsFound))
	sb.WriteString(fmt.Sprintf("Saturation: %s\n", summary.SaturationSignal))

	if len(cs) > 0 {
		sb.WriteString("\n")
		count := min(len(cs), maxItemsToShow)
		for i := 0; i < count; i++ {
			c := cs[i]
			sb.WriteString(fmt.Sprintf("  • %s (%s) [%s, %s]\n", c.Name, c.Domain, c.Category, c.Confidence))
		}
		if len(cs) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(cs)-maxItemsToShow))
		}
	}
	p.printBox("COMPETITORS", sb.String())
}

// PrintSignals outputs the market signal scores and their notes.
func (p *Printer) PrintSignals(sig evidence.Signals) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall:    %3d/100\n", sig.OverallScore))
	sb.WriteString(fmt.Sprintf("Density:    %3d/100\n", sig.CompetitorDensity))
	sb.WriteString(fmt.Sprintf("Pain:       %3d/100\n", sig.PainSignal))
	sb.WriteString(fmt.Sprintf("Recency:    %3d/100\n", sig.RecencyScore))
	sb.WriteString(fmt.Sprintf("Coverage:   %3d/100\n", sig.EvidenceCoverage))
	sb.WriteString(fmt.Sprintf("Established: %t\n", sig.MarketEstablished))

	if len(sig.Notes) > 0 {
		sb.WriteString("\n")
		for _, note := range sig.Notes {
			sb.WriteString(fmt.Sprintf("  • %s\n", note))
		}
	}
	p.printBox("MARKET SIGNALS", sb.String())
}

// PrintWarnings outputs source warnings. Nothing is printed when there are none.
func (p *Printer) PrintWarnings(ws []evidence.Warning) {
	if len(ws) == 0 {
		return
	}
	var sb strings.Builder
	for _, w := range ws {
		sb.WriteString(fmt.Sprintf("  ⚠ [%s/%s] %s\n", w.Source, w.Code, w.Message))
	}
	p.printBox(fmt.Sprintf("WARNINGS (%d)", len(ws)), sb.String())
}

// PrintEvidence outputs a full human-readable summary of a scored document.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintEvidence(doc *evidence.Scored) {
	if doc == nil {
		return
	}

	queries := make([]string, 0, len(doc.Web.Queries))
	for _, q := range doc.Web.Queries {
		queries = append(queries, q.Query)
	}
	p.PrintQueries(doc.Keywords, queries)
	p.PrintCompetitors(doc.Competitors, doc.CompetitorSummary)
	p.PrintSignals(doc.Signals)
	p.PrintWarnings(doc.Warnings)
	fmt.Fprintf(p.out, "%d citations, %d forum hits, generated %s\n",
		len(doc.Citations), len(doc.Forum.Hits), doc.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
}

// PrintProgress outputs a single pipeline progress line.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintProgress(ev pipeline.ProgressEvent) {
	fmt.Fprintf(p.out, "→ %-16s %s\n", ev.State, ev.Message)
}
