// Package search aggregates medical information from three sources: a
// general web search restricted to authoritative health domains, the NCBI
// PubMed literature index, and a small curated topic table. Every source
// degrades to a synthetic placeholder result instead of failing, so the
// aggregator never returns an error.
package search

import (
	"context"
	"net/http"
	"sort"
	"time"
)

// Source names carried on results and used for trust ranking.
const (
	SourceCurated    = "curated"
	SourceLiterature = "pubmed"
	SourceWeb        = "web"
)

// Result is a single search hit. PMID, Authors, Journal and PubDate are
// populated for literature hits only.
type Result struct {
	Title     string `json:"title"`
	URL       string `json:"url"`
	Snippet   string `json:"snippet"`
	Source    string `json:"source"`
	Timestamp string `json:"timestamp"`

	PMID    string `json:"pmid,omitempty"`
	Authors string `json:"authors,omitempty"`
	Journal string `json:"journal,omitempty"`
	PubDate string `json:"pub_date,omitempty"`
}

// Config holds the settings for an Aggregator.
type Config struct {
	// WebAPIKey enables the live web search API. Empty means synthetic
	// fallback results.
	WebAPIKey string

	// WebEndpoint overrides the web search API endpoint.
	WebEndpoint string

	// LiteratureAPIKey enables the live NCBI E-utilities API.
	LiteratureAPIKey string

	// LiteratureEmail identifies the caller to NCBI, required alongside
	// the key for live lookups.
	LiteratureEmail string

	// LiteratureEndpoint overrides the NCBI E-utilities base URL.
	LiteratureEndpoint string

	// MaxPerSource caps results requested from each source.
	MaxPerSource int

	// HTTPClient overrides the HTTP client used for live lookups.
	HTTPClient *http.Client
}

// source is one of the aggregator's search backends. Implementations
// never fail; they fall back to synthetic results instead.
type source interface {
	name() string
	search(ctx context.Context, query string, limit int) []Result
	clearCache()
}

// Aggregator fans a query out to all sources and merges the results by
// trust tier.
type Aggregator struct {
	sources      []source
	maxPerSource int
}

// trust tier per source; lower ranks first
var sourceTier = map[string]int{
	SourceCurated:    0,
	SourceLiterature: 1,
	SourceWeb:        2,
}

// NewAggregator creates an aggregator with all three sources configured.
func NewAggregator(config Config) *Aggregator {
	if config.MaxPerSource <= 0 {
		config.MaxPerSource = 5
	}
	client := config.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Aggregator{
		sources: []source{
			newCuratedSource(),
			newLiteratureSource(config.LiteratureAPIKey, config.LiteratureEmail, config.LiteratureEndpoint, client),
			newWebSource(config.WebAPIKey, config.WebEndpoint, client),
		},
		maxPerSource: config.MaxPerSource,
	}
}

// SearchAll queries every source and returns the results keyed by source
// name.
func (a *Aggregator) SearchAll(ctx context.Context, query string) map[string][]Result {
	all := make(map[string][]Result, len(a.sources))
	for _, s := range a.sources {
		all[s.name()] = s.search(ctx, query, a.maxPerSource)
	}
	return all
}

// CombinedResults queries every source, concatenates the hits, orders
// them by trust tier (curated, then literature, then web, each source's
// own ordering preserved) and truncates to maxTotal.
func (a *Aggregator) CombinedResults(ctx context.Context, query string, maxTotal int) []Result {
	var combined []Result
	for _, s := range a.sources {
		combined = append(combined, s.search(ctx, query, a.maxPerSource)...)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return sourceTier[combined[i].Source] < sourceTier[combined[j].Source]
	})

	if maxTotal > 0 && len(combined) > maxTotal {
		combined = combined[:maxTotal]
	}
	return combined
}

// ClearCaches flushes every source's result cache.
func (a *Aggregator) ClearCaches() {
	for _, s := range a.sources {
		s.clearCache()
	}
}

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
