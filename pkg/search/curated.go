package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	gocache "github.com/patrickmn/go-cache"
)

// curatedSource serves a static table of fact sheets for common health
// topics, with a generic entry when no topic matches. It never performs
// an external call.
type curatedSource struct {
	cache *gocache.Cache
}

type curatedEntry struct {
	topic, title, url, snippet string
}

// topic substrings matched against the lowercased query, in fixed order
var curatedTopics = []curatedEntry{
	{
		topic:   "diabetes",
		title:   "Diabetes - WHO Fact Sheet",
		url:     "https://www.who.int/news-room/fact-sheets/detail/diabetes",
		snippet: "Key facts about diabetes from the World Health Organization",
	},
	{
		topic:   "hypertension",
		title:   "Hypertension - WHO Fact Sheet",
		url:     "https://www.who.int/news-room/fact-sheets/detail/hypertension",
		snippet: "Global overview of hypertension statistics and prevention",
	},
	{
		topic:   "covid",
		title:   "Coronavirus disease (COVID-19) - WHO",
		url:     "https://www.who.int/health-topics/coronavirus",
		snippet: "WHO guidance and resources on COVID-19",
	},
}

func newCuratedSource() *curatedSource {
	return &curatedSource{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (s *curatedSource) name() string { return SourceCurated }

func (s *curatedSource) clearCache() { s.cache.Flush() }

func (s *curatedSource) search(ctx context.Context, query string, limit int) []Result {
	key := query + "|" + strconv.Itoa(limit)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]Result)
	}

	var results []Result
	lower := strings.ToLower(query)
	for _, entry := range curatedTopics {
		if strings.Contains(lower, entry.topic) {
			results = append(results, Result{
				Title:     entry.title,
				URL:       entry.url,
				Snippet:   entry.snippet,
				Source:    SourceCurated,
				Timestamp: now(),
			})
		}
	}

	if len(results) == 0 {
		results = append(results, Result{
			Title:     fmt.Sprintf("Health Topics - %s", query),
			URL:       "https://www.who.int/health-topics/" + strings.ReplaceAll(strings.ToLower(query), " ", "-"),
			Snippet:   fmt.Sprintf("Curated health information on %s", query),
			Source:    SourceCurated,
			Timestamp: now(),
		})
	}
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	s.cache.Set(key, results, gocache.NoExpiration)
	return results
}
