// Package disease implements the disease-information agent: a linear
// parse, analyze, format pipeline that prefers a web-search RAG answer
// and falls back to general medical knowledge when retrieval fails.
package disease

import (
	"context"
	"fmt"
	"strings"

	"github.com/medassist/medassist/pkg/completion"
	"github.com/medassist/medassist/pkg/log"
	"github.com/medassist/medassist/pkg/rag"
	"github.com/medassist/medassist/pkg/search"
)

const defaultMaxResults = 10

// RAGClient is the slice of the RAG engine this agent uses.
type RAGClient interface {
	QueryWithWebSearch(ctx context.Context, query string, maxResults int) (*rag.Answer, error)
}

// Result is the agent's typed output.
type Result struct {
	Query         string          `json:"query"`
	Analysis      string          `json:"analysis"`
	RAGUsed       bool            `json:"rag_used"`
	SearchResults []search.Result `json:"search_results,omitempty"`
}

// Agent retrieves and analyzes disease information.
type Agent struct {
	client     completion.Client
	rag        RAGClient
	maxResults int
}

// New creates a disease-information agent. ragClient may be nil, in
// which case every query goes straight to general-knowledge analysis.
func New(client completion.Client, ragClient RAGClient) *Agent {
	return &Agent{client: client, rag: ragClient, maxResults: defaultMaxResults}
}

// Process answers a disease-information query.
func (a *Agent) Process(ctx context.Context, query string) (*Result, error) {
	result := &Result{Query: query}

	contextBlock := ""
	if a.rag != nil {
		answer, err := a.rag.QueryWithWebSearch(ctx, query, a.maxResults)
		switch {
		case err != nil:
			log.WarnContext(ctx, "web search RAG failed, using general knowledge",
				"query", query, "error", err)
		case answer.Answer != "":
			result.Analysis = answer.Answer
			result.RAGUsed = true
			result.SearchResults = answer.SearchResults
			return result, nil
		case len(answer.SearchResults) > 0:
			// no synthesized answer but usable search hits: carry them
			// into a fresh analysis prompt
			contextBlock = buildSearchContext(answer.SearchResults)
			result.SearchResults = answer.SearchResults
		}
	}

	if contextBlock == "" {
		contextBlock = "Using general medical knowledge."
	}

	prompt := fmt.Sprintf(`You are a medical expert assistant analyzing a health-related query.

Query: %s

%s

Please provide accurate, well-structured information about the query.

Include:
1. Key symptoms and signs
2. Common causes
3. Risk factors
4. When to seek medical attention
5. General management approaches

Remember to:
- Use clear, patient-friendly language
- Structure the information logically
- Include appropriate medical disclaimers
- Note any red flags or emergency warning signs`, query, contextBlock)

	analysis, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	result.Analysis = analysis
	return result, nil
}

func buildSearchContext(results []search.Result) string {
	var b strings.Builder
	b.WriteString("Additional Context from Medical Sources:\n")
	for i, r := range results {
		if i == 3 {
			break
		}
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, r.Title, r.Snippet)
	}
	return b.String()
}
