// Package rag implements retrieval-augmented generation over the vector
// memory and the medical search aggregator. The engine does no error
// recovery of its own: completion and retrieval failures propagate to the
// calling agent, which owns the fallback policy.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/medassist/medassist/pkg/completion"
	"github.com/medassist/medassist/pkg/memory"
	"github.com/medassist/medassist/pkg/search"
)

// Source tags identifying which retrieval path produced an answer.
const (
	SourceMemory      = "memory"
	SourceWebSearch   = "web_search"
	SourceCombinedRAG = "combined_rag"
)

// factualTemperature keeps generation conservative for medical answers.
const factualTemperature = 0.3

// Answer is the result of one RAG query.
type Answer struct {
	Answer        string          `json:"answer"`
	Context       []memory.Record `json:"context,omitempty"`
	SearchResults []search.Result `json:"search_results,omitempty"`
	Source        string          `json:"source"`
}

// ContextRetriever supplies patient records from vector memory.
type ContextRetriever interface {
	RetrieveContext(ctx context.Context, patientID, query string, limit int) ([]memory.Record, error)
}

// ResultProvider supplies aggregated medical search results.
type ResultProvider interface {
	CombinedResults(ctx context.Context, query string, maxTotal int) []search.Result
}

// Engine runs RAG queries against memory, search, or both.
type Engine struct {
	memory ContextRetriever
	search ResultProvider
	client completion.Client
}

// NewEngine creates a RAG engine.
func NewEngine(retriever ContextRetriever, provider ResultProvider, client completion.Client) *Engine {
	return &Engine{memory: retriever, search: provider, client: client}
}

// QueryWithPatientContext answers a query from the patient's stored
// memory records. When no records exist it returns a fixed answer
// without calling the completion service.
func (e *Engine) QueryWithPatientContext(ctx context.Context, query, patientID string, k int) (*Answer, error) {
	records, err := e.memory.RetrieveContext(ctx, patientID, query, k)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return &Answer{
			Answer: fmt.Sprintf("No patient context found for patient %s. Please provide more information.", patientID),
			Source: SourceMemory,
		}, nil
	}

	prompt := fmt.Sprintf(`You are a healthcare AI assistant. Use the following patient context to answer the question.

Patient Context:
%s

Question: %s

Provide a detailed, accurate answer based on the patient context. If the context doesn't contain relevant information, say so clearly.

Answer:`, formatRecords(records), query)

	answer, err := e.client.Complete(ctx, prompt, completion.WithTemperature(factualTemperature))
	if err != nil {
		return nil, err
	}
	return &Answer{Answer: answer, Context: records, Source: SourceMemory}, nil
}

// QueryWithWebSearch answers a query from aggregated medical search
// results. When the search comes back empty it returns a fixed answer
// without calling the completion service.
func (e *Engine) QueryWithWebSearch(ctx context.Context, query string, maxResults int) (*Answer, error) {
	results := e.search.CombinedResults(ctx, query, maxResults)
	if len(results) == 0 {
		return &Answer{
			Answer: "No relevant medical information found. Please rephrase your query.",
			Source: SourceWebSearch,
		}, nil
	}

	prompt := fmt.Sprintf(`You are a medical information specialist. Use the following search results from authoritative sources to answer the question.

Search Results:
%s

Question: %s

Provide a comprehensive, evidence-based answer. Include:
1. Summary of key findings
2. Information from authoritative sources (WHO, NIH, medical journals)
3. Important disclaimers about seeking professional medical advice
4. References to the sources used

Answer:`, FormatResults(results), query)

	answer, err := e.client.Complete(ctx, prompt, completion.WithTemperature(factualTemperature))
	if err != nil {
		return nil, err
	}
	return &Answer{Answer: answer, SearchResults: results, Source: SourceWebSearch}, nil
}

// QueryWithCombinedRAG answers a query from patient memory and search
// results together. Both retrievals always run and exactly one
// completion call is made, even when both context blocks are empty. An
// empty patientID substitutes a placeholder context instead of skipping
// the memory block.
func (e *Engine) QueryWithCombinedRAG(ctx context.Context, query, patientID string, k, maxResults int) (*Answer, error) {
	patientContext := "No patient context provided."
	var records []memory.Record
	if patientID != "" {
		var err error
		records, err = e.memory.RetrieveContext(ctx, patientID, query, k)
		if err != nil {
			return nil, err
		}
		if len(records) > 0 {
			patientContext = formatRecords(records)
		} else {
			patientContext = fmt.Sprintf("No specific patient history found for patient %s.", patientID)
		}
	}

	results := e.search.CombinedResults(ctx, query, maxResults)
	resultsText := "No external search results available."
	if len(results) > 0 {
		resultsText = FormatResults(results)
	}

	prompt := fmt.Sprintf(`You are an advanced healthcare AI assistant. You have access to both patient-specific context and general medical information.

Patient Context:
%s

Medical Information from Authoritative Sources:
%s

Question: %s

Provide a comprehensive answer that:
1. Considers the patient's specific context
2. Incorporates evidence-based medical information
3. Highlights any relevant connections between the patient's condition and general medical knowledge
4. Includes appropriate medical disclaimers
5. Recommends consulting healthcare professionals when appropriate

Answer:`, patientContext, resultsText, query)

	answer, err := e.client.Complete(ctx, prompt, completion.WithTemperature(factualTemperature))
	if err != nil {
		return nil, err
	}
	return &Answer{Answer: answer, Context: records, SearchResults: results, Source: SourceCombinedRAG}, nil
}

// SummarizePatientHistory generates a structured summary of everything
// stored for a patient, optionally focused on one area.
func (e *Engine) SummarizePatientHistory(ctx context.Context, patientID, focus string) (string, error) {
	query := focus
	if query == "" {
		query = fmt.Sprintf("patient %s complete medical history", patientID)
	}

	records, err := e.memory.RetrieveContext(ctx, patientID, query, 20)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return fmt.Sprintf("No medical history found for patient %s.", patientID), nil
	}

	focusLine := "Include all relevant medical information."
	if focus != "" {
		focusLine = "Focus on: " + focus
	}

	prompt := fmt.Sprintf(`Provide a comprehensive medical history summary for this patient.

Patient Medical Records:
%s

%s

Create a well-structured summary that includes:
1. Patient demographics and basic information
2. Current medical conditions
3. Medication history
4. Past diagnoses and treatments
5. Relevant alerts or risk factors
6. Recent medical events or visits

Summary:`, formatRecords(records), focusLine)

	return e.client.Complete(ctx, prompt, completion.WithTemperature(factualTemperature))
}

// formatRecords renders memory records as a context block, each entry
// tagged with its stored record type.
func formatRecords(records []memory.Record) string {
	parts := make([]string, 0, len(records))
	for _, rec := range records {
		recordType := rec.Metadata["type"]
		if recordType == "" {
			recordType = "info"
		}
		parts = append(parts, fmt.Sprintf("[%s] %s", recordType, rec.Content))
	}
	return strings.Join(parts, "\n\n")
}

// FormatResults renders search results as source/title/summary/url
// blocks for prompt context.
func FormatResults(results []search.Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, fmt.Sprintf("Source: %s\nTitle: %s\nSummary: %s\nURL: %s",
			r.Source, r.Title, r.Snippet, r.URL))
	}
	return strings.Join(parts, "\n\n")
}
