package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/medassist/pkg/completion/mock"
	"github.com/medassist/medassist/pkg/memory"
	"github.com/medassist/medassist/pkg/search"
)

// stubRetriever returns fixed memory records.
type stubRetriever struct {
	records []memory.Record
	err     error
}

func (s *stubRetriever) RetrieveContext(ctx context.Context, patientID, query string, limit int) ([]memory.Record, error) {
	return s.records, s.err
}

// stubProvider returns fixed search results.
type stubProvider struct {
	results []search.Result
}

func (s *stubProvider) CombinedResults(ctx context.Context, query string, maxTotal int) []search.Result {
	return s.results
}

func sampleRecords() []memory.Record {
	return []memory.Record{{
		ID:       "r1",
		Content:  "Patient has hypertension managed with Lisinopril.",
		Metadata: map[string]string{"type": "patient_summary", "patient_id": "P001"},
	}}
}

func sampleResults() []search.Result {
	return []search.Result{{
		Title:   "Hypertension - WHO Fact Sheet",
		URL:     "https://www.who.int/news-room/fact-sheets/detail/hypertension",
		Snippet: "Global overview of hypertension",
		Source:  search.SourceCurated,
	}}
}

func TestQueryWithPatientContext(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("Blood pressure is elevated."))
	engine := NewEngine(&stubRetriever{records: sampleRecords()}, &stubProvider{}, client)

	answer, err := engine.QueryWithPatientContext(context.Background(), "How is the blood pressure?", "P001", 5)
	require.NoError(t, err)

	assert.Equal(t, "Blood pressure is elevated.", answer.Answer)
	assert.Equal(t, SourceMemory, answer.Source)
	assert.Len(t, answer.Context, 1)
	assert.Equal(t, 1, client.CompleteCalls())

	// the record type tag and content flow into the prompt
	history := client.CallHistory()
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Prompt, "[patient_summary] Patient has hypertension")
}

func TestQueryWithPatientContext_NoRecords(t *testing.T) {
	client := mock.NewClient()
	engine := NewEngine(&stubRetriever{}, &stubProvider{}, client)

	answer, err := engine.QueryWithPatientContext(context.Background(), "anything", "P777", 5)
	require.NoError(t, err)

	assert.Equal(t, "No patient context found for patient P777. Please provide more information.", answer.Answer)
	assert.Equal(t, SourceMemory, answer.Source)
	assert.Zero(t, client.CompleteCalls(), "no completion call without context")
}

func TestQueryWithWebSearch(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("Evidence-based answer."))
	engine := NewEngine(&stubRetriever{}, &stubProvider{results: sampleResults()}, client)

	answer, err := engine.QueryWithWebSearch(context.Background(), "hypertension treatment", 10)
	require.NoError(t, err)

	assert.Equal(t, "Evidence-based answer.", answer.Answer)
	assert.Equal(t, SourceWebSearch, answer.Source)
	assert.Len(t, answer.SearchResults, 1)

	history := client.CallHistory()
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Prompt, "Title: Hypertension - WHO Fact Sheet")
}

func TestQueryWithWebSearch_NoResults(t *testing.T) {
	client := mock.NewClient()
	engine := NewEngine(&stubRetriever{}, &stubProvider{}, client)

	answer, err := engine.QueryWithWebSearch(context.Background(), "anything", 10)
	require.NoError(t, err)

	assert.Equal(t, "No relevant medical information found. Please rephrase your query.", answer.Answer)
	assert.Equal(t, SourceWebSearch, answer.Source)
	assert.Zero(t, client.CompleteCalls())
}

func TestQueryWithCombinedRAG_AlwaysOneCompletionCall(t *testing.T) {
	t.Run("both context blocks empty", func(t *testing.T) {
		client := mock.NewClient(mock.WithDefaultResponse("Combined answer."))
		engine := NewEngine(&stubRetriever{}, &stubProvider{}, client)

		answer, err := engine.QueryWithCombinedRAG(context.Background(), "question", "", 5, 10)
		require.NoError(t, err)

		assert.Equal(t, SourceCombinedRAG, answer.Source)
		assert.Equal(t, 1, client.CompleteCalls())

		history := client.CallHistory()
		assert.Contains(t, history[0].Prompt, "No patient context provided.")
		assert.Contains(t, history[0].Prompt, "No external search results available.")
	})

	t.Run("patient id with no stored history", func(t *testing.T) {
		client := mock.NewClient(mock.WithDefaultResponse("Combined answer."))
		engine := NewEngine(&stubRetriever{}, &stubProvider{results: sampleResults()}, client)

		_, err := engine.QueryWithCombinedRAG(context.Background(), "question", "P555", 5, 10)
		require.NoError(t, err)

		history := client.CallHistory()
		require.Len(t, history, 1)
		assert.Contains(t, history[0].Prompt, "No specific patient history found for patient P555.")
	})

	t.Run("full context", func(t *testing.T) {
		client := mock.NewClient(mock.WithDefaultResponse("Combined answer."))
		engine := NewEngine(&stubRetriever{records: sampleRecords()}, &stubProvider{results: sampleResults()}, client)

		answer, err := engine.QueryWithCombinedRAG(context.Background(), "question", "P001", 5, 10)
		require.NoError(t, err)

		assert.Len(t, answer.Context, 1)
		assert.Len(t, answer.SearchResults, 1)
		assert.Equal(t, 1, client.CompleteCalls())
	})
}

func TestQueryPropagatesCompletionError(t *testing.T) {
	client := mock.NewClient(mock.WithShouldError(true))
	engine := NewEngine(&stubRetriever{records: sampleRecords()}, &stubProvider{results: sampleResults()}, client)
	ctx := context.Background()

	_, err := engine.QueryWithPatientContext(ctx, "q", "P001", 5)
	assert.Error(t, err)

	_, err = engine.QueryWithWebSearch(ctx, "q", 10)
	assert.Error(t, err)

	_, err = engine.QueryWithCombinedRAG(ctx, "q", "P001", 5, 10)
	assert.Error(t, err)
}

func TestSummarizePatientHistory(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("Structured summary."))
	engine := NewEngine(&stubRetriever{records: sampleRecords()}, &stubProvider{}, client)

	summary, err := engine.SummarizePatientHistory(context.Background(), "P001", "cardiovascular")
	require.NoError(t, err)
	assert.Equal(t, "Structured summary.", summary)

	history := client.CallHistory()
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Prompt, "Focus on: cardiovascular")
}

func TestSummarizePatientHistory_NoRecords(t *testing.T) {
	client := mock.NewClient()
	engine := NewEngine(&stubRetriever{}, &stubProvider{}, client)

	summary, err := engine.SummarizePatientHistory(context.Background(), "P888", "")
	require.NoError(t, err)
	assert.Equal(t, "No medical history found for patient P888.", summary)
	assert.Zero(t, client.CompleteCalls())
}
