package disease

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/medassist/pkg/completion/mock"
	"github.com/medassist/medassist/pkg/rag"
	"github.com/medassist/medassist/pkg/search"
)

// stubRAG returns a fixed answer or error.
type stubRAG struct {
	answer *rag.Answer
	err    error
}

func (s *stubRAG) QueryWithWebSearch(ctx context.Context, query string, maxResults int) (*rag.Answer, error) {
	return s.answer, s.err
}

func TestProcess_UsesRAGAnswerDirectly(t *testing.T) {
	client := mock.NewClient()
	ragClient := &stubRAG{answer: &rag.Answer{
		Answer:        "Evidence-based overview of asthma.",
		SearchResults: []search.Result{{Title: "Asthma", Source: search.SourceCurated}},
		Source:        rag.SourceWebSearch,
	}}
	agent := New(client, ragClient)

	result, err := agent.Process(context.Background(), "what is asthma")
	require.NoError(t, err)

	assert.Equal(t, "Evidence-based overview of asthma.", result.Analysis)
	assert.True(t, result.RAGUsed)
	assert.Len(t, result.SearchResults, 1)
	assert.Zero(t, client.CompleteCalls(), "RAG answer needs no extra completion call")
}

func TestProcess_FallsBackOnRAGError(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("General knowledge answer."))
	agent := New(client, &stubRAG{err: errors.New("search unavailable")})

	result, err := agent.Process(context.Background(), "what is asthma")
	require.NoError(t, err)

	assert.Equal(t, "General knowledge answer.", result.Analysis)
	assert.False(t, result.RAGUsed)

	history := client.CallHistory()
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Prompt, "Using general medical knowledge.")
}

func TestProcess_BuildsContextFromBareSearchResults(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("Context-grounded answer."))
	ragClient := &stubRAG{answer: &rag.Answer{
		SearchResults: []search.Result{
			{Title: "CDC Asthma", Snippet: "Asthma basics"},
			{Title: "WHO Asthma", Snippet: "Fact sheet"},
		},
		Source: rag.SourceWebSearch,
	}}
	agent := New(client, ragClient)

	result, err := agent.Process(context.Background(), "what is asthma")
	require.NoError(t, err)

	assert.Equal(t, "Context-grounded answer.", result.Analysis)
	assert.False(t, result.RAGUsed)
	assert.Len(t, result.SearchResults, 2)

	history := client.CallHistory()
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Prompt, "Additional Context from Medical Sources:")
	assert.Contains(t, history[0].Prompt, "1. CDC Asthma: Asthma basics")
}

func TestProcess_WithoutRAG(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("Plain answer."))
	agent := New(client, nil)

	result, err := agent.Process(context.Background(), "migraine triggers")
	require.NoError(t, err)
	assert.Equal(t, "Plain answer.", result.Analysis)
	assert.False(t, result.RAGUsed)
}

func TestProcess_PropagatesCompletionError(t *testing.T) {
	client := mock.NewClient(mock.WithShouldError(true))
	agent := New(client, nil)

	_, err := agent.Process(context.Background(), "migraine triggers")
	assert.Error(t, err)
}
