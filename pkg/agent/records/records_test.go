package records

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/medassist/pkg/completion/mock"
	"github.com/medassist/medassist/pkg/ehr"
	ehrmock "github.com/medassist/medassist/pkg/ehr/mock"
	"github.com/medassist/medassist/pkg/memory"
	"github.com/medassist/medassist/pkg/rag"
)

// stubRAG records whether it was invoked.
type stubRAG struct {
	answer *rag.Answer
	err    error
	calls  int
}

func (s *stubRAG) QueryWithPatientContext(ctx context.Context, query, patientID string, k int) (*rag.Answer, error) {
	s.calls++
	return s.answer, s.err
}

// stubMemory implements Memory with controllable failures.
type stubMemory struct {
	saveErr      error
	retrieveErr  error
	records      []memory.Record
	savedIDs     []string
	interactions []string
}

func (s *stubMemory) SaveSummary(ctx context.Context, patientID, content string) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.savedIDs = append(s.savedIDs, patientID)
	return "id", nil
}

func (s *stubMemory) RetrieveContext(ctx context.Context, patientID, query string, limit int) ([]memory.Record, error) {
	return s.records, s.retrieveErr
}

func (s *stubMemory) AddSessionInteraction(sessionID, query, response string) {
	s.interactions = append(s.interactions, sessionID+"|"+query)
}

func seededStore() *ehrmock.Store {
	store := ehrmock.NewStore()
	store.AddPatient(&ehr.PatientRecord{
		ID: "P001", Name: "Sarah Johnson", Age: 62, Gender: "Female",
		BloodType: "A+", Allergies: "Penicillin",
		Conditions:  []string{"Hypertension", "Type 2 Diabetes"},
		Medications: []string{"Lisinopril 10mg Once daily"},
	})
	return store
}

func TestProcess_NotFoundSkipsCompletion(t *testing.T) {
	client := mock.NewClient()
	agent := New(seededStore(), client, nil, nil)

	result, err := agent.Process(context.Background(), "P999: current medications")
	require.NoError(t, err)

	assert.Equal(t, StatusNotFound, result.Status)
	assert.Contains(t, result.Analysis, "P999")
	assert.Contains(t, result.Analysis, "P001, P002, P003, 12345")
	assert.Zero(t, client.CompleteCalls(), "not-found must never invoke the completion service")
}

func TestProcess_StoreErrorSkipsCompletion(t *testing.T) {
	client := mock.NewClient()
	store := &failingStore{err: errors.New("connection refused")}
	agent := New(store, client, nil, nil)

	result, err := agent.Process(context.Background(), "P001|summary")
	require.NoError(t, err)

	assert.Equal(t, StatusError, result.Status)
	assert.Contains(t, result.Analysis, "connection refused")
	assert.Zero(t, client.CompleteCalls())
}

type failingStore struct{ err error }

func (s *failingStore) GetPatient(ctx context.Context, patientID string) (*ehr.PatientRecord, error) {
	return nil, s.err
}

func (s *failingStore) GetHistory(ctx context.Context, patientID string) ([]ehr.Visit, error) {
	return nil, s.err
}

func TestProcess_SummaryAlwaysTakesSummarizationBranch(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("Full patient summary."))
	ragClient := &stubRAG{answer: &rag.Answer{Answer: "RAG answer that must not be used."}}
	agent := New(seededStore(), client, nil, ragClient)

	result, err := agent.Process(context.Background(), "P001|Summary")
	require.NoError(t, err)

	assert.Equal(t, "Full patient summary.", result.Analysis)
	assert.False(t, result.RAGUsed)
	assert.Zero(t, ragClient.calls, "summary queries never consult RAG")

	history := client.CallHistory()
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Prompt, "concise medical summary")
}

func TestProcess_StrictScopeQuestion(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("62 years old"))
	agent := New(seededStore(), client, nil, nil)

	result, err := agent.Process(context.Background(), "P001: What is the patient's age?")
	require.NoError(t, err)

	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "62 years old", result.Analysis)
	assert.Equal(t, "P001", result.PatientID)
	assert.Equal(t, "What is the patient's age?", result.QueryType)
	require.NotNil(t, result.Patient)
	assert.Equal(t, 62, result.Patient.Age)

	history := client.CallHistory()
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Prompt, "answer ONLY the specific question asked")
	assert.Contains(t, history[0].Prompt, "What is the patient's age?")
}

func TestProcess_UsableRAGAnswerSkipsDirectAnalysis(t *testing.T) {
	client := mock.NewClient()
	ragClient := &stubRAG{answer: &rag.Answer{Answer: "Lisinopril per stored context."}}
	agent := New(seededStore(), client, nil, ragClient)

	result, err := agent.Process(context.Background(), "P001: current medications")
	require.NoError(t, err)

	assert.True(t, result.RAGUsed)
	assert.Equal(t, "Lisinopril per stored context.", result.Analysis)
	assert.Zero(t, client.CompleteCalls())
}

func TestProcess_RAGFailureFallsBackToStrictAnalysis(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("Fallback answer."))
	mem := &stubMemory{records: []memory.Record{{Content: "Previous visit: diabetes follow-up."}}}
	ragClient := &stubRAG{err: errors.New("rag down")}
	agent := New(seededStore(), client, mem, ragClient)

	result, err := agent.Process(context.Background(), "P001: current medications")
	require.NoError(t, err)

	assert.False(t, result.RAGUsed)
	assert.Equal(t, "Fallback answer.", result.Analysis)

	history := client.CallHistory()
	require.Len(t, history, 1)
	assert.Contains(t, history[0].Prompt, "Historical Context:")
	assert.Contains(t, history[0].Prompt, "Previous visit: diabetes follow-up.")
}

func TestProcess_MemoryFailuresAreSwallowed(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("Answer."))
	mem := &stubMemory{saveErr: errors.New("disk full"), retrieveErr: errors.New("disk full")}
	agent := New(seededStore(), client, mem, nil)

	result, err := agent.Process(context.Background(), "P001: current medications")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, result.Status)
	assert.Equal(t, "Answer.", result.Analysis)
}

func TestProcess_SuccessSavesSummaryAndSession(t *testing.T) {
	client := mock.NewClient(mock.WithDefaultResponse("Answer."))
	mem := &stubMemory{}
	agent := New(seededStore(), client, mem, nil)

	_, err := agent.Process(context.Background(), "P001: current medications")
	require.NoError(t, err)

	assert.Equal(t, []string{"P001"}, mem.savedIDs)
	require.Len(t, mem.interactions, 1)
	assert.Equal(t, "P001|current medications", mem.interactions[0])
}
