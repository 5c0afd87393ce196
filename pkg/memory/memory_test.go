package memory

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medassist/medassist/pkg/completion/mock"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	client := mock.NewClient()
	mgr, err := NewManager(Config{ChunkSize: 120, ChunkOverlap: 20}, client)
	require.NoError(t, err)
	return mgr
}

func TestManager_SaveSummaryAndRetrieve(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	id, err := mgr.SaveSummary(ctx, "P001", "Patient has hypertension and type 2 diabetes.")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	records, err := mgr.RetrieveContext(ctx, "P001", "diabetes", 5)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, id, records[0].ID)
	assert.Equal(t, "P001", records[0].Metadata["patient_id"])
	assert.Equal(t, TypePatientSummary, records[0].Metadata["type"])
	assert.NotEmpty(t, records[0].Metadata["timestamp"])
}

func TestManager_RetrieveContext_FiltersByPatient(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.SaveSummary(ctx, "P001", "Hypertension follow-up notes.")
	require.NoError(t, err)
	_, err = mgr.SaveSummary(ctx, "P002", "Asthma review notes.")
	require.NoError(t, err)

	records, err := mgr.RetrieveContext(ctx, "P002", "", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "P002", records[0].Metadata["patient_id"])
}

func TestManager_RetrieveContext_EmptyStore(t *testing.T) {
	mgr := newTestManager(t)

	records, err := mgr.RetrieveContext(context.Background(), "P001", "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestManager_SaveLongText_ChunkMetadata(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	text := strings.Repeat("the patient reported mild chest discomfort during exertion ", 10)
	ids, err := mgr.SaveLongText(ctx, "P003", text, "clinical_note")
	require.NoError(t, err)
	require.Greater(t, len(ids), 1, "long text should produce multiple chunks")

	records, err := mgr.ExportPatient(ctx, "P003")
	require.NoError(t, err)
	require.Len(t, records, len(ids))

	seen := make(map[string]bool)
	for _, rec := range records {
		assert.Equal(t, "clinical_note", rec.Metadata["type"])
		assert.Equal(t, "P003", rec.Metadata["patient_id"])
		seen[rec.Metadata["chunk_index"]] = true
	}
	assert.Len(t, seen, len(ids), "each chunk should carry a distinct index")
}

func TestManager_SearchSimilar_TypeFilter(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.SaveSummary(ctx, "P001", "Summary of renal function trends.")
	require.NoError(t, err)
	_, err = mgr.SaveLongText(ctx, "P001", "Lab results from October visit.", "lab_report")
	require.NoError(t, err)

	records, err := mgr.SearchSimilar(ctx, "renal", 10, TypePatientSummary)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, TypePatientSummary, records[0].Metadata["type"])
}

func TestManager_SessionLog(t *testing.T) {
	mgr := newTestManager(t)

	mgr.AddSessionInteraction("s1", "first question", "first answer")
	mgr.AddSessionInteraction("s1", "second question", "second answer")
	mgr.AddSessionInteraction("s2", "other session", "other answer")

	history := mgr.SessionHistory("s1", 0)
	require.Len(t, history, 2)
	assert.Equal(t, "first question", history[0].Query)
	assert.Equal(t, "second answer", history[1].Response)

	last := mgr.SessionHistory("s1", 1)
	require.Len(t, last, 1)
	assert.Equal(t, "second question", last[0].Query)

	assert.Equal(t, []string{"s1", "s2"}, mgr.SessionIDs())

	mgr.ClearSession("s1")
	assert.Empty(t, mgr.SessionHistory("s1", 0))
	assert.Equal(t, []string{"s2"}, mgr.SessionIDs())
}

func TestManager_StatsAndClearAll(t *testing.T) {
	mgr := newTestManager(t)
	ctx := context.Background()

	_, err := mgr.SaveSummary(ctx, "P001", "A short summary.")
	require.NoError(t, err)
	mgr.AddSessionInteraction("s1", "q", "a")

	stats := mgr.Stats()
	assert.Equal(t, 1, stats.TotalRecords)
	assert.Equal(t, 1, stats.Sessions)
	assert.False(t, stats.Persistent)

	require.NoError(t, mgr.ClearAll(ctx))
	stats = mgr.Stats()
	assert.Zero(t, stats.TotalRecords)
	assert.Zero(t, stats.Sessions)
}

func TestSplitChunks(t *testing.T) {
	t.Run("short text is a single chunk", func(t *testing.T) {
		chunks := splitChunks("short note", 100, 20)
		assert.Equal(t, []string{"short note"}, chunks)
	})

	t.Run("chunks break on word boundaries", func(t *testing.T) {
		text := strings.Repeat("alpha beta gamma delta ", 20)
		chunks := splitChunks(text, 50, 10)
		require.Greater(t, len(chunks), 1)
		for _, chunk := range chunks {
			assert.LessOrEqual(t, len(chunk), 50)
			assert.False(t, strings.HasPrefix(chunk, " "))
			assert.False(t, strings.HasSuffix(chunk, " "))
		}
	})

	t.Run("empty text yields no chunks", func(t *testing.T) {
		assert.Nil(t, splitChunks("   ", 100, 10))
	})
}
