// Package memory implements the assistant's vector memory: a chromem-go
// backed store of patient summaries and long-text records, plus an
// in-process per-session conversation log.
package memory

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"

	"github.com/medassist/medassist/pkg/completion"
	"github.com/medassist/medassist/pkg/errors"
	"github.com/medassist/medassist/pkg/log"
)

// TypePatientSummary is the record type assigned to saved patient summaries.
const TypePatientSummary = "patient_summary"

// Record is a single entry retrieved from the vector store.
type Record struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Metadata   map[string]string `json:"metadata"`
	Similarity float32           `json:"similarity"`
}

// Interaction is one query/response pair in a session log.
type Interaction struct {
	Query     string    `json:"query"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats summarizes the state of the memory store.
type Stats struct {
	TotalRecords int  `json:"total_records"`
	Sessions     int  `json:"sessions"`
	Persistent   bool `json:"persistent"`
}

// Config holds the settings for a memory Manager.
type Config struct {
	// Path is the directory for on-disk persistence. Empty means in-memory.
	Path string

	// Collection is the vector collection name.
	Collection string

	// ChunkSize is the chunk size in characters for long-text records.
	ChunkSize int

	// ChunkOverlap is the character overlap between adjacent chunks.
	ChunkOverlap int
}

// Manager is the vector memory manager. Vector records survive process
// restarts when a persistence path is configured; session logs are always
// process-lifetime only.
type Manager struct {
	db         *chromem.DB
	collection *chromem.Collection
	embed      chromem.EmbeddingFunc
	config     Config
	sessions   *sessionLog
}

// NewManager creates a memory manager. The completion client provides
// embeddings for stored and queried text.
func NewManager(config Config, client completion.Client) (*Manager, error) {
	if config.Collection == "" {
		config.Collection = "patient_memories"
	}
	if config.ChunkSize <= 0 {
		config.ChunkSize = 1000
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		config.ChunkOverlap = config.ChunkSize / 5
	}

	var db *chromem.DB
	var err error
	if config.Path != "" {
		db, err = chromem.NewPersistentDB(config.Path, false)
		if err != nil {
			return nil, errors.Wrap(errors.ErrMemoryUnavailable, "failed to open vector store at %s: %v", config.Path, err)
		}
	} else {
		db = chromem.NewDB()
	}

	embed := embeddingFunc(client)
	coll, err := db.GetOrCreateCollection(config.Collection, nil, embed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open collection %s", config.Collection)
	}

	return &Manager{
		db:         db,
		collection: coll,
		embed:      embed,
		config:     config,
		sessions:   newSessionLog(),
	}, nil
}

func embeddingFunc(client completion.Client) chromem.EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		vectors, err := client.GenerateEmbeddings(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vectors) == 0 {
			return nil, fmt.Errorf("embedding service returned no vectors")
		}
		return vectors[0], nil
	}
}

// SaveSummary stores a single summary record for a patient.
func (m *Manager) SaveSummary(ctx context.Context, patientID, content string) (string, error) {
	return m.save(ctx, patientID, content, TypePatientSummary, 0, 1)
}

// SaveLongText splits text into overlapping chunks and stores each chunk
// as its own record of the given type. It returns the record IDs in chunk
// order.
func (m *Manager) SaveLongText(ctx context.Context, patientID, text, recordType string) ([]string, error) {
	chunks := splitChunks(text, m.config.ChunkSize, m.config.ChunkOverlap)
	ids := make([]string, 0, len(chunks))
	for i, chunk := range chunks {
		id, err := m.save(ctx, patientID, chunk, recordType, i, len(chunks))
		if err != nil {
			return ids, errors.Wrap(err, "failed to save chunk %d of %d", i+1, len(chunks))
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *Manager) save(ctx context.Context, patientID, content, recordType string, chunkIndex, totalChunks int) (string, error) {
	if content == "" {
		return "", fmt.Errorf("cannot save empty content")
	}
	id := uuid.NewString()
	doc := chromem.Document{
		ID:      id,
		Content: content,
		Metadata: map[string]string{
			"patient_id":   patientID,
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
			"type":         recordType,
			"chunk_index":  strconv.Itoa(chunkIndex),
			"total_chunks": strconv.Itoa(totalChunks),
		},
	}
	if err := m.collection.AddDocument(ctx, doc); err != nil {
		return "", errors.Wrap(err, "failed to store memory record")
	}
	log.DebugContext(ctx, "stored memory record",
		"record_id", id, "patient_id", patientID, "type", recordType)
	return id, nil
}

// RetrieveContext returns the records most relevant to query for one
// patient. An empty query retrieves the patient's general medical history.
func (m *Manager) RetrieveContext(ctx context.Context, patientID, query string, limit int) ([]Record, error) {
	if query == "" {
		query = fmt.Sprintf("patient %s medical history", patientID)
	}
	where := map[string]string{"patient_id": patientID}
	return m.query(ctx, query, limit, where)
}

// SearchSimilar returns the records most similar to query across all
// patients, optionally restricted to a record type.
func (m *Manager) SearchSimilar(ctx context.Context, query string, limit int, recordType string) ([]Record, error) {
	var where map[string]string
	if recordType != "" {
		where = map[string]string{"type": recordType}
	}
	return m.query(ctx, query, limit, where)
}

func (m *Manager) query(ctx context.Context, query string, limit int, where map[string]string) ([]Record, error) {
	count := m.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > count {
		limit = count
	}

	results, err := m.collection.Query(ctx, query, limit, where, nil)
	if err != nil {
		return nil, errors.Wrap(err, "memory query failed")
	}

	records := make([]Record, 0, len(results))
	for _, r := range results {
		records = append(records, Record{
			ID:         r.ID,
			Content:    r.Content,
			Metadata:   r.Metadata,
			Similarity: r.Similarity,
		})
	}
	return records, nil
}

// ExportPatient returns every stored record for a patient.
func (m *Manager) ExportPatient(ctx context.Context, patientID string) ([]Record, error) {
	return m.RetrieveContext(ctx, patientID, "", 0)
}

// Stats reports the current size of the memory store.
func (m *Manager) Stats() Stats {
	return Stats{
		TotalRecords: m.collection.Count(),
		Sessions:     m.sessions.count(),
		Persistent:   m.config.Path != "",
	}
}

// ClearAll removes every vector record and every session log.
func (m *Manager) ClearAll(ctx context.Context) error {
	if err := m.db.DeleteCollection(m.config.Collection); err != nil {
		return errors.Wrap(err, "failed to delete collection")
	}
	coll, err := m.db.GetOrCreateCollection(m.config.Collection, nil, m.embed)
	if err != nil {
		return errors.Wrap(err, "failed to recreate collection")
	}
	m.collection = coll
	m.sessions.clearAll()
	log.InfoContext(ctx, "cleared all memory records and sessions")
	return nil
}

// AddSessionInteraction appends a query/response pair to a session log,
// creating the session if needed.
func (m *Manager) AddSessionInteraction(sessionID, query, response string) {
	m.sessions.add(sessionID, Interaction{
		Query:     query,
		Response:  response,
		Timestamp: time.Now().UTC(),
	})
}

// SessionHistory returns the last n interactions for a session in
// chronological order. n <= 0 returns the full log.
func (m *Manager) SessionHistory(sessionID string, n int) []Interaction {
	return m.sessions.history(sessionID, n)
}

// ClearSession removes one session's log.
func (m *Manager) ClearSession(sessionID string) {
	m.sessions.clear(sessionID)
}

// SessionIDs returns the IDs of all active sessions.
func (m *Manager) SessionIDs() []string {
	return m.sessions.ids()
}
