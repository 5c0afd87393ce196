// Package records implements the record-lookup agent: parse, retrieve,
// analyze, format. It answers questions about a specific patient's
// stored record, enriched by patient-context RAG and session history
// when those collaborators are available.
package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/medassist/medassist/pkg/agent"
	"github.com/medassist/medassist/pkg/completion"
	"github.com/medassist/medassist/pkg/ehr"
	"github.com/medassist/medassist/pkg/errors"
	"github.com/medassist/medassist/pkg/log"
	"github.com/medassist/medassist/pkg/memory"
	"github.com/medassist/medassist/pkg/rag"
)

// Retrieval outcomes.
const (
	StatusSuccess  = "success"
	StatusNotFound = "not_found"
	StatusError    = "error"
)

// knownPatientIDs lists the sample records shipped with the seed data,
// shown when a lookup misses.
var knownPatientIDs = []string{"P001", "P002", "P003", "12345"}

// Memory is the slice of the vector memory manager this agent uses. All
// calls through it are best-effort: failures are logged and swallowed.
type Memory interface {
	SaveSummary(ctx context.Context, patientID, content string) (string, error)
	RetrieveContext(ctx context.Context, patientID, query string, limit int) ([]memory.Record, error)
	AddSessionInteraction(sessionID, query, response string)
}

// RAGClient is the slice of the RAG engine this agent uses.
type RAGClient interface {
	QueryWithPatientContext(ctx context.Context, query, patientID string, k int) (*rag.Answer, error)
}

// Result is the agent's typed output.
type Result struct {
	PatientID string              `json:"patient_id"`
	QueryType string              `json:"query_type"`
	Status    string              `json:"status"`
	Analysis  string              `json:"analysis"`
	RAGUsed   bool                `json:"rag_used"`
	Patient   *ehr.PatientRecord  `json:"patient,omitempty"`
	Strategy  agent.ParseStrategy `json:"parse_strategy"`
}

// Agent retrieves and analyzes patient records.
type Agent struct {
	store  ehr.Store
	client completion.Client
	memory Memory
	rag    RAGClient
}

// New creates a record-lookup agent. mem and ragClient may be nil; the
// agent then answers from the record store alone.
func New(store ehr.Store, client completion.Client, mem Memory, ragClient RAGClient) *Agent {
	return &Agent{store: store, client: client, memory: mem, rag: ragClient}
}

// Process answers a record-lookup query. A missing patient or a store
// failure produces a structured result without any completion call.
func (a *Agent) Process(ctx context.Context, query string) (*Result, error) {
	req := agent.ParseRecordRequest(query)
	result := &Result{
		PatientID: req.PatientID,
		QueryType: req.QueryType,
		Strategy:  req.Strategy,
	}

	rec, err := a.store.GetPatient(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, errors.ErrPatientNotFound) {
			result.Status = StatusNotFound
			result.Analysis = notFoundMessage(req.PatientID)
		} else {
			result.Status = StatusError
			result.Analysis = fmt.Sprintf("Unable to retrieve patient data: %v", err)
		}
		return result, nil
	}
	result.Status = StatusSuccess
	result.Patient = rec

	a.saveSummaryBestEffort(ctx, rec)

	analysis, ragUsed, err := a.analyze(ctx, req, rec)
	if err != nil {
		return nil, err
	}
	result.Analysis = analysis
	result.RAGUsed = ragUsed
	return result, nil
}

// saveSummaryBestEffort writes a compact record summary to vector
// memory; failures never surface to the caller.
func (a *Agent) saveSummaryBestEffort(ctx context.Context, rec *ehr.PatientRecord) {
	if a.memory == nil {
		return
	}
	if _, err := a.memory.SaveSummary(ctx, rec.ID, compactSummary(rec)); err != nil {
		log.WarnContext(ctx, "failed to save patient summary to memory",
			"patient_id", rec.ID, "error", err)
	}
}

func (a *Agent) analyze(ctx context.Context, req agent.RecordRequest, rec *ehr.PatientRecord) (string, bool, error) {
	if strings.EqualFold(req.QueryType, agent.DefaultQueryType) {
		analysis, err := a.client.Complete(ctx, summaryPrompt(rec))
		if err != nil {
			return "", false, err
		}
		a.appendSessionBestEffort(ctx, req, analysis)
		return analysis, false, nil
	}

	if a.rag != nil {
		answer, err := a.rag.QueryWithPatientContext(ctx, req.QueryType, req.PatientID, 5)
		if err == nil && answer.Answer != "" {
			return answer.Answer, true, nil
		}
		if err != nil {
			log.WarnContext(ctx, "patient-context RAG failed, using direct analysis",
				"patient_id", req.PatientID, "error", err)
		}
	}

	analysis, err := a.client.Complete(ctx, analysisPrompt(rec, req.QueryType, a.historicalContext(ctx, req.PatientID)))
	if err != nil {
		return "", false, err
	}
	a.appendSessionBestEffort(ctx, req, analysis)
	return analysis, false, nil
}

// historicalContext pulls up to three prior memory records for the
// patient; retrieval failure degrades to no context.
func (a *Agent) historicalContext(ctx context.Context, patientID string) string {
	if a.memory == nil {
		return ""
	}
	records, err := a.memory.RetrieveContext(ctx, patientID, "", 3)
	if err != nil {
		log.DebugContext(ctx, "historical context retrieval failed",
			"patient_id", patientID, "error", err)
		return ""
	}
	if len(records) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Historical Context:\n")
	for _, r := range records {
		content := r.Content
		if len(content) > 200 {
			content = content[:200] + "..."
		}
		fmt.Fprintf(&b, "- %s\n", content)
	}
	return b.String()
}

func (a *Agent) appendSessionBestEffort(ctx context.Context, req agent.RecordRequest, analysis string) {
	if a.memory == nil {
		return
	}
	a.memory.AddSessionInteraction(req.PatientID, req.QueryType, analysis)
}

func notFoundMessage(patientID string) string {
	return fmt.Sprintf("Patient Not Found\n\nPatient ID %q does not exist in the database.\n\nAvailable patient IDs: %s",
		patientID, strings.Join(knownPatientIDs, ", "))
}

func summaryPrompt(rec *ehr.PatientRecord) string {
	return fmt.Sprintf(`Provide a concise medical summary of this patient's record:

%s

Include:
- Current conditions and medications
- Recent vital signs and key metrics
- Relevant medical history
- Any red flags or concerns

Keep the summary professional and actionable for healthcare providers.`, formatPatient(rec))
}

func analysisPrompt(rec *ehr.PatientRecord, query, context string) string {
	if context == "" {
		context = "No historical context available."
	}
	return fmt.Sprintf(`You are a healthcare AI assistant. You MUST answer ONLY the specific question asked.

DO NOT:
- Provide a medical summary unless asked for "summary"
- List all conditions unless asked about conditions
- Discuss medications unless asked about medications
- Give clinical recommendations or "red flags"
- Add context beyond what was requested

Patient Data:
%s

%s

User Question: %s

STRICT RULES:
1. If asked for AGE, give ONLY the number (e.g., "62 years old")
2. If asked for MEDICATIONS, list ONLY medications
3. If asked about a SPECIFIC condition, answer YES/NO with condition name
4. If asked for SUMMARY, then provide full details
5. Keep response under 2 sentences unless asked for summary

Your concise answer:`, formatPatient(rec), context, query)
}

// compactSummary is the one-line form stored in vector memory.
func compactSummary(rec *ehr.PatientRecord) string {
	parts := []string{
		"Patient: " + rec.Name,
		fmt.Sprintf("Age: %d", rec.Age),
		"Gender: " + rec.Gender,
	}
	if len(rec.Conditions) > 0 {
		parts = append(parts, "Conditions: "+strings.Join(rec.Conditions, ", "))
	}
	if len(rec.Medications) > 0 {
		parts = append(parts, "Medications: "+strings.Join(rec.Medications, ", "))
	}
	if rec.Allergies != "" {
		parts = append(parts, "Allergies: "+rec.Allergies)
	}
	return strings.Join(parts, " | ")
}

// formatPatient renders a record as readable prompt context.
func formatPatient(rec *ehr.PatientRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Patient: %s\nAge: %d\nGender: %s", rec.Name, rec.Age, rec.Gender)

	if len(rec.Conditions) > 0 {
		b.WriteString("\n\nConditions:")
		for _, c := range rec.Conditions {
			b.WriteString("\n  - " + c)
		}
	}
	if len(rec.Medications) > 0 {
		b.WriteString("\n\nMedications:")
		for _, m := range rec.Medications {
			b.WriteString("\n  - " + m)
		}
	}
	if rec.Vitals != nil {
		b.WriteString("\n\nVital Signs:")
		fmt.Fprintf(&b, "\n  - blood pressure: %s", rec.Vitals.BloodPressure)
		fmt.Fprintf(&b, "\n  - heart rate: %d", rec.Vitals.HeartRate)
		fmt.Fprintf(&b, "\n  - temperature: %.1f", rec.Vitals.Temperature)
		fmt.Fprintf(&b, "\n  - spo2: %d", rec.Vitals.SpO2)
		fmt.Fprintf(&b, "\n  - weight: %.1f", rec.Vitals.Weight)
		fmt.Fprintf(&b, "\n  - recorded: %s", rec.Vitals.RecordedDate)
	}
	if rec.Allergies != "" {
		b.WriteString("\n\nAllergies:\n  - " + rec.Allergies)
	}
	return b.String()
}
