// Package orchestrator routes healthcare queries through a fixed
// classify, route, synthesize pipeline across the specialized agents.
package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/medassist/medassist/pkg/agent/disease"
	"github.com/medassist/medassist/pkg/agent/records"
	"github.com/medassist/medassist/pkg/agent/scheduling"
	"github.com/medassist/medassist/pkg/completion"
	"github.com/medassist/medassist/pkg/log"
)

// Intent is the classified topic category of a query.
type Intent string

// The four valid intents. Anything else the classifier produces is
// coerced to IntentGeneral.
const (
	IntentDiseaseInfo Intent = "disease_info"
	IntentPatientData Intent = "patient_data"
	IntentAppointment Intent = "appointment"
	IntentGeneral     Intent = "general"
)

// Agent identifiers reported in results.
const (
	AgentDiseaseInfo  = "disease_info"
	AgentRecordLookup = "record_lookup"
	AgentScheduling   = "appointment"
	AgentGeneral      = "general"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const generalResponse = "This is a general health query. How can I assist you further?"

// Result is the orchestrator's answer to one query.
type Result struct {
	Intent            Intent      `json:"intent"`
	AgentUsed         string      `json:"agent_used,omitempty"`
	Status            string      `json:"status"`
	SynthesizedAnswer string      `json:"synthesized_answer,omitempty"`
	Message           string      `json:"message,omitempty"`
	RawData           interface{} `json:"raw_data,omitempty"`
}

// DiseaseAgent answers disease-information queries.
type DiseaseAgent interface {
	Process(ctx context.Context, query string) (*disease.Result, error)
}

// RecordsAgent answers patient-record queries.
type RecordsAgent interface {
	Process(ctx context.Context, query string) (*records.Result, error)
}

// SchedulingAgent answers appointment queries.
type SchedulingAgent interface {
	Process(ctx context.Context, query string) (*scheduling.Result, error)
}

// Orchestrator coordinates the specialized agents.
type Orchestrator struct {
	client     completion.Client
	disease    DiseaseAgent
	records    RecordsAgent
	scheduling SchedulingAgent
}

// New creates an orchestrator over the three specialized agents.
func New(client completion.Client, diseaseAgent DiseaseAgent, recordsAgent RecordsAgent, schedulingAgent SchedulingAgent) *Orchestrator {
	return &Orchestrator{
		client:     client,
		disease:    diseaseAgent,
		records:    recordsAgent,
		scheduling: schedulingAgent,
	}
}

// Process runs a query through classification, routing, and synthesis.
// An agent failure becomes a terminal error result rather than an error
// return; only classification and synthesis failures return an error.
func (o *Orchestrator) Process(ctx context.Context, query string) (*Result, error) {
	intent, err := o.classify(ctx, query)
	if err != nil {
		return nil, err
	}
	log.DebugContext(ctx, "classified query", "intent", string(intent))

	routed := o.route(ctx, intent, query)
	if routed.err != nil {
		return &Result{
			Intent:  intent,
			Status:  StatusError,
			Message: fmt.Sprintf("Error processing query: %v", routed.err),
		}, nil
	}

	return o.synthesize(ctx, query, intent, routed)
}

// classify asks the completion service for one of the four intent
// labels. Any out-of-set response degrades to IntentGeneral.
func (o *Orchestrator) classify(ctx context.Context, query string) (Intent, error) {
	prompt := fmt.Sprintf(`You are a healthcare assistant intent classifier.

User Query: %s

Classify this query into ONE of these categories:
- disease_info: Questions about diseases, symptoms, treatments, medical conditions
- patient_data: Questions about a specific patient's records, history, or current status
- appointment: Requests to schedule, reschedule, or check appointment availability
- general: General health questions or queries that don't fit the above categories

Respond with ONLY the category name (disease_info, patient_data, appointment, or general).
Do not include any explanation or additional text.`, query)

	response, err := o.client.Complete(ctx, prompt)
	if err != nil {
		return "", err
	}

	intent := Intent(strings.ToLower(strings.TrimSpace(response)))
	switch intent {
	case IntentDiseaseInfo, IntentPatientData, IntentAppointment, IntentGeneral:
		return intent, nil
	default:
		log.DebugContext(ctx, "out-of-set classification coerced to general", "response", response)
		return IntentGeneral, nil
	}
}

// routedResponse carries one agent's output through to synthesis.
type routedResponse struct {
	agentUsed string
	disease   *disease.Result
	records   *records.Result
	schedule  *scheduling.Result
	general   string
	err       error
}

func (o *Orchestrator) route(ctx context.Context, intent Intent, query string) routedResponse {
	switch intent {
	case IntentDiseaseInfo:
		res, err := o.disease.Process(ctx, query)
		return routedResponse{agentUsed: AgentDiseaseInfo, disease: res, err: err}
	case IntentPatientData:
		res, err := o.records.Process(ctx, query)
		return routedResponse{agentUsed: AgentRecordLookup, records: res, err: err}
	case IntentAppointment:
		res, err := o.scheduling.Process(ctx, query)
		return routedResponse{agentUsed: AgentScheduling, schedule: res, err: err}
	default:
		return routedResponse{agentUsed: AgentGeneral, general: generalResponse}
	}
}

func (o *Orchestrator) synthesize(ctx context.Context, query string, intent Intent, routed routedResponse) (*Result, error) {
	result := &Result{
		Intent:    intent,
		AgentUsed: routed.agentUsed,
		Status:    StatusSuccess,
	}

	// record-lookup answers pass through verbatim: re-synthesis would
	// re-expand deliberately terse clinical answers
	if routed.records != nil {
		result.SynthesizedAnswer = routed.records.Analysis
		result.RawData = routed.records
		return result, nil
	}

	var gathered string
	switch {
	case routed.disease != nil:
		gathered = "Disease Information:\n" + routed.disease.Analysis
		result.RawData = routed.disease
	case routed.schedule != nil:
		gathered = "Appointment Information:\n" + routed.schedule.Recommendation
		result.RawData = routed.schedule
	default:
		gathered = routed.general
	}

	prompt := fmt.Sprintf(`You are a healthcare assistant synthesizing information from multiple sources.

Original Query: %s

Information Gathered:
%s

Please provide a comprehensive, well-structured response that:
1. Directly answers the user's question
2. Synthesizes information from all sources
3. Highlights key points and actionable items
4. Uses clear, patient-friendly language
5. Includes appropriate disclaimers when discussing medical information

Your response:`, query, gathered)

	answer, err := o.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	result.SynthesizedAnswer = answer
	return result, nil
}
