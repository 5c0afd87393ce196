package agent

import (
	"regexp"
	"strings"
)

// ParseStrategy identifies which parsing strategy produced a request.
type ParseStrategy string

// Parsing strategies, tried in this order.
const (
	StrategyDelimiter ParseStrategy = "delimiter"
	StrategyPattern   ParseStrategy = "pattern"
	StrategyFallback  ParseStrategy = "fallback"
)

// DefaultQueryType is assumed when a request names a patient but asks
// nothing specific.
const DefaultQueryType = "summary"

// patient identifiers look like one letter followed by digits
var patientIDPattern = regexp.MustCompile(`\b([A-Za-z]\d+)\b`)

// RecordRequest is a parsed record-lookup query.
type RecordRequest struct {
	PatientID string
	QueryType string
	Strategy  ParseStrategy
}

// ParseRecordRequest extracts a patient ID and query type from a raw
// query. Strategies are tried in order: an explicit "id|query" delimiter
// split, then an identifier pattern match anywhere in the text, then a
// fallback that treats the whole query as the ID.
func ParseRecordRequest(query string) RecordRequest {
	if strings.Contains(query, "|") {
		parts := strings.SplitN(query, "|", 2)
		queryType := strings.TrimSpace(parts[1])
		if queryType == "" {
			queryType = DefaultQueryType
		}
		return RecordRequest{
			PatientID: strings.TrimSpace(parts[0]),
			QueryType: queryType,
			Strategy:  StrategyDelimiter,
		}
	}

	if match := patientIDPattern.FindString(query); match != "" {
		cleaned := strings.TrimSpace(patientIDPattern.ReplaceAllString(query, ""))
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, ":"))
		if cleaned == "" {
			cleaned = DefaultQueryType
		}
		return RecordRequest{
			PatientID: strings.ToUpper(match),
			QueryType: cleaned,
			Strategy:  StrategyPattern,
		}
	}

	return RecordRequest{
		PatientID: strings.TrimSpace(query),
		QueryType: DefaultQueryType,
		Strategy:  StrategyFallback,
	}
}

// Scheduling actions.
const (
	ActionSchedule   = "schedule"
	ActionReschedule = "reschedule"
)

// ScheduleRequest is a parsed scheduling query.
type ScheduleRequest struct {
	Action    string
	PatientID string
	Details   string
	Strategy  ParseStrategy
}

// ParseScheduleRequest extracts an action, patient ID, and free-text
// detail from a raw query. A delimiter split on "action|patient|details"
// is tried first; anything else defaults to a schedule action with the
// whole query as detail.
func ParseScheduleRequest(query string) ScheduleRequest {
	if strings.Contains(query, "|") {
		parts := strings.Split(query, "|")
		req := ScheduleRequest{
			Action:   strings.ToLower(strings.TrimSpace(parts[0])),
			Strategy: StrategyDelimiter,
		}
		if req.Action == "" {
			req.Action = ActionSchedule
		}
		if len(parts) > 1 {
			req.PatientID = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			req.Details = strings.TrimSpace(parts[2])
		}
		return req
	}

	return ScheduleRequest{
		Action:   ActionSchedule,
		Details:  query,
		Strategy: StrategyFallback,
	}
}
