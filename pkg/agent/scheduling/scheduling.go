// Package scheduling implements the appointment agent: parse,
// check-availability, process, format. Slot generation is deterministic
// stand-in data; there is no booking persistence or conflict detection.
package scheduling

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/medassist/medassist/pkg/agent"
	"github.com/medassist/medassist/pkg/completion"
)

// slotTimes are offered on every weekday in the resolved range.
var slotTimes = []string{"09:00", "11:00", "14:00", "16:00"}

const slotDuration = "30 min"

// Slot is one offered appointment time.
type Slot struct {
	Date      string `json:"date"`
	Time      string `json:"time"`
	Duration  string `json:"duration"`
	Available bool   `json:"available"`
}

// Result is the agent's typed output.
type Result struct {
	Action         string `json:"action"`
	PatientID      string `json:"patient_id,omitempty"`
	Slots          []Slot `json:"available_slots"`
	Recommendation string `json:"recommendation"`
}

// Agent handles appointment scheduling requests.
type Agent struct {
	client completion.Client
	now    func() time.Time
}

// New creates a scheduling agent using the wall clock.
func New(client completion.Client) *Agent {
	return NewWithClock(client, time.Now)
}

// NewWithClock creates a scheduling agent with an injected clock, so
// date-relative behavior is reproducible in tests.
func NewWithClock(client completion.Client, now func() time.Time) *Agent {
	return &Agent{client: client, now: now}
}

// Process handles a scheduling query: resolve the requested date window,
// generate the open slots, and ask the completion service for a booking
// recommendation.
func (a *Agent) Process(ctx context.Context, query string) (*Result, error) {
	req := agent.ParseScheduleRequest(query)
	today := a.now()

	dateRange := agent.ParseDateRange(query, today)
	slots := GenerateSlots(dateRange, today)

	prompt := a.buildPrompt(req, slots, dateRange, today)
	recommendation, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &Result{
		Action:         req.Action,
		PatientID:      req.PatientID,
		Slots:          slots,
		Recommendation: recommendation,
	}, nil
}

// GenerateSlots offers four fixed times on every weekday of the range.
// A nil range defaults to the next five days starting tomorrow.
func GenerateSlots(dateRange *agent.DateRange, today time.Time) []Slot {
	start := today.AddDate(0, 0, 1)
	end := start.AddDate(0, 0, 4)
	if dateRange != nil {
		start = dateRange.Start
		end = dateRange.End
	}

	var slots []Slot
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		for _, at := range slotTimes {
			slots = append(slots, Slot{
				Date:      day.Format("2006-01-02"),
				Time:      at,
				Duration:  slotDuration,
				Available: true,
			})
		}
	}
	return slots
}

func (a *Agent) buildPrompt(req agent.ScheduleRequest, slots []Slot, dateRange *agent.DateRange, today time.Time) string {
	slotsText := formatSlots(slots)

	if req.Action == agent.ActionReschedule {
		return fmt.Sprintf(`You are helping to reschedule a healthcare appointment.

Current Appointment: Previous appointment details

Reason for Rescheduling: %s

Available Alternative Slots:
%s

Please:
1. Acknowledge the need to reschedule
2. Suggest suitable alternative times
3. Ensure minimal disruption to the patient's schedule
4. Provide clear next steps

Be empathetic and helpful.`, req.Details, slotsText)
	}

	patientID := req.PatientID
	if patientID == "" {
		patientID = "Unknown"
	}
	patientInfo := fmt.Sprintf("Patient ID: %s\nToday's date: %s", patientID, today.Format("2006-01-02"))
	if dateRange != nil {
		patientInfo += fmt.Sprintf("\nRequested date range: %s to %s",
			dateRange.Start.Format("2006-01-02"), dateRange.End.Format("2006-01-02"))
	}

	return fmt.Sprintf(`You are a healthcare appointment scheduling assistant.

Patient Request: %s

Available Time Slots:
%s

Patient Information:
%s

Please:
1. Analyze the patient's scheduling request
2. Suggest the most suitable appointment time from available slots
3. Consider any preferences mentioned (morning/afternoon, specific days, etc.)
4. Provide clear confirmation details
5. Mention any preparation needed for the appointment

Respond in a friendly, professional manner.`, req.Details, slotsText, patientInfo)
}

func formatSlots(slots []Slot) string {
	if len(slots) == 0 {
		return "No available slots"
	}
	lines := make([]string, 0, len(slots))
	for _, s := range slots {
		lines = append(lines, fmt.Sprintf("%s at %s (%s)", s.Date, s.Time, s.Duration))
	}
	return strings.Join(lines, "\n")
}
